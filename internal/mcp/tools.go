/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	domaindns "github.com/golgoth31/ipa-dns-operator/internal/domain/dns"
	"github.com/golgoth31/ipa-dns-operator/internal/inventory"
)

// handleListDNSRecords handles the list_dns_records tool call
func (s *Server) handleListDNSRecords(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filter := inventory.Filter{
		Namespace: request.GetString("namespace", ""),
		Zone:      request.GetString("zone", ""),
		Query:     request.GetString("query", ""),
	}

	bindings, err := s.lister.List(ctx, filter)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list DNS bindings: %v", err)), nil
	}

	if len(bindings) == 0 {
		return mcp.NewToolResultText("No DNS records found matching the criteria."), nil
	}

	jsonBytes, err := json.MarshalIndent(bindings, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Found %d DNS record(s):\n\n%s", len(bindings), string(jsonBytes))), nil
}

// handleGetDNSRecord handles the get_dns_record tool call
func (s *Server) handleGetDNSRecord(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	namespace, err := request.RequireString("namespace")
	if err != nil {
		return mcp.NewToolResultError("namespace parameter is required"), nil
	}
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("name parameter is required"), nil
	}
	kind := request.GetString("kind", domaindns.KindDNSRecord)

	ref := domaindns.NewResourceRef(kind, namespace, name)
	binding, err := s.lister.Get(ctx, ref.String())
	if err != nil {
		if errors.Is(err, inventory.ErrNotFound) {
			return mcp.NewToolResultText(fmt.Sprintf("No DNS record found for %s.", ref)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("failed to get DNS record: %v", err)), nil
	}

	jsonBytes, err := json.MarshalIndent(binding, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonBytes)), nil
}

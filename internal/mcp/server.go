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
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/golgoth31/ipa-dns-operator/internal/inventory"
	"github.com/golgoth31/ipa-dns-operator/internal/version"
)

// Lister is the read side of the binding inventory.
type Lister interface {
	List(ctx context.Context, f inventory.Filter) ([]inventory.Binding, error)
	Get(ctx context.Context, source string) (inventory.Binding, error)
}

// Server wraps the MCP server with binding inspection tools
type Server struct {
	mcpServer  *server.MCPServer
	httpServer *server.StreamableHTTPServer
	lister     Lister
}

// New creates a new MCP server instance
func New(lister Lister) *Server {
	s := &Server{lister: lister}

	s.mcpServer = server.NewMCPServer(
		"ipa-dns-operator",
		version.Version,
		server.WithToolCapabilities(true),
	)

	s.registerTools()

	return s
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("list_dns_records",
			mcp.WithDescription("List the DNS bindings managed by the operator. "+
				"Each binding publishes the external IP of a LoadBalancer Service as an A record "+
				"in the directory, and reports its last sync phase and message."),
			mcp.WithString("namespace",
				mcp.Description("Filter by Kubernetes namespace"),
			),
			mcp.WithString("zone",
				mcp.Description("Filter by DNS zone (e.g., 'example.com')"),
			),
			mcp.WithString("query",
				mcp.Description("Substring of the DNS name to match (case-insensitive)"),
			),
		),
		s.handleListDNSRecords,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("get_dns_record",
			mcp.WithDescription("Get one DNS binding with its status. "+
				"Identify it by namespace and name, and kind 'dnsrecord' (default) or 'service'."),
			mcp.WithString("namespace",
				mcp.Required(),
				mcp.Description("Kubernetes namespace of the DNSRecord or Service"),
			),
			mcp.WithString("name",
				mcp.Required(),
				mcp.Description("Name of the DNSRecord or Service"),
			),
			mcp.WithString("kind",
				mcp.Description("Source kind: 'dnsrecord' or 'service'"),
			),
		),
		s.handleGetDNSRecord,
	)
}

// ServeStdio starts the MCP server using stdio transport
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeStreamableHTTP starts the MCP server on its own listener.
func (s *Server) ServeStreamableHTTP(address string) error {
	s.httpServer = server.NewStreamableHTTPServer(s.mcpServer)
	return s.httpServer.Start(address)
}

// Handler returns a streamable HTTP handler, for mounting on another server.
func (s *Server) Handler() http.Handler {
	return server.NewStreamableHTTPServer(s.mcpServer)
}

// Shutdown stops the streamable HTTP listener if one was started.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

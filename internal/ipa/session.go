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

package ipa

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	logf "sigs.k8s.io/controller-runtime/pkg/log"

	domaindns "github.com/golgoth31/ipa-dns-operator/internal/domain/dns"
	"github.com/golgoth31/ipa-dns-operator/internal/metrics"
)

// Directory methods.
const (
	MethodShow   = "dnsrecord_show"
	MethodAdd    = "dnsrecord_add"
	MethodDelete = "dnsrecord_del"
)

const maxBodySize = 1 << 20

// Session is an authenticated directory session. It is meant for a single
// reconciliation attempt and is never shared between attempts.
type Session struct {
	baseURL    string
	apiVersion string
	httpClient *http.Client
}

var _ domaindns.Directory = (*Session)(nil)

type rpcRequest struct {
	Method string `json:"method"`
	Params []any  `json:"params"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  json.RawMessage `json:"error"`
}

// Show returns the A values bound to name in zone.
func (s *Session) Show(ctx context.Context, zone, name string) (*domaindns.RecordState, error) {
	raw, err := s.call(ctx, MethodShow, zone, name, map[string]any{})
	if err != nil {
		return nil, err
	}

	values, err := parseShowResult(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", MethodShow, err)
	}

	return &domaindns.RecordState{RelativeName: name, Values: values}, nil
}

// Add binds value to name. Adding a value that is already bound succeeds.
func (s *Session) Add(ctx context.Context, zone, name string, value domaindns.RecordValue) error {
	kwargs := map[string]any{}
	switch value.Type {
	case domaindns.RecordTypeA:
		kwargs["a_rec"] = []string{value.Value}
	case domaindns.RecordTypeCNAME:
		kwargs["cname_rec"] = value.Value
	default:
		return domaindns.Permanent(fmt.Errorf("%w: %q", domaindns.ErrUnsupportedRecordType, value.Type))
	}
	if value.TTL != nil {
		kwargs["dnsttl"] = *value.TTL
	}

	_, err := s.call(ctx, MethodAdd, zone, name, kwargs)
	var rpcErr *RPCError
	if errors.As(err, &rpcErr) && rpcErr.EmptyModlist() {
		return nil
	}
	return err
}

// Delete removes every value bound to name.
func (s *Session) Delete(ctx context.Context, zone, name string) error {
	_, err := s.call(ctx, MethodDelete, zone, name, map[string]any{"del_all": true})
	return err
}

func (s *Session) call(ctx context.Context, method, zone, name string, kwargs map[string]any) (json.RawMessage, error) {
	log := logf.FromContext(ctx).WithName("ipa")
	start := time.Now()

	if s.apiVersion != "" {
		kwargs["version"] = s.apiVersion
	}

	result, err := s.do(ctx, method, []any{[]string{zone, name}, kwargs})
	metrics.ObserveBackendCall(method, start, err)
	if err != nil {
		log.V(1).Info("directory call failed", "method", method, "zone", zone, "name", name, "error", err.Error())
		return nil, err
	}

	log.V(1).Info("directory call succeeded", "method", method, "zone", zone, "name", name,
		"duration", time.Since(start).String())
	return result, nil
}

func (s *Session) do(ctx context.Context, method string, params []any) (json.RawMessage, error) {
	payload, err := json.Marshal(rpcRequest{Method: method, Params: params})
	if err != nil {
		return nil, fmt.Errorf("%s: encode request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+rpcPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Referer", s.baseURL+"/ipa")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", method, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s: unexpected status %d", method, resp.StatusCode)
	}

	var env rpcResponse
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%s: invalid JSON response: %w", method, err)
	}
	if !isNull(env.Error) {
		return nil, decodeRPCError(method, env.Error)
	}

	return env.Result, nil
}

// parseShowResult extracts A values from {"result": {"a_rec"|"arecord": ...}}.
func parseShowResult(raw json.RawMessage) ([]string, error) {
	if isNull(raw) {
		return nil, nil
	}

	var outer struct {
		Result map[string]json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(raw, &outer); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}

	for _, key := range []string{"a_rec", "arecord"} {
		field, ok := outer.Result[key]
		if !ok || isNull(field) {
			continue
		}
		return stringOrList(field)
	}

	return nil, nil
}

func stringOrList(raw json.RawMessage) ([]string, error) {
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}

	var single string
	if err := json.Unmarshal(raw, &single); err != nil {
		return nil, fmt.Errorf("decode record values: %w", err)
	}
	return []string{single}, nil
}

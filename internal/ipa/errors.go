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
	"encoding/json"
	"fmt"
	"strings"

	domaindns "github.com/golgoth31/ipa-dns-operator/internal/domain/dns"
)

// Error codes returned by the directory.
const (
	CodeNotFound     = 4001
	CodeEmptyModlist = 4202
	nameNotFound     = "NotFound"
	nameEmptyModlist = "EmptyModlist"
)

// RPCError is an error object returned in a JSON-RPC response.
// Code and Name are empty when the directory answered with a bare string.
type RPCError struct {
	Method  string
	Code    int
	Name    string
	Message string
}

func (e *RPCError) Error() string {
	if e.Code == 0 && e.Name == "" {
		return fmt.Sprintf("%s: %s", e.Method, e.Message)
	}
	return fmt.Sprintf("%s: %s (%s %d)", e.Method, e.Message, e.Name, e.Code)
}

// Is matches domaindns.ErrRecordNotFound on the structured not-found signal.
func (e *RPCError) Is(target error) bool {
	return target == domaindns.ErrRecordNotFound && e.NotFound()
}

// BackendMessage returns the directory's free-text message.
func (e *RPCError) BackendMessage() string {
	return e.Message
}

// NotFound reports the structured not-found signal.
func (e *RPCError) NotFound() bool {
	return e.Code == CodeNotFound || e.Name == nameNotFound
}

// EmptyModlist reports that the call changed nothing.
func (e *RPCError) EmptyModlist() bool {
	return e.Code == CodeEmptyModlist || e.Name == nameEmptyModlist
}

func decodeRPCError(method string, raw json.RawMessage) *RPCError {
	var structured struct {
		Code    int    `json:"code"`
		Name    string `json:"name"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &structured); err == nil {
		return &RPCError{Method: method, Code: structured.Code, Name: structured.Name, Message: structured.Message}
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return &RPCError{Method: method, Message: text}
	}

	return &RPCError{Method: method, Message: strings.TrimSpace(string(raw))}
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

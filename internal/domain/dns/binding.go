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

package dns

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

const (
	// RecordTypeA is the only record type reconciled from a Service IP.
	RecordTypeA = "A"
	// RecordTypeCNAME is understood by the directory client but never reconciled.
	RecordTypeCNAME = "CNAME"
)

// BindingRequest is the normalized intent derived from one source object.
// It is built fresh on every event and never persisted.
type BindingRequest struct {
	// Source identifies the object the binding was derived from.
	Source ResourceRef
	// TargetName is the DNS name to publish, possibly fully qualified.
	TargetName string
	// Zone is the directory zone.
	Zone string
	// RecordType is the requested record type.
	RecordType string
	// TTL is the raw TTL in seconds; empty means the zone default.
	TTL string
	// ServiceNamespace and ServiceName locate the Service whose IP is published.
	ServiceNamespace string
	ServiceName      string
	// Generation is metadata.generation of the source object.
	Generation int64
}

// HasName reports whether the source declared a DNS name at all.
func (b BindingRequest) HasName() bool {
	return strings.TrimSpace(b.TargetName) != ""
}

// RelativeName is TargetName normalized against Zone.
func (b BindingRequest) RelativeName() string {
	return Normalize(b.TargetName, b.Zone)
}

// ParsedTTL coerces TTL to an integer. A nil result means no TTL.
func (b BindingRequest) ParsedTTL() (*int64, error) {
	raw := strings.TrimSpace(b.TTL)
	if raw == "" {
		return nil, nil
	}
	ttl, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, Permanent(fmt.Errorf("%w: %q", ErrInvalidTTL, b.TTL))
	}
	return &ttl, nil
}

// Validate checks everything needed before any remote call is made.
// All returned errors are permanent.
func (b BindingRequest) Validate() error {
	if b.RecordType != RecordTypeA {
		return Permanent(fmt.Errorf("%w: %q (only %s is supported)", ErrUnsupportedRecordType, b.RecordType, RecordTypeA))
	}
	if err := b.ValidateForDelete(); err != nil {
		return err
	}
	if _, err := b.ParsedTTL(); err != nil {
		return err
	}
	if b.ServiceName == "" || b.ServiceNamespace == "" {
		return Permanent(ErrMissingService)
	}
	return nil
}

// ValidateForDelete checks the fields needed to locate the record.
func (b BindingRequest) ValidateForDelete() error {
	if !b.HasName() {
		return Permanent(ErrMissingName)
	}
	if strings.TrimRight(strings.TrimSpace(b.Zone), ".") == "" {
		return Permanent(ErrMissingZone)
	}
	if err := ValidateDomainName(strings.TrimRight(b.TargetName, ".")); err != nil {
		return err
	}
	return ValidateDomainName(strings.TrimRight(b.Zone, "."))
}

// RecordValue is one value to add to a record.
type RecordValue struct {
	Type  string
	Value string
	TTL   *int64
}

// RecordState is the directory's view of one (zone, relative name) record.
type RecordState struct {
	RelativeName string
	Values       []string
}

// Contains reports whether value is currently bound to the record.
func (s *RecordState) Contains(value string) bool {
	if s == nil {
		return false
	}
	return slices.Contains(s.Values, value)
}

// Credentials is the login pair for the directory.
type Credentials struct {
	Username string
	Password string
}

// Validate reports a permanent error when either field is empty.
func (c Credentials) Validate() error {
	if c.Username == "" || c.Password == "" {
		return Permanent(ErrMissingCredentials)
	}
	return nil
}

// String never prints the password.
func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{Username: %q}", c.Username)
}

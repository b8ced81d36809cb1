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
	"errors"
	"fmt"
)

// ErrPermanent marks configuration errors. Anything wrapping it is never retried.
var ErrPermanent = errors.New("permanent configuration error")

var (
	// ErrUnsupportedRecordType is returned for any record type the engine cannot reconcile.
	ErrUnsupportedRecordType = errors.New("unsupported record type")
	// ErrMissingZone is returned when a binding does not declare a zone.
	ErrMissingZone = errors.New("zone is required")
	// ErrMissingName is returned when a binding does not declare a DNS name.
	ErrMissingName = errors.New("dns name is required")
	// ErrInvalidName is returned when the DNS name or zone is not a valid domain name.
	ErrInvalidName = errors.New("invalid dns name")
	// ErrInvalidTTL is returned when the TTL is not an integer number of seconds.
	ErrInvalidTTL = errors.New("ttl must be an integer number of seconds")
	// ErrMissingService is returned when a binding has no Service to read the IP from.
	ErrMissingService = errors.New("service reference is required")
	// ErrMissingCredentials is returned when the credential record lacks a username or password.
	ErrMissingCredentials = errors.New("credentials must contain username and password")
)

var (
	// ErrRecordNotFound is the structured absence signal of the directory.
	ErrRecordNotFound = errors.New("record not found")
	// ErrAuthentication is returned when the directory rejects a login.
	ErrAuthentication = errors.New("authentication failed")
	// ErrNoAddress is returned when the Service has no external address yet.
	ErrNoAddress = errors.New("service has no external address yet")
)

// Permanent wraps err so that IsPermanent reports true for it.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrPermanent) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrPermanent, err)
}

// IsPermanent reports whether err is a configuration error.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrPermanent)
}

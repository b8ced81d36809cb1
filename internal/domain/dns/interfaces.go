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

import "context"

// Directory is an authenticated view of the DNS backend.
type Directory interface {
	// Show returns the record bound to name in zone, or ErrRecordNotFound.
	Show(ctx context.Context, zone, name string) (*RecordState, error)
	// Add binds value to name. Adding an existing value succeeds.
	Add(ctx context.Context, zone, name string, value RecordValue) error
	// Delete removes every value bound to name.
	Delete(ctx context.Context, zone, name string) error
}

// SessionManager logs in and returns a Directory valid for one attempt.
type SessionManager interface {
	OpenSession(ctx context.Context, creds Credentials) (Directory, error)
}

// CredentialProvider supplies the directory login pair.
type CredentialProvider interface {
	Credentials(ctx context.Context) (Credentials, error)
}

// IPResolver returns the externally reachable address of a Service.
// An empty address with a nil error means none is assigned yet.
type IPResolver interface {
	ResolveIP(ctx context.Context, namespace, name string) (string, error)
}

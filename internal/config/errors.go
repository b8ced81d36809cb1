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

package config

import "errors"

var (
	// ErrMissingServer is returned when no directory URL is configured.
	ErrMissingServer = errors.New("ipa.server must not be empty")

	// ErrInvalidServer is returned when the directory URL is not an absolute http(s) URL.
	ErrInvalidServer = errors.New("ipa.server must be an absolute http or https URL")

	// ErrInvalidTimeout is returned when the request timeout is not positive.
	ErrInvalidTimeout = errors.New("ipa.requestTimeout must be positive")

	// ErrMissingCredentialsSecret is returned when no credentials Secret is configured.
	ErrMissingCredentialsSecret = errors.New("credentials.secretName must not be empty")

	// ErrInvalidRetryDelay is returned when a retry delay is not positive.
	ErrInvalidRetryDelay = errors.New("retry delays must be positive")

	// ErrNoSourceEnabled is returned when both binding sources are disabled.
	ErrNoSourceEnabled = errors.New("at least one of sources.service or sources.dnsRecord must be enabled")
)

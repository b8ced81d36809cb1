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

import (
	"encoding/json"
	"time"

	domaindns "github.com/golgoth31/ipa-dns-operator/internal/domain/dns"
)

// Duration is a wrapper around time.Duration that supports YAML/JSON unmarshaling from strings.
type Duration time.Duration

// UnmarshalJSON implements json.Unmarshaler for Duration.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
	case string:
		duration, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(duration)
	}
	return nil
}

// MarshalJSON implements json.Marshaler for Duration.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Duration returns the time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// OperatorConfig represents the complete operator configuration.
type OperatorConfig struct {
	IPA         IPAConfig         `json:"ipa" yaml:"ipa"`
	Credentials CredentialsConfig `json:"credentials" yaml:"credentials"`
	// Namespace is the operator namespace; the credentials Secret defaults to it.
	Namespace string `json:"namespace" yaml:"namespace"`
	// WatchNamespaces restricts the watched namespaces. Empty means all namespaces.
	WatchNamespaces []string `json:"watchNamespaces,omitempty" yaml:"watchNamespaces,omitempty"`
	// AnnotationPrefix prefixes every Service annotation key.
	AnnotationPrefix string        `json:"annotationPrefix" yaml:"annotationPrefix"`
	Sources          SourcesConfig `json:"sources" yaml:"sources"`
	Retry            RetryConfig   `json:"retry" yaml:"retry"`
}

// IPAConfig locates the directory.
type IPAConfig struct {
	// Server is the base URL, e.g. https://ipa.example.com.
	Server string `json:"server" yaml:"server"`
	// RequestTimeout bounds every HTTP request to the directory.
	RequestTimeout Duration `json:"requestTimeout" yaml:"requestTimeout"`
	// InsecureSkipVerify disables TLS certificate verification.
	InsecureSkipVerify bool `json:"insecureSkipVerify,omitempty" yaml:"insecureSkipVerify,omitempty"`
	// APIVersion is sent with every call when set.
	APIVersion string `json:"apiVersion,omitempty" yaml:"apiVersion,omitempty"`
}

// CredentialsConfig references the Secret holding username and password.
type CredentialsConfig struct {
	SecretName string `json:"secretName" yaml:"secretName"`
	// SecretNamespace defaults to OperatorConfig.Namespace.
	SecretNamespace string `json:"secretNamespace,omitempty" yaml:"secretNamespace,omitempty"`
}

// SourcesConfig enables each binding source.
type SourcesConfig struct {
	Service   SourceConfig `json:"service" yaml:"service"`
	DNSRecord SourceConfig `json:"dnsRecord" yaml:"dnsRecord"`
}

// SourceConfig toggles one source.
type SourceConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
}

// RetryConfig holds the fixed requeue delays.
type RetryConfig struct {
	// MissingIP applies while the Service has no external address.
	MissingIP Duration `json:"missingIP" yaml:"missingIP"`
	// Backend applies to failed show, add and delete calls.
	Backend Duration `json:"backend" yaml:"backend"`
	// Authentication applies to failed logins and unreadable credentials.
	Authentication Duration `json:"authentication" yaml:"authentication"`
}

// DefaultConfig returns a default configuration.
func DefaultConfig() *OperatorConfig {
	return &OperatorConfig{
		IPA: IPAConfig{
			Server:         "https://ipa.example.com",
			RequestTimeout: Duration(10 * time.Second),
		},
		Credentials: CredentialsConfig{
			SecretName: "freeipa-credentials",
		},
		Namespace:        "default",
		AnnotationPrefix: "ipadns.io",
		Sources: SourcesConfig{
			Service:   SourceConfig{Enabled: true},
			DNSRecord: SourceConfig{Enabled: true},
		},
		Retry: RetryConfig{
			MissingIP:      Duration(domaindns.DefaultMissingIPDelay),
			Backend:        Duration(domaindns.DefaultBackendDelay),
			Authentication: Duration(domaindns.DefaultAuthDelay),
		},
	}
}

// SecretNamespace returns the namespace of the credentials Secret.
func (c *OperatorConfig) SecretNamespace() string {
	if c.Credentials.SecretNamespace != "" {
		return c.Credentials.SecretNamespace
	}
	return c.Namespace
}

// Classifier returns the retry classifier for the configured delays.
func (c *OperatorConfig) Classifier() domaindns.Classifier {
	return domaindns.Classifier{
		MissingIPDelay: c.Retry.MissingIP.Duration(),
		BackendDelay:   c.Retry.Backend.Duration(),
		AuthDelay:      c.Retry.Authentication.Duration(),
	}
}

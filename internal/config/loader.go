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
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"sigs.k8s.io/yaml"
)

const (
	// DefaultConfigPath is the default path for the configuration file.
	DefaultConfigPath = "/etc/ipa-dns-operator/config.yaml"
)

// Environment variables overriding the file.
const (
	EnvServer             = "IPA_SERVER"
	EnvCredentialsSecret  = "IPA_CRED_SECRET"
	EnvNamespace          = "OP_NS"
	EnvRequestTimeout     = "REQ_TIMEOUT"
	EnvAnnotationPrefix   = "ANNOTATION_PREFIX"
	EnvInsecureSkipVerify = "IPA_INSECURE_SKIP_VERIFY"
)

// LoadFromFile reads the operator configuration from a file path.
// Returns the default configuration if the file doesn't exist.
func LoadFromFile(path string) (*OperatorConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Load reads path, overlays the process environment and validates the result.
func Load(path string) (*OperatorConfig, error) {
	cfg, err := LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields with the environment variables found by lookup.
// REQ_TIMEOUT is a number of seconds.
func (c *OperatorConfig) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvServer); ok && v != "" {
		c.IPA.Server = v
	}
	if v, ok := lookup(EnvCredentialsSecret); ok && v != "" {
		c.Credentials.SecretName = v
	}
	if v, ok := lookup(EnvNamespace); ok && v != "" {
		c.Namespace = v
	}
	if v, ok := lookup(EnvAnnotationPrefix); ok && v != "" {
		c.AnnotationPrefix = v
	}
	if v, ok := lookup(EnvRequestTimeout); ok && v != "" {
		seconds, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s=%q: %w", EnvRequestTimeout, v, err)
		}
		c.IPA.RequestTimeout = Duration(time.Duration(seconds) * time.Second)
	}
	if v, ok := lookup(EnvInsecureSkipVerify); ok && v != "" {
		skip, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s=%q: %w", EnvInsecureSkipVerify, v, err)
		}
		c.IPA.InsecureSkipVerify = skip
	}
	return nil
}

// Validate reports the first invalid setting.
func (c *OperatorConfig) Validate() error {
	if strings.TrimSpace(c.IPA.Server) == "" {
		return ErrMissingServer
	}
	u, err := url.Parse(c.IPA.Server)
	if err != nil || u.Host == "" || (u.Scheme != "https" && u.Scheme != "http") {
		return fmt.Errorf("%w: %q", ErrInvalidServer, c.IPA.Server)
	}
	if c.IPA.RequestTimeout.Duration() <= 0 {
		return ErrInvalidTimeout
	}
	if c.Credentials.SecretName == "" {
		return ErrMissingCredentialsSecret
	}
	if c.Retry.MissingIP.Duration() <= 0 || c.Retry.Backend.Duration() <= 0 || c.Retry.Authentication.Duration() <= 0 {
		return ErrInvalidRetryDelay
	}
	if !c.Sources.Service.Enabled && !c.Sources.DNSRecord.Enabled {
		return ErrNoSourceEnabled
	}
	return nil
}

// LogSummary returns a summary of the configuration for logging purposes.
func (c *OperatorConfig) LogSummary() map[string]any {
	return map[string]any{
		"ipa.server":                c.IPA.Server,
		"ipa.requestTimeout":        c.IPA.RequestTimeout.Duration().String(),
		"ipa.insecureSkipVerify":    c.IPA.InsecureSkipVerify,
		"ipa.apiVersion":            c.IPA.APIVersion,
		"credentials.secret":        c.SecretNamespace() + "/" + c.Credentials.SecretName,
		"namespace":                 c.Namespace,
		"watchNamespaces":           c.WatchNamespaces,
		"annotationPrefix":          c.AnnotationPrefix,
		"sources.service.enabled":   c.Sources.Service.Enabled,
		"sources.dnsRecord.enabled": c.Sources.DNSRecord.Enabled,
		"retry.missingIP":           c.Retry.MissingIP.Duration().String(),
		"retry.backend":             c.Retry.Backend.Duration().String(),
		"retry.authentication":      c.Retry.Authentication.Duration().String(),
	}
}

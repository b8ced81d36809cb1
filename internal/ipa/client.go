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

// Package ipa is a client for the JSON-RPC DNS API of a FreeIPA-style
// directory. A Client holds connection settings only; every call to
// Authenticate yields a fresh Session bound to one login.
package ipa

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
	logf "sigs.k8s.io/controller-runtime/pkg/log"

	domaindns "github.com/golgoth31/ipa-dns-operator/internal/domain/dns"
	"github.com/golgoth31/ipa-dns-operator/internal/metrics"
)

// DefaultTimeout is the default timeout for every directory request.
const DefaultTimeout = 10 * time.Second

const (
	loginPath = "/ipa/session/login_password"
	rpcPath   = "/ipa/session/json"
)

// Client holds the directory endpoint and transport settings.
type Client struct {
	baseURL    string
	timeout    time.Duration
	apiVersion string
	tlsConfig  *tls.Config
	transport  http.RoundTripper
}

// Option is a function that configures the Client.
type Option func(*Client)

// WithTimeout sets the timeout for requests.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithTLSConfig sets a custom TLS configuration for the HTTP transport.
func WithTLSConfig(tlsConfig *tls.Config) Option {
	return func(c *Client) {
		c.tlsConfig = tlsConfig
	}
}

// WithInsecureSkipVerify disables server certificate verification.
func WithInsecureSkipVerify(skip bool) Option {
	return func(c *Client) {
		if c.tlsConfig == nil {
			c.tlsConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		c.tlsConfig.InsecureSkipVerify = skip //nolint:gosec // opt-in through configuration
	}
}

// WithTransport sets a custom round tripper. TLS options are ignored when set.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.transport = rt
	}
}

// WithAPIVersion sends the given API version with every call.
func WithAPIVersion(version string) Option {
	return func(c *Client) {
		c.apiVersion = version
	}
}

// NewClient creates a new directory client for baseURL with the given options.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: DefaultTimeout,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.transport == nil {
		t := http.DefaultTransport.(*http.Transport).Clone()
		if c.tlsConfig != nil {
			t.TLSClientConfig = c.tlsConfig
		}
		c.transport = t
	}

	return c
}

// BaseURL returns the directory endpoint without trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// Authenticate logs in with creds and returns a Session holding the
// resulting cookies. It returns ErrAuthentication when the directory
// rejects the login.
func (c *Client) Authenticate(ctx context.Context, creds domaindns.Credentials) (*Session, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	log := logf.FromContext(ctx).WithName("ipa")
	start := time.Now()

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	httpClient := &http.Client{
		Transport: c.transport,
		Timeout:   c.timeout,
		Jar:       jar,
	}

	form := url.Values{}
	form.Set("user", creds.Username)
	form.Set("password", creds.Password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+loginPath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "text/plain, application/json")
	req.Header.Set("Referer", c.baseURL+"/ipa")

	resp, err := httpClient.Do(req)
	if err != nil {
		metrics.ObserveBackendCall("login", start, err)
		return nil, fmt.Errorf("login request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	err = checkLogin(resp, jar)
	metrics.ObserveBackendCall("login", start, err)
	if err != nil {
		return nil, err
	}

	log.V(1).Info("directory login succeeded", "server", c.baseURL, "user", creds.Username)

	return &Session{
		baseURL:    c.baseURL,
		apiVersion: c.apiVersion,
		httpClient: httpClient,
	}, nil
}

// OpenSession implements domaindns.SessionManager.
func (c *Client) OpenSession(ctx context.Context, creds domaindns.Credentials) (domaindns.Directory, error) {
	s, err := c.Authenticate(ctx, creds)
	if err != nil {
		return nil, err
	}
	return s, nil
}

var _ domaindns.SessionManager = (*Client)(nil)

func checkLogin(resp *http.Response, jar http.CookieJar) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d", domaindns.ErrAuthentication, resp.StatusCode)
	}

	if len(resp.Cookies()) > 0 || len(jar.Cookies(resp.Request.URL)) > 0 {
		return nil
	}

	var env struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("%w: no session cookie and unreadable body", domaindns.ErrAuthentication)
	}
	if !isNull(env.Error) {
		return fmt.Errorf("%w: %s", domaindns.ErrAuthentication, decodeRPCError("login", env.Error).Message)
	}
	return nil
}

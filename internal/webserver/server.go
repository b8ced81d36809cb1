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

// Package webserver serves the read-only bindings API.
package webserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	domaindns "github.com/golgoth31/ipa-dns-operator/internal/domain/dns"
	"github.com/golgoth31/ipa-dns-operator/internal/inventory"
	"github.com/golgoth31/ipa-dns-operator/internal/version"
)

// Config holds the web server configuration
type Config struct {
	// Address is the address to listen on (e.g., ":8090")
	Address string
}

// Lister is the read side of the binding inventory.
type Lister interface {
	List(ctx context.Context, f inventory.Filter) ([]inventory.Binding, error)
	Get(ctx context.Context, source string) (inventory.Binding, error)
}

// Server is the web server of the operator
type Server struct {
	config     Config
	echo       *echo.Echo
	lister     Lister
	httpServer *http.Server
}

// New creates a new web server.
// allowedOrigins lists the origins permitted for CORS requests.
// Pass an empty slice to disable cross-origin access (production default).
func New(cfg Config, lister Lister, allowedOrigins []string) *Server {
	e := echo.New()

	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())
	if len(allowedOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: allowedOrigins,
		}))
	}

	s := &Server{
		config: cfg,
		echo:   e,
		lister: lister,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.echo.GET("/api/health", s.healthHandler)
	s.echo.GET("/api/records", s.listRecordsHandler)
	s.echo.GET("/api/records/:namespace/:name", s.getRecordHandler)
}

// healthHandler returns the health status
func (s *Server) healthHandler(c *echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": version.Version,
	})
}

// listRecordsHandler lists bindings. Query parameters namespace, zone and q
// narrow the result.
func (s *Server) listRecordsHandler(c *echo.Context) error {
	bindings, err := s.lister.List(c.Request().Context(), inventory.Filter{
		Namespace: c.QueryParam("namespace"),
		Zone:      c.QueryParam("zone"),
		Query:     c.QueryParam("q"),
	})
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"count":    len(bindings),
		"bindings": bindings,
	})
}

// getRecordHandler returns one binding. The kind query parameter selects
// between DNSRecords (default) and annotated Services.
func (s *Server) getRecordHandler(c *echo.Context) error {
	kind := c.QueryParam("kind")
	if kind == "" {
		kind = domaindns.KindDNSRecord
	}
	ref := domaindns.NewResourceRef(kind, c.Param("namespace"), c.Param("name"))

	b, err := s.lister.Get(c.Request().Context(), ref.String())
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, b)
	case errors.Is(err, inventory.ErrNotFound):
		return errorJSON(c, http.StatusNotFound, err)
	case errors.Is(err, domaindns.ErrInvalidResourceRef):
		return errorJSON(c, http.StatusBadRequest, err)
	default:
		return errorJSON(c, http.StatusInternalServerError, err)
	}
}

func errorJSON(c *echo.Context, code int, err error) error {
	return c.JSON(code, map[string]string{"error": err.Error()})
}

// Start starts the web server
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:    s.config.Address,
		Handler: s.Handler(),
	}

	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// MountHandler registers an external http.Handler on the given path.
// This is useful for mounting additional services (e.g. MCP) on the same port.
func (s *Server) MountHandler(path string, handler http.Handler) {
	s.echo.Any(path, echo.WrapHandler(handler))
}

// Handler returns the HTTP handler for the server
func (s *Server) Handler() http.Handler {
	h2s := &http2.Server{}
	return h2c.NewHandler(s.echo, h2s)
}

// Package server exposes the portfolio and quote services over a JSON REST API.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/bobmcallan/folio/internal/app"
	"github.com/bobmcallan/folio/internal/common"
)

// Slow-header clients are cut off well before the body read timeout.
const readHeaderTimeout = 5 * time.Second

// Server serves the folio API for one App.
type Server struct {
	app    *app.App
	server *http.Server
	logger *common.Logger
}

// NewServer builds the route table and middleware chain for a. Listen address
// and timeouts come from a.Config.Server; nothing listens until Start.
func NewServer(a *app.App) *Server {
	s := &Server{app: a, logger: a.Logger}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	cfg := a.Config.Server
	s.server = &http.Server{
		Addr:              net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Handler:           applyMiddleware(mux, a.Logger, a.Config),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       cfg.GetReadTimeout(),
		WriteTimeout:      cfg.GetWriteTimeout(),
		IdleTimeout:       cfg.GetIdleTimeout(),
	}
	return s
}

// Handler returns the wrapped mux, for httptest.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start listens until Shutdown. A clean shutdown returns nil.
func (s *Server) Start() error {
	s.logger.Info().
		Str("addr", s.server.Addr).
		Dur("write_timeout", s.server.WriteTimeout).
		Msg("Starting REST API server")
	if err := s.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

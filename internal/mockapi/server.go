// Package mockapi is an in-memory stand-in for the venue booking API's user
// endpoints, for local development and end-to-end tests of the client.
package mockapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/venuebook/internal/logging"
	"github.com/dmitrijs2005/venuebook/internal/mockapi/auth"
	"github.com/dmitrijs2005/venuebook/internal/mockapi/config"
	"github.com/dmitrijs2005/venuebook/internal/mockapi/users"
	"github.com/gorilla/mux"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	cfg      *config.Config
	logger   logging.Logger
	users    *users.Service
	issuer   *auth.Issuer
	revoked  *auth.Revocations
	delay    time.Duration
	router   *mux.Router
	listener net.Listener
}

func NewServer(cfg *config.Config, l logging.Logger, us *users.Service) *Server {
	if l == nil {
		l = logging.Nop{}
	}
	s := &Server{
		cfg:     cfg,
		logger:  l.With("module", "mockapi"),
		users:   us,
		issuer:  auth.NewIssuer(cfg.SecretKey, cfg.TokenValidity),
		revoked: auth.NewRevocations(),
		delay:   cfg.ProfileDelay,
	}
	s.router = s.routes()
	return s
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Listen binds the configured address. Run calls it when needed; calling
// it first lets the caller learn the real port of ":0".
func (s *Server) Listen() (net.Addr, error) {
	if s.listener == nil {
		l, err := net.Listen("tcp", s.cfg.Addr)
		if err != nil {
			return nil, err
		}
		s.listener = l
	}
	return s.listener.Addr(), nil
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	if _, err := s.Listen(); err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Starting mock API", "address", s.listener.Addr().String(), "prefix", s.cfg.PathPrefix)
		errCh <- srv.Serve(s.listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Stopping mock API...")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotauth/internal/shared"
	"golang.org/x/sync/errgroup"
)

// ShutdownTimeout bounds graceful shutdown in [Server.Run].
const ShutdownTimeout = 5 * time.Second

// Options configures a [Server].
type Options struct {
	Auth        AuthClient
	States      *StateStore
	Logger      *log.Logger
	RedirectURI string
	OnCallback  func(CallbackResult)
}

// Server is the local authorization server.
type Server struct {
	router   *BasicRouter
	callback *CallbackHandler
	logger   *log.Logger

	mu       sync.Mutex
	http     *http.Server
	listener net.Listener
}

// New wires the routes. States defaults to a store with [DefaultStateTTL].
func New(opts Options) (*Server, error) {
	if opts.Auth == nil {
		return nil, fmt.Errorf("%w: auth client is required", shared.ErrInvalidConfig)
	}
	if opts.RedirectURI == "" {
		return nil, fmt.Errorf("%w: redirect uri is required", shared.ErrInvalidConfig)
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.States == nil {
		opts.States = NewStateStore(DefaultStateTTL)
	}

	logger := shared.WithLogger(opts.Logger, "component", "server")
	s := &Server{
		router:   NewBasicRouter(),
		callback: NewCallbackHandler(opts.Auth, opts.States, logger, opts.OnCallback),
		logger:   logger,
	}

	s.router.Use(
		RedactQuery("code", "refresh_token"),
		Logging(opts.Logger),
		RestoreQuery,
		RequestID,
		Recovery(logger),
	)

	s.router.Handle(http.MethodGet, "/{$}", homeHandler(logger))
	s.router.Handle(http.MethodGet, "/login", loginHandler(opts.Auth, opts.States, opts.RedirectURI, logger))
	s.router.Handler(http.MethodGet, s.callback)
	s.router.Handle(http.MethodGet, "/refresh", refreshHandler(opts.Auth, logger))
	s.router.Handle(http.MethodGet, "/healthz", healthHandler())

	return s, nil
}

// Handler returns the fully wired HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on addr and serves in the background. The returned channel receives the serve error,
// or nil after [Server.Shutdown].
func (s *Server) Start(ctx context.Context, addr string) (<-chan error, error) {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.mu.Lock()
	s.http = srv
	s.listener = ln
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	s.logger.Info("listening", "addr", ln.Addr().String())
	return errCh, nil
}

// Addr returns the bound address once started.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.http
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// Run starts the server, calls ready with the bound address and blocks until ctx is cancelled or serving fails.
func (s *Server) Run(ctx context.Context, addr string, ready func(addr string)) error {
	g, gCtx := errgroup.WithContext(ctx)

	errCh, err := s.Start(gCtx, addr)
	if err != nil {
		return err
	}

	g.Go(func() error {
		select {
		case err := <-errCh:
			if err != nil {
				s.logger.Error("server runtime error", "error", err)
				return fmt.Errorf("server: %w", err)
			}
			return nil
		case <-gCtx.Done():
			return nil
		}
	})

	if ready != nil {
		ready(s.Addr())
	}

	runtimeErr := g.Wait()

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	var errs []error
	if runtimeErr != nil {
		errs = append(errs, runtimeErr)
	}
	if err := s.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("shutdown failed", "error", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

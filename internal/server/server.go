// package server contains middleware & handlers for the dashboard API
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/wahoodash/internal/services"
	"github.com/desertthunder/wahoodash/internal/shared"
	"github.com/desertthunder/wahoodash/internal/tasks"
	"golang.org/x/time/rate"
)

const shutdownTimeout = 30 * time.Second

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler defines the interface for HTTP request handlers served by the dashboard API.
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the path patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// Server serves the OAuth callback and scrape endpoints.
type Server struct {
	config *shared.Config
	logger *log.Logger
	router *BasicRouter
}

// ServerOpts contains the dependencies of a [Server].
type ServerOpts struct {
	Config     *shared.Config
	Logger     *log.Logger
	Exchanger  services.TokenExchanger
	Authorizer services.Authorizer
	Scraper    Scraper
}

// NewServer wires handlers and middleware onto a [BasicRouter].
//
// Config is read once here; handlers keep their own copies.
func NewServer(opts ServerOpts) *Server {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Exchanger == nil || opts.Authorizer == nil {
		wahoo := services.NewWahooServiceFromConfig(opts.Config.Wahoo)
		if opts.Exchanger == nil {
			opts.Exchanger = wahoo
		}
		if opts.Authorizer == nil {
			opts.Authorizer = wahoo
		}
	}
	if opts.Scraper == nil {
		opts.Scraper = tasks.NewScraper(tasks.ScraperOpts{Config: opts.Config.Scraper, Logger: opts.Logger})
	}

	cfg := *opts.Config
	logger := shared.WithLogger(opts.Logger, "component", "server")

	router := NewBasicRouter()
	router.Use(Recover(logger), RequestLogger(logger))

	appURL := cfg.App.URL()
	router.Handler(NewCallbackHandler(cfg.Wahoo, appURL, opts.Exchanger, logger))
	router.Handler(NewAuthorizeHandler(cfg.Wahoo, opts.Authorizer, logger))

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.Server.ScrapeRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Server.ScrapeRate), max(cfg.Server.ScrapeBurst, 1))
	}
	router.Handle(http.MethodPost, ScrapePath, RateLimit(limiter)(NewScrapeHandler(opts.Scraper, logger)))
	router.Handle(http.MethodGet, DebugPath, DebugHandler(cfg))
	router.Handle(http.MethodGet, HealthPath, HealthHandler())

	return &Server{config: &cfg, logger: logger, router: router}
}

// ServeHTTP implements [http.Handler].
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run listens on the configured address until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Server.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Server.Addr(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is canceled.
//
// In-flight requests get [shutdownTimeout] to finish; their contexts are canceled after that,
// which also kills any running scrape job.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()

	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 15 * time.Second,
		// Scrapes block for up to the job timeout.
		WriteTimeout: s.config.Scraper.Timeout() + 15*time.Second,
		IdleTimeout:  60 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return baseCtx },
	}

	errs := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", ln.Addr().String())
		errs <- srv.Serve(ln)
	}()

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		cancelBase()
		s.logger.Warn("server forced to shutdown", "err", err)
		return srv.Close()
	}

	s.logger.Info("server exited")
	return nil
}

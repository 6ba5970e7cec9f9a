// Package daemon runs the finlog HTTP server and its background jobs.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// DefaultShutdownTimeout bounds graceful shutdown when none is configured.
const DefaultShutdownTimeout = 10 * time.Second

// Job is a background task that runs until its context is canceled.
type Job interface {
	Run(ctx context.Context) error
}

// Config holds configuration for the runner.
type Config struct {
	// Addr is the TCP address to listen on, e.g. ":5000".
	Addr string
	// ShutdownTimeout bounds how long in-flight requests may take to finish.
	ShutdownTimeout time.Duration
	// Jobs are started once the listener is bound.
	Jobs []Job
}

// Runner manages the server lifecycle.
type Runner struct {
	server          *http.Server
	addr            string
	shutdownTimeout time.Duration
	jobs            []Job
	logger          *slog.Logger
}

// New creates a runner serving handler.
func New(handler http.Handler, cfg Config, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}

	return &Runner{
		server: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
		},
		addr:            cfg.Addr,
		shutdownTimeout: cfg.ShutdownTimeout,
		jobs:            cfg.Jobs,
		logger:          logger,
	}
}

// Run listens on the configured address and serves until ctx is canceled.
func (r *Runner) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", r.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", r.addr, err)
	}
	return r.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is canceled, then shuts the
// server down gracefully and waits for background jobs to stop.
func (r *Runner) Serve(ctx context.Context, ln net.Listener) error {
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- r.server.Serve(ln)
	}()
	r.logger.Info("server listening", "addr", ln.Addr().String())

	jobCtx, stopJobs := context.WithCancel(ctx)
	defer stopJobs()

	jobsDone := make(chan struct{}, len(r.jobs))
	for _, job := range r.jobs {
		go func() {
			if err := job.Run(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
				r.logger.Error("background job failed", "error", err)
			}
			jobsDone <- struct{}{}
		}()
	}

	var runErr error
	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("serving http: %w", err)
		}
	case <-ctx.Done():
		r.logger.Info("shutting down server", "timeout", r.shutdownTimeout)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), r.shutdownTimeout)
		defer cancel()
		if err := r.server.Shutdown(shutdownCtx); err != nil {
			runErr = fmt.Errorf("shutting down server: %w", err)
		}
	}

	stopJobs()
	for range r.jobs {
		<-jobsDone
	}

	r.logger.Info("server stopped")
	return runErr
}

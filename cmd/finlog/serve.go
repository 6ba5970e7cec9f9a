package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/ArionMiles/finlog/internal/daemon"
	"github.com/ArionMiles/finlog/internal/keepalive"
	"github.com/ArionMiles/finlog/pkg/server"
)

func (a *app) newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runServe(cmd.Context())
		},
	}
}

func (a *app) runServe(parent context.Context) error {
	if err := a.cfg.ValidateServer(); err != nil {
		return err
	}

	switch a.cfg.GinMode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		gin.SetMode(a.cfg.GinMode)
	default:
		return fmt.Errorf("invalid GIN_MODE %q", a.cfg.GinMode)
	}

	// Setup context with cancellation on SIGINT/SIGTERM
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case sig := <-sigChan:
			a.logger.Info("received shutdown signal", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	store, err := openStore(ctx, a.cfg, a.logger, false)
	if err != nil {
		return err
	}
	defer store.Close()

	srv := server.New(store, server.Config{JWTSecret: a.cfg.JWTSecret}, a.logger.With("component", "http"))

	var jobs []daemon.Job
	if a.cfg.KeepAliveURL != "" {
		pinger, err := keepalive.New(keepalive.Config{
			URL:      a.cfg.KeepAliveURL,
			Schedule: a.cfg.KeepAliveSchedule,
		}, a.logger.With("component", "keepalive"))
		if err != nil {
			return err
		}
		jobs = append(jobs, pinger)
	}

	runner := daemon.New(srv.Handler(), daemon.Config{
		Addr:            fmt.Sprintf(":%d", a.cfg.Port),
		ShutdownTimeout: a.cfg.ShutdownTimeout,
		Jobs:            jobs,
	}, a.logger)

	if err := runner.Run(ctx); err != nil {
		a.logger.Error("server failed", "error", err)
		return err
	}
	return nil
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ArionMiles/finlog/internal/keepalive"
)

const statusTimeout = 15 * time.Second

func (a *app) newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check configuration and connectivity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), statusTimeout)
			defer cancel()

			if !a.runStatus(ctx, cmd.OutOrStdout()) {
				return fmt.Errorf("configuration issues detected")
			}
			return nil
		},
	}
}

// runStatus prints a checklist and reports whether everything passed.
func (a *app) runStatus(ctx context.Context, w io.Writer) bool {
	fmt.Fprintln(w, "=== Finlog Status ===")
	fmt.Fprintln(w)

	allGood := true

	a.checkEnvFile(w)
	a.checkServerConfig(w, &allGood)
	a.checkStore(ctx, w, &allGood)
	a.checkKeepAlive(ctx, w, &allGood)

	fmt.Fprintln(w)
	if allGood {
		fmt.Fprintln(w, "Status: ✓ Ready to serve")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Run 'finlog serve' to start the API.")
	} else {
		fmt.Fprintln(w, "Status: ✗ Configuration issues detected")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Fix the issues above, then run 'finlog status' again.")
	}
	return allGood
}

func (a *app) checkEnvFile(w io.Writer) {
	if a.envFile == "" {
		return
	}
	fmt.Fprintf(w, "Env file (%s): ", a.envFile)
	if _, err := os.Stat(a.envFile); err != nil {
		fmt.Fprintln(w, "- Not present (using environment only)")
		return
	}
	fmt.Fprintln(w, "✓ Loaded")
}

func (a *app) checkServerConfig(w io.Writer, allGood *bool) {
	fmt.Fprint(w, "JWT secret: ")
	if a.cfg.JWTSecret == "" {
		fmt.Fprintln(w, "✗ JWT_SECRET is not set")
		*allGood = false
	} else {
		fmt.Fprintln(w, "✓ Set")
	}

	fmt.Fprintf(w, "Listen port: ✓ %d\n", a.cfg.Port)
}

func (a *app) checkStore(ctx context.Context, w io.Writer, allGood *bool) {
	fmt.Fprintf(w, "Store (%s): ", a.cfg.StoreBackend)

	store, err := openStore(ctx, a.cfg, a.logger, true)
	if err != nil {
		fmt.Fprintf(w, "✗ %v\n", err)
		*allGood = false
		return
	}
	defer store.Close()

	if err := store.Ping(ctx); err != nil {
		fmt.Fprintf(w, "✗ %v\n", err)
		*allGood = false
		return
	}

	reportSchema(ctx, w, store, allGood)
}

// reportSchema prints whether the store's schema is in place. Stores without
// a schema are in memory.
func reportSchema(ctx context.Context, w io.Writer, store any, allGood *bool) {
	checker, ok := store.(schemaChecker)
	if !ok {
		fmt.Fprintln(w, "⚠ In memory (data is not persisted)")
		return
	}

	ready, err := checker.SchemaReady(ctx)
	switch {
	case err != nil:
		fmt.Fprintf(w, "✗ %v\n", err)
		*allGood = false
	case !ready:
		fmt.Fprintln(w, "⚠ Connected, schema not applied (run 'finlog migrate' or start 'finlog serve')")
	default:
		fmt.Fprintln(w, "✓ Connected, schema present")
	}
}

// schemaChecker is implemented by stores that can report on their schema
// without changing it.
type schemaChecker interface {
	SchemaReady(ctx context.Context) (bool, error)
}

func (a *app) checkKeepAlive(ctx context.Context, w io.Writer, allGood *bool) {
	fmt.Fprint(w, "Keep-alive: ")
	if a.cfg.KeepAliveURL == "" {
		fmt.Fprintln(w, "- Disabled")
		return
	}

	pinger, err := keepalive.New(keepalive.Config{
		URL:      a.cfg.KeepAliveURL,
		Schedule: a.cfg.KeepAliveSchedule,
	}, a.logger)
	if err != nil {
		fmt.Fprintf(w, "✗ %v\n", err)
		*allGood = false
		return
	}

	if err := pinger.Ping(ctx); err != nil {
		fmt.Fprintf(w, "⚠ %v\n", err)
		return
	}
	fmt.Fprintf(w, "✓ %s reachable (%s)\n", a.cfg.KeepAliveURL, a.cfg.KeepAliveSchedule)
}

// Package keepalive periodically requests a URL so that hosted instances
// which sleep when idle stay warm.
package keepalive

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultSchedule pings every 14 minutes.
const DefaultSchedule = "@every 14m"

// DefaultTimeout bounds a single ping.
const DefaultTimeout = 30 * time.Second

// Config holds configuration for the pinger.
type Config struct {
	// URL is requested with GET on every tick.
	URL string
	// Schedule is a cron spec or descriptor. Defaults to DefaultSchedule.
	Schedule string
	// Timeout bounds each request. Defaults to DefaultTimeout.
	Timeout time.Duration
	// Client is the HTTP client to use. Defaults to a client with Timeout.
	Client *http.Client
}

// Pinger requests Config.URL on a cron schedule.
type Pinger struct {
	url    string
	client *http.Client
	cron   *cron.Cron
	logger *slog.Logger
}

// New creates a pinger. It fails when the URL is empty or the schedule
// cannot be parsed.
func New(cfg Config, logger *slog.Logger) (*Pinger, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.URL == "" {
		return nil, fmt.Errorf("keepalive URL is required")
	}
	if cfg.Schedule == "" {
		cfg.Schedule = DefaultSchedule
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: cfg.Timeout}
	}

	p := &Pinger{
		url:    cfg.URL,
		client: cfg.Client,
		cron:   cron.New(cron.WithLocation(time.UTC)),
		logger: logger,
	}

	if _, err := p.cron.AddFunc(cfg.Schedule, p.tick); err != nil {
		return nil, fmt.Errorf("scheduling keepalive %q: %w", cfg.Schedule, err)
	}
	return p, nil
}

// Ping requests the URL once. Responses with status 400 or above are errors.
func (p *Pinger) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", p.url, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("requesting %s: unexpected status %d", p.url, resp.StatusCode)
	}
	return nil
}

func (p *Pinger) tick() {
	if err := p.Ping(context.Background()); err != nil {
		p.logger.Warn("keepalive ping failed", "url", p.url, "error", err)
		return
	}
	p.logger.Debug("keepalive ping succeeded", "url", p.url)
}

// Run sends an initial ping, then pings on schedule until ctx is done.
// It waits for a running ping to finish before returning.
func (p *Pinger) Run(ctx context.Context) error {
	p.logger.Info("keepalive started", "url", p.url)
	p.tick()

	p.cron.Start()
	<-ctx.Done()
	<-p.cron.Stop().Done()

	p.logger.Info("keepalive stopped")
	return nil
}

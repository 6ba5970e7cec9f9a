package keepalive

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArionMiles/finlog/pkg/logging"
)

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"missing url", Config{}, true},
		{"bad schedule", Config{URL: "http://localhost", Schedule: "every now and then"}, true},
		{"default schedule", Config{URL: "http://localhost"}, false},
		{"cron expression", Config{URL: "http://localhost", Schedule: "*/14 * * * *"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg, logging.Discard())
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPing(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusOK)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(int(status.Load()))
	}))
	defer srv.Close()

	p, err := New(Config{URL: srv.URL}, logging.Discard())
	require.NoError(t, err)

	assert.NoError(t, p.Ping(context.Background()))

	status.Store(http.StatusBadGateway)
	assert.Error(t, p.Ping(context.Background()))
}

func TestRun_PingsImmediatelyAndOnSchedule(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	p, err := New(Config{URL: srv.URL, Schedule: "@every 1s"}, logging.Discard())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	require.Eventually(t, func() bool { return hits.Load() >= 1 }, time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool { return hits.Load() >= 2 }, 3*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

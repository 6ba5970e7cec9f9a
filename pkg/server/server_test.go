package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArionMiles/finlog/pkg/logging"
	"github.com/ArionMiles/finlog/pkg/store/memory"
)

const testSecret = "test-secret"

var testNow = time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	server *Server
	store  *memory.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	// Each stored record gets a distinct, increasing timestamp.
	var tick atomic.Int64
	store := memory.New(memory.WithClock(func() time.Time {
		return testNow.Add(time.Duration(tick.Add(1)) * time.Millisecond)
	}))
	srv := New(store, Config{
		JWTSecret: testSecret,
		Now:       func() time.Time { return testNow },
	}, logging.Discard())
	return &testEnv{server: srv, store: store}
}

func signToken(t *testing.T, secret, userID string, expiresAt time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user": map[string]any{"id": userID},
		"exp":  expiresAt.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func tokenFor(t *testing.T, userID string) string {
	return signToken(t, testSecret, userID, time.Now().Add(time.Hour))
}

// do sends a request with an x-auth-token header when token is non-empty.
func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("x-auth-token", token)
	}

	w := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func messageOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]any](t, w)["message"].(string)
}

func TestAuthenticate(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name       string
		setHeader  func(r *http.Request)
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "missing token",
			setHeader:  func(*http.Request) {},
			wantStatus: http.StatusUnauthorized,
			wantMsg:    msgNoToken,
		},
		{
			name: "bearer without token",
			setHeader: func(r *http.Request) {
				r.Header.Set("Authorization", "Basic abc")
			},
			wantStatus: http.StatusUnauthorized,
			wantMsg:    msgNoToken,
		},
		{
			name: "garbage token",
			setHeader: func(r *http.Request) {
				r.Header.Set("x-auth-token", "not-a-jwt")
			},
			wantStatus: http.StatusUnauthorized,
			wantMsg:    msgInvalidToken,
		},
		{
			name: "wrong secret",
			setHeader: func(r *http.Request) {
				r.Header.Set("x-auth-token", signToken(t, "other", "u1", time.Now().Add(time.Hour)))
			},
			wantStatus: http.StatusUnauthorized,
			wantMsg:    msgInvalidToken,
		},
		{
			name: "expired",
			setHeader: func(r *http.Request) {
				r.Header.Set("x-auth-token", signToken(t, testSecret, "u1", time.Now().Add(-time.Minute)))
			},
			wantStatus: http.StatusUnauthorized,
			wantMsg:    msgInvalidToken,
		},
		{
			name: "empty user id",
			setHeader: func(r *http.Request) {
				r.Header.Set("x-auth-token", signToken(t, testSecret, "", time.Now().Add(time.Hour)))
			},
			wantStatus: http.StatusUnauthorized,
			wantMsg:    msgInvalidToken,
		},
		{
			name: "x-auth-token",
			setHeader: func(r *http.Request) {
				r.Header.Set("x-auth-token", tokenFor(t, "u1"))
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "bearer",
			setHeader: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+tokenFor(t, "u1"))
			},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/expenses", nil)
			tt.setHeader(req)
			w := httptest.NewRecorder()
			env.server.Handler().ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, messageOf(t, w))
			}
		})
	}
}

func TestAuthenticate_RejectsOtherAlgorithms(t *testing.T) {
	env := newTestEnv(t)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"user": map[string]any{"id": "u1"},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	w := env.do(t, http.MethodGet, "/api/expenses", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

type failingPingStore struct {
	*memory.Store
}

func (failingPingStore) Ping(context.Context) error { return errors.New("db down") }

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode[map[string]string](t, w)["status"])

	down := New(failingPingStore{memory.New()}, Config{JWTSecret: testSecret}, logging.Discard())
	w = httptest.NewRecorder()
	down.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMetrics(t *testing.T) {
	env := newTestEnv(t)
	token := tokenFor(t, "u1")

	env.do(t, http.MethodGet, "/api/expenses", token, nil)
	env.do(t, http.MethodPost, "/api/sms/parse", token, map[string]string{"smsText": "hello"})

	w := env.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, `finlog_http_requests_total{method="GET",route="/api/expenses",status="200"} 1`)
	assert.Contains(t, body, `finlog_sms_parsed_total{result="unparsed"} 1`)
	assert.Contains(t, body, "go_goroutines")
}

func TestInvalidJSONBody(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/expenses", tokenFor(t, "u1"), "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, msgInvalidRequest, messageOf(t, w))
}

func TestValidationMessagesUseJSONNames(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/expenses", tokenFor(t, "u1"), map[string]any{
		"amount":   -5,
		"category": "Food",
		"date":     "2025-06-01",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	resp := decode[map[string]any](t, w)
	errs := resp["errors"].([]any)
	require.Len(t, errs, 1)
	assert.True(t, strings.Contains(errs[0].(string), "amount"), errs[0])
}

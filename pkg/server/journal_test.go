package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArionMiles/finlog/pkg/api"
)

func journalBody(monthYear string) map[string]any {
	return map[string]any{
		"monthYear":      monthYear,
		"monthHighlight": "Moved to Pune",
		"skillsLearnt":   "Go",
		"productivity":   map[string]any{"rating": 7, "note": "steady"},
		"health":         map[string]any{"rating": 5},
		"mood":           map[string]any{"rating": 8, "note": "good"},
	}
}

func TestJournalLifecycle(t *testing.T) {
	env := newTestEnv(t)
	token := tokenFor(t, "u1")

	w := env.do(t, http.MethodPost, "/api/journal", token, journalBody("2025-05"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	created := decode[api.Journal](t, w)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 7, created.Productivity.Rating)

	w = env.do(t, http.MethodPost, "/api/journal", token, journalBody("2025-05"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, msgJournalExists, messageOf(t, w))

	w = env.do(t, http.MethodPost, "/api/journal", token, journalBody("2025-06"))
	require.Equal(t, http.StatusOK, w.Code)

	// Entries are per user.
	w = env.do(t, http.MethodPost, "/api/journal", tokenFor(t, "u2"), journalBody("2025-05"))
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/journal", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]api.Journal](t, w)
	require.Len(t, list, 2)
	assert.Equal(t, "2025-06", list[0].MonthYear)

	update := journalBody("")
	delete(update, "monthYear")
	update["monthHighlight"] = "Promotion"
	update["mood"] = map[string]any{"rating": 10}
	w = env.do(t, http.MethodPut, "/api/journal/2025-05", token, update)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[api.Journal](t, w)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Promotion", updated.MonthHighlight)

	w = env.do(t, http.MethodGet, "/api/journal/2025-05", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[api.Journal](t, w)
	assert.Equal(t, 10, got.Mood.Rating)
	assert.Equal(t, "", got.Mood.Note)

	w = env.do(t, http.MethodDelete, "/api/journal/2025-05", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, msgJournalRemoved, messageOf(t, w))

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		w = env.do(t, method, "/api/journal/2025-05", token, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, method)
		assert.Equal(t, msgJournalNotFound, messageOf(t, w))
	}

	w = env.do(t, http.MethodPut, "/api/journal/2024-01", token, update)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodGet, "/api/journal/2025-05", tokenFor(t, "u2"), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAddJournal_Validation(t *testing.T) {
	env := newTestEnv(t)
	token := tokenFor(t, "u1")

	tests := []struct {
		name   string
		mutate func(body map[string]any)
	}{
		{"bad month format", func(b map[string]any) { b["monthYear"] = "05-2025" }},
		{"month out of range", func(b map[string]any) { b["monthYear"] = "2025-13" }},
		{"missing highlight", func(b map[string]any) { delete(b, "monthHighlight") }},
		{"rating too high", func(b map[string]any) { b["mood"] = map[string]any{"rating": 11} }},
		{"rating missing", func(b map[string]any) { b["health"] = map[string]any{"note": "tired"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := journalBody("2025-05")
			tt.mutate(body)

			w := env.do(t, http.MethodPost, "/api/journal", token, body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, msgInvalidRequest, messageOf(t, w))
		})
	}
}

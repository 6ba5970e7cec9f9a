package server

import (
	"context"
	"encoding/csv"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArionMiles/finlog/pkg/api"
)

func TestAddExpense(t *testing.T) {
	env := newTestEnv(t)
	token := tokenFor(t, "u1")

	tests := []struct {
		name       string
		body       map[string]any
		wantStatus int
		wantDate   time.Time
	}{
		{
			name:       "date only",
			body:       map[string]any{"amount": 120.5, "category": "Food", "reason": "Lunch", "date": "2025-06-01"},
			wantStatus: http.StatusOK,
			wantDate:   time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:       "rfc3339",
			body:       map[string]any{"amount": 40, "category": "Travel", "date": "2025-06-02T09:15:00Z"},
			wantStatus: http.StatusOK,
			wantDate:   time.Date(2025, 6, 2, 9, 15, 0, 0, time.UTC),
		},
		{
			name:       "missing amount",
			body:       map[string]any{"category": "Food", "date": "2025-06-01"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "blank category",
			body:       map[string]any{"amount": 10, "category": "   ", "date": "2025-06-01"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "bad date",
			body:       map[string]any{"amount": 10, "category": "Food", "date": "June 1st"},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/api/expenses", token, tt.body)
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantStatus != http.StatusOK {
				return
			}

			got := decode[api.Expense](t, w)
			assert.NotEmpty(t, got.ID)
			assert.Equal(t, "u1", got.UserID)
			assert.Equal(t, tt.body["category"], got.Category)
			assert.True(t, got.Date.Equal(tt.wantDate), "date = %s", got.Date)
		})
	}

	w := env.do(t, http.MethodGet, "/api/expenses", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]api.Expense](t, w)
	require.Len(t, list, 2)
	assert.Equal(t, "Travel", list[0].Category)

	w = env.do(t, http.MethodGet, "/api/categories", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	categories := decode[[]api.Category](t, w)
	require.Len(t, categories, 2)
	assert.Equal(t, "Food", categories[0].Name)
}

func TestDeleteExpense(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	mine := &api.Expense{UserID: "u1", Amount: 10, Category: "Food", Date: testNow}
	theirs := &api.Expense{UserID: "u2", Amount: 20, Category: "Food", Date: testNow}
	require.NoError(t, env.store.AddExpense(ctx, mine))
	require.NoError(t, env.store.AddExpense(ctx, theirs))

	token := tokenFor(t, "u1")

	w := env.do(t, http.MethodDelete, "/api/expenses/"+theirs.ID, token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, msgNotAuthorized, messageOf(t, w))

	w = env.do(t, http.MethodDelete, "/api/expenses/not-a-uuid", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, msgExpenseNotFound, messageOf(t, w))

	w = env.do(t, http.MethodDelete, "/api/expenses/"+mine.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, msgExpenseRemoved, messageOf(t, w))

	w = env.do(t, http.MethodDelete, "/api/expenses/"+mine.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	_, err := env.store.GetExpense(ctx, theirs.ID)
	assert.NoError(t, err)
}

func TestExportExpenses(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	token := tokenFor(t, "u1")

	require.NoError(t, env.store.AddExpense(ctx, &api.Expense{
		UserID: "u1", Amount: 99.5, Category: "Food", Reason: "Groceries",
		Date: time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC),
	}))
	require.NoError(t, env.store.AddExpense(ctx, &api.Expense{
		UserID: "u2", Amount: 1, Category: "Food", Date: testNow,
	}))

	w := env.do(t, http.MethodGet, "/api/expenses/export", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="expenses-2025-06-15.csv"`, w.Header().Get("Content-Disposition"))

	records, err := csv.NewReader(strings.NewReader(w.Body.String())).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Date", "Amount", "Category", "Reason", "Merchant"},
		{"2025-06-03", "99.50", "Food", "Groceries", ""},
	}, records)

	w = env.do(t, http.MethodGet, "/api/expenses/export?format=json", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Len(t, decode[[]api.Expense](t, w), 1)

	w = env.do(t, http.MethodGet, "/api/expenses/export?format=pdf", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, msgInvalidFormat, messageOf(t, w))
}

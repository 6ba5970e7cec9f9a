package server

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArionMiles/finlog/pkg/api"
	"github.com/ArionMiles/finlog/pkg/dashboard"
)

func TestDashboard(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := &api.User{Name: "Asha", Email: "asha@example.com"}
	require.NoError(t, env.store.CreateUser(ctx, user))
	for _, e := range []api.Expense{
		{Amount: 300, Category: "Rent", Date: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
		{Amount: 100, Category: "Food", Date: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)},
		{Amount: 50, Category: "Food", Date: time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)},
	} {
		e.UserID = user.ID
		require.NoError(t, env.store.AddExpense(ctx, &e))
	}
	token := tokenFor(t, user.ID)

	w := env.do(t, http.MethodGet, "/api/dashboard", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	ov := decode[dashboard.Overview](t, w)
	assert.Equal(t, "Asha", ov.User.Name)
	require.Len(t, ov.MonthlyExpensesByYear, 2)
	assert.Equal(t, 2025, ov.MonthlyExpensesByYear[0].Year)
	assert.Len(t, ov.MonthlyExpensesByYear[0].Months, 12)
	assert.Equal(t, []dashboard.YearTotal{{Year: 2025, Total: 400}, {Year: 2024, Total: 50}}, ov.YearlyExpenses)
	assert.Equal(t, []api.CategoryTotal{{Category: "Rent", Total: 300}, {Category: "Food", Total: 150}}, ov.CategoryExpenses)
	assert.Len(t, ov.RecentExpenses, 3)
	assert.Equal(t, dashboard.Stats{
		TotalExpenses:     450,
		AvgMonthlyExpense: 200,
		TopCategory:       "Rent",
		CurrentMonthTotal: 300,
	}, ov.Stats)

	w = env.do(t, http.MethodGet, "/api/dashboard/year/2024", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	year := decode[dashboard.YearView](t, w)
	assert.Equal(t, 2024, year.Year)
	require.Len(t, year.MonthlyExpenses, 1)
	assert.Equal(t, 12, year.MonthlyExpenses[0].Month)
	assert.Equal(t, dashboard.YearStats{
		YearTotal:          50,
		AvgMonthlyExpense:  50,
		TopCategory:        "Food",
		MonthsWithExpenses: 1,
	}, year.Stats)

	w = env.do(t, http.MethodGet, "/api/dashboard/year/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, msgInvalidYear, messageOf(t, w))
}

func TestDashboard_UnknownUser(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/dashboard", tokenFor(t, "ghost"), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, msgUserNotFound, messageOf(t, w))

	w = env.do(t, http.MethodGet, "/api/dashboard/year/2025", tokenFor(t, "ghost"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	view := decode[dashboard.YearView](t, w)
	assert.Equal(t, dashboard.NoData, view.Stats.TopCategory)
	assert.Empty(t, view.MonthlyExpenses)
}

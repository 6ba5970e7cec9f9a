package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArionMiles/finlog/pkg/api"
	"github.com/ArionMiles/finlog/pkg/store/memory"
)

func TestBuildOverview(t *testing.T) {
	months := []api.MonthTotal{
		{Year: 2025, Month: 1, Total: 100},
		{Year: 2025, Month: 3, Total: 300},
		{Year: 2024, Month: 12, Total: 50},
	}
	categories := []api.CategoryTotal{{Category: "Rent", Total: 300}, {Category: "Food", Total: 150}}
	now := time.Date(2025, 3, 20, 12, 0, 0, 0, time.UTC)

	ov := BuildOverview(&api.User{ID: "u1"}, months, categories, nil, now)

	require.Len(t, ov.MonthlyExpensesByYear, 2)
	assert.Equal(t, 2025, ov.MonthlyExpensesByYear[0].Year)
	assert.Len(t, ov.MonthlyExpensesByYear[0].Months, 12)
	assert.Equal(t, 0.0, ov.MonthlyExpensesByYear[0].Months[1].Total)
	assert.Equal(t, 300.0, ov.MonthlyExpensesByYear[0].Months[2].Total)
	assert.Equal(t, 12, ov.MonthlyExpensesByYear[1].Months[11].Month)

	assert.Equal(t, []YearTotal{{Year: 2025, Total: 400}, {Year: 2024, Total: 50}}, ov.YearlyExpenses)
	assert.Equal(t, Stats{
		TotalExpenses:     450,
		AvgMonthlyExpense: 200,
		TopCategory:       "Rent",
		CurrentMonthTotal: 300,
	}, ov.Stats)
	assert.NotNil(t, ov.RecentExpenses)
}

func TestBuildOverview_CurrentMonthUsesCurrentYear(t *testing.T) {
	months := []api.MonthTotal{{Year: 2024, Month: 3, Total: 75}}
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	ov := BuildOverview(nil, months, nil, nil, now)

	assert.Equal(t, 0.0, ov.Stats.CurrentMonthTotal)
	assert.Equal(t, 75.0, ov.Stats.AvgMonthlyExpense)
}

func TestBuildOverview_Empty(t *testing.T) {
	ov := BuildOverview(nil, nil, nil, nil, time.Now())

	assert.Empty(t, ov.MonthlyExpensesByYear)
	assert.NotNil(t, ov.MonthlyExpensesByYear)
	assert.NotNil(t, ov.CategoryExpenses)
	assert.Equal(t, Stats{TopCategory: NoData}, ov.Stats)
}

func TestBuildYear(t *testing.T) {
	months := []api.MonthTotal{
		{Year: 2025, Month: 4, Total: 90},
		{Year: 2024, Month: 2, Total: 30},
		{Year: 2024, Month: 1, Total: 10},
		{Year: 2024, Month: 5, Total: 0},
	}

	view := BuildYear(2024, months, []api.CategoryTotal{{Category: "Food", Total: 40}})

	assert.Equal(t, []api.MonthTotal{
		{Year: 2024, Month: 1, Total: 10},
		{Year: 2024, Month: 2, Total: 30},
		{Year: 2024, Month: 5, Total: 0},
	}, view.MonthlyExpenses)
	assert.Equal(t, YearStats{
		YearTotal:          40,
		AvgMonthlyExpense:  20,
		TopCategory:        "Food",
		MonthsWithExpenses: 2,
	}, view.Stats)

	empty := BuildYear(1999, months, nil)
	assert.Equal(t, YearStats{TopCategory: NoData}, empty.Stats)
	assert.Empty(t, empty.MonthlyExpenses)
}

func TestService(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	u := &api.User{Name: "Asha", Email: "asha@example.com"}
	require.NoError(t, store.CreateUser(ctx, u))
	for _, e := range []api.Expense{
		{UserID: u.ID, Amount: 120, Category: "Food", Date: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)},
		{UserID: u.ID, Amount: 80, Category: "Fuel", Date: time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC)},
	} {
		require.NoError(t, store.AddExpense(ctx, &e))
	}

	svc := NewService(store, func() time.Time { return time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC) })

	ov, err := svc.Overview(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Asha", ov.User.Name)
	assert.Equal(t, 200.0, ov.Stats.TotalExpenses)
	assert.Equal(t, 120.0, ov.Stats.CurrentMonthTotal)
	assert.Len(t, ov.RecentExpenses, 2)

	_, err = svc.Overview(ctx, "ghost")
	assert.ErrorIs(t, err, api.ErrNotFound)

	year, err := svc.Year(ctx, u.ID, 2025)
	require.NoError(t, err)
	assert.Equal(t, 2, year.Stats.MonthsWithExpenses)
	assert.Equal(t, "Food", year.Stats.TopCategory)
}

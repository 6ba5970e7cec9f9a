// Package dashboard assembles spending summaries from store aggregates.
package dashboard

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/ArionMiles/finlog/pkg/api"
)

// NoData is reported as the top category when there are no expenses.
const NoData = "No data"

// RecentLimit is the number of expenses shown in the overview.
const RecentLimit = 5

// YearMonths holds all twelve month totals of one year.
type YearMonths struct {
	Year   int              `json:"year"`
	Months []api.MonthTotal `json:"months"`
}

// YearTotal is the amount spent in one year.
type YearTotal struct {
	Year  int     `json:"year"`
	Total float64 `json:"total"`
}

// Stats summarises the overview.
type Stats struct {
	TotalExpenses     float64 `json:"totalExpenses"`
	AvgMonthlyExpense float64 `json:"avgMonthlyExpense"`
	TopCategory       string  `json:"topCategory"`
	CurrentMonthTotal float64 `json:"currentMonthTotal"`
}

// Overview is the all-time dashboard.
type Overview struct {
	User                  *api.User           `json:"user"`
	MonthlyExpensesByYear []YearMonths        `json:"monthlyExpensesByYear"`
	YearlyExpenses        []YearTotal         `json:"yearlyExpenses"`
	CategoryExpenses      []api.CategoryTotal `json:"categoryExpenses"`
	RecentExpenses        []api.Expense       `json:"recentExpenses"`
	Stats                 Stats               `json:"stats"`
}

// YearStats summarises a single year.
type YearStats struct {
	YearTotal          float64 `json:"yearTotal"`
	AvgMonthlyExpense  float64 `json:"avgMonthlyExpense"`
	TopCategory        string  `json:"topCategory"`
	MonthsWithExpenses int     `json:"monthsWithExpenses"`
}

// YearView is the dashboard for one year.
type YearView struct {
	Year              int                 `json:"year"`
	MonthlyExpenses   []api.MonthTotal    `json:"monthlyExpenses"`
	CategoryBreakdown []api.CategoryTotal `json:"categoryBreakdown"`
	Stats             YearStats           `json:"stats"`
}

// BuildOverview groups month totals by year (latest first, every month
// present) and derives the summary statistics. now selects the current month.
func BuildOverview(user *api.User, months []api.MonthTotal, categories []api.CategoryTotal, recent []api.Expense, now time.Time) Overview {
	byYear := make(map[int]*YearMonths)
	for _, m := range months {
		ym, ok := byYear[m.Year]
		if !ok {
			ym = &YearMonths{Year: m.Year, Months: emptyYear(m.Year)}
			byYear[m.Year] = ym
		}
		if m.Month >= 1 && m.Month <= 12 {
			ym.Months[m.Month-1].Total += m.Total
		}
	}

	ov := Overview{
		User:                  user,
		MonthlyExpensesByYear: make([]YearMonths, 0, len(byYear)),
		YearlyExpenses:        make([]YearTotal, 0, len(byYear)),
		CategoryExpenses:      nonNil(categories),
		RecentExpenses:        nonNil(recent),
	}

	for _, ym := range byYear {
		ov.MonthlyExpensesByYear = append(ov.MonthlyExpensesByYear, *ym)
	}
	slices.SortFunc(ov.MonthlyExpensesByYear, func(a, b YearMonths) int { return cmp.Compare(b.Year, a.Year) })

	for _, ym := range ov.MonthlyExpensesByYear {
		total := sumMonths(ym.Months)
		ov.YearlyExpenses = append(ov.YearlyExpenses, YearTotal{Year: ym.Year, Total: total})
		ov.Stats.TotalExpenses += total
	}

	if len(ov.MonthlyExpensesByYear) > 0 {
		latest := ov.MonthlyExpensesByYear[0]
		if active := activeMonths(latest.Months); active > 0 {
			ov.Stats.AvgMonthlyExpense = ov.YearlyExpenses[0].Total / float64(active)
		}
	}

	ov.Stats.TopCategory = topCategory(categories)

	now = now.UTC()
	if ym, ok := byYear[now.Year()]; ok {
		ov.Stats.CurrentMonthTotal = ym.Months[now.Month()-1].Total
	}

	return ov
}

// BuildYear filters month totals to year (months with data only, in month
// order) and derives the year statistics.
func BuildYear(year int, months []api.MonthTotal, categories []api.CategoryTotal) YearView {
	view := YearView{
		Year:              year,
		MonthlyExpenses:   make([]api.MonthTotal, 0, 12),
		CategoryBreakdown: nonNil(categories),
	}

	for _, m := range months {
		if m.Year == year {
			view.MonthlyExpenses = append(view.MonthlyExpenses, m)
		}
	}
	slices.SortFunc(view.MonthlyExpenses, func(a, b api.MonthTotal) int { return cmp.Compare(a.Month, b.Month) })

	view.Stats.YearTotal = sumMonths(view.MonthlyExpenses)
	view.Stats.MonthsWithExpenses = activeMonths(view.MonthlyExpenses)
	if view.Stats.MonthsWithExpenses > 0 {
		view.Stats.AvgMonthlyExpense = view.Stats.YearTotal / float64(view.Stats.MonthsWithExpenses)
	}
	view.Stats.TopCategory = topCategory(categories)

	return view
}

func emptyYear(year int) []api.MonthTotal {
	months := make([]api.MonthTotal, 12)
	for i := range months {
		months[i] = api.MonthTotal{Year: year, Month: i + 1}
	}
	return months
}

func sumMonths(months []api.MonthTotal) float64 {
	var total float64
	for _, m := range months {
		total += m.Total
	}
	return total
}

func activeMonths(months []api.MonthTotal) int {
	n := 0
	for _, m := range months {
		if m.Total > 0 {
			n++
		}
	}
	return n
}

func topCategory(categories []api.CategoryTotal) string {
	if len(categories) == 0 || categories[0].Category == "" {
		return NoData
	}
	return categories[0].Category
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// Store is the data the dashboard reads.
type Store interface {
	api.UserStore
	api.DashboardStore
}

// Service loads aggregates from a Store and builds dashboard views.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService creates a dashboard service. A nil now defaults to time.Now.
func NewService(store Store, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{store: store, now: now}
}

// Overview returns the all-time dashboard for userID. It returns
// api.ErrNotFound when the user has no profile.
func (s *Service) Overview(ctx context.Context, userID string) (*Overview, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading user: %w", err)
	}

	months, err := s.store.MonthlyTotals(ctx, userID)
	if err != nil {
		return nil, err
	}
	categories, err := s.store.CategoryTotals(ctx, userID, 0)
	if err != nil {
		return nil, err
	}
	recent, err := s.store.RecentExpenses(ctx, userID, RecentLimit)
	if err != nil {
		return nil, err
	}

	ov := BuildOverview(user, months, categories, recent, s.now())
	return &ov, nil
}

// Year returns the dashboard for one calendar year.
func (s *Service) Year(ctx context.Context, userID string, year int) (*YearView, error) {
	months, err := s.store.MonthlyTotals(ctx, userID)
	if err != nil {
		return nil, err
	}
	categories, err := s.store.CategoryTotals(ctx, userID, year)
	if err != nil {
		return nil, err
	}

	view := BuildYear(year, months, categories)
	return &view, nil
}

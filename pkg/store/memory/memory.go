// Package memory provides an in-process api.Store for local development and tests.
// Data is lost when the process exits.
package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ArionMiles/finlog/pkg/api"
)

type merchantKey struct {
	userID   string
	merchant string
}

type journalKey struct {
	userID    string
	monthYear string
}

type merchantEntry struct {
	categoryID string
	createdAt  time.Time
}

// Store keeps all records in maps guarded by a single lock.
type Store struct {
	mu         sync.RWMutex
	now        func() time.Time
	users      map[string]api.User
	categories map[string]api.Category
	expenses   map[string]api.Expense
	journals   map[journalKey]api.Journal
	sms        map[string]api.SmsTransaction
	merchants  map[merchantKey]merchantEntry
}

var _ api.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used for created and updated timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		now:        time.Now,
		users:      make(map[string]api.User),
		categories: make(map[string]api.Category),
		expenses:   make(map[string]api.Expense),
		journals:   make(map[journalKey]api.Journal),
		sms:        make(map[string]api.SmsTransaction),
		merchants:  make(map[merchantKey]merchantEntry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() {}

func (s *Store) CreateUser(_ context.Context, u *api.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return api.ErrConflict
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if _, ok := s.users[u.ID]; ok {
		return api.ErrConflict
	}
	u.CreatedAt = s.now()
	s.users[u.ID] = *u
	return nil
}

func (s *Store) GetUser(_ context.Context, id string) (*api.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, api.ErrNotFound
	}
	return &u, nil
}

func (s *Store) AddExpense(_ context.Context, e *api.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.upsertCategoryLocked(e.Category)
	s.insertExpenseLocked(e)
	return nil
}

func (s *Store) upsertCategoryLocked(name string) api.Category {
	for _, c := range s.categories {
		if c.Name == name {
			return c
		}
	}
	c := api.Category{ID: uuid.NewString(), Name: name}
	s.categories[c.ID] = c
	return c
}

func (s *Store) insertExpenseLocked(e *api.Expense) {
	e.ID = uuid.NewString()
	e.CreatedAt = s.now()
	s.expenses[e.ID] = *e
}

func (s *Store) userExpensesLocked(userID string) []api.Expense {
	out := make([]api.Expense, 0)
	for _, e := range s.expenses {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	slices.SortFunc(out, func(a, b api.Expense) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

func (s *Store) ListExpenses(_ context.Context, userID string) ([]api.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userExpensesLocked(userID), nil
}

func (s *Store) GetExpense(_ context.Context, id string) (*api.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.expenses[id]
	if !ok {
		return nil, api.ErrNotFound
	}
	return &e, nil
}

func (s *Store) DeleteExpense(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.expenses[id]; !ok {
		return api.ErrNotFound
	}
	delete(s.expenses, id)
	return nil
}

func (s *Store) ListCategories(context.Context) ([]api.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]api.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b api.Category) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (s *Store) GetCategory(_ context.Context, id string) (*api.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.categories[id]
	if !ok {
		return nil, api.ErrNotFound
	}
	return &c, nil
}

func (s *Store) AddJournal(_ context.Context, j *api.Journal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := journalKey{j.UserID, j.MonthYear}
	if _, ok := s.journals[key]; ok {
		return api.ErrConflict
	}
	j.ID = uuid.NewString()
	j.CreatedAt = s.now()
	j.UpdatedAt = j.CreatedAt
	s.journals[key] = *j
	return nil
}

func (s *Store) ListJournals(_ context.Context, userID string) ([]api.Journal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]api.Journal, 0)
	for key, j := range s.journals {
		if key.userID == userID {
			out = append(out, j)
		}
	}
	slices.SortFunc(out, func(a, b api.Journal) int { return strings.Compare(b.MonthYear, a.MonthYear) })
	return out, nil
}

func (s *Store) GetJournal(_ context.Context, userID, monthYear string) (*api.Journal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	j, ok := s.journals[journalKey{userID, monthYear}]
	if !ok {
		return nil, api.ErrNotFound
	}
	return &j, nil
}

func (s *Store) UpdateJournal(_ context.Context, j *api.Journal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := journalKey{j.UserID, j.MonthYear}
	existing, ok := s.journals[key]
	if !ok {
		return api.ErrNotFound
	}
	j.ID = existing.ID
	j.CreatedAt = existing.CreatedAt
	j.UpdatedAt = s.now()
	s.journals[key] = *j
	return nil
}

func (s *Store) DeleteJournal(_ context.Context, userID, monthYear string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := journalKey{userID, monthYear}
	if _, ok := s.journals[key]; !ok {
		return api.ErrNotFound
	}
	delete(s.journals, key)
	return nil
}

func (s *Store) AddSmsTransaction(_ context.Context, t *api.SmsTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t.ID = uuid.NewString()
	t.Status = api.SmsPending
	t.CreatedAt = s.now()
	s.sms[t.ID] = *t
	return nil
}

func (s *Store) GetSmsTransaction(_ context.Context, id string) (*api.SmsTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.sms[id]
	if !ok {
		return nil, api.ErrNotFound
	}
	return &t, nil
}

func (s *Store) ListPendingSmsTransactions(_ context.Context, userID string) ([]api.SmsTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]api.SmsTransaction, 0)
	for _, t := range s.sms {
		if t.UserID == userID && t.Status == api.SmsPending {
			out = append(out, t)
		}
	}
	slices.SortFunc(out, func(a, b api.SmsTransaction) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (s *Store) ApproveSmsTransaction(_ context.Context, a api.Approval, e *api.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.sms[a.TransactionID]
	if !ok || t.UserID != a.UserID {
		return api.ErrNotFound
	}
	if t.Status != api.SmsPending {
		return api.ErrConflict
	}
	if _, ok := s.categories[a.CategoryID]; !ok {
		return api.ErrNotFound
	}

	s.insertExpenseLocked(e)

	key := merchantKey{a.UserID, t.MerchantName}
	entry, ok := s.merchants[key]
	if !ok {
		entry.createdAt = s.now()
	}
	entry.categoryID = a.CategoryID
	s.merchants[key] = entry

	t.Status = api.SmsApproved
	t.Reason = a.Reason
	s.sms[t.ID] = t
	return nil
}

func (s *Store) RejectSmsTransaction(_ context.Context, id, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.sms[id]
	if !ok {
		return api.ErrNotFound
	}
	if t.Status != api.SmsPending {
		return api.ErrConflict
	}
	t.Status = api.SmsRejected
	t.Reason = reason
	s.sms[id] = t
	return nil
}

func (s *Store) LookupMerchantCategory(_ context.Context, userID, merchantName string) (*api.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.merchants[merchantKey{userID, merchantName}]
	if !ok {
		return nil, api.ErrNotFound
	}
	c := s.categories[entry.categoryID]
	return &c, nil
}

func (s *Store) ListMerchantCategories(_ context.Context, userID string) ([]api.MerchantCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]api.MerchantCategory, 0)
	for key, entry := range s.merchants {
		if key.userID != userID {
			continue
		}
		out = append(out, api.MerchantCategory{
			UserID:       key.userID,
			MerchantName: key.merchant,
			Category:     s.categories[entry.categoryID],
			CreatedAt:    entry.createdAt,
		})
	}
	slices.SortFunc(out, func(a, b api.MerchantCategory) int { return strings.Compare(a.MerchantName, b.MerchantName) })
	return out, nil
}

func (s *Store) MonthlyTotals(_ context.Context, userID string) ([]api.MonthTotal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	totals := make(map[[2]int]float64)
	for _, e := range s.expenses {
		if e.UserID != userID {
			continue
		}
		d := e.Date.UTC()
		totals[[2]int{d.Year(), int(d.Month())}] += e.Amount
	}

	out := make([]api.MonthTotal, 0, len(totals))
	for k, total := range totals {
		out = append(out, api.MonthTotal{Year: k[0], Month: k[1], Total: total})
	}
	slices.SortFunc(out, func(a, b api.MonthTotal) int {
		if c := cmp.Compare(b.Year, a.Year); c != 0 {
			return c
		}
		return cmp.Compare(a.Month, b.Month)
	})
	return out, nil
}

func (s *Store) CategoryTotals(_ context.Context, userID string, year int) ([]api.CategoryTotal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	totals := make(map[string]float64)
	for _, e := range s.expenses {
		if e.UserID != userID || (year != 0 && e.Date.UTC().Year() != year) {
			continue
		}
		totals[e.Category] += e.Amount
	}

	out := make([]api.CategoryTotal, 0, len(totals))
	for category, total := range totals {
		out = append(out, api.CategoryTotal{Category: category, Total: total})
	}
	slices.SortFunc(out, func(a, b api.CategoryTotal) int {
		if c := cmp.Compare(b.Total, a.Total); c != 0 {
			return c
		}
		return strings.Compare(a.Category, b.Category)
	})
	return out, nil
}

func (s *Store) RecentExpenses(_ context.Context, userID string, limit int) ([]api.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.userExpensesLocked(userID)
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

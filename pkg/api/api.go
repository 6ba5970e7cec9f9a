// Package api defines the core interfaces and data structures for finlog.
package api

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned by stores when a record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned by stores when a unique constraint would be violated.
	ErrConflict = errors.New("conflict")
)

// User is the profile of an authenticated user.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// Category is a named expense category shared by all users.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Expense is a single spending record.
type Expense struct {
	ID       string    `json:"id"`
	UserID   string    `json:"userId"`
	Amount   float64   `json:"amount"`
	Category string    `json:"category"`
	Reason   string    `json:"reason"`
	Date     time.Time `json:"date"`
	// MerchantName is set for expenses created from approved SMS transactions.
	MerchantName string    `json:"merchantName,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// SmsStatus is the review state of an imported SMS transaction.
type SmsStatus string

const (
	SmsPending  SmsStatus = "pending"
	SmsApproved SmsStatus = "approved"
	SmsRejected SmsStatus = "rejected"
)

// SmsTransaction is a transaction parsed from a bank SMS awaiting review.
type SmsTransaction struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId"`
	Amount          float64   `json:"amount"`
	MerchantName    string    `json:"merchantName"`
	TransactionDate time.Time `json:"transactionDate"`
	// Category is the suggestion learned from earlier approvals, if any.
	Category  *Category `json:"category,omitempty"`
	SmsText   string    `json:"smsText"`
	Status    SmsStatus `json:"status"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// MerchantCategory maps a merchant name to a category for one user.
type MerchantCategory struct {
	UserID       string    `json:"userId"`
	MerchantName string    `json:"merchantName"`
	Category     Category  `json:"category"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Rating is a 1-10 score with an optional note.
type Rating struct {
	Rating int    `json:"rating"`
	Note   string `json:"note"`
}

// Journal is a user's reflection for one month.
type Journal struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	MonthYear      string    `json:"monthYear"`
	MonthHighlight string    `json:"monthHighlight"`
	SkillsLearnt   string    `json:"skillsLearnt"`
	Productivity   Rating    `json:"productivity"`
	Health         Rating    `json:"health"`
	Mood           Rating    `json:"mood"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// MonthTotal is the amount spent in one calendar month of a year.
type MonthTotal struct {
	Year  int     `json:"-"`
	Month int     `json:"month"`
	Total float64 `json:"total"`
}

// CategoryTotal is the amount spent in one category.
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

// Approval is the outcome of reviewing a pending SMS transaction.
type Approval struct {
	TransactionID string
	UserID        string
	CategoryID    string
	Reason        string
}

// UserStore manages user profiles.
type UserStore interface {
	CreateUser(ctx context.Context, u *User) error
	GetUser(ctx context.Context, id string) (*User, error)
}

// ExpenseStore manages expenses and categories.
type ExpenseStore interface {
	// AddExpense upserts the expense's category by name and stores the expense.
	AddExpense(ctx context.Context, e *Expense) error
	ListExpenses(ctx context.Context, userID string) ([]Expense, error)
	GetExpense(ctx context.Context, id string) (*Expense, error)
	DeleteExpense(ctx context.Context, id string) error
	ListCategories(ctx context.Context) ([]Category, error)
	GetCategory(ctx context.Context, id string) (*Category, error)
}

// JournalStore manages monthly journal entries.
type JournalStore interface {
	// AddJournal returns ErrConflict when the user already has an entry for the month.
	AddJournal(ctx context.Context, j *Journal) error
	ListJournals(ctx context.Context, userID string) ([]Journal, error)
	GetJournal(ctx context.Context, userID, monthYear string) (*Journal, error)
	UpdateJournal(ctx context.Context, j *Journal) error
	DeleteJournal(ctx context.Context, userID, monthYear string) error
}

// SmsStore manages imported SMS transactions and the merchant category map.
type SmsStore interface {
	AddSmsTransaction(ctx context.Context, t *SmsTransaction) error
	GetSmsTransaction(ctx context.Context, id string) (*SmsTransaction, error)
	ListPendingSmsTransactions(ctx context.Context, userID string) ([]SmsTransaction, error)
	// ApproveSmsTransaction creates the expense, learns the merchant category
	// and marks the transaction approved as a single unit.
	ApproveSmsTransaction(ctx context.Context, a Approval, e *Expense) error
	RejectSmsTransaction(ctx context.Context, id, reason string) error
	// LookupMerchantCategory returns ErrNotFound when the merchant has no mapping.
	LookupMerchantCategory(ctx context.Context, userID, merchantName string) (*Category, error)
	ListMerchantCategories(ctx context.Context, userID string) ([]MerchantCategory, error)
}

// DashboardStore provides spending aggregates.
type DashboardStore interface {
	// MonthlyTotals returns per (year, month) totals for months with expenses.
	MonthlyTotals(ctx context.Context, userID string) ([]MonthTotal, error)
	// CategoryTotals returns per category totals, highest first. A zero year
	// means all time.
	CategoryTotals(ctx context.Context, userID string, year int) ([]CategoryTotal, error)
	RecentExpenses(ctx context.Context, userID string, limit int) ([]Expense, error)
}

// Store is the full persistence surface used by the HTTP server.
type Store interface {
	UserStore
	ExpenseStore
	JournalStore
	SmsStore
	DashboardStore
	Ping(ctx context.Context) error
	Close()
}

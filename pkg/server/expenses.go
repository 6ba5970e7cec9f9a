package server

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ArionMiles/finlog/pkg/api"
	"github.com/ArionMiles/finlog/pkg/export"
)

const (
	msgExpenseNotFound = "Expense not found"
	msgNotAuthorized   = "User not authorized"
	msgExpenseRemoved  = "Expense removed"
	msgInvalidDate     = "Invalid date"
	msgInvalidFormat   = "Unsupported export format"
)

type expenseRequest struct {
	Amount   float64 `json:"amount" binding:"required,gt=0"`
	Category string  `json:"category" binding:"required"`
	Reason   string  `json:"reason"`
	Date     string  `json:"date" binding:"required"`
}

// parseExpenseDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates,
// the latter at UTC midnight.
func parseExpenseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, s)
}

func (s *Server) addExpense(c *gin.Context) {
	var req expenseRequest
	if !bindJSON(c, &req) {
		return
	}

	category := strings.TrimSpace(req.Category)
	if category == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": msgInvalidRequest,
			"errors":  []string{"category must satisfy required"},
		})
		return
	}
	date, err := parseExpenseDate(strings.TrimSpace(req.Date))
	if err != nil {
		message(c, http.StatusBadRequest, msgInvalidDate)
		return
	}

	expense := &api.Expense{
		UserID:   userID(c),
		Amount:   req.Amount,
		Category: category,
		Reason:   req.Reason,
		Date:     date,
	}
	if err := s.store.AddExpense(c.Request.Context(), expense); err != nil {
		s.serverError(c, fmt.Errorf("adding expense: %w", err))
		return
	}

	c.JSON(http.StatusOK, expense)
}

func (s *Server) listExpenses(c *gin.Context) {
	expenses, err := s.store.ListExpenses(c.Request.Context(), userID(c))
	if err != nil {
		s.serverError(c, fmt.Errorf("listing expenses: %w", err))
		return
	}
	c.JSON(http.StatusOK, expenses)
}

func (s *Server) deleteExpense(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		message(c, http.StatusNotFound, msgExpenseNotFound)
		return
	}

	ctx := c.Request.Context()
	expense, err := s.store.GetExpense(ctx, id)
	switch {
	case errors.Is(err, api.ErrNotFound):
		message(c, http.StatusNotFound, msgExpenseNotFound)
		return
	case err != nil:
		s.serverError(c, fmt.Errorf("loading expense: %w", err))
		return
	}

	if expense.UserID != userID(c) {
		message(c, http.StatusUnauthorized, msgNotAuthorized)
		return
	}

	if err := s.store.DeleteExpense(ctx, id); err != nil && !errors.Is(err, api.ErrNotFound) {
		s.serverError(c, fmt.Errorf("deleting expense: %w", err))
		return
	}
	message(c, http.StatusOK, msgExpenseRemoved)
}

// exportExpenses sends all of the caller's expenses as a file attachment.
func (s *Server) exportExpenses(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		message(c, http.StatusBadRequest, msgInvalidFormat)
		return
	}

	expenses, err := s.store.ListExpenses(c.Request.Context(), userID(c))
	if err != nil {
		s.serverError(c, fmt.Errorf("listing expenses: %w", err))
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, expenses); err != nil {
		s.serverError(c, fmt.Errorf("exporting expenses: %w", err))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.FileName(s.now())))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

func (s *Server) listCategories(c *gin.Context) {
	categories, err := s.store.ListCategories(c.Request.Context())
	if err != nil {
		s.serverError(c, fmt.Errorf("listing categories: %w", err))
		return
	}
	c.JSON(http.StatusOK, categories)
}

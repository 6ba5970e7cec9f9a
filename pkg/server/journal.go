package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ArionMiles/finlog/pkg/api"
)

const (
	msgJournalExists   = "Journal entry already exists for this month"
	msgJournalNotFound = "Journal entry not found"
	msgJournalRemoved  = "Journal entry removed"
)

type ratingRequest struct {
	Rating int    `json:"rating" binding:"required,min=1,max=10"`
	Note   string `json:"note"`
}

func (r ratingRequest) rating() api.Rating {
	return api.Rating{Rating: r.Rating, Note: r.Note}
}

// journalFields are the editable parts of an entry.
type journalFields struct {
	MonthHighlight string        `json:"monthHighlight" binding:"required"`
	SkillsLearnt   string        `json:"skillsLearnt" binding:"required"`
	Productivity   ratingRequest `json:"productivity"`
	Health         ratingRequest `json:"health"`
	Mood           ratingRequest `json:"mood"`
}

type journalRequest struct {
	MonthYear string `json:"monthYear" binding:"required,datetime=2006-01"`
	journalFields
}

func (f journalFields) journal(userID, monthYear string) *api.Journal {
	return &api.Journal{
		UserID:         userID,
		MonthYear:      monthYear,
		MonthHighlight: f.MonthHighlight,
		SkillsLearnt:   f.SkillsLearnt,
		Productivity:   f.Productivity.rating(),
		Health:         f.Health.rating(),
		Mood:           f.Mood.rating(),
	}
}

func validMonthYear(s string) bool {
	_, err := time.Parse("2006-01", s)
	return err == nil
}

func (s *Server) addJournal(c *gin.Context) {
	var req journalRequest
	if !bindJSON(c, &req) {
		return
	}

	j := req.journal(userID(c), req.MonthYear)
	err := s.store.AddJournal(c.Request.Context(), j)
	switch {
	case errors.Is(err, api.ErrConflict):
		message(c, http.StatusBadRequest, msgJournalExists)
		return
	case err != nil:
		s.serverError(c, fmt.Errorf("adding journal: %w", err))
		return
	}
	c.JSON(http.StatusOK, j)
}

func (s *Server) listJournals(c *gin.Context) {
	journals, err := s.store.ListJournals(c.Request.Context(), userID(c))
	if err != nil {
		s.serverError(c, fmt.Errorf("listing journals: %w", err))
		return
	}
	c.JSON(http.StatusOK, journals)
}

func (s *Server) getJournal(c *gin.Context) {
	monthYear := c.Param("monthYear")
	if !validMonthYear(monthYear) {
		message(c, http.StatusNotFound, msgJournalNotFound)
		return
	}

	j, err := s.store.GetJournal(c.Request.Context(), userID(c), monthYear)
	switch {
	case errors.Is(err, api.ErrNotFound):
		message(c, http.StatusNotFound, msgJournalNotFound)
		return
	case err != nil:
		s.serverError(c, fmt.Errorf("loading journal: %w", err))
		return
	}
	c.JSON(http.StatusOK, j)
}

// updateJournal replaces every editable field of the month's entry.
func (s *Server) updateJournal(c *gin.Context) {
	monthYear := c.Param("monthYear")
	if !validMonthYear(monthYear) {
		message(c, http.StatusNotFound, msgJournalNotFound)
		return
	}

	var req journalFields
	if !bindJSON(c, &req) {
		return
	}

	j := req.journal(userID(c), monthYear)
	err := s.store.UpdateJournal(c.Request.Context(), j)
	switch {
	case errors.Is(err, api.ErrNotFound):
		message(c, http.StatusNotFound, msgJournalNotFound)
		return
	case err != nil:
		s.serverError(c, fmt.Errorf("updating journal: %w", err))
		return
	}
	c.JSON(http.StatusOK, j)
}

func (s *Server) deleteJournal(c *gin.Context) {
	err := s.store.DeleteJournal(c.Request.Context(), userID(c), c.Param("monthYear"))
	switch {
	case errors.Is(err, api.ErrNotFound):
		message(c, http.StatusNotFound, msgJournalNotFound)
		return
	case err != nil:
		s.serverError(c, fmt.Errorf("deleting journal: %w", err))
		return
	}
	message(c, http.StatusOK, msgJournalRemoved)
}

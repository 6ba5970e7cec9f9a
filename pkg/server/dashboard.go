package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ArionMiles/finlog/pkg/api"
)

const (
	msgUserNotFound = "User not found"
	msgInvalidYear  = "Invalid year"
)

func (s *Server) overview(c *gin.Context) {
	ov, err := s.dashboard.Overview(c.Request.Context(), userID(c))
	switch {
	case errors.Is(err, api.ErrNotFound):
		message(c, http.StatusNotFound, msgUserNotFound)
		return
	case err != nil:
		s.serverError(c, fmt.Errorf("building dashboard: %w", err))
		return
	}
	c.JSON(http.StatusOK, ov)
}

func (s *Server) yearView(c *gin.Context) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		message(c, http.StatusBadRequest, msgInvalidYear)
		return
	}

	view, err := s.dashboard.Year(c.Request.Context(), userID(c), year)
	if err != nil {
		s.serverError(c, fmt.Errorf("building year dashboard: %w", err))
		return
	}
	c.JSON(http.StatusOK, view)
}

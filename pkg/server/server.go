// Package server exposes the finlog HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/ArionMiles/finlog/pkg/api"
	"github.com/ArionMiles/finlog/pkg/dashboard"
	"github.com/ArionMiles/finlog/pkg/sms"
)

// Response messages shared by several handlers.
const (
	msgServerError    = "Server error"
	msgInvalidRequest = "Invalid request"
)

// healthTimeout bounds the store ping made by /healthz.
const healthTimeout = 2 * time.Second

// Config holds configuration for the HTTP server.
type Config struct {
	// JWTSecret verifies HS256 tokens. Required.
	JWTSecret string
	// Location is used to build dates parsed from SMS text. Defaults to UTC.
	Location *time.Location
	// Now is the server clock. Defaults to time.Now.
	Now func() time.Time
	// Metrics receives request and SMS counters. A fresh registry is used when nil.
	Metrics *Metrics
}

// Server routes HTTP requests to the store.
type Server struct {
	store     api.Store
	dashboard *dashboard.Service
	parser    *sms.Parser
	metrics   *Metrics
	secret    []byte
	now       func() time.Time
	logger    *slog.Logger
	router    *gin.Engine
}

var registerTagNames sync.Once

// New creates a server backed by store. It does not start listening;
// serve Handler() with an http.Server.
func New(store api.Store, cfg Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Metrics == nil {
		cfg.Metrics = NewMetrics()
	}

	registerTagNames.Do(useJSONFieldNames)

	s := &Server{
		store:     store,
		dashboard: dashboard.NewService(store, cfg.Now),
		parser:    sms.New(sms.Config{Location: cfg.Location, Now: cfg.Now}),
		metrics:   cfg.Metrics,
		secret:    []byte(cfg.JWTSecret),
		now:       cfg.Now,
		logger:    logger,
		router:    gin.New(),
	}
	s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	r := s.router
	r.Use(requestLogger(s.logger), s.metrics.middleware(), gin.CustomRecovery(func(c *gin.Context, rec any) {
		s.logger.Error("panic in handler", "route", c.FullPath(), "panic", rec)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": msgServerError})
	}))

	r.GET("/healthz", s.health)
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	authed := r.Group("/api", s.authenticate())

	smsRoutes := authed.Group("/sms")
	smsRoutes.POST("/parse", s.parseSms)
	smsRoutes.GET("/pending", s.pendingSms)
	smsRoutes.POST("/approve", s.approveSms)
	smsRoutes.POST("/reject", s.rejectSms)
	smsRoutes.GET("/merchants", s.merchantCategories)

	expenses := authed.Group("/expenses")
	expenses.POST("", s.addExpense)
	expenses.GET("", s.listExpenses)
	expenses.GET("/export", s.exportExpenses)
	expenses.DELETE("/:id", s.deleteExpense)

	authed.GET("/categories", s.listCategories)

	dash := authed.Group("/dashboard")
	dash.GET("", s.overview)
	dash.GET("/year/:year", s.yearView)

	journal := authed.Group("/journal")
	journal.POST("", s.addJournal)
	journal.GET("", s.listJournals)
	journal.GET("/:monthYear", s.getJournal)
	journal.PUT("/:monthYear", s.updateJournal)
	journal.DELETE("/:monthYear", s.deleteJournal)
}

func (s *Server) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		s.logger.Warn("health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func message(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"message": msg})
}

// serverError logs err and replies with a generic 500.
func (s *Server) serverError(c *gin.Context, err error) {
	s.logger.Error("request failed",
		"method", c.Request.Method,
		"route", c.FullPath(),
		"error", err,
	)
	message(c, http.StatusInternalServerError, msgServerError)
}

// bindJSON decodes and validates the request body into dst. On failure it
// writes a 400 response and returns false.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": msgInvalidRequest,
			"errors":  validationMessages(err),
		})
		return false
	}
	return true
}

func validationMessages(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}

	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			out = append(out, fmt.Sprintf("%s must satisfy %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
			continue
		}
		out = append(out, fmt.Sprintf("%s must satisfy %s", fe.Namespace(), fe.Tag()))
	}
	return out
}

// useJSONFieldNames makes validation errors report JSON field names.
func useJSONFieldNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
}

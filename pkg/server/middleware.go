package server

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const userIDKey = "finlog_user_id"

const (
	msgNoToken      = "No token, authorization denied"
	msgInvalidToken = "Token is not valid"
)

// tokenClaims is the payload issued by the auth service: {"user":{"id":"..."}}.
type tokenClaims struct {
	User struct {
		ID string `json:"id"`
	} `json:"user"`
	jwt.RegisteredClaims
}

// authenticate verifies the request token and stores the user id in the
// gin context. The token is read from x-auth-token, then from a Bearer
// Authorization header.
func (s *Server) authenticate() gin.HandlerFunc {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	keyFunc := func(*jwt.Token) (any, error) { return s.secret, nil }

	return func(c *gin.Context) {
		raw := c.GetHeader("x-auth-token")
		if raw == "" {
			if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
				raw = strings.TrimPrefix(h, "Bearer ")
			}
		}
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": msgNoToken})
			return
		}

		var claims tokenClaims
		token, err := parser.ParseWithClaims(raw, &claims, keyFunc)
		if err != nil || !token.Valid || claims.User.ID == "" {
			s.logger.Debug("rejected token", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": msgInvalidToken})
			return
		}

		c.Set(userIDKey, claims.User.ID)
		c.Next()
	}
}

// userID returns the authenticated user id.
func userID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// requestLogger logs one line per request once it completes.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		switch {
		case status >= http.StatusInternalServerError:
			level = slog.LevelError
		case status >= http.StatusBadRequest:
			level = slog.LevelWarn
		}

		logger.LogAttrs(c.Request.Context(), level, "http request",
			slog.String("method", c.Request.Method),
			slog.String("route", routeLabel(c)),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
		)
	}
}

// routeLabel is the matched route pattern, so path parameters do not
// multiply log and metric cardinality.
func routeLabel(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "unmatched"
}

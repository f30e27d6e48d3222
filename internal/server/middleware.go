package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"card-market/internal/auth"
	"card-market/internal/metrics"
	"card-market/services/market/helpers"
	"card-market/utils"

	"github.com/gin-gonic/gin"
)

const (
	HeaderRequestID = "X-Request-ID"
	ctxKeyRequestID = "request_id"
)

// RequestIDMiddleware reuses the caller's request ID or assigns a new one
func RequestIDMiddleware(c *gin.Context) {
	rid := c.GetHeader(HeaderRequestID)
	if rid == "" {
		rid = utils.GenerateID()
	}
	c.Set(ctxKeyRequestID, rid)
	c.Header(HeaderRequestID, rid)
	c.Next()
}

// RequestLoggerMiddleware logs incoming requests with timing
func RequestLoggerMiddleware(c *gin.Context) {
	start := time.Now()

	c.Next() // process request

	fields := map[string]any{
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
		"status":     c.Writer.Status(),
		"latency":    time.Since(start).String(),
		"request_id": c.GetString(ctxKeyRequestID),
	}
	if userID, ok := helpers.CurrentUser(c); ok {
		fields["user_id"] = userID
	}
	utils.Info("HTTP Request", fields)
}

// MetricsMiddleware records request latency per matched route
func MetricsMiddleware(c *gin.Context) {
	start := time.Now()

	c.Next()

	route := c.FullPath()
	if route == "" {
		route = "unmatched"
	}
	metrics.HTTPRequestDuration.
		WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
		Observe(time.Since(start).Seconds())
}

// AuthMiddleware requires a valid bearer token and stores its subject as the caller
func AuthMiddleware(tokens *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortUnauthorized(c, errors.New("missing authorization header"))
			return
		}

		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
			abortUnauthorized(c, errors.New("invalid authorization header format"))
			return
		}

		userID, err := tokens.ValidateToken(token)
		if err != nil {
			abortUnauthorized(c, err)
			return
		}

		c.Set(helpers.UserIDKey, userID)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, err error) {
	utils.JSONError(c, http.StatusUnauthorized, err, "unauthorized")
	c.Abort()
	utils.Warn("AuthMiddleware: request rejected", map[string]any{
		"path":  c.Request.URL.Path,
		"error": err.Error(),
	})
}

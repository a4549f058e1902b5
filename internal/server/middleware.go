package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/ats-scorer/internal/logger"
)

const (
	// RequestIDHeader carries the request ID in both directions.
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// requestID reuses a well-formed caller request ID or generates a new one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set(RequestIDHeader, id)
		c.Next()
	}
}

func requestIDFrom(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(requestIDKey)
}

// requestLogger returns log annotated with the request ID of c.
func requestLogger(log *zap.Logger, c *gin.Context) *zap.Logger {
	return logger.WithFields(log, logger.StringFields(logger.StringField{Key: logger.FieldRequestID, Value: requestIDFrom(c)})...)
}

// accessLog emits one structured entry per request.
func accessLog(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}

		l := requestLogger(log, c)
		if status >= http.StatusInternalServerError {
			l.Warn("request completed", fields...)
			return
		}
		l.Info("request completed", fields...)
	}
}

// recovery turns panics into a 500 response.
func recovery(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				requestLogger(log, c).Error("panic while handling request",
					zap.Any("panic", rec),
					zap.String("path", c.Request.URL.Path),
					zap.Stack("stack"),
				)
				respondError(c, http.StatusInternalServerError, codeInternal, "unexpected server error")
			}
		}()
		c.Next()
	}
}

package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	LoggerKey       = "logger"
	RequestIDHeader = "X-Request-ID"
)

// RequestLogger tags every request with an id, echoed back in the response,
// and stores a logger carrying it for handlers to use.
func RequestLogger(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Header(RequestIDHeader, requestID)
		c.Set(LoggerKey, base.With(
			zap.String("requestId", requestID),
			zap.String("route", c.FullPath()),
		))
		c.Next()
	}
}

// LoggerFrom returns the request-scoped logger set by RequestLogger.
func LoggerFrom(c *gin.Context) (*zap.Logger, bool) {
	v, ok := c.Get(LoggerKey)
	if !ok {
		return nil, false
	}
	logger, ok := v.(*zap.Logger)
	return logger, ok
}

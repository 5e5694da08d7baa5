package handlers

import (
	"bookinghub/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func requestLogger(c *gin.Context) *zap.Logger {
	if logger, ok := middleware.LoggerFrom(c); ok {
		return logger
	}
	return zap.L()
}

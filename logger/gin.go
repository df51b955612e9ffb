package logger

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// Access 访问日志中间件: 方法、路径、状态、耗时、字节数、远端地址
// 不读取请求体
func Access(l *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		l.Info("http_access",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"bytes", c.Writer.Size(),
			"duration_ms", time.Since(start).Milliseconds(),
			"ip", c.ClientIP(),
		)
	}
}

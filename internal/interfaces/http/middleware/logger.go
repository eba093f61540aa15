package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"tbond.backend/pkg/logger"
)

// LoggerMiddleware logs every request except the given probe paths
func LoggerMiddleware(skipPaths ...string) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		if _, ok := skip[path]; ok {
			return
		}
		if raw != "" {
			path = path + "?" + raw
		}

		ctx := c.Request.Context()
		if account := c.GetString(AccountKey); account != "" {
			ctx = logger.WithAccount(ctx, account)
		}
		logger.LogRequest(ctx, c.Request.Method, path, c.Writer.Status(), time.Since(start), c.ClientIP())
	}
}

package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/catering-app/utils"
)

func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		if raw != "" {
			path = path + "?" + raw
		}
		status := c.Writer.Status()

		fields := logrus.Fields{
			"method":  c.Request.Method,
			"status":  status,
			"latency": time.Since(start),
			"ip":      c.ClientIP(),
		}
		if id, ok := UserID(c); ok {
			fields["user"] = id
		}

		if status >= 500 {
			utils.ErrorLogger.WithFields(fields).Error(path)
			return
		}
		utils.InfoLogger.WithFields(fields).Info(path)
	}
}

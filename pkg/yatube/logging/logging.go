package logging

import (
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const serviceName = "yatube"

// global accessible logger
var (
	logger *logrus.Logger
	Log    *logrus.Entry
)

// Tests and tools that never call InitLogger still get a usable logger.
func init() {
	InitLogger("info", "dev")
}

// InitLogger (re)configures the global logger. Production logs are JSON,
// everything else is human readable text on stderr.
func InitLogger(level, env string) {
	logger = logrus.New()
	logger.SetOutput(os.Stderr)

	if env == "prod" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)

	Log = logger.WithFields(logrus.Fields{"service": serviceName, "env": env})
	if err != nil {
		Log.WithField("level", level).Warn("unknown log level, using info")
	}
}

// GinLogger logs one line per request.
func GinLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		entry := Log.WithFields(logrus.Fields{
			"method":    c.Request.Method,
			"path":      path,
			"status":    c.Writer.Status(),
			"latency":   time.Since(start).String(),
			"client_ip": c.ClientIP(),
		})
		if len(c.Errors) > 0 {
			entry.Error(c.Errors.String())
			return
		}
		switch status := c.Writer.Status(); {
		case status >= 500:
			entry.Error("request failed")
		case status >= 400:
			entry.Warn("request rejected")
		default:
			entry.Info("request handled")
		}
	}
}

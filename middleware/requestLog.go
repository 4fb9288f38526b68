package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"pharma-supply/types"
	"pharma-supply/utils"
)

// LogSink receives finished request log entries.
type LogSink interface {
	Log(entry types.LogEntry)
}

// RequestLog queues a sanitized snapshot of every request once the handler
// has written its response. Preflight and scrape requests are skipped.
func RequestLog(sink LogSink) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if c.Method() == fiber.MethodOptions || c.Path() == "/metrics" {
			return err
		}

		entry := utils.CreateSanitizedLogEntry(c, start)
		if u := CurrentUser(c); u != nil {
			entry.UserID = u.ID
		}
		sink.Log(entry)
		return err
	}
}

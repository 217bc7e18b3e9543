package middleware

import (
	"errors"
	"io"
	"time"

	"github.com/go-logr/logr"
	"github.com/gofiber/fiber/v2"

	"tabqa/internal/logging"
)

// Logger logs one structured line per HTTP request with the fields
// request_id, method, path, status and latency (milliseconds).
// Server errors are logged at error level with the handler's error attached.
func Logger(log logr.Logger) fiber.Handler {
	log = log.WithName("http")

	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		rid, _ := c.Locals(RequestIDLocalKey).(string)
		status := statusOf(c, err)
		kv := []any{
			"request_id", rid,
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"latency", float64(time.Since(start).Microseconds()) / 1000,
		}

		if status >= fiber.StatusInternalServerError {
			log.Error(err, "http_request", kv...)
		} else {
			log.Info("http_request", kv...)
		}
		return err
	}
}

// LoggerWithWriter is Logger backed by a JSON logger writing to w.
func LoggerWithWriter(w io.Writer, loc *time.Location) fiber.Handler {
	return Logger(logging.NewWithWriter(w, "info", loc))
}

// statusOf reports the status the client will see. An error returned by the
// handler has not been rendered yet, so its code wins over the response.
func statusOf(c *fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}

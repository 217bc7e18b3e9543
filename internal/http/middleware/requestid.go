package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"tabqa/internal/logging"
)

const (
	// RequestIDHeader is the standard header name used to propagate request IDs.
	RequestIDHeader = "X-Request-ID"
	// RequestIDLocalKey is the key used to store the request ID in Fiber's context locals.
	RequestIDLocalKey = "request_id"
)

const maxRequestIDLen = 128

// RequestID ensures every request has an ID: the incoming X-Request-ID
// header when it is short printable ASCII, otherwise a new UUID. The ID is echoed in the response header and stored
// both in the Fiber locals and in the request's user context, so services
// called with c.UserContext() can read it with logging.RequestID.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(RequestIDHeader)
		if !validRequestID(id) {
			id = uuid.NewString()
		}

		c.Locals(RequestIDLocalKey, id)
		c.SetUserContext(logging.WithRequestID(c.UserContext(), id))
		c.Set(RequestIDHeader, id)

		return c.Next()
	}
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}

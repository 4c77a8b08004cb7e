package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"pollsapi/internal/logger"
)

const (
	// RequestIDHeader is the standard header name used to propagate request IDs.
	RequestIDHeader = "X-Request-ID"
	// RequestIDLocalKey is the key used to store the request ID in Fiber's context locals.
	RequestIDLocalKey = "request_id"
	// RequestIDAttribute tags the request span with the request ID.
	RequestIDAttribute = attribute.Key("http.request_id")
)

// RequestID ensures every request has an ID: the incoming X-Request-ID
// header, or a fresh UUID. The ID is echoed on the response, kept in locals
// for the error envelope and the access log, put on the user context so
// service logs carry it, and set on the active span.
//
// Register it after otelfiber so the span already exists.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		c.Locals(RequestIDLocalKey, id)
		c.Set(RequestIDHeader, id)

		ctx := c.UserContext()
		trace.SpanFromContext(ctx).SetAttributes(RequestIDAttribute.String(id))
		c.SetUserContext(logger.WithRequestID(ctx, id))

		return c.Next()
	}
}

package middleware

import (
	appContext "fieldops/internal/context"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	TraceIDHeader = "X-Trace-ID"

	// CallerIDHeader carries the opaque caller identity set by the
	// external auth layer in front of this service. The core treats it
	// as pass-through data for audit columns, never as business input.
	CallerIDHeader = "X-Caller-Id"

	TraceIDLocalKey  = "traceID"
	CallerIDLocalKey = "callerID"
)

// RequestContext seeds the request's user context with everything the
// layers below read from it: a trace id (taken from the header or
// generated) for log correlation, and the caller identity for the
// audit columns. Rows written by a request with no identity header
// fall back to the system identity.
func (m *Middleware) RequestContext() fiber.Handler {
	return func(c *fiber.Ctx) error {
		traceID := c.Get(TraceIDHeader)
		if traceID == "" {
			traceID = uuid.New().String()
		}

		// Echo the trace id so clients can quote it when reporting.
		c.Set(TraceIDHeader, traceID)
		c.Locals(TraceIDLocalKey, traceID)

		ctx := logger.ContextWithTraceID(c.UserContext(), traceID)

		if identity := c.Get(CallerIDHeader); identity != "" {
			c.Locals(CallerIDLocalKey, identity)
			ctx = appContext.WithCallerIdentity(ctx, identity)
		}

		c.SetUserContext(ctx)
		return c.Next()
	}
}

// GetTraceID retrieves the trace ID from Fiber context
func GetTraceID(c *fiber.Ctx) string {
	if traceID, ok := c.Locals(TraceIDLocalKey).(string); ok {
		return traceID
	}
	return ""
}

// GetCallerIdentity retrieves the caller identity from Fiber context
func GetCallerIdentity(c *fiber.Ctx) string {
	if identity, ok := c.Locals(CallerIDLocalKey).(string); ok {
		return identity
	}
	return ""
}

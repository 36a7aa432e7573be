package middleware

import (
	"net/http/httptest"
	"testing"

	appContext "fieldops/internal/context"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(m *Middleware) (*fiber.App, *string, *string) {
	app := fiber.New()
	app.Use(m.RequestContext())

	var traceID, identity string
	app.Get("/whoami", func(c *fiber.Ctx) error {
		traceID = GetTraceID(c)
		identity = appContext.GetCallerIdentity(c.UserContext())
		return c.SendStatus(fiber.StatusOK)
	})

	return app, &traceID, &identity
}

func TestRequestContext_PropagatesHeaders(t *testing.T) {
	m := &Middleware{}
	app, traceID, identity := newTestApp(m)

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set(TraceIDHeader, "trace-123")
	req.Header.Set(CallerIDHeader, "dispatcher-7")

	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, "trace-123", *traceID)
	assert.Equal(t, "trace-123", resp.Header.Get(TraceIDHeader))
	assert.Equal(t, "dispatcher-7", *identity)
}

func TestRequestContext_GeneratesTraceIDAndDefaultsIdentity(t *testing.T) {
	m := &Middleware{}
	app, traceID, identity := newTestApp(m)

	resp, err := app.Test(httptest.NewRequest("GET", "/whoami", nil))
	require.NoError(t, err)

	// A trace id is minted when the client sends none, and echoed back.
	assert.NotEmpty(t, *traceID)
	assert.Equal(t, *traceID, resp.Header.Get(TraceIDHeader))

	// No identity header: background/audit writes fall back to system.
	assert.Equal(t, appContext.SystemIdentity, *identity)
}

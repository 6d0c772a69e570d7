package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareRecordsRoutePattern(t *testing.T) {
	m := New()
	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/metrics", m.Handler())
	app.Get("/votes/:session", func(c *fiber.Ctx) error {
		return c.SendString(c.Params("session"))
	})

	for _, s := range []string{"41-1", "40-3"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/votes/"+s, nil), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := string(b)
	assert.Contains(t, out, `parliament_http_requests_total{method="GET",route="/votes/:session",status="200"} 2`)
	assert.Contains(t, out, "parliament_http_request_duration_seconds_bucket")
}

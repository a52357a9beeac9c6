package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func doRequest(e *echo.Echo, ip string) int {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderXRealIP, ip)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec.Code
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimiter(60, 2)

	e := echo.New()
	e.Use(rl.RateLimitMiddleware())
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	// Burst of 2 passes, the third is rejected.
	assert.Equal(t, http.StatusOK, doRequest(e, "1.2.3.4"))
	assert.Equal(t, http.StatusOK, doRequest(e, "1.2.3.4"))
	assert.Equal(t, http.StatusTooManyRequests, doRequest(e, "1.2.3.4"))

	// Another IP has its own bucket.
	assert.Equal(t, http.StatusOK, doRequest(e, "5.6.7.8"))
}

func TestGetLimiterReusesBucket(t *testing.T) {
	rl := NewRateLimiter(60, 1)

	first := rl.GetLimiter("1.2.3.4")
	second := rl.GetLimiter("1.2.3.4")
	assert.Same(t, first, second)
}

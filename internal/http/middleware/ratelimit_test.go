package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIPRateLimiter(t *testing.T) {
	l := NewIPRateLimiter(1, 2, nil)
	app := fiber.New()
	app.Post("/upload", l.Handler(), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusCreated) })

	var codes []int
	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest("POST", "/upload", nil))
		require.NoError(t, err)
		codes = append(codes, resp.StatusCode)
		if resp.StatusCode == fiber.StatusTooManyRequests {
			assert.Equal(t, "60", resp.Header.Get(fiber.HeaderRetryAfter))
		}
	}
	assert.Equal(t, []int{fiber.StatusCreated, fiber.StatusCreated, fiber.StatusTooManyRequests}, codes)
}

func TestIPRateLimiter_Evict(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	l := NewIPRateLimiter(60, 1, nil)
	l.now = func() time.Time { return now }

	l.limiterFor("10.0.0.1")
	now = now.Add(10 * time.Minute)
	l.limiterFor("10.0.0.2")

	assert.Equal(t, 1, l.evict(now.Add(-5*time.Minute)))
	assert.Len(t, l.visitors, 1)
	assert.Contains(t, l.visitors, "10.0.0.2")
}

package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// RateLimit creates a per-identity rate limiter. Anonymous requests fall
// back to the client IP.
func RateLimit(identifier string, max int, window time.Duration) fiber.Handler {
	if max <= 0 {
		max = 10
	}
	if window <= 0 {
		window = time.Second
	}

	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			identity := fmt.Sprintf("%v", c.Locals(LocalsUserEmail))
			if identity == "" || identity == "<nil>" {
				identity = c.IP()
			}
			return fmt.Sprintf("%s:%s", identifier, identity)
		},
	})
}

package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// CORS allows cross-origin calls from the frontend origin only. With no
// frontendURL no CORS headers are sent, so browsers refuse every cross-origin call.
func CORS(frontendURL string) fiber.Handler {
	if frontendURL == "" {
		return func(c *fiber.Ctx) error {
			return c.Next()
		}
	}
	return cors.New(cors.Config{
		AllowOrigins: frontendURL,
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	})
}

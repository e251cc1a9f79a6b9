// Package docs serves the OpenAPI description of the products API and a
// Swagger UI page pointing at it.
package docs

import (
	_ "embed"

	"github.com/gofiber/fiber/v2"
)

//go:embed openapi.json
var openAPISpec []byte

//go:embed swagger.html
var swaggerPage []byte

// RegisterRoutes mounts GET /docs and GET /docs/openapi.json on router.
func RegisterRoutes(router fiber.Router) {
	docs := router.Group("/docs")
	docs.Get("/openapi.json", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
		return c.Send(openAPISpec)
	})
	docs.Get("/", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.Send(swaggerPage)
	})
}

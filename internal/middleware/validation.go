package middleware

import (
	"productsapi/internal/models"
	"productsapi/internal/validation"

	"github.com/gofiber/fiber/v2"
)

const (
	localViolations   = "violations"
	localProductID    = "product_id"
	localProductInput = "product_input"
)

// ProductIDParam validates the ":id" route parameter and keeps the parsed id for the handler.
func ProductIDParam(v *validation.Validator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, violations := v.ProductID(c.Params("id"))
		if len(violations) > 0 {
			addViolations(c, violations)
		} else {
			c.Locals(localProductID, id)
		}
		return c.Next()
	}
}

// ProductBody validates the JSON request body under the given mode.
func ProductBody(v *validation.Validator, mode validation.Mode) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, violations := v.ProductBody(c.Body(), mode)
		if len(violations) > 0 {
			addViolations(c, violations)
		} else {
			c.Locals(localProductInput, input)
		}
		return c.Next()
	}
}

// HandleInputErrors stops the chain with 400 when any earlier rule reported a violation.
func HandleInputErrors(c *fiber.Ctx) error {
	violations := Violations(c)
	if len(violations) > 0 {
		validation.SortViolations(violations)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  violations,
		})
	}
	return c.Next()
}

// Violations returns the violations collected so far for the request.
func Violations(c *fiber.Ctx) []validation.Violation {
	violations, _ := c.Locals(localViolations).([]validation.Violation)
	return violations
}

// ProductID returns the id accepted by ProductIDParam.
func ProductID(c *fiber.Ctx) int64 {
	id, _ := c.Locals(localProductID).(int64)
	return id
}

// ProductInput returns the body accepted by ProductBody.
func ProductInput(c *fiber.Ctx) models.ProductInput {
	input, _ := c.Locals(localProductInput).(models.ProductInput)
	return input
}

func addViolations(c *fiber.Ctx, violations []validation.Violation) {
	c.Locals(localViolations, append(Violations(c), violations...))
}

package handlers

import (
	"errors"
	"log/slog"

	"productsapi/internal/middleware"
	"productsapi/internal/models"
	"productsapi/internal/services"
	"productsapi/internal/validation"

	"github.com/gofiber/fiber/v2"
)

const (
	msgProductNotFound = "Producto no encontrado."
	msgProductDeleted  = "Producto Eliminado."
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service   *services.ProductService
	validator *validation.Validator
	logger    *slog.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, validator *validation.Validator, logger *slog.Logger) *ProductHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProductHandler{
		service:   service,
		validator: validator,
		logger:    logger,
	}
}

// RegisterRoutes registers the product routes. Each route runs its validation
// rules, then HandleInputErrors, then the handler.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	idParam := middleware.ProductIDParam(h.validator)

	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/:id",
		idParam,
		middleware.HandleInputErrors,
		h.HandleGetProductByID,
	)
	productRoutes.Post("/",
		middleware.ProductBody(h.validator, validation.ModeCreate),
		middleware.HandleInputErrors,
		h.HandleCreateProduct,
	)
	productRoutes.Put("/:id",
		idParam,
		middleware.ProductBody(h.validator, validation.ModeUpdate),
		middleware.HandleInputErrors,
		h.HandleUpdateProduct,
	)
	productRoutes.Patch("/:id",
		idParam,
		middleware.HandleInputErrors,
		h.HandleToggleAvailability,
	)
	productRoutes.Delete("/:id",
		idParam,
		middleware.HandleInputErrors,
		h.HandleDeleteProduct,
	)
}

// HandleGetProducts retrieves all products, newest first.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.ListProducts(c.UserContext())
	if err != nil {
		return h.fail(c, err, "Error al obtener los productos")
	}
	return c.JSON(fiber.Map{"data": products})
}

// HandleGetProductByID retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	product, err := h.service.GetProduct(c.UserContext(), middleware.ProductID(c))
	if err != nil {
		return h.fail(c, err, "Error al obtener el producto")
	}
	return c.JSON(fiber.Map{"data": product})
}

// HandleCreateProduct creates a new product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	product, err := h.service.CreateProduct(c.UserContext(), middleware.ProductInput(c))
	if err != nil {
		return h.fail(c, err, "Error al crear el producto")
	}
	return c.JSON(fiber.Map{"data": product})
}

// HandleUpdateProduct replaces name, price and availability of a product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	product, err := h.service.UpdateProduct(c.UserContext(), middleware.ProductID(c), middleware.ProductInput(c))
	if err != nil {
		return h.fail(c, err, "Error al actualizar el producto")
	}
	return c.JSON(fiber.Map{"data": product})
}

// HandleToggleAvailability flips the availability of a product.
func (h *ProductHandler) HandleToggleAvailability(c *fiber.Ctx) error {
	product, err := h.service.ToggleAvailability(c.UserContext(), middleware.ProductID(c))
	if err != nil {
		return h.fail(c, err, "Error al actualizar la disponibilidad del producto")
	}
	return c.JSON(fiber.Map{"data": product})
}

// HandleDeleteProduct deletes a product by its ID.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	if err := h.service.DeleteProduct(c.UserContext(), middleware.ProductID(c)); err != nil {
		return h.fail(c, err, "Error al eliminar el producto")
	}
	return c.JSON(fiber.Map{"data": msgProductDeleted})
}

// fail maps service errors: not found is 404, invalid input is 400 and
// anything else is a storage failure answered with 500.
func (h *ProductHandler) fail(c *fiber.Ctx, err error, message string) error {
	switch {
	case errors.Is(err, models.ErrProductNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": msgProductNotFound,
		})
	case errors.Is(err, models.ErrInvalidProduct):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors": []validation.Violation{{
				Location: validation.LocationBody,
				Code:     validation.CodeInvalidValue,
				Message:  err.Error(),
			}},
		})
	}

	h.logger.Error(message,
		slog.String("method", c.Method()),
		slog.String("path", c.Path()),
		slog.Any("error", err),
	)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}

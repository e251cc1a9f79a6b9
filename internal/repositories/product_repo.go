package repositories

import (
	"context"

	"productsapi/internal/models"
)

// ProductRepository defines the interface for product data access.
// Operations taking an id return models.ErrProductNotFound when it does not resolve.
type ProductRepository interface {
	List(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id uint) (*models.Product, error)
	Create(ctx context.Context, input models.ProductInput) (*models.Product, error)
	Update(ctx context.Context, id uint, input models.ProductInput) (*models.Product, error)
	ToggleAvailability(ctx context.Context, id uint) (*models.Product, error)
	Delete(ctx context.Context, id uint) error
}

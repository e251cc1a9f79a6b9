package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"productsapi/internal/models"
	"productsapi/internal/repositories"
)

const (
	EventProductCreated             = "product.created"
	EventProductUpdated             = "product.updated"
	EventProductAvailabilityToggled = "product.availability_toggled"
	EventProductDeleted             = "product.deleted"
)

// EventPublisher delivers product events to a message broker.
type EventPublisher interface {
	Publish(eventType string, payload interface{}) error
}

// ProductEvent is the payload published after every product mutation.
type ProductEvent struct {
	Type       string          `json:"type"`
	ProductID  uint            `json:"product_id"`
	Product    *models.Product `json:"product,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo      repositories.ProductRepository
	publisher EventPublisher
	logger    *slog.Logger
}

// NewProductService creates a new ProductService. publisher may be nil, in which
// case no events are published.
func NewProductService(repo repositories.ProductRepository, publisher EventPublisher, logger *slog.Logger) *ProductService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProductService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// ListProducts retrieves all products, newest first.
func (s *ProductService) ListProducts(ctx context.Context) ([]models.Product, error) {
	return s.repo.List(ctx)
}

// GetProduct retrieves a single product by its ID.
func (s *ProductService) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	key, err := storageID(id)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, key)
}

// CreateProduct stores a new product; availability defaults to true.
func (s *ProductService) CreateProduct(ctx context.Context, input models.ProductInput) (*models.Product, error) {
	product, err := s.repo.Create(ctx, input)
	if err != nil {
		return nil, err
	}
	s.publish(EventProductCreated, product.ID, product)
	return product, nil
}

// UpdateProduct replaces name, price and availability of a product.
func (s *ProductService) UpdateProduct(ctx context.Context, id int64, input models.ProductInput) (*models.Product, error) {
	key, err := storageID(id)
	if err != nil {
		return nil, err
	}
	product, err := s.repo.Update(ctx, key, input)
	if err != nil {
		return nil, err
	}
	s.publish(EventProductUpdated, product.ID, product)
	return product, nil
}

// ToggleAvailability flips the availability of a product.
func (s *ProductService) ToggleAvailability(ctx context.Context, id int64) (*models.Product, error) {
	key, err := storageID(id)
	if err != nil {
		return nil, err
	}
	product, err := s.repo.ToggleAvailability(ctx, key)
	if err != nil {
		return nil, err
	}
	s.publish(EventProductAvailabilityToggled, product.ID, product)
	return product, nil
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(ctx context.Context, id int64) error {
	key, err := storageID(id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, key); err != nil {
		return err
	}
	s.publish(EventProductDeleted, key, nil)
	return nil
}

// storageID maps a path id onto the repository key. Storage assigns ids from 1,
// so anything lower is reported as not found without a lookup.
func storageID(id int64) (uint, error) {
	if id < 1 {
		return 0, fmt.Errorf("product with ID %d: %w", id, models.ErrProductNotFound)
	}
	return uint(id), nil
}

// publish is best-effort: the mutation already happened, so failures are only logged.
func (s *ProductService) publish(eventType string, id uint, product *models.Product) {
	if s.publisher == nil {
		return
	}
	event := ProductEvent{
		Type:       eventType,
		ProductID:  id,
		Product:    product,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.publisher.Publish(eventType, event); err != nil {
		s.logger.Warn("failed to publish product event",
			slog.String("type", eventType),
			slog.Uint64("product_id", uint64(id)),
			slog.Any("error", err),
		)
	}
}

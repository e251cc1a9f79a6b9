package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"productsapi/internal/models"
)

// MemoryProductRepository is an in-memory implementation of ProductRepository.
type MemoryProductRepository struct {
	products map[uint]models.Product
	lastID   uint
	mu       sync.RWMutex
}

// NewMemoryProductRepository creates a new instance of MemoryProductRepository.
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		products: make(map[uint]models.Product),
	}
}

// List returns all products, newest first.
func (r *MemoryProductRepository) List(_ context.Context) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		productList = append(productList, p)
	}
	sort.Slice(productList, func(i, j int) bool {
		return productList[i].ID > productList[j].ID
	})
	return productList, nil
}

// GetByID returns a product by its ID.
func (r *MemoryProductRepository) GetByID(_ context.Context, id uint) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product with ID %d: %w", id, models.ErrProductNotFound)
	}
	return &product, nil
}

// Create adds a new product. Ids are never reused, even after deletion.
func (r *MemoryProductRepository) Create(_ context.Context, input models.ProductInput) (*models.Product, error) {
	if err := input.Validate(false); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastID++
	now := time.Now()
	product := models.Product{
		ID:           r.lastID,
		Name:         input.Name,
		Price:        input.Price,
		Availability: input.AvailabilityOrDefault(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.products[product.ID] = product
	return &product, nil
}

// Update replaces the writable fields of an existing product.
func (r *MemoryProductRepository) Update(_ context.Context, id uint, input models.ProductInput) (*models.Product, error) {
	if err := input.Validate(true); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product with ID %d: %w", id, models.ErrProductNotFound)
	}
	product.Name = input.Name
	product.Price = input.Price
	product.Availability = *input.Availability
	product.UpdatedAt = time.Now()
	r.products[id] = product
	return &product, nil
}

// ToggleAvailability negates the availability of an existing product.
func (r *MemoryProductRepository) ToggleAvailability(_ context.Context, id uint) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product with ID %d: %w", id, models.ErrProductNotFound)
	}
	product.Availability = !product.Availability
	product.UpdatedAt = time.Now()
	r.products[id] = product
	return &product, nil
}

// Delete removes a product by its ID.
func (r *MemoryProductRepository) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return fmt.Errorf("product with ID %d: %w", id, models.ErrProductNotFound)
	}
	delete(r.products, id)
	return nil
}

package repositories

import (
	"context"
	"errors"
	"fmt"

	"productsapi/internal/models"

	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// List retrieves all products, newest first.
func (r *GORMProductRepository) List(ctx context.Context) ([]models.Product, error) {
	products := []models.Product{}
	if err := r.db.WithContext(ctx).Order("id DESC").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// GetByID retrieves a single product by its ID.
func (r *GORMProductRepository) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	return findProduct(r.db.WithContext(ctx), id)
}

// Create inserts a new product and returns it with the id assigned by the database.
func (r *GORMProductRepository) Create(ctx context.Context, input models.ProductInput) (*models.Product, error) {
	if err := input.Validate(false); err != nil {
		return nil, err
	}
	product := models.Product{
		Name:         input.Name,
		Price:        input.Price,
		Availability: input.AvailabilityOrDefault(),
	}
	if err := r.db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return &product, nil
}

// Update replaces name, price and availability of an existing product.
func (r *GORMProductRepository) Update(ctx context.Context, id uint, input models.ProductInput) (*models.Product, error) {
	if err := input.Validate(true); err != nil {
		return nil, err
	}

	var updated *models.Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product, err := findProduct(tx, id)
		if err != nil {
			return err
		}
		// A map keeps false availability from being skipped as a zero value.
		res := tx.Model(product).Updates(map[string]interface{}{
			"name":         input.Name,
			"price":        input.Price,
			"availability": *input.Availability,
		})
		if res.Error != nil {
			return fmt.Errorf("failed to update product %d: %w", id, res.Error)
		}
		updated, err = findProduct(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ToggleAvailability negates the stored availability in a single statement.
func (r *GORMProductRepository) ToggleAvailability(ctx context.Context, id uint) (*models.Product, error) {
	var toggled *models.Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product, err := findProduct(tx, id)
		if err != nil {
			return err
		}
		res := tx.Model(product).Update("availability", gorm.Expr("NOT availability"))
		if res.Error != nil {
			return fmt.Errorf("failed to toggle availability of product %d: %w", id, res.Error)
		}
		toggled, err = findProduct(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toggled, nil
}

// Delete removes a product by its ID.
func (r *GORMProductRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findProduct(tx, id); err != nil {
			return err
		}
		res := tx.Delete(&models.Product{}, id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete product %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			// Removed concurrently between lookup and delete.
			return fmt.Errorf("product with ID %d: %w", id, models.ErrProductNotFound)
		}
		return nil
	})
}

func findProduct(db *gorm.DB, id uint) (*models.Product, error) {
	var product models.Product
	if err := db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product with ID %d: %w", id, models.ErrProductNotFound)
		}
		return nil, fmt.Errorf("failed to get product by ID %d: %w", id, err)
	}
	return &product, nil
}

package models

import (
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Product represents a product in the store.
type Product struct {
	ID           uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Name         string    `json:"name" gorm:"size:100;not null"`
	Price        float64   `json:"price" gorm:"not null"`
	Availability bool      `json:"availability" gorm:"not null"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TableName pins the table created by the migrations.
func (Product) TableName() string {
	return "products"
}

// ProductInput carries the writable fields of a product.
// A nil Availability means the caller did not supply it.
type ProductInput struct {
	Name         string  `json:"name" validate:"required,max=100"`
	Price        float64 `json:"price" validate:"gt=0"`
	Availability *bool   `json:"availability"`
}

// Validate checks the input against the product invariants. When requireAvailability
// is set, a missing availability is rejected as well.
func (in ProductInput) Validate(requireAvailability bool) error {
	if err := validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidProduct, err)
	}
	if math.IsInf(in.Price, 0) || math.IsNaN(in.Price) {
		return fmt.Errorf("%w: price must be a finite number", ErrInvalidProduct)
	}
	if requireAvailability && in.Availability == nil {
		return fmt.Errorf("%w: availability is required", ErrInvalidProduct)
	}
	return nil
}

// AvailabilityOrDefault returns the supplied availability, or true when it was omitted.
func (in ProductInput) AvailabilityOrDefault() bool {
	if in.Availability == nil {
		return true
	}
	return *in.Availability
}

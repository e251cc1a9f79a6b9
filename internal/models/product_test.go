package models

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProductInput_Validate(t *testing.T) {
	available := true

	tests := []struct {
		name                string
		input               ProductInput
		requireAvailability bool
		wantErr             bool
	}{
		{"valid create", ProductInput{Name: "Monitor", Price: 10}, false, false},
		{"valid update", ProductInput{Name: "Monitor", Price: 10, Availability: &available}, true, false},
		{"empty name", ProductInput{Name: "", Price: 10}, false, true},
		{"name too long", ProductInput{Name: strings.Repeat("a", 101), Price: 10}, false, true},
		{"name at limit", ProductInput{Name: strings.Repeat("a", 100), Price: 10}, false, false},
		{"zero price", ProductInput{Name: "Monitor", Price: 0}, false, true},
		{"negative price", ProductInput{Name: "Monitor", Price: -5}, false, true},
		{"infinite price", ProductInput{Name: "Monitor", Price: math.Inf(1)}, false, true},
		{"nan price", ProductInput{Name: "Monitor", Price: math.NaN()}, false, true},
		{"update without availability", ProductInput{Name: "Monitor", Price: 10}, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.input.Validate(tt.requireAvailability)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidProduct)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProductInput_AvailabilityOrDefault(t *testing.T) {
	unavailable := false
	assert.True(t, ProductInput{}.AvailabilityOrDefault())
	assert.False(t, ProductInput{Availability: &unavailable}.AvailabilityOrDefault())
}

// internal/services/pricing_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dario9661s/bundles-sub000/internal/models"
)

func pricingBundle(discountType models.DiscountType, value float64) *models.Bundle {
	max := 3
	return &models.Bundle{
		ID:            "b1",
		Title:         "Snack Pack",
		DiscountType:  discountType,
		DiscountValue: value,
		Steps: []models.BundleStep{{
			ID:            "s1",
			Title:         "Pick snacks",
			Position:      1,
			MinSelections: 2,
			MaxSelections: &max,
			Required:      true,
		}},
	}
}

func twoItemSelection() []PriceSelection {
	return []PriceSelection{{
		StepID: "s1",
		Items: []PriceItem{
			{ProductID: "p1", Quantity: 1, UnitPrice: "10.00"},
			{ProductID: "p2", Quantity: 1, UnitPrice: "5.50"},
		},
	}}
}

func TestPercentageDiscount(t *testing.T) {
	s := NewPricingService()

	breakdown, err := s.CalculatePrice(pricingBundle(models.DiscountTypePercentage, 10), twoItemSelection())
	require.NoError(t, err)
	assert.Equal(t, "15.50", breakdown.Subtotal)
	assert.Equal(t, "1.55", breakdown.Discount)
	assert.Equal(t, "13.95", breakdown.Total)
}

func TestFixedDiscountClampedToSubtotal(t *testing.T) {
	s := NewPricingService()

	breakdown, err := s.CalculatePrice(pricingBundle(models.DiscountTypeFixed, 100), twoItemSelection())
	require.NoError(t, err)
	assert.Equal(t, "15.50", breakdown.Discount)
	assert.Equal(t, "0.00", breakdown.Total)
}

func TestTotalDiscountSellsAtFixedPrice(t *testing.T) {
	s := NewPricingService()

	breakdown, err := s.CalculatePrice(pricingBundle(models.DiscountTypeTotal, 12), twoItemSelection())
	require.NoError(t, err)
	assert.Equal(t, "3.50", breakdown.Discount)
	assert.Equal(t, "12.00", breakdown.Total)
}

func TestTotalAboveSubtotalMeansNoDiscount(t *testing.T) {
	s := NewPricingService()

	breakdown, err := s.CalculatePrice(pricingBundle(models.DiscountTypeTotal, 99), twoItemSelection())
	require.NoError(t, err)
	assert.Equal(t, "0.00", breakdown.Discount)
	assert.Equal(t, "15.50", breakdown.Total)
}

func TestQuantityMultipliesUnitPrice(t *testing.T) {
	s := NewPricingService()

	breakdown, err := s.CalculatePrice(pricingBundle(models.DiscountTypePercentage, 0), []PriceSelection{{
		StepID: "s1",
		Items:  []PriceItem{{ProductID: "p1", Quantity: 3, UnitPrice: "2.99"}},
	}})
	require.NoError(t, err)
	assert.Equal(t, "8.97", breakdown.Subtotal)
}

func TestRequiredStepBelowMinimumFails(t *testing.T) {
	s := NewPricingService()

	_, err := s.CalculatePrice(pricingBundle(models.DiscountTypePercentage, 10), []PriceSelection{{
		StepID: "s1",
		Items:  []PriceItem{{ProductID: "p1", Quantity: 1, UnitPrice: "10.00"}},
	}})

	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestSelectionAboveMaximumFails(t *testing.T) {
	s := NewPricingService()

	_, err := s.CalculatePrice(pricingBundle(models.DiscountTypePercentage, 10), []PriceSelection{{
		StepID: "s1",
		Items:  []PriceItem{{ProductID: "p1", Quantity: 4, UnitPrice: "1.00"}},
	}})
	assert.Error(t, err)
}

func TestUnparsablePriceFails(t *testing.T) {
	s := NewPricingService()

	_, err := s.CalculatePrice(pricingBundle(models.DiscountTypePercentage, 10), []PriceSelection{{
		StepID: "s1",
		Items: []PriceItem{
			{ProductID: "p1", Quantity: 1, UnitPrice: "ten"},
			{ProductID: "p2", Quantity: 1, UnitPrice: "1.00"},
		},
	}})
	assert.Error(t, err)
}

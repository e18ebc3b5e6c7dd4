// internal/services/pricing_service.go
package services

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/dario9661s/bundles-sub000/internal/models"
	"github.com/dario9661s/bundles-sub000/internal/utils"
)

// PricingService previews the price of a selection against a bundle's
// discount rule. The authoritative calculation happens in the
// checkout-time function; this mirror exists so the admin UI can show
// merchants what a selection would cost.
type PricingService struct{}

type PriceItem struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
	UnitPrice string `json:"unit_price" validate:"required"`
}

type PriceSelection struct {
	StepID string      `json:"step_id" validate:"required"`
	Items  []PriceItem `json:"items" validate:"dive"`
}

type PriceBreakdown struct {
	Subtotal      string              `json:"subtotal"`
	Discount      string              `json:"discount"`
	Total         string              `json:"total"`
	DiscountType  models.DiscountType `json:"discount_type"`
	DiscountValue float64             `json:"discount_value"`
}

func NewPricingService() *PricingService {
	return &PricingService{}
}

// CalculatePrice validates the selection against each step's bounds and
// applies the bundle's discount rule with exact decimal arithmetic.
func (s *PricingService) CalculatePrice(bundle *models.Bundle, selections []PriceSelection) (*PriceBreakdown, error) {
	for i := range selections {
		if err := utils.ValidateStruct(&selections[i]); err != nil {
			return nil, validationErrorf(fmt.Sprintf("invalid selection: %v", err))
		}
	}

	byStep := make(map[string]int, len(selections))
	subtotal := decimal.Zero

	for _, sel := range selections {
		for _, item := range sel.Items {
			price, err := decimal.NewFromString(item.UnitPrice)
			if err != nil {
				return nil, validationErrorf(fmt.Sprintf("unparsable unit price %q", item.UnitPrice))
			}
			if price.IsNegative() {
				return nil, validationErrorf("unit prices must not be negative")
			}
			subtotal = subtotal.Add(price.Mul(decimal.NewFromInt(int64(item.Quantity))))
			byStep[sel.StepID] += item.Quantity
		}
	}

	for _, step := range bundle.Steps {
		count := byStep[step.ID]
		if step.Required && count < step.MinSelections {
			return nil, validationErrorf(fmt.Sprintf(
				"step %q requires at least %d selections", step.Title, step.MinSelections))
		}
		if count > 0 && count < step.MinSelections {
			return nil, validationErrorf(fmt.Sprintf(
				"step %q requires at least %d selections", step.Title, step.MinSelections))
		}
		if step.MaxSelections != nil && count > *step.MaxSelections {
			return nil, validationErrorf(fmt.Sprintf(
				"step %q allows at most %d selections", step.Title, *step.MaxSelections))
		}
	}

	discount := s.discountAmount(bundle, subtotal)
	total := subtotal.Sub(discount)

	return &PriceBreakdown{
		Subtotal:      subtotal.StringFixed(2),
		Discount:      discount.StringFixed(2),
		Total:         total.StringFixed(2),
		DiscountType:  bundle.DiscountType,
		DiscountValue: bundle.DiscountValue,
	}, nil
}

// discountAmount never exceeds the subtotal, so totals cannot go
// negative.
func (s *PricingService) discountAmount(bundle *models.Bundle, subtotal decimal.Decimal) decimal.Decimal {
	value := decimal.NewFromFloat(bundle.DiscountValue)

	var discount decimal.Decimal
	switch bundle.DiscountType {
	case models.DiscountTypePercentage:
		discount = subtotal.Mul(value).Div(decimal.NewFromInt(100))
	case models.DiscountTypeFixed:
		discount = value
	case models.DiscountTypeTotal:
		// The bundle sells for a fixed total; the discount is whatever
		// is left above it.
		discount = subtotal.Sub(value)
	default:
		return decimal.Zero
	}

	if discount.IsNegative() {
		return decimal.Zero
	}
	if discount.GreaterThan(subtotal) {
		return subtotal
	}
	return discount.Round(2)
}

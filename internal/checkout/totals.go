package checkout

import (
	"github.com/shopease/shopease-engine/internal/cart"
	"github.com/shopease/shopease-engine/pkg/config"
	pkgerrors "github.com/shopease/shopease-engine/pkg/errors"
	"github.com/shopspring/decimal"
)

// Totals is the order summary handed to the payment step. It is computed
// on demand and never persisted.
type Totals struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DeliveryFee    decimal.Decimal `json:"deliveryFee"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	Total          decimal.Decimal `json:"total"`
	PromoCode      string          `json:"promoCode,omitempty"`
	PromoApplied   bool            `json:"promoApplied"`
}

// Calculator computes checkout totals from cart lines and a promo code.
// It is deterministic and side-effect free; both inputs are read-only.
type Calculator struct {
	flatFee decimal.Decimal
	promos  map[string]decimal.Decimal
}

// NewCalculator parses the configured flat delivery fee and promo registry.
func NewCalculator(cfg config.CheckoutConfig) (*Calculator, error) {
	fee, err := cfg.FlatDeliveryFee()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "checkout config")
	}
	registry, err := cfg.PromoRegistry()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "checkout config")
	}
	return &Calculator{flatFee: fee, promos: registry}, nil
}

// ComputeTotals derives the full summary from scratch on every call.
// An empty cart yields all zeros regardless of the promo input; an unknown
// promo code yields a zero discount with PromoApplied false, never an error.
func (c *Calculator) ComputeTotals(lines []cart.Line, promoInput string) Totals {
	if len(lines) == 0 {
		return Totals{
			Subtotal:       decimal.Zero,
			DeliveryFee:    decimal.Zero,
			DiscountAmount: decimal.Zero,
			Total:          decimal.Zero,
		}
	}

	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	code, rate, applied := c.resolvePromo(promoInput)
	discount := decimal.Zero
	if applied {
		discount = subtotal.Mul(rate).Round(0)
	}

	total := subtotal.Add(c.flatFee).Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return Totals{
		Subtotal:       subtotal,
		DeliveryFee:    c.flatFee,
		DiscountAmount: discount,
		Total:          total,
		PromoCode:      code,
		PromoApplied:   applied,
	}
}

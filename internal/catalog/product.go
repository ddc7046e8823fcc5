package catalog

import "github.com/shopspring/decimal"

// Product is the catalog entry consumed by the cart and wishlist engines.
// The catalog itself (search, filtering, sorting) lives in the view layer;
// the engines only depend on this shape.
type Product struct {
	ID            string           `json:"id"`
	Title         string           `json:"title"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"originalPrice,omitempty"`
	Category      string           `json:"category,omitempty"`
	Description   string           `json:"description,omitempty"`
	Image         string           `json:"image,omitempty"`
}

// Valid reports whether the product can enter cart or wishlist state.
func (p Product) Valid() bool {
	return p.ID != "" && !p.Price.IsNegative()
}

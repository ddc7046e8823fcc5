package checkout

import (
	"strings"

	"github.com/shopspring/decimal"
)

// NormalizePromoCode canonicalizes user promo input before registry lookup.
func NormalizePromoCode(input string) string {
	return strings.ToUpper(strings.TrimSpace(input))
}

// resolvePromo looks the normalized code up in the registry. Unknown codes
// resolve to a zero rate with applied=false; the code itself is still
// returned so the view can echo what was rejected.
func (c *Calculator) resolvePromo(input string) (code string, rate decimal.Decimal, applied bool) {
	code = NormalizePromoCode(input)
	if code == "" {
		return "", decimal.Zero, false
	}
	rate, ok := c.promos[code]
	if !ok {
		return code, decimal.Zero, false
	}
	return code, rate, true
}

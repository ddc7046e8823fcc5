package checkout

import (
	"testing"

	"github.com/shopease/shopease-engine/internal/cart"
	"github.com/shopease/shopease-engine/pkg/config"
	pkgerrors "github.com/shopease/shopease-engine/pkg/errors"
	"github.com/shopease/shopease-engine/pkg/enums"
	"github.com/shopspring/decimal"
)

func newTestCalculator(t *testing.T) *Calculator {
	t.Helper()
	calc, err := NewCalculator(config.CheckoutConfig{
		DeliveryFee: "50",
		PromoCodes:  "SHOP10:0.10,FESTIVE25:0.25",
	})
	if err != nil {
		t.Fatalf("NewCalculator() error: %v", err)
	}
	return calc
}

func line(price int64, qty int) cart.Line {
	return cart.Line{ProductID: "p", UnitPrice: decimal.NewFromInt(price), Quantity: qty}
}

func assertAmount(t *testing.T, label string, got decimal.Decimal, want int64) {
	t.Helper()
	if !got.Equal(decimal.NewFromInt(want)) {
		t.Fatalf("%s = %s, want %d", label, got, want)
	}
}

func TestComputeTotalsWithPromo(t *testing.T) {
	t.Parallel()
	calc := newTestCalculator(t)

	totals := calc.ComputeTotals([]cart.Line{line(199, 2), line(999, 1)}, "SHOP10")
	assertAmount(t, "subtotal", totals.Subtotal, 1397)
	assertAmount(t, "deliveryFee", totals.DeliveryFee, 50)
	assertAmount(t, "discountAmount", totals.DiscountAmount, 140)
	assertAmount(t, "total", totals.Total, 1307)
	if !totals.PromoApplied || totals.PromoCode != "SHOP10" {
		t.Fatalf("expected promo applied, got %+v", totals)
	}
}

func TestComputeTotalsEmptyCartIsAllZeros(t *testing.T) {
	t.Parallel()
	calc := newTestCalculator(t)

	totals := calc.ComputeTotals(nil, "SHOP10")
	assertAmount(t, "subtotal", totals.Subtotal, 0)
	assertAmount(t, "deliveryFee", totals.DeliveryFee, 0)
	assertAmount(t, "discountAmount", totals.DiscountAmount, 0)
	assertAmount(t, "total", totals.Total, 0)
	if totals.PromoApplied {
		t.Fatal("promo must not apply to an empty cart")
	}
}

func TestComputeTotalsUnknownPromoIsZeroDiscount(t *testing.T) {
	t.Parallel()
	calc := newTestCalculator(t)

	totals := calc.ComputeTotals([]cart.Line{line(100, 1)}, "NOPE50")
	assertAmount(t, "discountAmount", totals.DiscountAmount, 0)
	assertAmount(t, "total", totals.Total, 150)
	if totals.PromoApplied {
		t.Fatal("unknown promo must not report applied")
	}
	if totals.PromoCode != "NOPE50" {
		t.Fatalf("expected rejected code echoed, got %q", totals.PromoCode)
	}
}

func TestComputeTotalsNormalizesPromoInput(t *testing.T) {
	t.Parallel()
	calc := newTestCalculator(t)

	totals := calc.ComputeTotals([]cart.Line{line(1000, 1)}, "  shop10 ")
	if !totals.PromoApplied || totals.PromoCode != "SHOP10" {
		t.Fatalf("expected normalized promo applied, got %+v", totals)
	}
	assertAmount(t, "discountAmount", totals.DiscountAmount, 100)
}

func TestComputeTotalsClampsNegativeTotal(t *testing.T) {
	t.Parallel()
	calc, err := NewCalculator(config.CheckoutConfig{
		DeliveryFee: "0",
		PromoCodes:  "FULL:1.0",
	})
	if err != nil {
		t.Fatalf("NewCalculator() error: %v", err)
	}

	// Rounding the discount up past the subtotal must floor the total at
	// zero, never go negative.
	half := cart.Line{ProductID: "p", UnitPrice: decimal.NewFromFloat(0.5), Quantity: 1}
	totals := calc.ComputeTotals([]cart.Line{half}, "FULL")
	if totals.Total.IsNegative() {
		t.Fatalf("total went negative: %s", totals.Total)
	}
	assertAmount(t, "total", totals.Total, 0)
}

func TestComputeTotalsIsDeterministic(t *testing.T) {
	t.Parallel()
	calc := newTestCalculator(t)
	lines := []cart.Line{line(199, 2), line(999, 1)}

	first := calc.ComputeTotals(lines, "FESTIVE25")
	second := calc.ComputeTotals(lines, "FESTIVE25")
	if !first.Total.Equal(second.Total) || !first.DiscountAmount.Equal(second.DiscountAmount) {
		t.Fatalf("repeated computation diverged: %+v vs %+v", first, second)
	}
}

func TestNewCalculatorRejectsBadConfig(t *testing.T) {
	t.Parallel()
	_, err := NewCalculator(config.CheckoutConfig{DeliveryFee: "-5", PromoCodes: ""})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestValidateAddressReportsFieldFailures(t *testing.T) {
	t.Parallel()
	err := ValidateAddress(Address{FullName: "Asha Rao", Phone: "12345", City: "Pune"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	failures, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("expected field map details, got %T", typed.Details())
	}
	for _, field := range []string{"phone", "line1", "pincode"} {
		if _, present := failures[field]; !present {
			t.Fatalf("expected failure for %s, got %v", field, failures)
		}
	}
	if _, present := failures["city"]; present {
		t.Fatalf("city was valid, got %v", failures)
	}
}

func TestValidateAddressAcceptsCompleteForm(t *testing.T) {
	t.Parallel()
	err := ValidateAddress(Address{
		FullName: "Asha Rao",
		Phone:    "9876543210",
		Line1:    "14 MG Road, Flat 3B",
		City:     "Pune",
		Pincode:  "411001",
	})
	if err != nil {
		t.Fatalf("ValidateAddress() error: %v", err)
	}
}

func TestValidatePaymentCardRequiresDetails(t *testing.T) {
	t.Parallel()
	err := ValidatePayment(Payment{Method: enums.PaymentMethodCard})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	err = ValidatePayment(Payment{
		Method: enums.PaymentMethodCard,
		Card: &CardDetails{
			Number:     "4111111111111111",
			HolderName: "Asha Rao",
			Expiry:     "12/29",
			CVV:        "123",
		},
	})
	if err != nil {
		t.Fatalf("ValidatePayment() error: %v", err)
	}
}

func TestValidatePaymentNonCardMethodsNeedNoDetails(t *testing.T) {
	t.Parallel()
	for _, method := range []enums.PaymentMethod{enums.PaymentMethodUPI, enums.PaymentMethodCOD} {
		if err := ValidatePayment(Payment{Method: method}); err != nil {
			t.Fatalf("method %s: unexpected error %v", method, err)
		}
	}
}

func TestValidatePaymentRejectsUnknownMethod(t *testing.T) {
	t.Parallel()
	err := ValidatePayment(Payment{Method: enums.PaymentMethod("cheque")})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

package checkout

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	pkgerrors "github.com/shopease/shopease-engine/pkg/errors"
	"github.com/shopease/shopease-engine/pkg/enums"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Address is the delivery address submitted at checkout.
type Address struct {
	FullName string `json:"fullName" validate:"required,min=2"`
	Phone    string `json:"phone" validate:"required,numeric,len=10"`
	Line1    string `json:"address" validate:"required,min=5"`
	City     string `json:"city" validate:"required"`
	Pincode  string `json:"pincode" validate:"required,numeric,len=6"`
}

// CardDetails is the card payment form. Only consulted when the payment
// method is card.
type CardDetails struct {
	Number     string `json:"number" validate:"required,credit_card"`
	HolderName string `json:"holderName" validate:"required,min=2"`
	Expiry     string `json:"expiry" validate:"required,len=5"`
	CVV        string `json:"cvv" validate:"required,numeric,min=3,max=4"`
}

// Payment is the payment selection submitted at checkout.
type Payment struct {
	Method enums.PaymentMethod `json:"method"`
	Card   *CardDetails        `json:"card,omitempty"`
}

// ValidateAddress checks the address form. Failures report which fields
// failed without touching any state; the caller keeps its prior input.
func ValidateAddress(addr Address) error {
	if err := validate.Struct(addr); err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "address is incomplete").
			WithDetails(fieldFailures(err))
	}
	return nil
}

// ValidatePayment checks the payment selection. Card payments require the
// full card form; upi and cod carry no extra fields.
func ValidatePayment(payment Payment) error {
	if !payment.Method.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method").
			WithDetails(map[string]string{"method": "must be one of card, upi, cod"})
	}
	if payment.Method != enums.PaymentMethodCard {
		return nil
	}
	if payment.Card == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "card details are required").
			WithDetails(map[string]string{"card": "required for card payments"})
	}
	if err := validate.Struct(payment.Card); err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "card details are invalid").
			WithDetails(fieldFailures(err))
	}
	return nil
}

// fieldFailures flattens validator output into a field→constraint map the
// view layer can render next to each input.
func fieldFailures(err error) map[string]string {
	failures := map[string]string{}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		failures["_"] = err.Error()
		return failures
	}
	for _, fe := range verrs {
		failures[strings.ToLower(fe.Field()[:1])+fe.Field()[1:]] = fe.Tag()
	}
	return failures
}

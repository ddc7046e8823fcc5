package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/shopease/shopease-engine/api/responses"
	"github.com/shopease/shopease-engine/internal/cart"
	"github.com/shopease/shopease-engine/internal/checkout"
	pkgerrors "github.com/shopease/shopease-engine/pkg/errors"
	"github.com/shopease/shopease-engine/pkg/logger"
)

type totalsPayload struct {
	PromoCode string `json:"promoCode"`
}

// CheckoutTotals computes the order summary for the current cart. The
// result is transient: it is recomputed on every call and never stored.
func CheckoutTotals(engine *cart.Engine, calc *checkout.Calculator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var payload totalsPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body"))
			return
		}

		responses.WriteSuccess(w, calc.ComputeTotals(engine.State().Lines, payload.PromoCode))
	}
}

// CheckoutValidateAddress checks the delivery address form.
func CheckoutValidateAddress(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var addr checkout.Address
		if err := json.NewDecoder(r.Body).Decode(&addr); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body"))
			return
		}

		if err := checkout.ValidateAddress(addr); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "valid"})
	}
}

// CheckoutValidatePayment checks the payment selection.
func CheckoutValidatePayment(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var payment checkout.Payment
		if err := json.NewDecoder(r.Body).Decode(&payment); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body"))
			return
		}

		if err := checkout.ValidatePayment(payment); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "valid"})
	}
}

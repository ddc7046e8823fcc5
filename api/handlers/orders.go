package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shopease/shopease-engine/internal/apiclient"

	"github.com/shopease/shopease-engine/api/responses"
	"github.com/shopease/shopease-engine/internal/cart"
	"github.com/shopease/shopease-engine/internal/checkout"
	"github.com/shopease/shopease-engine/internal/orders"
	pkgerrors "github.com/shopease/shopease-engine/pkg/errors"
	"github.com/shopease/shopease-engine/pkg/logger"
)

type placeOrderPayload struct {
	Address   checkout.Address `json:"address"`
	Payment   checkout.Payment `json:"payment"`
	PromoCode string           `json:"promoCode"`
}

// OrderPlace validates the checkout forms, recomputes totals from the live
// cart, and submits the order. The cart is cleared only after the order is
// accepted; any failure leaves it intact for retry.
func OrderPlace(engine *cart.Engine, calc *checkout.Calculator, svc *orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var payload placeOrderPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body"))
			return
		}

		state := engine.State()
		orderID, err := svc.Place(ctx, orders.PlaceInput{
			Lines:   state.Lines,
			Address: payload.Address,
			Payment: payload.Payment,
			Totals:  calc.ComputeTotals(state.Lines, payload.PromoCode),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		engine.Clear(ctx)
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{"orderId": orderID})
	}
}

// OrderGet fetches one order by ID.
func OrderGet(svc *orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		record, err := svc.Get(ctx, chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, record)
	}
}

// OrderWatch streams order status updates as newline-delimited JSON until
// the order reaches a terminal status or the client disconnects. The view
// layer reads one record per line instead of polling itself.
func OrderWatch(svc *orders.Service, interval time.Duration, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		flusher, ok := w.(http.Flusher)
		if !ok {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "streaming unsupported"))
			return
		}

		w.Header().Set("Content-Type", "application/x-ndjson")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		updates := make(chan apiclient.OrderRecord, 1)
		watcher := svc.Watch(ctx, chi.URLParam(r, "orderId"), interval, func(record apiclient.OrderRecord) {
			select {
			case updates <- record:
			default:
			}
		})
		defer watcher.Stop()

		enc := json.NewEncoder(w)
		for {
			select {
			case <-ctx.Done():
				return
			case record := <-updates:
				if err := enc.Encode(record); err != nil {
					return
				}
				flusher.Flush()
			case <-watcher.Done():
				// Drain the update delivered just before the watcher exited.
				select {
				case record := <-updates:
					if err := enc.Encode(record); err != nil {
						return
					}
					flusher.Flush()
				default:
				}
				return
			}
		}
	}
}

// OrderCancel requests cancellation of one order.
func OrderCancel(svc *orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		orderID := chi.URLParam(r, "orderId")
		if err := svc.Cancel(ctx, orderID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"orderId": orderID, "status": "cancellation requested"})
	}
}

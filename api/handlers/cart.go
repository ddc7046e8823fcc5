package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shopease/shopease-engine/api/responses"
	"github.com/shopease/shopease-engine/internal/cart"
	"github.com/shopease/shopease-engine/internal/catalog"
	pkgerrors "github.com/shopease/shopease-engine/pkg/errors"
	"github.com/shopease/shopease-engine/pkg/logger"
)

type addCartLinePayload struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

type setQuantityPayload struct {
	Quantity int `json:"quantity"`
}

// CartState returns the current cart snapshot.
func CartState(engine *cart.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, engine.State())
	}
}

// CartAdd adds a product to the cart, merging with an existing line.
func CartAdd(engine *cart.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var payload addCartLinePayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body"))
			return
		}

		if err := engine.AddLine(ctx, payload.Product, payload.Quantity); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, engine.State())
	}
}

// CartSetQuantity updates one line's quantity, clamping to at least one.
func CartSetQuantity(engine *cart.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var payload setQuantityPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body"))
			return
		}

		engine.SetQuantity(ctx, chi.URLParam(r, "productId"), payload.Quantity)
		responses.WriteSuccess(w, engine.State())
	}
}

// CartRemove deletes one line from the cart.
func CartRemove(engine *cart.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		engine.RemoveLine(r.Context(), chi.URLParam(r, "productId"))
		responses.WriteSuccess(w, engine.State())
	}
}

// CartClear empties the cart.
func CartClear(engine *cart.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		engine.Clear(r.Context())
		responses.WriteSuccess(w, engine.State())
	}
}

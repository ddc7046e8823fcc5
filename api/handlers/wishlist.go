package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shopease/shopease-engine/api/responses"
	"github.com/shopease/shopease-engine/internal/catalog"
	"github.com/shopease/shopease-engine/internal/wishlist"
	pkgerrors "github.com/shopease/shopease-engine/pkg/errors"
	"github.com/shopease/shopease-engine/pkg/logger"
)

type wishlistItemPayload struct {
	Product catalog.Product `json:"product"`
}

// WishlistState returns the current saved-product set.
func WishlistState(engine *wishlist.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, engine.State())
	}
}

// WishlistAdd saves a product; saving a duplicate is a no-op.
func WishlistAdd(engine *wishlist.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var payload wishlistItemPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body"))
			return
		}

		if err := engine.Add(ctx, payload.Product); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, engine.State())
	}
}

// WishlistToggle flips a product's membership.
func WishlistToggle(engine *wishlist.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var payload wishlistItemPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body"))
			return
		}

		if err := engine.Toggle(ctx, payload.Product); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, engine.State())
	}
}

// WishlistRemove drops a product; removing an absent product is a no-op.
func WishlistRemove(engine *wishlist.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		engine.Remove(r.Context(), chi.URLParam(r, "productId"))
		responses.WriteSuccess(w, engine.State())
	}
}

// WishlistClear empties the saved-product set.
func WishlistClear(engine *wishlist.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		engine.Clear(r.Context())
		responses.WriteSuccess(w, engine.State())
	}
}

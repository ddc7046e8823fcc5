package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/shopease/shopease-engine/api/responses"
	"github.com/shopease/shopease-engine/internal/apiclient"
	"github.com/shopease/shopease-engine/internal/session"
	pkgerrors "github.com/shopease/shopease-engine/pkg/errors"
	"github.com/shopease/shopease-engine/pkg/logger"
)

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionState returns the current session snapshot.
func SessionState(manager *session.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, manager.Snapshot())
	}
}

// SessionLogin authenticates against the storefront API.
func SessionLogin(manager *session.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var payload loginPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body"))
			return
		}
		if payload.Email == "" || payload.Password == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required"))
			return
		}

		if err := manager.Login(ctx, payload.Email, payload.Password); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, manager.Snapshot())
	}
}

// SessionRegister creates an account without authenticating the session.
func SessionRegister(manager *session.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var input apiclient.RegisterInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body"))
			return
		}
		if input.Name == "" || input.Email == "" || input.Password == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "name, email, and password are required"))
			return
		}

		if err := manager.Register(ctx, input); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{"status": "registered"})
	}
}

// SessionLogout clears the session and its persisted document.
func SessionLogout(manager *session.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		manager.Logout(r.Context())
		responses.WriteSuccess(w, manager.Snapshot())
	}
}

// SessionRefresh exchanges the current token for a fresh pair.
func SessionRefresh(manager *session.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if err := manager.Refresh(ctx); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, manager.Snapshot())
	}
}

// SessionAcknowledgeExpired collapses the Expired phase once the view has
// shown its notice.
func SessionAcknowledgeExpired(manager *session.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		manager.AcknowledgeExpired()
		responses.WriteSuccess(w, manager.Snapshot())
	}
}

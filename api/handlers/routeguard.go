package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/shopease/shopease-engine/api/responses"
	"github.com/shopease/shopease-engine/internal/routeguard"
	"github.com/shopease/shopease-engine/internal/session"
	pkgerrors "github.com/shopease/shopease-engine/pkg/errors"
	"github.com/shopease/shopease-engine/pkg/enums"
	"github.com/shopease/shopease-engine/pkg/logger"
)

type evaluateRoutePayload struct {
	Path         string   `json:"path"`
	AuthLevel    string   `json:"authLevel"`
	AllowedRoles []string `json:"allowedRoles"`
}

// RouteEvaluate gates one view entry against the current session.
func RouteEvaluate(manager *session.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var payload evaluateRoutePayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body"))
			return
		}

		level := enums.AuthLevelPublic
		if payload.AuthLevel != "" {
			parsed, err := enums.ParseAuthLevel(payload.AuthLevel)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid auth level"))
				return
			}
			level = parsed
		}

		roles := make([]enums.UserRole, 0, len(payload.AllowedRoles))
		for _, raw := range payload.AllowedRoles {
			role, err := enums.ParseUserRole(raw)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role"))
				return
			}
			roles = append(roles, role)
		}

		decision := routeguard.Evaluate(manager.Snapshot(), routeguard.Requirement{
			Path:         payload.Path,
			AuthLevel:    level,
			AllowedRoles: roles,
		})
		responses.WriteSuccess(w, decision)
	}
}

package handlers

import (
	"net/http"

	"github.com/shopease/shopease-engine/api/responses"
	"github.com/shopease/shopease-engine/pkg/config"
)

// Healthz reports process liveness.
func Healthz(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-ShopEase-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "ok"})
	}
}

package routeguard

import (
	"github.com/shopease/shopease-engine/internal/session"
	"github.com/shopease/shopease-engine/pkg/enums"
)

// DecisionKind is the gating outcome for a view.
type DecisionKind string

const (
	DecisionAllow           DecisionKind = "allow"
	DecisionShowLoader      DecisionKind = "show_loader"
	DecisionRedirectToLogin DecisionKind = "redirect_to_login"
	DecisionRedirectToHome  DecisionKind = "redirect_to_home"
)

// Redirect reasons surfaced to the view layer.
const (
	ReasonExpired   = "expired"
	ReasonForbidden = "forbidden"
)

// Requirement declares a view's access policy. A nil AllowedRoles slice
// means any authenticated role is acceptable.
type Requirement struct {
	Path         string
	AuthLevel    enums.AuthLevel
	AllowedRoles []enums.UserRole
}

// Decision is the gating outcome. Origin is the path to return to after
// login; Reason explains a redirect when there is something to explain.
type Decision struct {
	Kind   DecisionKind `json:"kind"`
	Origin string       `json:"origin,omitempty"`
	Reason string       `json:"reason,omitempty"`
}

// Allowed reports whether the view may render.
func (d Decision) Allowed() bool { return d.Kind == DecisionAllow }

// Evaluate gates one view entry against the current session. It is a pure
// function of its inputs and holds no state of its own.
//
// Rules apply in priority order: unsettled phases get a loader, missing or
// corrupted credentials go to login, role mismatches and guest-only views
// with a live session go home.
func Evaluate(state session.State, req Requirement) Decision {
	if !state.Phase.Settled() {
		return Decision{Kind: DecisionShowLoader}
	}

	requiresAuth := req.AuthLevel == enums.AuthLevelAuthenticated || len(req.AllowedRoles) > 0

	if requiresAuth && state.Token == "" {
		return Decision{Kind: DecisionRedirectToLogin, Origin: req.Path}
	}
	if requiresAuth && state.User == nil {
		return Decision{Kind: DecisionRedirectToLogin, Origin: req.Path, Reason: ReasonExpired}
	}
	if len(req.AllowedRoles) > 0 && !roleAllowed(state.User.Role, req.AllowedRoles) {
		return Decision{Kind: DecisionRedirectToHome, Reason: ReasonForbidden}
	}
	if req.AuthLevel == enums.AuthLevelGuestOnly && state.Token != "" && state.User != nil {
		return Decision{Kind: DecisionRedirectToHome}
	}
	return Decision{Kind: DecisionAllow}
}

func roleAllowed(role enums.UserRole, allowed []enums.UserRole) bool {
	for _, candidate := range allowed {
		if candidate == role {
			return true
		}
	}
	return false
}

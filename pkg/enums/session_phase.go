package enums

import "fmt"

// SessionPhase is the authentication lifecycle stage of the current session.
type SessionPhase string

const (
	SessionPhaseUninitialized SessionPhase = "uninitialized"
	SessionPhaseRestoring     SessionPhase = "restoring"
	SessionPhaseAuthenticated SessionPhase = "authenticated"
	SessionPhaseAnonymous     SessionPhase = "anonymous"
	SessionPhaseExpired       SessionPhase = "expired"
)

var validSessionPhases = []SessionPhase{
	SessionPhaseUninitialized,
	SessionPhaseRestoring,
	SessionPhaseAuthenticated,
	SessionPhaseAnonymous,
	SessionPhaseExpired,
}

// String implements fmt.Stringer.
func (p SessionPhase) String() string {
	return string(p)
}

// IsValid reports whether the value is a known SessionPhase.
func (p SessionPhase) IsValid() bool {
	for _, candidate := range validSessionPhases {
		if candidate == p {
			return true
		}
	}
	return false
}

// Settled reports whether the phase is past the async restore window.
// Consumers must not treat an absent token as logged out until this is true.
func (p SessionPhase) Settled() bool {
	return p != SessionPhaseUninitialized && p != SessionPhaseRestoring
}

// ParseSessionPhase converts raw input into a SessionPhase.
func ParseSessionPhase(value string) (SessionPhase, error) {
	for _, candidate := range validSessionPhases {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid session phase %q", value)
}

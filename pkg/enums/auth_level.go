package enums

import "fmt"

// AuthLevel declares the access requirement of a view.
type AuthLevel string

const (
	AuthLevelPublic        AuthLevel = "public"
	AuthLevelAuthenticated AuthLevel = "authenticated"
	AuthLevelGuestOnly     AuthLevel = "guest_only"
)

var validAuthLevels = []AuthLevel{
	AuthLevelPublic,
	AuthLevelAuthenticated,
	AuthLevelGuestOnly,
}

// String implements fmt.Stringer.
func (a AuthLevel) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AuthLevel.
func (a AuthLevel) IsValid() bool {
	for _, candidate := range validAuthLevels {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAuthLevel converts raw input into an AuthLevel.
func ParseAuthLevel(value string) (AuthLevel, error) {
	for _, candidate := range validAuthLevels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid auth level %q", value)
}

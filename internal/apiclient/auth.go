package apiclient

import (
	"context"
	"net/http"

	pkgerrors "github.com/shopease/shopease-engine/pkg/errors"
	"github.com/shopease/shopease-engine/pkg/enums"
)

// UserProfile is the identity document returned alongside a token.
type UserProfile struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Email string         `json:"email"`
	Role  enums.UserRole `json:"role"`
}

// Credentials is the token/user pair issued by login and refresh. The two
// fields are only ever consumed together.
type Credentials struct {
	Token string       `json:"token"`
	User  *UserProfile `json:"user"`
}

// RegisterInput is the signup payload.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a token/user pair.
func (c *Client) Login(ctx context.Context, email, password string) (Credentials, error) {
	var creds Credentials
	err := c.do(ctx, http.MethodPost, "/auth/login", loginRequest{Email: email, Password: password}, &creds)
	if err != nil {
		return Credentials{}, err
	}
	if creds.Token == "" || creds.User == nil {
		return Credentials{}, pkgerrors.New(pkgerrors.CodeDependency, "login response missing token or user")
	}
	return creds, nil
}

// Register creates an account. It does not authenticate the session.
func (c *Client) Register(ctx context.Context, input RegisterInput) error {
	return c.do(ctx, http.MethodPost, "/auth/register", input, nil)
}

// Refresh exchanges the current token for a fresh token/user pair.
func (c *Client) Refresh(ctx context.Context) (Credentials, error) {
	var creds Credentials
	err := c.do(ctx, http.MethodGet, "/auth/refresh", nil, &creds)
	if err != nil {
		return Credentials{}, err
	}
	if creds.Token == "" || creds.User == nil {
		return Credentials{}, pkgerrors.New(pkgerrors.CodeDependency, "refresh response missing token or user")
	}
	return creds, nil
}

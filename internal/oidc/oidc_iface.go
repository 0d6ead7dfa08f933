package oidc

import (
	"context"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// Authenticator is the contract the session layer consumes.
type Authenticator interface {
	// AuthCodeURL starts a login attempt: it persists the pending state and
	// returns the provider authorization URL to redirect to.
	AuthCodeURL(w http.ResponseWriter, returnURL string) (string, error)

	// Verify validates the provider callback. Nil claims with a nil error is
	// a negative authentication result (no matching pending login).
	Verify(ctx context.Context, w http.ResponseWriter, r *http.Request) (claims *Claims, returnURL string, err error)
}

// Defined for testability
type provider interface {
	Verifier(config *oidc.Config) *oidc.IDTokenVerifier
	Endpoint() oauth2.Endpoint
}

// Defined for testability
type config interface {
	AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string
	Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error)
	ClientID() string
}

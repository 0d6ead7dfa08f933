package oidc

import (
	"context"

	"github.com/go-playground/errors/v5"
	"golang.org/x/oauth2"
)

// Claims is the verified identity produced by a successful callback. It is
// only constructed after the signature, nonce, and access-token-hash checks
// have all passed.
type Claims struct {
	// Subject is the provider's stable identifier for the user.
	Subject string

	// Email is the verified email claim, the durable identity key.
	Email string

	// AccessToken is the credential material rotated into the user record
	// on every login.
	AccessToken string

	// Raw holds the full ID token claim set.
	Raw map[string]any
}

// credentials is the transient state of one callback invocation. There is a
// single concrete flow, so this is one record rather than a pluggable type.
type credentials struct {
	code          string
	nonce         string
	pkceVerifier  string
	expectedState string
	receivedState string
}

var _ config = &oAuth2{}

type oAuth2 struct {
	config oauth2.Config
}

func (o *oAuth2) AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string {
	return o.config.AuthCodeURL(state, opts...)
}

func (o *oAuth2) Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error) {
	t, err := o.config.Exchange(ctx, code, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "oauth2.Config.Exchange()")
	}

	return t, nil
}

func (o *oAuth2) ClientID() string {
	return o.config.ClientID
}

// Option configures an OIDC authenticator.
type Option func(*OIDC)

// WithInsecureCookies disables the Secure flag on the pending-login cookie
// for plain-HTTP development setups.
func WithInsecureCookies() Option {
	return func(o *OIDC) {
		o.secure = false
	}
}

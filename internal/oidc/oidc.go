// Package oidc implements the relying-party side of the OpenID Connect
// authentication flow: provider discovery, authorization-URL construction,
// and verification of the provider callback.
package oidc

import (
	"context"
	"net/http"
	"time"

	"github.com/cccteam/ccc"
	"github.com/cccteam/logger"
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/go-playground/errors/v5"
	"github.com/gofrs/uuid"
	"github.com/gorilla/securecookie"
	"golang.org/x/oauth2"
)

// exchangeTimeout bounds the token-endpoint round trip so a hung provider
// fails the request instead of blocking it indefinitely.
const exchangeTimeout = 15 * time.Second

var _ Authenticator = &OIDC{}

// OIDC authenticates callback requests against a discovered OpenID Connect
// provider. It is immutable after New and safe for concurrent use.
type OIDC struct {
	provider provider
	config   config
	s        *securecookie.SecureCookie
	secure   bool
}

// New discovers the provider metadata for issuerURL and binds the client
// credentials and redirect URL into an immutable authenticator.
//
// Discovery is a single network fetch with no retry; a failure here is fatal
// and the caller must not begin serving traffic.
func New(ctx context.Context, s *securecookie.SecureCookie, issuerURL, clientID, clientSecret, redirectURL string, options ...Option) (*OIDC, error) {
	provider, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return nil, errors.Wrap(err, "oidc.NewProvider()")
	}

	o := &OIDC{
		provider: provider,
		config: &oAuth2{
			config: oauth2.Config{
				ClientID:     clientID,
				ClientSecret: clientSecret,
				RedirectURL:  redirectURL,
				Endpoint:     provider.Endpoint(),
				Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
			},
		},
		s:      s,
		secure: true,
	}
	for _, opt := range options {
		opt(o)
	}

	return o, nil
}

// AuthCodeURL starts a new login attempt. It generates a fresh CSRF state,
// nonce, and PKCE verifier, persists them (with returnURL) as the pending
// login, and returns the provider authorization URL to redirect to.
func (o *OIDC) AuthCodeURL(w http.ResponseWriter, returnURL string) (string, error) {
	// state and nonce are independent random tokens: state round-trips
	// through the provider to tie the callback to this attempt, nonce is
	// embedded in the ID token to prevent token replay across attempts.
	state, err := uuid.NewV4()
	if err != nil {
		return "", errors.Wrap(err, "uuid.NewV4()")
	}
	nonce, err := uuid.NewV4()
	if err != nil {
		return "", errors.Wrap(err, "uuid.NewV4()")
	}
	pkceVerifier := oauth2.GenerateVerifier()

	cval := map[stKey]string{
		stState:        state.String(),
		stNonce:        nonce.String(),
		stPkceVerifier: pkceVerifier,
		stReturnURL:    returnURL,
	}

	if err := o.writePendingCookie(w, cval); err != nil {
		return "", errors.Wrap(err, "OIDC.writePendingCookie()")
	}

	return o.config.AuthCodeURL(state.String(),
		oidc.Nonce(nonce.String()),
		oauth2.S256ChallengeOption(pkceVerifier),
	), nil
}

// Verify processes the provider callback request.
//
// A callback that does not correspond to a pending login attempt (no pending
// cookie, or a state mismatch) is a negative authentication result, not an
// error: Verify returns nil claims and a nil error. All other failures are
// errors from the package taxonomy. On success it returns the verified
// claims and the return URL captured when the attempt started.
func (o *OIDC) Verify(ctx context.Context, w http.ResponseWriter, r *http.Request) (*Claims, string, error) {
	ctx, span := ccc.StartTrace(ctx)
	defer span.End()

	cval, ok := o.takePendingCookie(w, r)
	if !ok {
		logger.Req(r).Infof("callback without pending login")

		return nil, "", nil
	}

	creds := credentials{
		code:          r.URL.Query().Get("code"),
		nonce:         cval[stNonce],
		pkceVerifier:  cval[stPkceVerifier],
		expectedState: cval[stState],
		receivedState: r.URL.Query().Get("state"),
	}

	if creds.receivedState != creds.expectedState {
		// Plain CSRF mismatch. Also occurs on ordinary double submission,
		// so it is not logged as an attack.
		logger.Req(r).Infof("callback state does not match pending login")

		return nil, "", nil
	}

	claims, err := o.authenticate(ctx, creds)
	if err != nil {
		return nil, "", errors.Wrap(err, "OIDC.authenticate()")
	}

	returnURL := cval[stReturnURL]
	if returnURL == "" {
		returnURL = "/"
	}

	return claims, returnURL, nil
}

// authenticate exchanges the authorization code and verifies the resulting
// ID token. The checks are ordered and none may be skipped: exchange,
// ID-token presence, signature, nonce, access-token hash.
func (o *OIDC) authenticate(ctx context.Context, creds credentials) (*Claims, error) {
	ctx, span := ccc.StartTrace(ctx)
	defer span.End()

	exchangeCtx, cancel := context.WithTimeout(ctx, exchangeTimeout)
	defer cancel()

	token, err := o.config.Exchange(exchangeCtx, creds.code, oauth2.VerifierOption(creds.pkceVerifier))
	if err != nil {
		return nil, errors.Wrapf(ErrTokenExchange, "oauth2.Config.Exchange(): %s", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return nil, errors.Wrap(ErrMissingIDToken, "token response")
	}

	verifier := o.provider.Verifier(&oidc.Config{ClientID: o.config.ClientID()})
	idToken, err := verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidSignature, "oidc.IDTokenVerifier.Verify(): %s", err)
	}

	if idToken.Nonce != creds.nonce {
		return nil, errors.Wrap(ErrInvalidNonce, "ID token nonce does not match pending login")
	}

	// at_hash binds the ID token to the access token we actually received,
	// preventing substitution of another identity's access token.
	if idToken.AccessTokenHash != "" {
		if err := idToken.VerifyAccessToken(token.AccessToken); err != nil {
			return nil, errors.Wrapf(ErrInvalidAccessTokenHash, "oidc.IDToken.VerifyAccessToken(): %s", err)
		}
	}

	var idClaims struct {
		Email string `json:"email"`
	}
	if err := idToken.Claims(&idClaims); err != nil {
		return nil, errors.Wrap(err, "oidc.IDToken.Claims()")
	}
	if idClaims.Email == "" {
		return nil, errors.Wrap(ErrMissingEmailClaim, "ID token")
	}

	raw := make(map[string]any)
	if err := idToken.Claims(&raw); err != nil {
		return nil, errors.Wrap(err, "oidc.IDToken.Claims()")
	}

	return &Claims{
		Subject:     idToken.Subject,
		Email:       idClaims.Email,
		AccessToken: token.AccessToken,
		Raw:         raw,
	}, nil
}

package oidc

import "github.com/go-playground/errors/v5"

// Verification failure taxonomy. A missing or mismatched CSRF state is not
// part of it: that is a negative authentication result, reported by Verify
// as nil claims with a nil error.
var (
	// ErrTokenExchange is an infrastructure failure talking to the token
	// endpoint. The user may simply retry the login.
	ErrTokenExchange = errors.New("could not exchange authorization code for tokens")

	// ErrMissingIDToken indicates the token response carried no ID token.
	ErrMissingIDToken = errors.New("no id_token in token response")

	// ErrInvalidSignature indicates the ID token failed signature or
	// standard claims verification against the provider's published keys.
	ErrInvalidSignature = errors.New("ID token verification failed")

	// ErrInvalidNonce indicates the ID token's nonce does not match the
	// nonce stored for the pending login attempt.
	ErrInvalidNonce = errors.New("ID token nonce mismatch")

	// ErrInvalidAccessTokenHash indicates the at_hash claim does not match
	// the access token received in the same response.
	ErrInvalidAccessTokenHash = errors.New("access token hash mismatch")

	// ErrMissingEmailClaim indicates a verified ID token without an email
	// claim; the flow fails closed since email is the identity key.
	ErrMissingEmailClaim = errors.New("no email claim in ID token")
)

// IsSecurityFailure reports whether err is one of the verification failures
// that must be logged with detail but surfaced to the browser as a generic
// rejection, without revealing which check failed.
func IsSecurityFailure(err error) bool {
	for _, target := range []error{
		ErrMissingIDToken,
		ErrInvalidSignature,
		ErrInvalidNonce,
		ErrInvalidAccessTokenHash,
		ErrMissingEmailClaim,
	} {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}

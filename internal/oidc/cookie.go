package oidc

import (
	"net/http"
	"time"

	"github.com/go-playground/errors/v5"
)

// The pending login attempt is session-scoped: the (state, nonce,
// pkceVerifier, returnURL) tuple rides in an encrypted short-lived cookie in
// the requester's own browser session, so its lifetime and isolation follow
// the visitor rather than a shared table needing expiry sweeps.

type stKey string

func (c stKey) String() string {
	return string(c)
}

const (
	stCookieName = "PendingLogin"
	// Keys used in the pending-login cookie
	stState        stKey = "state"
	stNonce        stKey = "nonce"
	stPkceVerifier stKey = "pkceVerifier"
	stReturnURL    stKey = "returnURL"

	pendingCookieExpiration = 10 * time.Minute
)

func (o *OIDC) writePendingCookie(w http.ResponseWriter, cval map[stKey]string) error {
	encoded, err := o.s.Encode(stCookieName, cval)
	if err != nil {
		return errors.Wrap(err, "securecookie.Encode()")
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stCookieName,
		Expires:  time.Now().Add(pendingCookieExpiration),
		Value:    encoded,
		Path:     "/",
		Secure:   o.secure,
		HttpOnly: true,
	})

	return nil
}

// takePendingCookie is the consume side of the pending store: a successful
// read always deletes the cookie, so a pending attempt is matched at most
// once and a replayed state finds nothing.
func (o *OIDC) takePendingCookie(w http.ResponseWriter, r *http.Request) (map[stKey]string, bool) {
	c, err := r.Cookie(stCookieName)
	if err != nil {
		return nil, false
	}

	o.deletePendingCookie(w)

	cval := make(map[stKey]string)
	if err := o.s.Decode(stCookieName, c.Value, &cval); err != nil {
		return nil, false
	}

	return cval, true
}

func (o *OIDC) deletePendingCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     stCookieName,
		Expires:  time.Unix(0, 0),
		Path:     "/",
		Secure:   o.secure,
		HttpOnly: true,
	})
}

package session

import (
	"encoding/base64"
	"net/http"
	"strconv"

	"github.com/cccteam/ccc"
	"github.com/cccteam/logger"
	"github.com/go-playground/errors/v5"
	"github.com/gorilla/securecookie"
)

// scKey is a type for storing values in the session cookie
type scKey string

func (c scKey) String() string {
	return string(c)
}

const (
	// Keys used within the Secure Cookie
	scAuthCookieName scKey = "auth"
	scSessionID      scKey = "sessionID"
	scSameSiteStrict scKey = "sameSiteStrict"
)

// NewSecureCookie builds the securecookie codec shared by the session and
// login packages. cookieKey is a Base64-encoded string representing at least
// 32 bytes of cryptographically secure random data. Keys of 64 bytes or more
// additionally enable cookie value encryption.
func NewSecureCookie(cookieKey string) (*securecookie.SecureCookie, error) {
	key, err := base64.StdEncoding.DecodeString(cookieKey)
	if err != nil {
		return nil, errors.Wrap(err, "base64.StdEncoding.DecodeString()")
	}
	if len(key) < 32 {
		return nil, errors.Newf("cookie key must be at least 32 bytes, got %d", len(key))
	}

	var blockKey []byte
	if len(key) >= 64 {
		blockKey = key[32:64]
	}

	return securecookie.New(key[:32], blockKey), nil
}

// Interface included for testability
type cookieManager interface {
	newAuthCookie(w http.ResponseWriter, sameSiteStrict bool, sessionID ccc.UUID) (map[scKey]string, error)
	readAuthCookie(r *http.Request) (map[scKey]string, bool)
	writeAuthCookie(w http.ResponseWriter, sameSiteStrict bool, cval map[scKey]string) error
	deleteAuthCookie(w http.ResponseWriter)
}

var _ cookieManager = &cookieClient{}

type cookieClient struct {
	secureCookie *securecookie.SecureCookie
	secure       bool
}

func newCookieClient(secureCookie *securecookie.SecureCookie) *cookieClient {
	return &cookieClient{
		secureCookie: secureCookie,
		secure:       true,
	}
}

func (c *cookieClient) newAuthCookie(w http.ResponseWriter, sameSiteStrict bool, sessionID ccc.UUID) (map[scKey]string, error) {
	cval := map[scKey]string{
		scSessionID: sessionID.String(),
	}

	if err := c.writeAuthCookie(w, sameSiteStrict, cval); err != nil {
		return nil, errors.Wrap(err, "cookieClient.writeAuthCookie()")
	}

	return cval, nil
}

func (c *cookieClient) readAuthCookie(r *http.Request) (map[scKey]string, bool) {
	cval := make(map[scKey]string)

	cookie, err := r.Cookie(scAuthCookieName.String())
	if err != nil {
		return cval, false
	}
	if err := c.secureCookie.Decode(scAuthCookieName.String(), cookie.Value, &cval); err != nil {
		logger.Req(r).Error(errors.Wrap(err, "secureCookie.Decode()"))

		return cval, false
	}

	return cval, true
}

func (c *cookieClient) writeAuthCookie(w http.ResponseWriter, sameSiteStrict bool, cval map[scKey]string) error {
	cval[scSameSiteStrict] = strconv.FormatBool(sameSiteStrict)
	encoded, err := c.secureCookie.Encode(scAuthCookieName.String(), cval)
	if err != nil {
		return errors.Wrap(err, "securecookie.Encode()")
	}

	sameSite := http.SameSiteStrictMode
	if !sameSiteStrict {
		sameSite = http.SameSiteNoneMode
	}

	http.SetCookie(w, &http.Cookie{
		Name:     scAuthCookieName.String(),
		Value:    encoded,
		Path:     "/",
		Secure:   c.secure,
		HttpOnly: true,
		SameSite: sameSite,
	})

	return nil
}

func (c *cookieClient) deleteAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     scAuthCookieName.String(),
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   c.secure,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

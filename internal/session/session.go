// Package session implements cookie backed server side sessions on top of the
// OIDC login flow.
package session

import (
	"context"
	"crypto/hmac"
	"net/http"
	"strconv"
	"time"

	"github.com/cccteam/ccc"
	"github.com/cccteam/httpio"
	"github.com/cccteam/logger"
	"github.com/go-playground/errors/v5"
	"github.com/gorilla/securecookie"
	"github.com/maskedmails/server/internal/oidc"
	"github.com/maskedmails/server/internal/sessioninfo"
	"github.com/maskedmails/server/internal/storage"
)

const defaultSessionTimeout = 24 * time.Hour

// activityUpdateInterval rate limits Sessions.UpdatedAt writes.
const activityUpdateInterval = 5 * time.Second

// Option configures a Session.
type Option func(*Session)

// WithSessionTimeout overrides the idle timeout after which a session is
// rejected even if it has not been expired explicitly.
func WithSessionTimeout(timeout time.Duration) Option {
	return func(s *Session) {
		s.sessionTimeout = timeout
	}
}

// WithLogHandler overrides the error logging wrapper applied to all handlers.
func WithLogHandler(handle LogHandler) Option {
	return func(s *Session) {
		s.handle = handle
	}
}

// WithInsecureCookies disables the Secure flag on the auth cookie for local
// development over plain HTTP.
func WithInsecureCookies() Option {
	return func(s *Session) {
		s.cookies.secure = false
	}
}

// Session implements the session backed authentication handlers and
// middleware.
type Session struct {
	oidc           oidc.Authenticator
	users          UserStore
	sessions       SessionStore
	cookies        *cookieClient
	handle         LogHandler
	sessionTimeout time.Duration
}

// New creates a new Session. The securecookie codec must be shared with the
// oidc.Authenticator so the login flow and the session cookie use the same
// keys.
func New(auth oidc.Authenticator, users UserStore, sessions SessionStore, secureCookie *securecookie.SecureCookie, options ...Option) *Session {
	s := &Session{
		oidc:           auth,
		users:          users,
		sessions:       sessions,
		cookies:        newCookieClient(secureCookie),
		handle:         logHandler,
		sessionTimeout: defaultSessionTimeout,
	}

	for _, opt := range options {
		opt(s)
	}

	return s
}

// StartSession initializes a session by restoring it from a cookie, or if
// that fails, initializing a new session. The session cookie is then updated
// and the sessionID is inserted into the context.
func (s *Session) StartSession(next http.Handler) http.Handler {
	return s.handle(func(w http.ResponseWriter, r *http.Request) error {
		ctx, span := ccc.StartTrace(r.Context())
		defer span.End()

		ctx, err := s.startSession(ctx, w, r)
		if err != nil {
			return httpio.NewEncoder(w).ClientMessage(ctx, err)
		}

		next.ServeHTTP(w, r.WithContext(ctx))

		return nil
	})
}

func (s *Session) startSession(ctx context.Context, w http.ResponseWriter, r *http.Request) (context.Context, error) {
	cval, foundAuthCookie := s.cookies.readAuthCookie(r)

	sessionID, validSessionID := parseSessionID(cval[scSessionID])
	if !foundAuthCookie || !validSessionID {
		var err error
		sessionID, err = ccc.NewUUID()
		if err != nil {
			return ctx, errors.Wrap(err, "ccc.NewUUID()")
		}
		cval, err = s.cookies.newAuthCookie(w, true, sessionID)
		if err != nil {
			return ctx, errors.Wrap(err, "cookieClient.newAuthCookie()")
		}
	}

	// Upgrade cookie to SameSite=Strict
	// since CallbackOIDC() sets it to None to allow the OAuth flow to work
	if cval[scSameSiteStrict] != strconv.FormatBool(true) {
		if err := s.cookies.writeAuthCookie(w, true, cval); err != nil {
			return ctx, errors.Wrap(err, "cookieClient.writeAuthCookie()")
		}
	}

	ctx = sessioninfo.NewIDCtx(ctx, sessionID)

	l := logger.FromCtx(ctx).AddRequestAttribute("session ID", sessionID).
		WithAttributes().AddAttribute("session ID", sessionID).Logger()

	return logger.NewCtx(ctx, l), nil
}

// ValidateSession checks the sessionID in the database to validate that it has
// not expired and updates the last activity timestamp if it is still valid.
// StartSession handler must be called before calling ValidateSession.
func (s *Session) ValidateSession(next http.Handler) http.Handler {
	return s.handle(func(w http.ResponseWriter, r *http.Request) error {
		ctx, span := ccc.StartTrace(r.Context())
		defer span.End()

		ctx, err := s.validateSession(ctx)
		if err != nil {
			return httpio.NewEncoder(w).ClientMessage(ctx, err)
		}

		next.ServeHTTP(w, r.WithContext(ctx))

		return nil
	})
}

// validateSession loads the session row and its user, and rejects the session
// when it is expired, idle too long, or the user's credential changed since
// login.
func (s *Session) validateSession(ctx context.Context) (context.Context, error) {
	ctx, span := ccc.StartTrace(ctx)
	defer span.End()

	sessionID := sessioninfo.IDFromCtx(ctx)
	if sessionID == ccc.NilUUID {
		return ctx, httpio.NewUnauthorizedMessage("no session")
	}

	sess, err := s.sessions.Session(ctx, sessionID)
	if err != nil {
		return ctx, httpio.NewUnauthorizedMessageWithError(err, "invalid session")
	}

	if sess.Expired || time.Since(sess.UpdatedAt) > s.sessionTimeout {
		return ctx, httpio.NewUnauthorizedMessage("session expired")
	}

	user, err := s.users.User(ctx, sess.UserID)
	if err != nil {
		return ctx, httpio.NewUnauthorizedMessageWithError(err, "invalid session")
	}

	// A session is only valid while the credential it was created with is
	// still the user's current credential. Rotating the access token
	// invalidates every session created before the rotation.
	if !hmac.Equal(sess.AuthHash, user.AuthHash()) {
		return ctx, httpio.NewUnauthorizedMessage("session invalidated")
	}

	// Update last activity (rate limit updates)
	if time.Since(sess.UpdatedAt) > activityUpdateInterval {
		if err := s.sessions.UpdateSessionActivity(ctx, sess.ID); err != nil {
			return ctx, errors.Wrap(err, "session.SessionStore.UpdateSessionActivity()")
		}
	}

	ctx = sessioninfo.NewCtx(ctx, &sessioninfo.Info{
		SessionID: sess.ID,
		User:      user,
	})

	l := logger.FromCtx(ctx).AddRequestAttribute("email", user.Email).
		WithAttributes().AddAttribute("email", user.Email).Logger()

	return logger.NewCtx(ctx, l), nil
}

// DeleteExpiredSessions deletes session rows that are expired or idle past
// the session timeout, once every interval. It blocks until ctx is canceled,
// so callers run it in its own goroutine. A failed sweep is logged and
// retried at the next tick.
func (s *Session) DeleteExpiredSessions(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := s.sessions.DeleteExpiredSessions(ctx, s.sessionTimeout)
			if err != nil {
				logger.FromCtx(ctx).Error(errors.Wrap(err, "session.SessionStore.DeleteExpiredSessions()"))

				continue
			}
			if deleted > 0 {
				logger.FromCtx(ctx).Infof("deleted %d expired sessions", deleted)
			}
		}
	}
}

// startNewSession creates the session row bound to the user's current
// credential and rebinds the auth cookie to the new session ID.
func (s *Session) startNewSession(ctx context.Context, w http.ResponseWriter, user *storage.User) (ccc.UUID, error) {
	sess, err := s.sessions.InsertSession(ctx, user.ID, user.AuthHash())
	if err != nil {
		return ccc.NilUUID, errors.Wrap(err, "session.SessionStore.InsertSession()")
	}

	// SameSite=None so the cookie is sent on the cross site redirect from
	// the provider. StartSession upgrades it to Strict on the next request.
	if _, err := s.cookies.newAuthCookie(w, false, sess.ID); err != nil {
		return ccc.NilUUID, errors.Wrap(err, "cookieClient.newAuthCookie()")
	}

	return sess.ID, nil
}

func parseSessionID(id string) (ccc.UUID, bool) {
	sessionID, err := ccc.UUIDFromString(id)
	if err != nil {
		return ccc.NilUUID, false
	}

	return sessionID, true
}

package session

import (
	"net/http"
	"strings"

	"github.com/cccteam/ccc"
	"github.com/cccteam/httpio"
	"github.com/cccteam/logger"
	"github.com/go-playground/errors/v5"
	"github.com/maskedmails/server/internal/oidc"
	"github.com/maskedmails/server/internal/sessioninfo"
)

// Login initiates the OIDC login flow by redirecting the user to the
// authorization URL. The optional next query parameter is preserved across
// the flow and must be a relative path.
func (s *Session) Login() http.HandlerFunc {
	return s.handle(func(w http.ResponseWriter, r *http.Request) error {
		ctx, span := ccc.StartTrace(r.Context())
		defer span.End()

		returnURL := r.URL.Query().Get("next")
		if !isRelativePath(returnURL) {
			returnURL = ""
		}

		authCodeURL, err := s.oidc.AuthCodeURL(w, returnURL)
		if err != nil {
			return httpio.NewEncoder(w).ClientMessage(ctx, err)
		}

		http.Redirect(w, r, authCodeURL, http.StatusFound)

		return nil
	})
}

// CallbackOIDC is the handler for the callback from the OIDC auth provider.
func (s *Session) CallbackOIDC() http.HandlerFunc {
	return s.handle(func(w http.ResponseWriter, r *http.Request) error {
		ctx, span := ccc.StartTrace(r.Context())
		defer span.End()

		claims, returnURL, err := s.oidc.Verify(ctx, w, r)
		if err != nil {
			return httpio.NewEncoder(w).ClientMessage(ctx, callbackError(err))
		}
		if claims == nil {
			// No login attempt matches this callback. Could be a stale
			// bookmark, a replay, or a CSRF attempt. Not an error.
			return httpio.NewEncoder(w).ClientMessage(ctx, httpio.NewUnauthorizedMessage("Login session expired or invalid"))
		}

		user, err := s.users.UpsertUser(ctx, claims.Email, claims.AccessToken)
		if err != nil {
			return httpio.NewEncoder(w).ClientMessage(ctx, errors.Wrap(err, "session.UserStore.UpsertUser()"))
		}

		sessionID, err := s.startNewSession(ctx, w, user)
		if err != nil {
			return httpio.NewEncoder(w).ClientMessage(ctx, errors.Wrap(err, "Session.startNewSession()"))
		}

		logger.FromCtx(ctx).AddRequestAttribute("email", claims.Email).AddRequestAttribute("session ID", sessionID)

		http.Redirect(w, r, returnURL, http.StatusFound)

		return nil
	})
}

// Logout destroys the current session and clears the auth cookie.
func (s *Session) Logout() http.HandlerFunc {
	return s.handle(func(w http.ResponseWriter, r *http.Request) error {
		ctx, span := ccc.StartTrace(r.Context())
		defer span.End()

		if sessionID := sessioninfo.IDFromCtx(ctx); sessionID != ccc.NilUUID {
			if err := s.sessions.DestroySession(ctx, sessionID); err != nil {
				return httpio.NewEncoder(w).ClientMessage(ctx, err)
			}
		}

		s.cookies.deleteAuthCookie(w)

		http.Redirect(w, r, "/", http.StatusFound)

		return nil
	})
}

// UserInfo returns the authenticated user for the current session.
func (s *Session) UserInfo() http.HandlerFunc {
	type response struct {
		ID    ccc.UUID `json:"id"`
		Email string   `json:"email"`
	}

	return s.handle(func(w http.ResponseWriter, r *http.Request) error {
		ctx, span := ccc.StartTrace(r.Context())
		defer span.End()

		ctx, err := s.validateSession(ctx)
		if err != nil {
			return httpio.NewEncoder(w).ClientMessage(ctx, err)
		}

		info := sessioninfo.FromCtx(ctx)

		return httpio.NewEncoder(w).Ok(response{
			ID:    info.User.ID,
			Email: info.User.Email,
		})
	})
}

// Authenticated is the handler that reports if the session is authenticated.
func (s *Session) Authenticated() http.HandlerFunc {
	type response struct {
		Authenticated bool   `json:"authenticated"`
		Email         string `json:"email,omitempty"`
	}

	return s.handle(func(w http.ResponseWriter, r *http.Request) error {
		ctx, span := ccc.StartTrace(r.Context())
		defer span.End()

		ctx, err := s.validateSession(ctx)
		if err != nil {
			if httpio.HasUnauthorized(err) {
				return httpio.NewEncoder(w).Ok(response{})
			}

			return httpio.NewEncoder(w).ClientMessage(ctx, err)
		}

		info := sessioninfo.FromCtx(ctx)

		return httpio.NewEncoder(w).Ok(response{
			Authenticated: true,
			Email:         info.User.Email,
		})
	})
}

// callbackError maps verifier failures to client safe messages. Token
// validation failures share one generic forbidden message so the response
// does not leak which check failed; anything else is an infrastructure
// failure the user can retry.
func callbackError(err error) error {
	if oidc.IsSecurityFailure(err) {
		return httpio.NewForbiddenMessageWithError(err, "Authentication failed")
	}

	return httpio.NewInternalServerErrorMessageWithError(err, "Failed to complete login")
}

// isRelativePath reports whether next is a same origin path. Protocol
// relative URLs ("//evil.example") are rejected.
func isRelativePath(next string) bool {
	return strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") && !strings.Contains(next, "\\")
}

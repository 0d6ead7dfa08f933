// Package sessioninfo carries the session identity through request contexts.
package sessioninfo

import (
	"context"
	"net/http"

	"github.com/cccteam/ccc"
	"github.com/maskedmails/server/internal/storage"
)

// Info is the authenticated principal attached to a request after session
// validation succeeds.
type Info struct {
	SessionID ccc.UUID
	User      *storage.User
}

type ctxKey string

const (
	ctxSessionID   ctxKey = "sessionID"
	ctxSessionInfo ctxKey = "sessionInfo"
)

// NewIDCtx stores the session ID in the context.
func NewIDCtx(ctx context.Context, sessionID ccc.UUID) context.Context {
	return context.WithValue(ctx, ctxSessionID, sessionID)
}

// IDFromCtx returns the session ID from the context, or ccc.NilUUID if the
// session middleware has not run.
func IDFromCtx(ctx context.Context) ccc.UUID {
	id, ok := ctx.Value(ctxSessionID).(ccc.UUID)
	if !ok {
		return ccc.NilUUID
	}

	return id
}

// IDFromRequest returns the session ID from the request context.
func IDFromRequest(r *http.Request) ccc.UUID {
	return IDFromCtx(r.Context())
}

// NewCtx stores the validated session info in the context.
func NewCtx(ctx context.Context, info *Info) context.Context {
	return context.WithValue(ctx, ctxSessionInfo, info)
}

// FromCtx returns the validated session info, or nil when the request is not
// associated with a verified identity.
func FromCtx(ctx context.Context) *Info {
	info, ok := ctx.Value(ctxSessionInfo).(*Info)
	if !ok {
		return nil
	}

	return info
}

// FromRequest returns the validated session info from the request context.
func FromRequest(r *http.Request) *Info {
	return FromCtx(r.Context())
}

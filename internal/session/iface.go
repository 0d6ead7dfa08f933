package session

import (
	"context"
	"time"

	"github.com/cccteam/ccc"
	"github.com/maskedmails/server/internal/storage"
)

// UserStore is the user persistence required by the session layer.
// Defined for testability.
type UserStore interface {
	// UpsertUser inserts the user keyed by email, or refreshes the stored
	// access token if the email is already known.
	UpsertUser(ctx context.Context, email, accessToken string) (*storage.User, error)
	User(ctx context.Context, userID ccc.UUID) (*storage.User, error)
}

// SessionStore is the session persistence required by the session layer.
// Defined for testability.
type SessionStore interface {
	InsertSession(ctx context.Context, userID ccc.UUID, authHash []byte) (*storage.Session, error)
	Session(ctx context.Context, sessionID ccc.UUID) (*storage.Session, error)
	UpdateSessionActivity(ctx context.Context, sessionID ccc.UUID) error
	DestroySession(ctx context.Context, sessionID ccc.UUID) error
	// DeleteExpiredSessions removes rows that are expired or idle past
	// idleTimeout, returning the number deleted.
	DeleteExpiredSessions(ctx context.Context, idleTimeout time.Duration) (int64, error)
}

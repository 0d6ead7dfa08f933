package postgres

import (
	"context"
	"time"

	"github.com/cccteam/ccc"
	"github.com/cccteam/httpio"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/go-playground/errors/v5"
	"github.com/jackc/pgx/v5"
	"github.com/maskedmails/server/internal/storage"
)

// InsertSession inserts a Session bound to a user into the database. authHash
// captures the user's credential signal at login time.
func (d *StorageDriver) InsertSession(ctx context.Context, userID ccc.UUID, authHash []byte) (*storage.Session, error) {
	ctx, span := ccc.StartTrace(ctx)
	defer span.End()

	id, err := ccc.NewUUID()
	if err != nil {
		return nil, errors.Wrap(err, "ccc.NewUUID()")
	}

	query := `
		INSERT INTO "Sessions"
			("Id", "UserId", "AuthHash", "CreatedAt", "UpdatedAt", "Expired")
		VALUES
			($1, $2, $3, $4, $5, FALSE)
		RETURNING "Id", "UserId", "AuthHash", "CreatedAt", "UpdatedAt", "Expired"`

	now := time.Now()
	s := &storage.Session{}
	if err := pgxscan.Get(ctx, d.conn, s, query, id, userID, authHash, now, now); err != nil {
		return nil, errors.Wrap(err, "failed to insert into table Sessions")
	}

	return s, nil
}

// Session returns the session information from the database for given sessionID
func (d *StorageDriver) Session(ctx context.Context, sessionID ccc.UUID) (*storage.Session, error) {
	ctx, span := ccc.StartTrace(ctx)
	defer span.End()

	query := `
		SELECT
			"Id", "UserId", "AuthHash", "CreatedAt", "UpdatedAt", "Expired"
		FROM "Sessions"
		WHERE "Id" = $1`

	s := &storage.Session{}
	if err := pgxscan.Get(ctx, d.conn, s, query, sessionID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpio.NewNotFoundMessagef("session %s not found in database", sessionID)
		}

		return nil, errors.Wrapf(err, "failed to scan row for session %s", sessionID)
	}

	return s, nil
}

// UpdateSessionActivity updates the session activity column with the current time
func (d *StorageDriver) UpdateSessionActivity(ctx context.Context, sessionID ccc.UUID) error {
	ctx, span := ccc.StartTrace(ctx)
	defer span.End()

	query := `
		UPDATE "Sessions" SET "UpdatedAt" = $1
		WHERE "Id" = $2`

	res, err := d.conn.Exec(ctx, query, time.Now(), sessionID)
	if err != nil {
		return errors.Wrapf(err, "failed to update Sessions table for ID: %s", sessionID)
	}

	if cnt := res.RowsAffected(); cnt != 1 {
		return errors.Newf("failed to find Session %s", sessionID)
	}

	return nil
}

// DestroySession marks the session as expired
func (d *StorageDriver) DestroySession(ctx context.Context, sessionID ccc.UUID) error {
	ctx, span := ccc.StartTrace(ctx)
	defer span.End()

	query := `
		UPDATE "Sessions" SET "Expired" = TRUE
		WHERE "Id" = $1`

	if _, err := d.conn.Exec(ctx, query, sessionID); err != nil {
		return errors.Wrapf(err, "failed to update Sessions table for %s", sessionID)
	}

	return nil
}

// DeleteExpiredSessions removes session rows that can no longer validate:
// rows expired by logout and rows idle past the timeout. Returns the number
// of rows deleted.
func (d *StorageDriver) DeleteExpiredSessions(ctx context.Context, idleTimeout time.Duration) (int64, error) {
	ctx, span := ccc.StartTrace(ctx)
	defer span.End()

	query := `
		DELETE FROM "Sessions"
		WHERE "Expired" = TRUE OR "UpdatedAt" < $1`

	res, err := d.conn.Exec(ctx, query, time.Now().Add(-idleTimeout))
	if err != nil {
		return 0, errors.Wrap(err, "failed to delete expired rows from table Sessions")
	}

	return res.RowsAffected(), nil
}

package postgres

import (
	"context"

	"github.com/cccteam/ccc"
	"github.com/cccteam/httpio"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/go-playground/errors/v5"
	"github.com/jackc/pgx/v5"
	"github.com/maskedmails/server/internal/storage"
)

// UpsertUser inserts or updates the user row for a verified email as a
// single atomic statement, so concurrent first logins for the same email
// cannot create duplicate rows: one insert wins and the other collapses into
// the update arm. The stable Id is returned either way and the access token
// is rotated on every call.
func (d *StorageDriver) UpsertUser(ctx context.Context, email, accessToken string) (*storage.User, error) {
	ctx, span := ccc.StartTrace(ctx)
	defer span.End()

	id, err := ccc.NewUUID()
	if err != nil {
		return nil, errors.Wrap(err, "ccc.NewUUID()")
	}

	query := `
		INSERT INTO "Users"
			("Id", "Email", "AccessToken")
		VALUES
			($1, $2, $3)
		ON CONFLICT ("Email") DO UPDATE
			SET "AccessToken" = EXCLUDED."AccessToken"
		RETURNING "Id", "Email", "AccessToken"`

	u := &storage.User{}
	if err := pgxscan.Get(ctx, d.conn, u, query, id, email, accessToken); err != nil {
		return nil, errors.Wrapf(err, "failed to upsert user %s", email)
	}

	return u, nil
}

// User returns the user row for a previously bound id.
func (d *StorageDriver) User(ctx context.Context, userID ccc.UUID) (*storage.User, error) {
	ctx, span := ccc.StartTrace(ctx)
	defer span.End()

	query := `
		SELECT "Id", "Email", "AccessToken"
		FROM "Users"
		WHERE "Id" = $1`

	u := &storage.User{}
	if err := pgxscan.Get(ctx, d.conn, u, query, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpio.NewNotFoundMessagef("user %s not found in database", userID)
		}

		return nil, errors.Wrapf(err, "failed to scan row for user %s", userID)
	}

	return u, nil
}

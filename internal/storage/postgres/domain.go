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

// Domains returns all domains the service accepts mail for.
func (d *StorageDriver) Domains(ctx context.Context) ([]storage.Domain, error) {
	ctx, span := ccc.StartTrace(ctx)
	defer span.End()

	query := `
		SELECT "Id", "Name", "Enabled"
		FROM "Domains"
		ORDER BY "Name"`

	var domains []storage.Domain
	if err := pgxscan.Select(ctx, d.conn, &domains, query); err != nil {
		return nil, errors.Wrap(err, "failed to scan domains")
	}

	return domains, nil
}

// Domain returns the domain with the given id.
func (d *StorageDriver) Domain(ctx context.Context, domainID ccc.UUID) (*storage.Domain, error) {
	ctx, span := ccc.StartTrace(ctx)
	defer span.End()

	query := `
		SELECT "Id", "Name", "Enabled"
		FROM "Domains"
		WHERE "Id" = $1`

	dom := &storage.Domain{}
	if err := pgxscan.Get(ctx, d.conn, dom, query, domainID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpio.NewNotFoundMessagef("domain %s not found", domainID)
		}

		return nil, errors.Wrapf(err, "failed to scan row for domain %s", domainID)
	}

	return dom, nil
}

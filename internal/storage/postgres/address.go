package postgres

import (
	"context"
	"crypto/rand"
	"math/big"

	"github.com/cccteam/ccc"
	"github.com/cccteam/httpio"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/go-playground/errors/v5"
	"github.com/jackc/pgx/v5"
	"github.com/maskedmails/server/internal/storage"
)

const (
	localPartMinLen = 10
	localPartMaxLen = 18

	// Rounds of random local-part generation before giving up on a
	// collision-free address for the domain.
	maxGenerateRounds = 10
)

const localPartAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

const selectAddress = `
	SELECT
		"Id", "Address", "Description", "Enabled", "DomainId", "UserId", "CreatedAt", "UpdatedAt"
	FROM "Addresses"`

// UserAddresses returns all masked addresses owned by userID.
func (d *StorageDriver) UserAddresses(ctx context.Context, userID ccc.UUID) ([]storage.Address, error) {
	ctx, span := ccc.StartTrace(ctx)
	defer span.End()

	query := selectAddress + `
		WHERE "UserId" = $1
		ORDER BY "CreatedAt"`

	var addrs []storage.Address
	if err := pgxscan.Select(ctx, d.conn, &addrs, query, userID); err != nil {
		return nil, errors.Wrapf(err, "failed to scan addresses for user %s", userID)
	}

	return addrs, nil
}

// UserAddress returns the address addressID if it is owned by userID.
func (d *StorageDriver) UserAddress(ctx context.Context, userID, addressID ccc.UUID) (*storage.Address, error) {
	ctx, span := ccc.StartTrace(ctx)
	defer span.End()

	query := selectAddress + `
		WHERE "UserId" = $1 AND "Id" = $2`

	a := &storage.Address{}
	if err := pgxscan.Get(ctx, d.conn, a, query, userID, addressID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpio.NewNotFoundMessagef("address %s not found", addressID)
		}

		return nil, errors.Wrapf(err, "failed to scan row for address %s", addressID)
	}

	return a, nil
}

// CreateAddress inserts a new masked address with a randomly generated local
// part that is unique within the domain.
func (d *StorageDriver) CreateAddress(ctx context.Context, insert *storage.InsertAddress) (*storage.Address, error) {
	ctx, span := ccc.StartTrace(ctx)
	defer span.End()

	localPart, err := d.generateDomainAddress(ctx, insert.DomainID)
	if err != nil {
		return nil, errors.Wrap(err, "StorageDriver.generateDomainAddress()")
	}

	id, err := ccc.NewUUID()
	if err != nil {
		return nil, errors.Wrap(err, "ccc.NewUUID()")
	}

	query := `
		INSERT INTO "Addresses"
			("Id", "Address", "Description", "Enabled", "DomainId", "UserId", "CreatedAt", "UpdatedAt")
		VALUES
			($1, $2, $3, TRUE, $4, $5, now(), now())
		RETURNING "Id", "Address", "Description", "Enabled", "DomainId", "UserId", "CreatedAt", "UpdatedAt"`

	a := &storage.Address{}
	if err := pgxscan.Get(ctx, d.conn, a, query, id, localPart, insert.Description, insert.DomainID, insert.UserID); err != nil {
		return nil, errors.Wrap(err, "failed to insert into table Addresses")
	}

	return a, nil
}

// DeleteUserAddress deletes the address addressID owned by userID and
// returns the deleted row.
func (d *StorageDriver) DeleteUserAddress(ctx context.Context, userID, addressID ccc.UUID) (*storage.Address, error) {
	ctx, span := ccc.StartTrace(ctx)
	defer span.End()

	query := `
		DELETE FROM "Addresses"
		WHERE "UserId" = $1 AND "Id" = $2
		RETURNING "Id", "Address", "Description", "Enabled", "DomainId", "UserId", "CreatedAt", "UpdatedAt"`

	a := &storage.Address{}
	if err := pgxscan.Get(ctx, d.conn, a, query, userID, addressID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpio.NewNotFoundMessagef("address %s not found", addressID)
		}

		return nil, errors.Wrapf(err, "failed to delete address %s", addressID)
	}

	return a, nil
}

// generateDomainAddress picks a random alphanumeric local part and retries
// until it does not collide with an existing address in the domain.
func (d *StorageDriver) generateDomainAddress(ctx context.Context, domainID ccc.UUID) (string, error) {
	ctx, span := ccc.StartTrace(ctx)
	defer span.End()

	query := `
		SELECT COUNT(*) FROM "Addresses"
		WHERE "DomainId" = $1 AND "Address" = $2`

	for range maxGenerateRounds {
		localPart, err := randomLocalPart()
		if err != nil {
			return "", errors.Wrap(err, "randomLocalPart()")
		}

		var count int
		if err := d.conn.QueryRow(ctx, query, domainID, localPart).Scan(&count); err != nil {
			return "", errors.Wrap(err, "failed to check address for collision")
		}
		if count == 0 {
			return localPart, nil
		}
	}

	return "", errors.Newf("failed to generate a collision-free address for domain %s in %d rounds", domainID, maxGenerateRounds)
}

func randomLocalPart() (string, error) {
	span := big.NewInt(int64(localPartMaxLen - localPartMinLen + 1))
	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		return "", errors.Wrap(err, "rand.Int()")
	}
	length := localPartMinLen + int(n.Int64())

	b := make([]byte, length)
	for i := range b {
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(localPartAlphabet))))
		if err != nil {
			return "", errors.Wrap(err, "rand.Int()")
		}
		b[i] = localPartAlphabet[idx.Int64()]
	}

	return string(b), nil
}

package server

import (
	"context"
	"net/http"

	"github.com/cccteam/ccc"
	"github.com/maskedmails/server/internal/storage"
)

// Store is the persistence required by the API handlers.
// Defined for testability.
type Store interface {
	UserAddresses(ctx context.Context, userID ccc.UUID) ([]storage.Address, error)
	UserAddress(ctx context.Context, userID, addressID ccc.UUID) (*storage.Address, error)
	CreateAddress(ctx context.Context, insert *storage.InsertAddress) (*storage.Address, error)
	DeleteUserAddress(ctx context.Context, userID, addressID ccc.UUID) (*storage.Address, error)
	Domains(ctx context.Context) ([]storage.Domain, error)
	Domain(ctx context.Context, domainID ccc.UUID) (*storage.Domain, error)
}

// SessionHandlers is the authentication surface mounted by the router.
// Defined for testability.
type SessionHandlers interface {
	Login() http.HandlerFunc
	CallbackOIDC() http.HandlerFunc
	Logout() http.HandlerFunc
	UserInfo() http.HandlerFunc
	Authenticated() http.HandlerFunc
	StartSession(next http.Handler) http.Handler
	ValidateSession(next http.Handler) http.Handler
}

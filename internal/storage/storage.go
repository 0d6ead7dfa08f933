// Package storage contains the shared types persisted by the storage drivers.
package storage

import (
	"crypto/sha256"
	"time"

	"github.com/cccteam/ccc"
)

// User is a local identity keyed by verified email. A row is created on the
// first successful login for an email; AccessToken is overwritten on every
// login thereafter.
type User struct {
	ID          ccc.UUID `db:"Id" json:"id"`
	Email       string   `db:"Email" json:"email"`
	AccessToken string   `db:"AccessToken" json:"-"`
}

// AuthHash is the session-invalidation signal derived from the user's
// credential material. Sessions capture it at login; rotating the access
// token on a later login changes the hash and invalidates older sessions.
func (u *User) AuthHash() []byte {
	h := sha256.Sum256([]byte(u.AccessToken))

	return h[:]
}

// Session is a server-side session row bound to a user at login.
type Session struct {
	ID        ccc.UUID  `db:"Id"`
	UserID    ccc.UUID  `db:"UserId"`
	AuthHash  []byte    `db:"AuthHash"`
	CreatedAt time.Time `db:"CreatedAt"`
	UpdatedAt time.Time `db:"UpdatedAt"`
	Expired   bool      `db:"Expired"`
}

// Address is a masked address owned by a user under one of the served domains.
type Address struct {
	ID          ccc.UUID  `db:"Id" json:"id"`
	Address     string    `db:"Address" json:"address"`
	Description *string   `db:"Description" json:"description"`
	Enabled     bool      `db:"Enabled" json:"enabled"`
	DomainID    ccc.UUID  `db:"DomainId" json:"domainId"`
	UserID      ccc.UUID  `db:"UserId" json:"-"`
	CreatedAt   time.Time `db:"CreatedAt" json:"createdAt"`
	UpdatedAt   time.Time `db:"UpdatedAt" json:"updatedAt"`
}

// InsertAddress carries the caller-supplied fields for a new masked address;
// the random local part is chosen by the driver.
type InsertAddress struct {
	Description *string
	DomainID    ccc.UUID
	UserID      ccc.UUID
}

// Domain is a domain the service accepts mail for.
type Domain struct {
	ID      ccc.UUID `db:"Id" json:"id"`
	Name    string   `db:"Name" json:"name"`
	Enabled bool     `db:"Enabled" json:"enabled"`
}

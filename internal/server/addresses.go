package server

import (
	"encoding/json"
	"net/http"

	"github.com/cccteam/ccc"
	"github.com/cccteam/httpio"
	"github.com/go-chi/chi/v5"
	"github.com/maskedmails/server/internal/sessioninfo"
	"github.com/maskedmails/server/internal/storage"
)

func (a *App) listAddresses(w http.ResponseWriter, r *http.Request) error {
	ctx, span := ccc.StartTrace(r.Context())
	defer span.End()

	info := sessioninfo.FromCtx(ctx)

	addrs, err := a.store.UserAddresses(ctx, info.User.ID)
	if err != nil {
		return httpio.NewEncoder(w).ClientMessage(ctx, err)
	}
	if addrs == nil {
		addrs = []storage.Address{}
	}

	return httpio.NewEncoder(w).Ok(addrs)
}

func (a *App) getAddress(w http.ResponseWriter, r *http.Request) error {
	ctx, span := ccc.StartTrace(r.Context())
	defer span.End()

	addressID, err := ccc.UUIDFromString(chi.URLParam(r, "id"))
	if err != nil {
		return httpio.NewEncoder(w).BadRequestMessage(ctx, "invalid address id")
	}

	info := sessioninfo.FromCtx(ctx)

	addr, err := a.store.UserAddress(ctx, info.User.ID, addressID)
	if err != nil {
		return httpio.NewEncoder(w).ClientMessage(ctx, err)
	}

	return httpio.NewEncoder(w).Ok(addr)
}

func (a *App) createAddress(w http.ResponseWriter, r *http.Request) error {
	ctx, span := ccc.StartTrace(r.Context())
	defer span.End()

	var req struct {
		DomainID    ccc.UUID `json:"domainId"`
		Description *string  `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return httpio.NewEncoder(w).BadRequestMessage(ctx, "invalid request body")
	}

	// Only enabled domains accept new addresses.
	domain, err := a.store.Domain(ctx, req.DomainID)
	if err != nil {
		return httpio.NewEncoder(w).ClientMessage(ctx, err)
	}
	if !domain.Enabled {
		return httpio.NewEncoder(w).BadRequestMessage(ctx, "domain is disabled")
	}

	info := sessioninfo.FromCtx(ctx)

	addr, err := a.store.CreateAddress(ctx, &storage.InsertAddress{
		Description: req.Description,
		DomainID:    req.DomainID,
		UserID:      info.User.ID,
	})
	if err != nil {
		return httpio.NewEncoder(w).ClientMessage(ctx, err)
	}

	return httpio.NewEncoder(w).Ok(addr)
}

func (a *App) deleteAddress(w http.ResponseWriter, r *http.Request) error {
	ctx, span := ccc.StartTrace(r.Context())
	defer span.End()

	addressID, err := ccc.UUIDFromString(chi.URLParam(r, "id"))
	if err != nil {
		return httpio.NewEncoder(w).BadRequestMessage(ctx, "invalid address id")
	}

	info := sessioninfo.FromCtx(ctx)

	addr, err := a.store.DeleteUserAddress(ctx, info.User.ID, addressID)
	if err != nil {
		return httpio.NewEncoder(w).ClientMessage(ctx, err)
	}

	return httpio.NewEncoder(w).Ok(addr)
}

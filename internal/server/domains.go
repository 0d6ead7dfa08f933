package server

import (
	"net/http"

	"github.com/cccteam/ccc"
	"github.com/cccteam/httpio"
	"github.com/go-chi/chi/v5"
	"github.com/maskedmails/server/internal/storage"
)

func (a *App) listDomains(w http.ResponseWriter, r *http.Request) error {
	ctx, span := ccc.StartTrace(r.Context())
	defer span.End()

	domains, err := a.store.Domains(ctx)
	if err != nil {
		return httpio.NewEncoder(w).ClientMessage(ctx, err)
	}
	if domains == nil {
		domains = []storage.Domain{}
	}

	return httpio.NewEncoder(w).Ok(domains)
}

func (a *App) getDomain(w http.ResponseWriter, r *http.Request) error {
	ctx, span := ccc.StartTrace(r.Context())
	defer span.End()

	domainID, err := ccc.UUIDFromString(chi.URLParam(r, "id"))
	if err != nil {
		return httpio.NewEncoder(w).BadRequestMessage(ctx, "invalid domain id")
	}

	domain, err := a.store.Domain(ctx, domainID)
	if err != nil {
		return httpio.NewEncoder(w).ClientMessage(ctx, err)
	}

	return httpio.NewEncoder(w).Ok(domain)
}

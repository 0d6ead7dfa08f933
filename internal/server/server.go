// Package server mounts the HTTP surface: the auth flow, the masked address
// API, and the mail ingestion endpoint.
package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/cccteam/httpio"
	"github.com/cccteam/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/errors/v5"
)

// App is the assembled HTTP application.
type App struct {
	addr        string
	router      chi.Router
	sessions    SessionHandlers
	store       Store
	ingestToken string
}

// New assembles the router. ingestToken authenticates the mail forwarder on
// the ingestion endpoint.
func New(addr string, sessions SessionHandlers, store Store, ingestToken string) *App {
	a := &App{
		addr:        addr,
		sessions:    sessions,
		store:       store,
		ingestToken: ingestToken,
	}
	a.router = a.routes()

	return a
}

func (a *App) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Route("/auth", func(r chi.Router) {
		// Login and callback run before a session exists.
		r.Get("/login", a.sessions.Login())
		r.Get("/callback", a.sessions.CallbackOIDC())

		r.Group(func(r chi.Router) {
			r.Use(a.sessions.StartSession)
			r.Get("/logout", a.sessions.Logout())
			r.Get("/userinfo", a.sessions.UserInfo())
			r.Get("/authenticated", a.sessions.Authenticated())
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/domains", a.handle(a.listDomains))
		r.Get("/domains/{id}", a.handle(a.getDomain))

		r.Post("/ingestion", a.handle(a.ingestMail))

		r.Group(func(r chi.Router) {
			r.Use(a.sessions.StartSession)
			r.Use(a.sessions.ValidateSession)

			r.Get("/addresses", a.handle(a.listAddresses))
			r.Post("/addresses", a.handle(a.createAddress))
			r.Get("/addresses/{id}", a.handle(a.getAddress))
			r.Delete("/addresses/{id}", a.handle(a.deleteAddress))
		})
	})

	return r
}

// Handler returns the assembled router.
func (a *App) Handler() http.Handler {
	return a.router
}

// Run serves until ctx is canceled, then drains in-flight requests.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.addr,
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "http.Server.ListenAndServe()")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "http.Server.Shutdown()")
	}

	return nil
}

// handle returns a handler that logs any error coming from our custom handlers
func (a *App) handle(handler func(w http.ResponseWriter, r *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := handler(w, r); err != nil {
			if httpio.CauseIsError(err) {
				logger.Req(r).Error(err)
			} else {
				logger.Req(r).Infof("['%s']", strings.Join(httpio.Messages(err), "', '"))
			}
		}
	}
}

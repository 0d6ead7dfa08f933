// Command maskedmails runs the masked mail service: OIDC login, session
// backed API for masked addresses, and the mail ingestion endpoint.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/maskedmails/server/internal/config"
	"github.com/maskedmails/server/internal/observe"
	"github.com/maskedmails/server/internal/oidc"
	"github.com/maskedmails/server/internal/server"
	"github.com/maskedmails/server/internal/session"
	"github.com/maskedmails/server/internal/storage/postgres"
)

// sessionSweepInterval is how often expired session rows are deleted.
const sessionSweepInterval = 6 * time.Minute

func main() {
	if err := run(); err != nil {
		log.Fatalf("maskedmails: %+v", err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	configFile := flag.String("config", "", "path to a TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		return err
	}

	if cfg.Tracing.Enabled {
		shutdown, err := observe.InitTracing(ctx, cfg.Tracing.Endpoint)
		if err != nil {
			return err
		}
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(flushCtx); err != nil {
				log.Printf("maskedmails: trace shutdown: %v", err)
			}
		}()
	}

	if err := postgres.Migrate(cfg.DatabaseURL); err != nil {
		return err
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	store := postgres.NewStorageDriver(pool)

	secureCookie, err := session.NewSecureCookie(cfg.Session.CookieKey)
	if err != nil {
		return err
	}

	var oidcOpts []oidc.Option
	if cfg.Session.InsecureCookies {
		oidcOpts = append(oidcOpts, oidc.WithInsecureCookies())
	}

	// Provider discovery happens here. A provider that cannot be reached at
	// startup is fatal.
	auth, err := oidc.New(ctx, secureCookie,
		cfg.Auth.IssuerURL, cfg.Auth.ClientID, cfg.Auth.ClientSecret, cfg.Auth.RedirectURL,
		oidcOpts...)
	if err != nil {
		return err
	}

	sessOpts := []session.Option{session.WithSessionTimeout(cfg.Session.Timeout)}
	if cfg.Session.InsecureCookies {
		sessOpts = append(sessOpts, session.WithInsecureCookies())
	}

	sess := session.New(auth, store, store, secureCookie, sessOpts...)

	go sess.DeleteExpiredSessions(ctx, sessionSweepInterval)

	app := server.New(cfg.ListenAddr, sess, store, cfg.Ingestion.Token)

	log.Printf("maskedmails: listening on %s", cfg.ListenAddr)

	return app.Run(ctx)
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	api "github.com/mind-engage/mindengage-labrank/internal/api/http"
	auth "github.com/mind-engage/mindengage-labrank/internal/auth/middleware"
	"github.com/mind-engage/mindengage-labrank/internal/config"
	"github.com/mind-engage/mindengage-labrank/internal/db"
	"github.com/mind-engage/mindengage-labrank/internal/eventlog"
	"github.com/mind-engage/mindengage-labrank/internal/lab"
	"github.com/mind-engage/mindengage-labrank/internal/logging"
	"github.com/mind-engage/mindengage-labrank/internal/rbac"
	"github.com/mind-engage/mindengage-labrank/internal/standings"
)

func main() {
	if err := run(); err != nil {
		slog.Error("gateway exited", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	log := logging.Setup(os.Stderr, cfg.LogLevel)

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		return err
	}
	defer dbh.Close()

	store := lab.NewSQLStore(dbh, cfg.DBDriver)
	events := eventlog.NewRepo(dbh, cfg.SiteID)
	policy := rbac.NewAllowListPolicy(nil, cfg.AdminEmails)

	r := api.NewRouter(api.Deps{
		Store:     store,
		Standings: standings.NewService(store, log),
		Events:    events,
		Auth:      auth.NewAuthService(cfg.AuthHMACSecret),
		Policy:    policy,
		Login: auth.LoginOptions{
			Admins:             policy,
			AdminPassHash:      cfg.AdminPassHash,
			AllowedEmailDomain: cfg.AllowedEmailDomain,
		},
		Log:             log,
		EnableLocalAuth: cfg.EnableLocalAuth,
		EnableMetrics:   cfg.EnableMetrics,
		CORSOrigins:     cfg.CORSOrigins(),
		Majors:          cfg.Majors,
		Ready:           dbh.PingContext,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", cfg.HTTPAddr, "mode", cfg.Mode, "db", cfg.DBDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-sigCtx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()
	return srv.Shutdown(shutdownCtx)
}

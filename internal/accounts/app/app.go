package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	httpapi "github.com/aussiebroadwan/accounts/internal/accounts/http"
	"github.com/aussiebroadwan/accounts/internal/accounts/service"
	"github.com/aussiebroadwan/accounts/internal/accounts/store"
	"github.com/aussiebroadwan/accounts/pkg/cryptox"
	"github.com/aussiebroadwan/accounts/pkg/jwtx"
	"github.com/aussiebroadwan/accounts/pkg/slogx"
)

// Application is the wired accounts service: one store and the HTTP surface
// over the account service built on it.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db     store.Store
	router *httpapi.Router
	server *http.Server
}

// New builds every dependency from cfg. The store is opened and migrated
// before New returns, so a misconfigured database fails at startup.
func New(cfg Config) (*Application, error) {
	logger := slogx.New(slogx.Config{
		Service: httpapi.ServiceName,
		Version: cfg.AppVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})

	pepper, err := cryptox.LoadOrCreatePepper(cfg.PepperFile)
	if err != nil {
		return nil, fmt.Errorf("load pepper: %w", err)
	}

	signer, err := jwtx.NewSignerHMAC(cfg.JWTAlgorithm, []byte(cfg.JWTSecretKey))
	if err != nil {
		return nil, fmt.Errorf("token signer: %w", err)
	}

	db, err := openStore(context.Background(), cfg, logger)
	if err != nil {
		return nil, err
	}

	accounts := &service.AccountService{
		Store:  db,
		Hasher: cryptox.NewPasswordHasher(pepper),
		Tokens: &service.TokenService{
			Signer:    signer,
			Issuer:    cfg.JWTIssuer,
			AccessTTL: cfg.AccessTTL(),
		},
		DefaultRole:        cfg.DefaultRole,
		AllowInactiveLogin: cfg.AllowInactiveLogin,
	}
	if cfg.AllowInactiveLogin {
		logger.Warn("deactivated accounts are allowed to log in")
	}

	router := httpapi.NewRouter(cfg.AppVersion, db, accounts, logger)
	router.Limits = cfg.RateLimits
	router.ExposeDocs = cfg.ExposeDocs()
	router.ApplyRoutes()

	return &Application{
		cfg:    cfg,
		logger: logger,
		db:     db,
		router: router,
		server: &http.Server{
			Addr:              net.JoinHostPort("", strconv.Itoa(cfg.Port)),
			Handler:           router,
			ReadHeaderTimeout: 3 * time.Second,
		},
	}, nil
}

// Handler exposes the fully wired router.
func (app *Application) Handler() http.Handler {
	return app.router
}

// Run serves HTTP until ctx is cancelled, then shuts down within the
// configured grace period.
func (app *Application) Run(ctx context.Context) error {
	app.logger.Info("accounts service starting", "addr", app.server.Addr)

	serveErr := make(chan error, 1)
	go func() { serveErr <- app.server.ListenAndServe() }()

	select {
	case err := <-serveErr:
		_ = app.db.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
		app.logger.Info("shutdown requested", "cause", context.Cause(ctx))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()
	return app.Shutdown(shutdownCtx)
}

// Shutdown drains in-flight requests, then closes the store. The store is
// closed even when draining times out.
func (app *Application) Shutdown(ctx context.Context) error {
	var errs []error
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful shutdown failed, closing connections", "error", err)
		errs = append(errs, err, app.server.Close())
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("close store", "error", err)
		errs = append(errs, err)
	}

	app.logger.Info("accounts service stopped")
	return errors.Join(errs...)
}

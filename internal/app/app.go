package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/rpattn/fleetreg/internal/accounts"
	"github.com/rpattn/fleetreg/internal/api"
	"github.com/rpattn/fleetreg/internal/config"
	"github.com/rpattn/fleetreg/internal/db"
	"github.com/rpattn/fleetreg/internal/export"
	"github.com/rpattn/fleetreg/internal/ingestion"
	"github.com/rpattn/fleetreg/internal/metrics"
	"github.com/rpattn/fleetreg/internal/repository"

	"golang.org/x/sync/errgroup"
)

// App owns the database pool and every service built on it.
type App struct {
	cfg     config.Config
	conn    *db.Connection
	metrics *metrics.Metrics

	Imports *ingestion.Service
	Exports *export.Service
	handler http.Handler
}

// New connects to the database and assembles repositories, services and
// the HTTP router.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	conn, err := db.NewConnection(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	m := metrics.New()

	areas := repository.NewFishingAreaRepository(conn.Pool)
	ships := repository.NewShipRepository(conn.Pool)
	roles := repository.NewRoleRepository(conn.Pool)
	profiles := repository.NewProfileRepository(conn.Pool)
	users := repository.NewUserRepository(conn.Pool)
	userRoles := repository.NewUserRoleRepository(conn.Pool)
	importLogs := repository.NewImportLogRepository(conn.Pool)

	resolver := ingestion.NewResolver(ingestion.NewProfileLookup(profiles))
	imports := ingestion.NewService(importLogs, m,
		ingestion.NewFishingAreaImporter(ingestion.NewFishingAreaStore(areas)),
		ingestion.NewShipImporter(ingestion.NewShipStore(ships), resolver),
		ingestion.NewRoleImporter(ingestion.NewRoleStore(roles)),
	)
	exports := export.NewService(areas, ships, roles, profiles)

	handler := api.NewRouter(api.Dependencies{
		Areas:          areas,
		Ships:          ships,
		Permissions:    repository.NewPermissionRepository(conn.Pool),
		Roles:          roles,
		UserRoles:      userRoles,
		RoleGroups:     repository.NewRoleGroupRepository(conn.Pool),
		Profiles:       profiles,
		Users:          users,
		ImportLogs:     importLogs,
		Accounts:       accounts.NewService(users, profiles, roles, repository.NewTransactor(conn)),
		Imports:        imports,
		Exports:        exports,
		Metrics:        m,
		CORSOrigins:    cfg.Server.CORSOrigins,
		UploadMaxBytes: cfg.Upload.MaxBytes,
		UploadLimiter:  api.NewUploadLimiter(cfg.Upload.RatePerMinute, cfg.Upload.Burst),
	})

	return &App{
		cfg:     cfg,
		conn:    conn,
		metrics: m,
		Imports: imports,
		Exports: exports,
		handler: handler,
	}, nil
}

// Handler is the root HTTP handler.
func (a *App) Handler() http.Handler {
	return a.handler
}

// Serve runs the HTTP server until ctx is cancelled, then shuts it down
// within the configured timeout.
func (a *App) Serve(ctx context.Context) error {
	server := &http.Server{
		Addr:         a.cfg.Server.Addr(),
		Handler:      a.handler,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}

// Close releases the database pool.
func (a *App) Close() {
	a.conn.Close()
}

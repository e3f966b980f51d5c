// Package app wires the server runtime: config, logging, persistence, the
// account service, the HTTP routes, and the notification stream gateway.
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/phucpercy/auth-app-backend/cmd/identity"
	"github.com/phucpercy/auth-app-backend/cmd/internal/auth"
	authapi "github.com/phucpercy/auth-app-backend/cmd/internal/auth/api"
	"github.com/phucpercy/auth-app-backend/cmd/internal/auth/session"
	"github.com/phucpercy/auth-app-backend/cmd/internal/realtime"
	"github.com/phucpercy/auth-app-backend/cmd/security/password"
	"github.com/phucpercy/auth-app-backend/cmd/security/token"
)

// Store is a small app-level lifecycle abstraction for closeable persistence
// resources.
type Store interface {
	Close(ctx context.Context) error
}

// nopStore is used for in-memory mode.
type nopStore struct{}

func (nopStore) Close(_ context.Context) error { return nil }

type dbStore struct {
	pool *pgxpool.Pool
}

func (s dbStore) Close(_ context.Context) error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// App is the server runtime: it owns the HTTP server wiring and the stream
// gateway dependencies.
type App struct {
	cfg Config
	log Logger

	store     Store
	dbPool    *pgxpool.Pool
	dbEnabled bool

	registry *realtime.Registry
	gateway  *realtime.Gateway
	authAPI  *authapi.Handler
}

// New constructs a fully wired App instance from config and logger.
func New(cfg Config, log Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel, cfg.LogFormat)
	}

	if err := ValidateSecurityConfig(cfg); err != nil {
		return nil, err
	}

	st, dbPool, users, sessions, err := newStores(context.Background(), cfg, log)
	if err != nil {
		return nil, err
	}
	dbEnabled := dbPool != nil

	codec, err := token.NewCodec([]byte(cfg.TokenSecret), cfg.TokenIssuer, cfg.AccessTTL, cfg.RefreshTTL)
	if err != nil {
		_ = st.Close(context.Background())
		return nil, err
	}

	registry := realtime.NewRegistry(log)

	svc, err := auth.NewService(log, auth.Config{SessionTTL: cfg.RefreshTTL}, users, sessions, password.NewHasher(cfg.BcryptCost), codec, registry)
	if err != nil {
		_ = st.Close(context.Background())
		return nil, err
	}

	apiHandler, err := authapi.NewHandler(log, authapi.LoadConfigFromEnv(), svc)
	if err != nil {
		_ = st.Close(context.Background())
		return nil, err
	}

	gateway := realtime.NewGateway(log, registry, svc, realtime.GatewayConfig{
		SendQueueSize:    cfg.WSSendQueueSize,
		WriteTimeout:     cfg.WSWriteTimeout,
		HeartbeatEvery:   cfg.WSHeartbeatEvery,
		HeartbeatTimeout: cfg.WSHeartbeatTimeout,
		OriginPatterns:   cfg.WSOriginPatterns,
	})

	return &App{
		cfg:       cfg,
		log:       log,
		store:     st,
		dbPool:    dbPool,
		dbEnabled: dbEnabled,
		registry:  registry,
		gateway:   gateway,
		authAPI:   apiHandler,
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal
// server error.
func (a *App) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	registerHTTP(mux, a.log, a.cfg, a.dbPool, a.dbEnabled, a.authAPI, a.gateway)

	handler := WithRequestLogging(mux, a.log)
	handler = WithCORS(handler, a.cfg, a.log)
	handler = WithSecurityHeaders(handler)

	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
	}

	a.log.Info("server.start", "addr", a.cfg.HTTPAddr, "db_enabled", a.dbEnabled)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info("server.stop", "reason", "context_done")
	case err := <-errCh:
		a.log.Error("server.fail", "err", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server.shutdown.fail", "err", err)
		return err
	}

	if err := a.store.Close(shutdownCtx); err != nil {
		a.log.Error("store.close.fail", "err", err)
	}

	a.log.Info("server.stopped")
	return nil
}

func nonZeroDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func nonZeroInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// newStores decides between Postgres-backed persistence and the in-memory
// development stores.
func newStores(ctx context.Context, cfg Config, log Logger) (Store, *pgxpool.Pool, identity.Store, session.Store, error) {
	if cfg.DatabaseURL == "" {
		log.Info("db.disabled.inmemory_store")
		return nopStore{}, nil, identity.NewMemoryStore(), session.NewMemoryStore(), nil
	}

	if cfg.AutoMigrate {
		if err := MigrateUp(cfg.DatabaseURL); err != nil {
			return nil, nil, nil, nil, err
		}
		log.Info("db.migrated")
	}

	pool, err := NewDBPool(ctx, cfg)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	users, err := identity.NewPostgresStore(pool)
	if err != nil {
		pool.Close()
		return nil, nil, nil, nil, err
	}
	sessions := session.NewPostgresStore(pool)

	log.Info("db.enabled.postgres_store")
	return dbStore{pool: pool}, pool, users, sessions, nil
}

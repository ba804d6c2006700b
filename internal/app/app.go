package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketplace-portal/internal/apiclient"
	"marketplace-portal/internal/config"
	"marketplace-portal/internal/database"
	"marketplace-portal/internal/event"
	"marketplace-portal/internal/facade"
	"marketplace-portal/internal/handler"
	"marketplace-portal/internal/middleware"
	"marketplace-portal/internal/repository"
	"marketplace-portal/internal/router"
	"marketplace-portal/internal/service"
	"marketplace-portal/internal/session"
	"marketplace-portal/internal/websocket"
)

type App struct {
	server       *http.Server
	cleanupFuncs []func()
}

func New(cfg *config.Config) (*App, error) {
	ctx := context.Background()

	store, closeStore, err := newSessionStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	slog.Info("session store ready", "backend", cfg.SessionBackend)

	bus := event.NewBus()
	hub := websocket.NewHub(bus)
	hubCtx, hubCancel := context.WithCancel(context.Background())
	go hub.Run(hubCtx)

	sessionService := service.NewSessionService(store, bus, hub)
	resolver := session.NewResolver(store)

	client := apiclient.New(resolver, store, apiclient.Options{
		BaseURL:          cfg.APIBaseURL,
		HTTPClient:       &http.Client{Timeout: cfg.APITimeout},
		ClearRoleOnly:    cfg.SessionExpiryScope == config.ExpiryScopeRole,
		OnSessionExpired: sessionService.HandleExpired,
		Logger:           slog.Default(),
	})
	slog.Info("marketplace API client ready", "base_url", client.BaseURL(), "expiry_scope", cfg.SessionExpiryScope)

	buyerAPI := facade.NewBuyerAPI(client)
	sellerAPI := facade.NewSellerAPI(client)
	adminAPI := facade.NewAdminAPI(client)
	dashboardService := service.NewDashboardService(buyerAPI, sellerAPI, adminAPI, sessionService)

	appRouter := router.New(cfg, middleware.NewSessionGuard(resolver), router.Handlers{
		Portal:  handler.NewPortalHandler(sessionService),
		Session: handler.NewSessionHandler(sessionService),
		Buyer:   handler.NewBuyerHandler(buyerAPI, dashboardService),
		Seller:  handler.NewSellerHandler(sellerAPI, dashboardService),
		Admin:   handler.NewAdminHandler(adminAPI, dashboardService),
	}, hub)

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{
		server: server,
		cleanupFuncs: []func(){
			hubCancel,
			closeStore,
		},
	}, nil
}

// newSessionStore opens the configured backend. The returned func releases
// its connections.
func newSessionStore(ctx context.Context, cfg *config.Config) (session.Store, func(), error) {
	switch cfg.SessionBackend {
	case config.SessionBackendMemory:
		return session.NewMemoryStore(), func() {}, nil

	case config.SessionBackendFile:
		store, err := session.NewFileStore(cfg.SessionFile, cfg.SessionSecret)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open session file: %w", err)
		}
		return store, func() {}, nil

	case config.SessionBackendPostgres:
		slog.Info("connecting to PostgreSQL")
		db, err := database.New(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := db.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to ensure database schema: %w", err)
		}
		return repository.NewSessionRepository(db.Pool), db.Close, nil

	case config.SessionBackendRedis:
		slog.Info("connecting to Redis", "addr", cfg.RedisAddr)
		client, err := repository.ConnectRedis(ctx, repository.RedisConfig{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		closeClient := func() {
			if err := client.Close(); err != nil {
				slog.Warn("redis close failed", "error", err)
			}
		}
		return repository.NewSessionCache(client, cfg.RedisPrefix), closeClient, nil

	default:
		return nil, nil, fmt.Errorf("unsupported session backend %q", cfg.SessionBackend)
	}
}

func (a *App) Handler() http.Handler {
	return a.server.Handler
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	shutdownErr := a.server.Shutdown(ctx)
	a.Close()

	if shutdownErr != nil {
		return fmt.Errorf("graceful shutdown failed: %w", shutdownErr)
	}

	slog.Info("server stopped")
	return nil
}

// Close releases background workers and store connections.
func (a *App) Close() {
	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}
}

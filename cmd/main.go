package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gerefleet/console/internal/auth"
	"github.com/gerefleet/console/internal/authz"
	"github.com/gerefleet/console/internal/catalog"
	"github.com/gerefleet/console/internal/config"
	"github.com/gerefleet/console/internal/device"
	"github.com/gerefleet/console/internal/elapsed"
	"github.com/gerefleet/console/internal/httpx"
	"github.com/gerefleet/console/internal/report"
	"github.com/gerefleet/console/internal/search"
	"github.com/gerefleet/console/internal/session"
	"github.com/gerefleet/console/internal/upstream"
	"github.com/gerefleet/console/internal/user"
	"github.com/gerefleet/console/internal/vehicle"
	"go.uber.org/zap"
	"moul.io/chizap"
)

func main() {
	// init logger
	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	// load config (.env + environment)
	cfg, err := config.LoadConfig(logger)
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	// session store: the localStorage analog
	store, err := session.NewSQLiteStore(cfg.StoreConfig.Path)
	if err != nil {
		logger.Fatal("failed to open session store", zap.Error(err))
	}
	defer func() { _ = store.Close() }()

	// fleet api client and services
	fleet := upstream.NewClient(cfg.UpstreamConfig.BaseURL, cfg.UpstreamConfig.Timeout, logger)
	sessions := session.NewService(store, fleet, logger)
	guard := authz.NewGuard(sessions, logger)
	ticker := elapsed.NewTicker(cfg.TimerConfig.TickInterval)

	vehicleSearcher := search.NewDebouncer[[]upstream.Vehicle](cfg.SearchConfig.DebounceQuiet)
	deviceSearcher := search.NewDebouncer[[]upstream.Device](cfg.SearchConfig.DebounceQuiet)
	historySearcher := search.NewDebouncer[[]string](cfg.SearchConfig.DebounceQuiet)
	userSearcher := search.NewDebouncer[[]upstream.User](cfg.SearchConfig.DebounceQuiet)

	// handlers
	authHandler := auth.NewAuthenticationHandler(sessions, auth.RateLimit{
		Requests: cfg.LoginRateConfig.Requests,
		Window:   cfg.LoginRateConfig.Window,
	}, logger)
	vehicleHandler := vehicle.NewVehicleHandler(fleet, sessions, guard, ticker, vehicleSearcher, logger)
	deviceHandler := device.NewDeviceHandler(fleet, sessions, guard, ticker, deviceSearcher, logger)
	reportHandler := report.NewReportHandler(fleet, sessions, guard, ticker, historySearcher, logger)
	catalogHandler := catalog.NewCatalogHandler(fleet, sessions, guard, logger)
	userHandler := user.NewUserHandler(fleet, sessions, guard, userSearcher, logger)

	// router
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(chizap.New(logger, &chizap.Opts{WithReferer: false, WithUserAgent: false}))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Mount("/auth", authHandler.Routes())
	r.Mount("/api/vehicles", vehicleHandler.Routes())
	r.Mount("/api/devices", deviceHandler.Routes())
	r.Mount("/api/reports", reportHandler.Routes())
	r.Mount("/api/catalogs", catalogHandler.Routes())
	r.Mount("/api/users", userHandler.Routes())

	// guard redirect destinations; unauthenticated and forbidden stay
	// distinguishable outcomes
	r.Get(authz.LoginPath, func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"page": "login"})
	})
	r.Get(authz.ForbiddenPath, func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusForbidden, map[string]string{"page": "forbidden"})
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	server := &http.Server{
		Addr:        ":" + cfg.AppConfig.Port,
		Handler:     r,
		ReadTimeout: cfg.AppConfig.ReadTimeout,
		IdleTimeout: cfg.AppConfig.IdleTimeout,
		// no WriteTimeout: the /live SSE streams stay open until the
		// client disconnects
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("console listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.AppConfig.WriteTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
}

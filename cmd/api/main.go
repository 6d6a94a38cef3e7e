package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/VadoVates/autoservice/api/routes"
	"github.com/VadoVates/autoservice/internal/customers"
	"github.com/VadoVates/autoservice/internal/dashboard"
	"github.com/VadoVates/autoservice/internal/invoices"
	"github.com/VadoVates/autoservice/internal/orders"
	"github.com/VadoVates/autoservice/internal/parts"
	"github.com/VadoVates/autoservice/internal/vehicles"
	"github.com/VadoVates/autoservice/internal/workstations"
	"github.com/VadoVates/autoservice/pkg/config"
	"github.com/VadoVates/autoservice/pkg/db"
	"github.com/VadoVates/autoservice/pkg/logger"
	"github.com/VadoVates/autoservice/pkg/metrics"
	"github.com/VadoVates/autoservice/pkg/migrate"
	"github.com/VadoVates/autoservice/pkg/redis"
)

const shutdownGrace = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(context.Background(), cfg.Redis)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	} else {
		logg.Warn(context.Background(), "redis not configured, dashboard cache disabled")
	}

	conn := dbClient.DB()

	customersSvc, err := customers.NewService(customers.NewRepository(conn))
	exitOnErr(logg, "customers service", err)
	vehiclesSvc, err := vehicles.NewService(vehicles.NewRepository(conn))
	exitOnErr(logg, "vehicles service", err)
	partsSvc, err := parts.NewService(parts.NewRepository(conn))
	exitOnErr(logg, "parts service", err)
	stationsSvc, err := workstations.NewService(workstations.NewRepository(conn))
	exitOnErr(logg, "work stations service", err)
	ordersSvc, err := orders.NewService(orders.NewRepository(conn), dbClient)
	exitOnErr(logg, "orders service", err)
	dashboardSvc, err := dashboard.NewService(dashboard.NewRepository(conn), redisClient, logg)
	exitOnErr(logg, "dashboard service", err)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	router := routes.NewRouter(routes.Deps{
		Config:      cfg,
		Logger:      logg,
		DB:          dbClient,
		Redis:       redisClient,
		Registry:    registry,
		HTTPMetrics: metrics.NewHTTPMetrics(registry),

		Customers:    customersSvc,
		Vehicles:     vehiclesSvc,
		Parts:        partsSvc,
		WorkStations: stationsSvc,
		Orders:       ordersSvc,
		Dashboard:    dashboardSvc,
		Invoices:     invoices.NewRenderer(cfg.Invoice),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stop, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-stop.Done():
		logg.Info(ctx, "shutdown signal received")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}

	logg.Info(ctx, "api server stopped")
}

func exitOnErr(logg *logger.Logger, what string, err error) {
	if err != nil {
		logg.Error(context.Background(), "failed to build "+what, err)
		os.Exit(1)
	}
}

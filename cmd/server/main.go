package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"foodcart-service/internal/adapters/repositories"
	"foodcart-service/internal/api"
	"foodcart-service/internal/bootstrap"
	"foodcart-service/internal/config"
	"foodcart-service/internal/platform/db"
	"foodcart-service/internal/platform/logger"
	"foodcart-service/internal/services"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run is the application composition root.
// It wires concrete adapters (SQL, Yandex, Redis or memory) behind ports and serves HTTP until signalled.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(cfg.DB.Driver, cfg.DB.DSN())
	if err != nil {
		return err
	}
	defer database.Close()

	// Initialize schema and seed demo data on startup for local runs.
	if err := initAndSeed(ctx, database, cfg.DB, log); err != nil {
		return err
	}

	stack, err := bootstrap.NewGeocodeStack(ctx, cfg, database, log)
	if err != nil {
		return err
	}
	defer stack.Close()

	calc, err := services.NewDistanceCalculator(cfg.Planner.DistanceFormula)
	if err != nil {
		return err
	}

	repo := repositories.NewSQLOrderRepository(database, log.Named("orders"))
	planner := services.NewFulfillmentPlanner(stack.Cache, calc, cfg.Planner.Workers, log.Named("planner"))

	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(api.Deps{
		Repo:      repo,
		Planner:   planner,
		Locations: stack.Store,
		Clock:     stack.Clock,
		StoreTTL:  cfg.Cache.StoreTTL,
		CORS:      cfg.CORS,
		Log:       log.Named("http"),
	})

	// Write timeout leaves room for a cold cache: every pending order may need a geocoder round trip.
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr), zap.String("db_driver", cfg.DB.Driver))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func initAndSeed(ctx context.Context, database *sql.DB, cfg config.DBConfig, log *zap.Logger) error {
	if err := repositories.InitSchema(ctx, database, cfg.Driver); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	// Postgres deployments are seeded explicitly with dbtool.
	if cfg.Driver != db.DriverSqlite || cfg.SeedPath == "" {
		return nil
	}
	if _, err := os.Stat(cfg.SeedPath); errors.Is(err, os.ErrNotExist) {
		log.Info("seed file not found, skipping", zap.String("path", cfg.SeedPath))
		return nil
	}

	if err := repositories.SeedFromJSON(ctx, database, cfg.Driver, cfg.SeedPath); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}
	return nil
}

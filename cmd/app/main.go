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

	"github.com/lunarforge/gachad/internal/catalog"
	"github.com/lunarforge/gachad/internal/config"
	"github.com/lunarforge/gachad/internal/database"
	"github.com/lunarforge/gachad/internal/database/postgres"
	"github.com/lunarforge/gachad/internal/event"
	"github.com/lunarforge/gachad/internal/fatepoints"
	"github.com/lunarforge/gachad/internal/gacha"
	"github.com/lunarforge/gachad/internal/milestone"
	"github.com/lunarforge/gachad/internal/scheduler"
	"github.com/lunarforge/gachad/internal/selector"
	"github.com/lunarforge/gachad/internal/server"
	"github.com/lunarforge/gachad/internal/worker"
)

const (
	dbMaxConnections  = 20
	dbMaxConnIdleTime = 5 * time.Minute
	dbMaxConnLifetime = 30 * time.Minute

	workerCount     = 2
	workerQueueSize = 16

	sweepInterval   = time.Hour
	shutdownTimeout = 15 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	initLogger(cfg)
	log := slog.Default()

	connString := cfg.GetDBConnString()

	if err := database.Migrate(connString); err != nil {
		log.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	dbPool, err := database.NewPool(connString, dbMaxConnections, dbMaxConnIdleTime, dbMaxConnLifetime)
	if err != nil {
		log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	gachaConfig, err := gacha.LoadConfig(cfg.GachaDir, config.FileBanners)
	if err != nil {
		log.Error("Failed to load banner configuration", "error", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(cfg.GachaDir, config.FileRoster, catalog.UniformStrategy{})
	if err != nil {
		log.Error("Failed to load character roster", "error", err)
		os.Exit(1)
	}

	exchangeOptions, err := fatepoints.LoadOptions(cfg.GachaDir, config.FileExchange)
	if err != nil {
		log.Error("Failed to load exchange options", "error", err)
		os.Exit(1)
	}

	milestoneTiers, err := milestone.LoadTiers(cfg.GachaDir, config.FileMilestones)
	if err != nil {
		log.Error("Failed to load milestone tiers", "error", err)
		os.Exit(1)
	}

	eventBus := event.NewMemoryBus()

	gachaService := gacha.NewService(postgres.NewGachaRepository(dbPool), catalogService, eventBus, gachaConfig, nil)

	fatePointsService, err := fatepoints.NewService(postgres.NewFatePointsRepository(dbPool), gachaConfig.Rates, exchangeOptions, eventBus)
	if err != nil {
		log.Error("Failed to build fate points service", "error", err)
		os.Exit(1)
	}

	milestoneService, err := milestone.NewService(postgres.NewMilestoneRepository(dbPool), milestoneTiers, eventBus)
	if err != nil {
		log.Error("Failed to build milestone service", "error", err)
		os.Exit(1)
	}

	selectorService := selector.NewService(postgres.NewSelectorRepository(dbPool), catalogService, eventBus)

	// Background maintenance: the weekly reset worker fires at the Monday
	// boundary, the scheduled sweep catches rows it missed while down.
	workerPool := worker.NewPool(workerCount, workerQueueSize)
	workerPool.Start()

	sched := scheduler.New(workerPool)
	sched.Schedule(sweepInterval, worker.NewStaleWeekSweepJob(fatePointsService))

	weeklyReset := worker.NewWeeklyResetWorker(fatePointsService)
	weeklyReset.Start()

	trustedProxies := []string{}
	if proxies := os.Getenv("TRUSTED_PROXIES"); proxies != "" {
		trustedProxies = append(trustedProxies, proxies)
	}

	srv := server.NewServer(cfg.Port, cfg.APIKey, trustedProxies, dbPool, gachaService, fatePointsService, milestoneService, selectorService)

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.Error("Server failed", "error", err)
		os.Exit(1)
	case sig := <-stop:
		log.Info("Shutdown signal received", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Stop(ctx); err != nil {
		log.Error("Server shutdown failed", "error", err)
	}

	sched.Stop()
	workerPool.Stop()

	if err := weeklyReset.Shutdown(ctx); err != nil {
		log.Warn("Weekly reset worker shutdown timed out", "error", err)
	}

	// Drain in-flight event publishes before exit
	for _, svc := range []interface {
		Shutdown(context.Context) error
	}{gachaService, fatePointsService, milestoneService, selectorService} {
		if err := svc.Shutdown(ctx); err != nil {
			log.Warn("Service shutdown incomplete", "error", err)
		}
	}

	log.Info("Shutdown complete")
}

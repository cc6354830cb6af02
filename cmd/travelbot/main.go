package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	coreconfig "github.com/saeedyasen/travelbot/core/config"
	coredatabase "github.com/saeedyasen/travelbot/core/database"
	"github.com/saeedyasen/travelbot/core/logger"
	coretelegram "github.com/saeedyasen/travelbot/core/telegram"
	"github.com/saeedyasen/travelbot/core/telegram/router"
	"github.com/saeedyasen/travelbot/internal/catalog"
	"github.com/saeedyasen/travelbot/internal/flow"
	"github.com/saeedyasen/travelbot/internal/narrative"
	"github.com/saeedyasen/travelbot/internal/session"
	"github.com/saeedyasen/travelbot/internal/storage"
	"github.com/saeedyasen/travelbot/internal/weather"
	"log/slog"

	"github.com/jmoiron/sqlx"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("travelbot: %v", err)
	}
}

func run() error {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	log.Printf("loading config: %s", cfgPath)
	cfg, err := coreconfig.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := logger.InitLogger(cfg); err != nil {
		return fmt.Errorf("logger init: %w", err)
	}
	defer func() {
		if err := logger.Shutdown(); err != nil {
			log.Printf("logger shutdown error: %v", err)
		}
	}()

	var db *sqlx.DB
	var historyRepo flow.HistoryRepo
	if cfg.Database.Enabled() {
		if err := coredatabase.WaitForPostgres(cfg.Database, 30*time.Second); err != nil {
			return fmt.Errorf("database not reachable: %w", err)
		}
		db, err = coredatabase.Connect(cfg.Database)
		if err != nil {
			return fmt.Errorf("database connect: %w", err)
		}
		defer db.Close()
		if err := coredatabase.RunMigrations(cfg.Database); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		historyRepo = storage.NewHistoryRepo(db)
	}

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	ctrl := flow.NewController(flow.Options{
		Catalog:  cat,
		Store:    session.NewMemoryStore(),
		Weather:  weather.NewClient(cfg.Weather),
		Narrator: narrative.NewGenerator(cfg.Narrative),
		History:  historyRepo,
	})

	reg := coretelegram.NewRegistry()
	flow.RegisterCommands(reg, ctrl)
	if err := flow.RegisterCallbacks(reg, ctrl); err != nil {
		return fmt.Errorf("register callbacks: %w", err)
	}

	routes := router.CommandRoutes(reg)
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))
	routes = append(routes, router.TextRoutes(reg, router.TextOptions{
		Exact: flow.TextMatches(ctrl),
	})...)

	startedAt := time.Now()
	runOpts := coretelegram.RunOptions{
		Config:      cfg,
		Registry:    reg,
		Middlewares: coretelegram.DefaultMiddlewares(cfg, nil),
		Routes:      routes,
		OnStart: func(ctx context.Context, _ coretelegram.Runtime) error {
			logger.L.With("component", "app").Info("app ready",
				slog.String("event", "ready"),
				slog.Int("trips", cat.Len()),
				slog.Bool("persistence", historyRepo != nil),
				slog.Duration("startup_duration", logger.RoundMS(time.Since(startedAt))),
			)
			return nil
		},
		OnStop: func(ctx context.Context, _ coretelegram.Runtime) error {
			logger.L.With("component", "app").Info("shutting down...",
				slog.String("event", "shutdown"),
			)
			return nil
		},
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return coretelegram.RunTelegram(ctx, runOpts)
}

package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/hydroline/analytics/internal/adapters/http"
	natsadapter "github.com/hydroline/analytics/internal/adapters/nats"
	"github.com/hydroline/analytics/internal/adapters/postgres"
	"github.com/hydroline/analytics/internal/adapters/valkey"
	"github.com/hydroline/analytics/internal/catalog"
	"github.com/hydroline/analytics/internal/core/domain"
	"github.com/hydroline/analytics/internal/core/ports"
	"github.com/hydroline/analytics/internal/core/usecases"
	"github.com/hydroline/analytics/internal/pkg/config"
	"github.com/hydroline/analytics/internal/pkg/geospatial"
	"github.com/hydroline/analytics/internal/pkg/logging"
	"github.com/hydroline/analytics/internal/pkg/metrics"
	"github.com/hydroline/analytics/internal/pkg/telemetry"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	_ = godotenv.Load() // .env is optional

	cfg, err := config.Load("hydroline-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Site catalog
	var (
		sites ports.SiteRepository
		db    *postgres.DB
	)
	switch cfg.Catalog.Source {
	case "postgres":
		db, err = postgres.New(ctx, cfg.Database.DSN())
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
		sites = postgres.NewSiteRepo(db)
		go reportPoolStats(ctx, db)
	default:
		cat, err := catalog.Load()
		if err != nil {
			log.Fatalf("catalog: %v", err)
		}
		sites = cat
	}
	slog.Info("site catalog ready", "source", cfg.Catalog.Source)

	// Cache
	var layoutCache ports.CacheService
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable, layouts will not be cached", "error", err)
		cache = nil
	} else {
		defer cache.Close()
		layoutCache = cache
	}

	// NATS
	var (
		publisher ports.EventPublisher
		deps      = &http.Dependencies{DB: db, Cache: cache, Version: version}
	)
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, interactions will not be published", "error", err)
	} else {
		defer pub.Close()
		publisher = pub
		deps.NATS = pub.Conn()
	}

	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL, "hydroline-api-metrics")
	if err != nil {
		slog.Warn("nats subscriber unavailable", "error", err)
	} else {
		defer sub.Close()
		if err := sub.SubscribeInteractions(ctx, countInteraction); err != nil {
			slog.Warn("subscribe interactions", "error", err)
		}
	}

	// Use cases
	policy, _ := geospatial.ParsePolicy(cfg.Projection.Policy) // validated by config.Load
	projector, err := geospatial.NewProjector(cfg.Projection.Bounds, policy)
	if err != nil {
		log.Fatalf("projector: %v", err)
	}
	deps.Sites = usecases.NewSiteService(sites)
	deps.Maps = usecases.NewMapService(sites, projector, layoutCache, cfg.Cache.LayoutTTL)
	deps.Sessions = usecases.NewSessionService(sites, publisher)

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "Hydroline Analytics API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, If-None-Match",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "policy", policy, "version", version)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

// countInteraction tallies interactions seen on the broker.
func countInteraction(ctx context.Context, event *domain.Interaction) error {
	category := string(event.Category)
	if category == "" {
		category = "none"
	}
	metrics.InteractionsReceived.WithLabelValues(event.Kind, category).Inc()
	return nil
}

func reportPoolStats(ctx context.Context, db *postgres.DB) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.UpdateDBPoolMetrics(db.Pool.Stat())
		}
	}
}

package main

import (
	"context"
	"flag"
	"log"
	"log/slog"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/hydroline/analytics/internal/adapters/nats"
	"github.com/hydroline/analytics/internal/adapters/postgres"
	"github.com/hydroline/analytics/internal/adapters/valkey"
	"github.com/hydroline/analytics/internal/catalog"
	"github.com/hydroline/analytics/internal/core/ports"
	"github.com/hydroline/analytics/internal/core/usecases"
	"github.com/hydroline/analytics/internal/pkg/config"
	"github.com/hydroline/analytics/internal/pkg/geospatial"
	"github.com/hydroline/analytics/internal/pkg/logging"
	"github.com/hydroline/analytics/internal/workflows"
)

func main() {
	start := flag.Bool("start", false, "start one catalog sync and wait for its result instead of running the worker")
	skipSeed := flag.Bool("skip-seed", false, "do not write the catalog to Postgres")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load("hydroline-catalogsync")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	ctx := context.Background()

	if *start {
		run, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
			ID:        "catalog-sync",
			TaskQueue: cfg.Temporal.TaskQueue,
		}, workflows.CatalogSyncWorkflowName, workflows.CatalogSyncInput{SkipSeed: *skipSeed})
		if err != nil {
			log.Fatalf("start workflow: %v", err)
		}
		slog.Info("catalog sync started", "workflow_id", run.GetID(), "run_id", run.GetRunID())

		var result workflows.CatalogSyncResult
		if err := run.Get(ctx, &result); err != nil {
			log.Fatalf("catalog sync: %v", err)
		}
		slog.Info("catalog sync finished", "sites", result.Sites, "seeded", result.Seeded, "markers_warmed", result.MarkersWarmed)
		return
	}

	acts := &workflows.CatalogSyncActivities{Load: catalog.Load}

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		slog.Warn("database unavailable, seeding disabled", "error", err)
	} else {
		defer db.Close()
		acts.Seeder = postgres.NewSiteRepo(db)
	}

	var layoutCache ports.CacheService
	if cache, err := valkey.New(cfg.Valkey.Addr); err != nil {
		slog.Warn("valkey unavailable, layouts will not be warmed", "error", err)
	} else {
		defer cache.Close()
		layoutCache = cache
	}

	if pub, err := natsadapter.NewPublisher(cfg.NATS.URL); err != nil {
		slog.Warn("nats unavailable, sync will not be announced", "error", err)
	} else {
		defer pub.Close()
		acts.Publisher = pub
	}

	cat, err := catalog.Load()
	if err != nil {
		log.Fatalf("catalog: %v", err)
	}
	policy, _ := geospatial.ParsePolicy(cfg.Projection.Policy)
	projector, err := geospatial.NewProjector(cfg.Projection.Bounds, policy)
	if err != nil {
		log.Fatalf("projector: %v", err)
	}
	acts.Maps = usecases.NewMapService(cat, projector, layoutCache, cfg.Cache.LayoutTTL)

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	// Register workflow & activities
	w.RegisterWorkflow(workflows.CatalogSyncWorkflow)
	w.RegisterActivity(acts)

	slog.Info("catalog sync worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}

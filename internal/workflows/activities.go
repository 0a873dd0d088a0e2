package workflows

import (
	"context"
	"fmt"
	"log/slog"

	"go.temporal.io/sdk/temporal"

	"github.com/hydroline/analytics/internal/catalog"
	"github.com/hydroline/analytics/internal/core/domain"
	"github.com/hydroline/analytics/internal/core/ports"
	"github.com/hydroline/analytics/internal/core/usecases"
	"github.com/hydroline/analytics/internal/pkg/telemetry"
)

// ErrTypeInvalidCatalog marks validation failures that retrying cannot fix.
const ErrTypeInvalidCatalog = "InvalidCatalog"

// CatalogSyncActivities holds the activity implementations for the catalog sync workflow.
type CatalogSyncActivities struct {
	Load      func() (*catalog.Catalog, error) // defaults to catalog.Load
	Seeder    ports.SiteSeeder                 // nil without a database
	Maps      *usecases.MapService
	Publisher ports.EventPublisher // optional
}

func (a *CatalogSyncActivities) load() (*catalog.Catalog, error) {
	if a.Load != nil {
		return a.Load()
	}
	return catalog.Load()
}

// ValidateCatalog loads the catalog and returns its size.
func (a *CatalogSyncActivities) ValidateCatalog(ctx context.Context) (int, error) {
	_, span := telemetry.Tracer().Start(ctx, telemetry.SpanCatalogSync)
	defer span.End()

	cat, err := a.load()
	if err != nil {
		return 0, temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeInvalidCatalog, err)
	}
	return cat.Len(), nil
}

// SeedSites replaces the sites table with the catalog contents.
func (a *CatalogSyncActivities) SeedSites(ctx context.Context) (int, error) {
	if a.Seeder == nil {
		slog.Info("no database configured, skipping seed")
		return 0, nil
	}
	cat, err := a.load()
	if err != nil {
		return 0, temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeInvalidCatalog, err)
	}
	n, err := a.Seeder.ReplaceAll(ctx, cat.AllSites())
	if err != nil {
		return 0, fmt.Errorf("seed sites: %w", err)
	}
	return n, nil
}

// WarmLayouts recomputes and caches the layout of every tab.
func (a *CatalogSyncActivities) WarmLayouts(ctx context.Context) (int, error) {
	return a.Maps.WarmCache(ctx)
}

// InvalidateLayouts drops cached layouts (saga compensation for WarmLayouts).
func (a *CatalogSyncActivities) InvalidateLayouts(ctx context.Context) error {
	return a.Maps.InvalidateCache(ctx)
}

// AnnounceSync publishes a catalog_synced interaction.
func (a *CatalogSyncActivities) AnnounceSync(ctx context.Context, sites int) error {
	if a.Publisher == nil {
		slog.Info("catalog synced (no publisher)", "sites", sites)
		return nil
	}
	return a.Publisher.PublishInteraction(ctx, &domain.Interaction{Kind: domain.InteractionCatalogSynced})
}

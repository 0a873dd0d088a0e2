package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// CatalogSyncWorkflowName is the registered name of CatalogSyncWorkflow.
const CatalogSyncWorkflowName = "CatalogSyncWorkflow"

// CatalogSyncInput controls which steps of a sync run.
type CatalogSyncInput struct {
	SkipSeed     bool // leave the sites table untouched
	SkipAnnounce bool // do not publish catalog_synced
}

// CatalogSyncResult summarises a completed sync.
type CatalogSyncResult struct {
	Sites         int
	Seeded        int
	MarkersWarmed int
}

// CatalogSyncWorkflow validates the embedded catalog, seeds it into Postgres,
// warms the layout cache for both tabs and announces the sync. If warming
// fails the partially written layouts are invalidated before returning.
func CatalogSyncWorkflow(ctx workflow.Context, input CatalogSyncInput) (*CatalogSyncResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting catalog sync", "skipSeed", input.SkipSeed)

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts:        3,
			NonRetryableErrorTypes: []string{ErrTypeInvalidCatalog},
		},
	})

	var acts *CatalogSyncActivities
	result := &CatalogSyncResult{}

	// Step 1: Validate
	if err := workflow.ExecuteActivity(ctx, acts.ValidateCatalog).Get(ctx, &result.Sites); err != nil {
		return nil, err
	}

	// Step 2: Seed
	if !input.SkipSeed {
		if err := workflow.ExecuteActivity(ctx, acts.SeedSites).Get(ctx, &result.Seeded); err != nil {
			return nil, err
		}
	}

	// Step 3: Warm layouts
	if err := workflow.ExecuteActivity(ctx, acts.WarmLayouts).Get(ctx, &result.MarkersWarmed); err != nil {
		logger.Warn("layout warm-up failed, invalidating", "error", err)
		_ = workflow.ExecuteActivity(ctx, acts.InvalidateLayouts).Get(ctx, nil)
		return nil, err
	}

	// Step 4: Announce (best effort)
	if !input.SkipAnnounce {
		if err := workflow.ExecuteActivity(ctx, acts.AnnounceSync, result.Sites).Get(ctx, nil); err != nil {
			logger.Warn("announce failed", "error", err)
		}
	}

	logger.Info("Catalog sync complete", "sites", result.Sites, "seeded", result.Seeded, "markers", result.MarkersWarmed)
	return result, nil
}

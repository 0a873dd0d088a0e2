package ports

import (
	"context"

	"github.com/hydroline/analytics/internal/core/domain"
)

// SiteRepository reads hydrogen sites. Implementations are read-only.
type SiteRepository interface {
	List(ctx context.Context) ([]domain.Site, error)
	ListByCategory(ctx context.Context, category domain.Category) ([]domain.Site, error)
	GetByID(ctx context.Context, id string) (*domain.Site, error)
}

// SiteSeeder writes the reference dataset into a backing store.
type SiteSeeder interface {
	ReplaceAll(ctx context.Context, sites []domain.Site) (int, error)
}

package usecases

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/hydroline/analytics/internal/core/domain"
	"github.com/hydroline/analytics/internal/core/ports"
	"github.com/hydroline/analytics/internal/pkg/geospatial"
	"github.com/hydroline/analytics/internal/pkg/telemetry"
)

// SiteFilter narrows a site listing. Zero values match everything.
type SiteFilter struct {
	Category domain.Category
	State    string
}

// SiteService handles site catalog queries.
type SiteService struct {
	sites ports.SiteRepository
}

// NewSiteService creates a new SiteService.
func NewSiteService(sites ports.SiteRepository) *SiteService {
	return &SiteService{sites: sites}
}

// List returns sites matching the filter, in dataset order.
func (s *SiteService) List(ctx context.Context, f SiteFilter) ([]domain.Site, error) {
	var (
		sites []domain.Site
		err   error
	)
	if f.Category != "" {
		sites, err = s.sites.ListByCategory(ctx, f.Category)
	} else {
		sites, err = s.sites.List(ctx)
	}
	if err != nil {
		return nil, err
	}

	if f.State == "" {
		return sites, nil
	}
	filtered := sites[:0:0]
	for _, site := range sites {
		if strings.EqualFold(site.State, f.State) {
			filtered = append(filtered, site)
		}
	}
	return filtered, nil
}

// GetByID returns a single site.
func (s *SiteService) GetByID(ctx context.Context, id string) (*domain.Site, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty id", domain.ErrSiteNotFound)
	}
	return s.sites.GetByID(ctx, id)
}

// Detail returns the formatted detail view of a site.
func (s *SiteService) Detail(ctx context.Context, id string) (*domain.SiteDetail, error) {
	site, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	d := site.Detail()
	return &d, nil
}

// FindNearby returns sites within radiusMeters of center, closest first.
func (s *SiteService) FindNearby(ctx context.Context, center domain.GeoPoint, radiusMeters float64, limit int) ([]domain.Site, error) {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanSiteNearby)
	defer span.End()

	if !center.Valid() {
		return nil, fmt.Errorf("%w: (%v, %v)", domain.ErrInvalidCoordinate, center.Lat, center.Lon)
	}
	if !(radiusMeters > 0) || math.IsInf(radiusMeters, 0) {
		return nil, fmt.Errorf("radius must be positive, got %v", radiusMeters)
	}
	if limit <= 0 || limit > 50 {
		limit = 50
	}

	all, err := s.sites.List(ctx)
	if err != nil {
		return nil, err
	}

	window := geospatial.SearchWindow(center, radiusMeters)
	var nearby []domain.Site
	for _, site := range all {
		if !window.Contains(site.Location) {
			continue
		}
		d := geospatial.Haversine(center, site.Location)
		if d > radiusMeters {
			continue
		}
		site.Distance = &d
		nearby = append(nearby, site)
	}

	sort.SliceStable(nearby, func(i, j int) bool {
		return *nearby[i].Distance < *nearby[j].Distance
	})
	if len(nearby) > limit {
		nearby = nearby[:limit]
	}
	return nearby, nil
}

// StateSummaries counts sites per state, sorted by state name.
func (s *SiteService) StateSummaries(ctx context.Context) ([]domain.StateSummary, error) {
	all, err := s.sites.List(ctx)
	if err != nil {
		return nil, err
	}

	byState := make(map[string]*domain.StateSummary)
	for _, site := range all {
		sum, ok := byState[site.State]
		if !ok {
			sum = &domain.StateSummary{State: site.State}
			byState[site.State] = sum
		}
		switch site.Category {
		case domain.CategoryExisting:
			sum.Existing++
		case domain.CategoryPotential:
			sum.Potential++
		}
		sum.Total++
	}

	out := make([]domain.StateSummary, 0, len(byState))
	for _, sum := range byState {
		out = append(out, *sum)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].State < out[j].State })
	return out, nil
}

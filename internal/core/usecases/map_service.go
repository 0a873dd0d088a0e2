package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/hydroline/analytics/internal/core/domain"
	"github.com/hydroline/analytics/internal/core/ports"
	"github.com/hydroline/analytics/internal/pkg/geospatial"
	"github.com/hydroline/analytics/internal/pkg/metrics"
	"github.com/hydroline/analytics/internal/pkg/telemetry"
)

// DefaultLayoutTTL is how long a computed layout stays in the cache, in seconds.
const DefaultLayoutTTL = 3600

// MapService positions sites on the map canvas.
type MapService struct {
	sites     ports.SiteRepository
	projector *geospatial.Projector
	cache     ports.CacheService
	ttl       int
}

// NewMapService creates a new MapService. cache may be nil.
func NewMapService(sites ports.SiteRepository, projector *geospatial.Projector, cache ports.CacheService, ttlSeconds int) *MapService {
	if ttlSeconds <= 0 {
		ttlSeconds = DefaultLayoutTTL
	}
	return &MapService{sites: sites, projector: projector, cache: cache, ttl: ttlSeconds}
}

// Bounds returns the bounding box the canvas is drawn over.
func (s *MapService) Bounds() domain.BoundingBox { return s.projector.Bounds() }

// Policy returns the out-of-box policy in effect.
func (s *MapService) Policy() geospatial.Policy { return s.projector.Policy() }

// Layout returns the markers and legend for every site of a category.
func (s *MapService) Layout(ctx context.Context, category domain.Category) (*domain.MapLayout, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownCategory, category)
	}

	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanMapLayout)
	defer span.End()
	span.SetAttributes(attribute.String("category", string(category)))

	key := s.layoutKey(category)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, key); err == nil {
			var layout domain.MapLayout
			if err := json.Unmarshal(data, &layout); err == nil {
				metrics.CacheHits.WithLabelValues("map_layout").Inc()
				span.SetAttributes(attribute.Bool("cache_hit", true))
				return &layout, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("map_layout").Inc()
	}

	layout, err := s.buildLayout(ctx, category)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(layout); err == nil {
			if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
				slog.Warn("cache layout", "category", category, "error", err)
			}
		}
	}
	return layout, nil
}

func (s *MapService) buildLayout(ctx context.Context, category domain.Category) (*domain.MapLayout, error) {
	sites, err := s.sites.ListByCategory(ctx, category)
	if err != nil {
		return nil, err
	}

	layout := &domain.MapLayout{
		Category: category,
		Bounds:   s.projector.Bounds(),
		Policy:   string(s.projector.Policy()),
		Markers:  make([]domain.Marker, 0, len(sites)),
	}
	for _, site := range sites {
		pos, err := s.project(site.Location)
		switch {
		case errors.Is(err, geospatial.ErrOutsideBounds):
			layout.Excluded = append(layout.Excluded, site.ID)
			continue
		case err != nil:
			return nil, fmt.Errorf("project site %s: %w", site.ID, err)
		}
		layout.Markers = append(layout.Markers, domain.Marker{
			SiteID:  site.ID,
			Name:    site.Name,
			X:       pos.X,
			Y:       pos.Y,
			Clamped: pos.Clamped,
		})
	}

	layout.Legend = domain.Legend{
		Title:       category.LegendTitle(),
		Count:       len(layout.Markers),
		StatLabel:   category.StatLabel(),
		MarkerColor: category.MarkerColor(),
		MarkerIcon:  category.MarkerIcon(),
	}
	metrics.LayoutsBuilt.WithLabelValues(string(category)).Inc()
	return layout, nil
}

// Project converts a single coordinate into a canvas position.
func (s *MapService) Project(ctx context.Context, pt domain.GeoPoint) (geospatial.Position, error) {
	_, span := telemetry.Tracer().Start(ctx, telemetry.SpanMapProject)
	defer span.End()
	span.SetAttributes(attribute.Float64("lat", pt.Lat), attribute.Float64("lon", pt.Lon))

	if !pt.Valid() {
		metrics.Projections.WithLabelValues("invalid").Inc()
		err := fmt.Errorf("%w: (%v, %v)", domain.ErrInvalidCoordinate, pt.Lat, pt.Lon)
		span.RecordError(err)
		return geospatial.Position{}, err
	}

	pos, err := s.project(pt)
	if err != nil {
		span.RecordError(err)
	}
	return pos, err
}

func (s *MapService) project(pt domain.GeoPoint) (geospatial.Position, error) {
	pos, err := s.projector.Project(pt)
	switch {
	case errors.Is(err, geospatial.ErrOutsideBounds):
		metrics.Projections.WithLabelValues("rejected").Inc()
	case err != nil:
		metrics.Projections.WithLabelValues("invalid").Inc()
	case pos.Clamped:
		metrics.Projections.WithLabelValues("clamped").Inc()
	default:
		metrics.Projections.WithLabelValues("inside").Inc()
	}
	return pos, err
}

// WarmCache computes and stores the layout of every category.
// It returns the total number of markers placed.
func (s *MapService) WarmCache(ctx context.Context) (int, error) {
	if err := s.InvalidateCache(ctx); err != nil {
		return 0, err
	}
	total := 0
	for _, c := range domain.Categories {
		layout, err := s.Layout(ctx, c)
		if err != nil {
			return total, fmt.Errorf("warm %s layout: %w", c, err)
		}
		total += len(layout.Markers)
	}
	return total, nil
}

// InvalidateCache drops every cached layout for the current bounds and policy.
func (s *MapService) InvalidateCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	for _, c := range domain.Categories {
		if err := s.cache.Delete(ctx, s.layoutKey(c)); err != nil {
			return fmt.Errorf("invalidate %s layout: %w", c, err)
		}
	}
	return nil
}

func (s *MapService) layoutKey(category domain.Category) string {
	b := s.projector.Bounds()
	return fmt.Sprintf("map:layout:%s:%g:%g:%g:%g:%s", s.projector.Policy(), b.North, b.South, b.East, b.West, category)
}

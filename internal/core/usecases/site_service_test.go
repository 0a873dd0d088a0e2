package usecases_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/hydroline/analytics/internal/catalog"
	"github.com/hydroline/analytics/internal/core/domain"
	"github.com/hydroline/analytics/internal/core/usecases"
)

// --- Mock SiteRepository ---

type mockSiteRepo struct {
	listFn           func(ctx context.Context) ([]domain.Site, error)
	listByCategoryFn func(ctx context.Context, c domain.Category) ([]domain.Site, error)
	getByIDFn        func(ctx context.Context, id string) (*domain.Site, error)
}

func (m *mockSiteRepo) List(ctx context.Context) ([]domain.Site, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockSiteRepo) ListByCategory(ctx context.Context, c domain.Category) ([]domain.Site, error) {
	if m.listByCategoryFn != nil {
		return m.listByCategoryFn(ctx, c)
	}
	return nil, nil
}

func (m *mockSiteRepo) GetByID(ctx context.Context, id string) (*domain.Site, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrSiteNotFound
}

func TestSiteService_List_ByCategory(t *testing.T) {
	var gotCategory domain.Category
	repo := &mockSiteRepo{
		listByCategoryFn: func(ctx context.Context, c domain.Category) ([]domain.Site, error) {
			gotCategory = c
			return []domain.Site{{ID: "pot-1", Category: c}}, nil
		},
	}

	svc := usecases.NewSiteService(repo)
	sites, err := svc.List(context.Background(), usecases.SiteFilter{Category: domain.CategoryPotential})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotCategory != domain.CategoryPotential {
		t.Errorf("expected potential category query, got %q", gotCategory)
	}
	if len(sites) != 1 || sites[0].ID != "pot-1" {
		t.Errorf("unexpected sites %+v", sites)
	}
}

func TestSiteService_List_StateFilter(t *testing.T) {
	svc := usecases.NewSiteService(catalog.MustLoad())

	sites, err := svc.List(context.Background(), usecases.SiteFilter{State: "gujarat"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sites) != 7 {
		t.Fatalf("expected 7 Gujarat sites, got %d", len(sites))
	}
	for _, s := range sites {
		if s.State != "Gujarat" {
			t.Errorf("site %s in %s leaked through the state filter", s.ID, s.State)
		}
	}

	existing, err := svc.List(context.Background(), usecases.SiteFilter{Category: domain.CategoryExisting, State: "Gujarat"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(existing) != 3 {
		t.Errorf("expected 3 existing Gujarat sites, got %d", len(existing))
	}
}

func TestSiteService_List_RepoError(t *testing.T) {
	boom := errors.New("boom")
	svc := usecases.NewSiteService(&mockSiteRepo{
		listFn: func(ctx context.Context) ([]domain.Site, error) { return nil, boom },
	})
	if _, err := svc.List(context.Background(), usecases.SiteFilter{}); !errors.Is(err, boom) {
		t.Errorf("expected repo error, got %v", err)
	}
}

func TestSiteService_GetByID_Empty(t *testing.T) {
	svc := usecases.NewSiteService(&mockSiteRepo{})
	if _, err := svc.GetByID(context.Background(), ""); !errors.Is(err, domain.ErrSiteNotFound) {
		t.Errorf("expected ErrSiteNotFound, got %v", err)
	}
}

func TestSiteService_Detail(t *testing.T) {
	svc := usecases.NewSiteService(catalog.MustLoad())

	d, err := svc.Detail(context.Background(), "ex-8")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Name != "Bikaner Project" {
		t.Errorf("expected Bikaner Project, got %s", d.Name)
	}
	if d.Location != "28.022°N, 73.311°E" {
		t.Errorf("unexpected location %q", d.Location)
	}
	if d.Type != "Existing Project" {
		t.Errorf("unexpected type %q", d.Type)
	}

	if _, err := svc.Detail(context.Background(), "ex-99"); !errors.Is(err, domain.ErrSiteNotFound) {
		t.Errorf("expected ErrSiteNotFound, got %v", err)
	}
}

func TestSiteService_FindNearby(t *testing.T) {
	svc := usecases.NewSiteService(catalog.MustLoad())
	center := domain.GeoPoint{Lat: 24.1, Lon: 82.65} // Singrauli

	sites, err := svc.FindNearby(context.Background(), center, 20000, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sites) != 2 {
		t.Fatalf("expected 2 sites within 20 km, got %d", len(sites))
	}
	if sites[0].ID != "ex-7" || sites[1].ID != "pot-1" {
		t.Errorf("expected ex-7 then pot-1, got %s then %s", sites[0].ID, sites[1].ID)
	}
	if sites[0].Distance == nil || *sites[0].Distance > 1 {
		t.Errorf("expected ex-7 at ~0 m, got %v", sites[0].Distance)
	}
	if d := *sites[1].Distance; d < 10000 || d > 12500 {
		t.Errorf("expected pot-1 ~11 km away, got %.0f m", d)
	}

	limited, err := svc.FindNearby(context.Background(), center, 20000, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("expected limit to cap results, got %d", len(limited))
	}
}

func TestSiteService_FindNearby_Invalid(t *testing.T) {
	svc := usecases.NewSiteService(catalog.MustLoad())

	_, err := svc.FindNearby(context.Background(), domain.GeoPoint{Lat: 95, Lon: 80}, 1000, 10)
	if !errors.Is(err, domain.ErrInvalidCoordinate) {
		t.Errorf("expected ErrInvalidCoordinate, got %v", err)
	}
	for _, r := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if _, err := svc.FindNearby(context.Background(), domain.GeoPoint{Lat: 20, Lon: 80}, r, 10); err == nil {
			t.Errorf("expected error for radius %v", r)
		}
	}
}

func TestSiteService_StateSummaries(t *testing.T) {
	svc := usecases.NewSiteService(catalog.MustLoad())

	sums, err := svc.StateSummaries(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 1; i < len(sums); i++ {
		if sums[i-1].State >= sums[i].State {
			t.Fatalf("summaries not sorted: %s before %s", sums[i-1].State, sums[i].State)
		}
	}

	total := 0
	for _, s := range sums {
		total += s.Total
		if s.State == "Madhya Pradesh" {
			if s.Existing != 4 || s.Potential != 3 || s.Total != 7 {
				t.Errorf("unexpected Madhya Pradesh counts %+v", s)
			}
		}
	}
	if total != 34 {
		t.Errorf("expected 34 sites across states, got %d", total)
	}
}

package catalog_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hydroline/analytics/internal/catalog"
	"github.com/hydroline/analytics/internal/core/domain"
)

func TestLoad_EmbeddedDataset(t *testing.T) {
	c, err := catalog.Load()
	if err != nil {
		t.Fatalf("embedded dataset should be valid: %v", err)
	}

	if got := len(c.ExistingSites()); got != 17 {
		t.Errorf("expected 17 existing sites, got %d", got)
	}
	if got := len(c.PotentialSites()); got != 17 {
		t.Errorf("expected 17 potential sites, got %d", got)
	}
	if c.Len() != 34 {
		t.Errorf("expected 34 sites in total, got %d", c.Len())
	}
}

func TestLoad_CollectionsDisjointAndUnique(t *testing.T) {
	c := catalog.MustLoad()

	for _, s := range c.ExistingSites() {
		if s.Category != domain.CategoryExisting {
			t.Errorf("%s: existing collection holds category %s", s.ID, s.Category)
		}
	}
	for _, s := range c.PotentialSites() {
		if s.Category != domain.CategoryPotential {
			t.Errorf("%s: potential collection holds category %s", s.ID, s.Category)
		}
	}

	seen := make(map[string]bool)
	for _, s := range c.AllSites() {
		if seen[s.ID] {
			t.Errorf("duplicate id %s", s.ID)
		}
		seen[s.ID] = true
	}
	if len(seen) != c.Len() {
		t.Errorf("union has %d ids, expected %d", len(seen), c.Len())
	}
}

func TestCatalog_ReadsAreCopies(t *testing.T) {
	c := catalog.MustLoad()

	sites := c.ExistingSites()
	sites[0].Name = "mutated"

	again := c.ExistingSites()
	if again[0].Name == "mutated" {
		t.Fatal("mutating a returned slice changed the catalog")
	}
	if len(again) != 17 {
		t.Fatalf("catalog length changed to %d", len(again))
	}
}

func TestCatalog_GetByID(t *testing.T) {
	c := catalog.MustLoad()

	s, err := c.GetByID(context.Background(), "ex-8")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Name != "Bikaner Project" || s.State != "Rajasthan" {
		t.Errorf("unexpected site %+v", s)
	}

	if _, err := c.GetByID(context.Background(), "nope"); !errors.Is(err, domain.ErrSiteNotFound) {
		t.Errorf("expected ErrSiteNotFound, got %v", err)
	}
}

func TestCatalog_ListByCategory(t *testing.T) {
	c := catalog.MustLoad()

	pot, err := c.ListByCategory(context.Background(), domain.CategoryPotential)
	if err != nil {
		t.Fatal(err)
	}
	if pot[0].ID != "pot-1" {
		t.Errorf("expected dataset order, first is %s", pot[0].ID)
	}

	if _, err := c.ListByCategory(context.Background(), "planned"); !errors.Is(err, domain.ErrUnknownCategory) {
		t.Errorf("expected ErrUnknownCategory, got %v", err)
	}
}

func TestParse_RejectsBadRecords(t *testing.T) {
	doc := `
existing:
  - id: a
    name: Alpha
    latitude: 95
    longitude: 10
    state: X
  - id: a
    name: Duplicate
    latitude: 10
    longitude: 10
    state: X
potential:
  - id: b
    name: ""
    latitude: 10
    longitude: 200
    state: Y
`
	_, err := catalog.Parse([]byte(doc))
	if !errors.Is(err, catalog.ErrInvalidDataset) {
		t.Fatalf("expected ErrInvalidDataset, got %v", err)
	}

	msg := err.Error()
	for _, want := range []string{"latitude 95", "duplicate id", "name is required", "longitude 200"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error should mention %q, got:\n%s", want, msg)
		}
	}
}

func TestParse_UnknownField(t *testing.T) {
	doc := `
existing:
  - id: a
    name: Alpha
    latitude: 10
    longitude: 10
    state: X
    capacity_mw: 5
`
	if _, err := catalog.Parse([]byte(doc)); !errors.Is(err, catalog.ErrInvalidDataset) {
		t.Fatalf("expected ErrInvalidDataset for unknown field, got %v", err)
	}
}

func TestFromSites(t *testing.T) {
	c, err := catalog.FromSites([]domain.Site{
		{ID: "e1", Name: "E", Category: domain.CategoryExisting, Location: domain.GeoPoint{Lat: 20, Lon: 80}},
		{ID: "p1", Name: "P", Category: domain.CategoryPotential, Location: domain.GeoPoint{Lat: 21, Lon: 81}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.ExistingSites()) != 1 || len(c.PotentialSites()) != 1 {
		t.Errorf("sites not routed by category")
	}

	if _, err := catalog.FromSites([]domain.Site{{ID: "x", Name: "X", Category: "planned"}}); !errors.Is(err, catalog.ErrInvalidDataset) {
		t.Errorf("expected ErrInvalidDataset, got %v", err)
	}
}

func TestStates(t *testing.T) {
	states := catalog.MustLoad().States()
	if len(states) == 0 {
		t.Fatal("expected states")
	}
	for i := 1; i < len(states); i++ {
		if states[i-1] >= states[i] {
			t.Fatalf("states not sorted/distinct: %v", states)
		}
	}
}

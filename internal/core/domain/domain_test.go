package domain_test

import (
	"errors"
	"math"
	"testing"

	"github.com/hydroline/analytics/internal/core/domain"
)

func TestParseCategory(t *testing.T) {
	cases := map[string]domain.Category{
		"existing":    domain.CategoryExisting,
		"Potential":   domain.CategoryPotential,
		" EXISTING  ": domain.CategoryExisting,
	}
	for in, want := range cases {
		got, err := domain.ParseCategory(in)
		if err != nil {
			t.Fatalf("ParseCategory(%q): unexpected error: %v", in, err)
		}
		if got != want {
			t.Errorf("ParseCategory(%q) = %s, want %s", in, got, want)
		}
	}

	if _, err := domain.ParseCategory("planned"); !errors.Is(err, domain.ErrUnknownCategory) {
		t.Errorf("expected ErrUnknownCategory, got %v", err)
	}
}

func TestCategoryLabels(t *testing.T) {
	if got := domain.CategoryPotential.Label(); got != "Potential Site" {
		t.Errorf("potential label = %q", got)
	}
	if got := domain.CategoryExisting.Label(); got != "Existing Project" {
		t.Errorf("existing label = %q", got)
	}
	if got := domain.CategoryExisting.LegendTitle(); got != "Existing Projects" {
		t.Errorf("existing legend = %q", got)
	}
	if domain.CategoryExisting.MarkerColor() == domain.CategoryPotential.MarkerColor() {
		t.Error("categories should use distinct marker colors")
	}
}

func TestBoundingBox_Validate(t *testing.T) {
	if err := domain.IndiaBounds.Validate(); err != nil {
		t.Fatalf("india bounds should be valid: %v", err)
	}

	bad := []domain.BoundingBox{
		{North: 10, South: 10, East: 20, West: 0},
		{North: 10, South: 0, East: 20, West: 20},
		{North: 0, South: 10, East: 20, West: 0},
		{North: math.NaN(), South: 0, East: 20, West: 0},
		{North: 10, South: 0, East: math.Inf(1), West: 0},
	}
	for _, b := range bad {
		if err := b.Validate(); !errors.Is(err, domain.ErrInvalidBounds) {
			t.Errorf("Validate(%+v) = %v, want ErrInvalidBounds", b, err)
		}
	}
}

func TestBoundingBox_Contains(t *testing.T) {
	b := domain.IndiaBounds
	if !b.Contains(domain.GeoPoint{Lat: 28.022, Lon: 73.311}) {
		t.Error("Bikaner should be inside India bounds")
	}
	if !b.Contains(domain.GeoPoint{Lat: b.North, Lon: b.West}) {
		t.Error("edges should be contained")
	}
	if b.Contains(domain.GeoPoint{Lat: 51.5, Lon: -0.12}) {
		t.Error("London should be outside India bounds")
	}
}

func TestGeoPoint_Valid(t *testing.T) {
	if !(domain.GeoPoint{Lat: -90, Lon: 180}).Valid() {
		t.Error("range limits should be valid")
	}
	if (domain.GeoPoint{Lat: 91, Lon: 0}).Valid() {
		t.Error("latitude 91 should be invalid")
	}
	if (domain.GeoPoint{Lat: 0, Lon: math.NaN()}).Valid() {
		t.Error("NaN longitude should be invalid")
	}
}

func TestSiteDetail(t *testing.T) {
	s := domain.Site{
		ID:          "ex-8",
		Name:        "Bikaner Project",
		Location:    domain.GeoPoint{Lat: 28.022, Lon: 73.311},
		State:       "Rajasthan",
		Category:    domain.CategoryExisting,
		Description: "Solar-powered green hydrogen",
	}

	d := s.Detail()
	if d.Location != "28.022°N, 73.311°E" {
		t.Errorf("unexpected location %q", d.Location)
	}
	if d.Type != "Existing Project" {
		t.Errorf("unexpected type %q", d.Type)
	}
	if d.MarkerIcon != "factory" {
		t.Errorf("unexpected icon %q", d.MarkerIcon)
	}
}

func TestFormatCoordinates_Hemispheres(t *testing.T) {
	got := domain.FormatCoordinates(domain.GeoPoint{Lat: -33.8688, Lon: -70.5})
	if got != "33.869°S, 70.500°W" {
		t.Errorf("got %q", got)
	}
}

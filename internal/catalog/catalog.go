// Package catalog holds the compiled-in hydrogen site dataset. The data is
// validated once at load time and is read-only afterwards.
package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hydroline/analytics/internal/core/domain"
)

//go:embed sites.yaml
var embeddedSites []byte

// ErrInvalidDataset wraps every load-time validation failure.
var ErrInvalidDataset = errors.New("invalid site dataset")

type siteRecord struct {
	ID          string  `yaml:"id"`
	Name        string  `yaml:"name"`
	Latitude    float64 `yaml:"latitude"`
	Longitude   float64 `yaml:"longitude"`
	State       string  `yaml:"state"`
	Description string  `yaml:"description"`
}

type document struct {
	Existing  []siteRecord `yaml:"existing"`
	Potential []siteRecord `yaml:"potential"`
}

// Catalog is the immutable set of sites, split into its two named collections.
// It implements ports.SiteRepository.
type Catalog struct {
	existing  []domain.Site
	potential []domain.Site
	byID      map[string]domain.Site
}

// Load parses and validates the embedded dataset.
func Load() (*Catalog, error) {
	return Parse(embeddedSites)
}

// MustLoad is Load for callers that treat a broken embedded dataset as a build defect.
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

// Parse decodes a YAML document with `existing` and `potential` lists and
// validates it. Unknown fields are rejected.
func Parse(data []byte) (*Catalog, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrInvalidDataset, err)
	}

	c := &Catalog{
		existing:  toSites(doc.Existing, domain.CategoryExisting),
		potential: toSites(doc.Potential, domain.CategoryPotential),
	}
	if err := c.index(); err != nil {
		return nil, err
	}
	return c, nil
}

// FromSites builds a catalog from already-typed sites, routing each one into
// its collection by category. It applies the same validation as Parse.
func FromSites(sites []domain.Site) (*Catalog, error) {
	c := &Catalog{}
	var errs []string
	for _, s := range sites {
		switch s.Category {
		case domain.CategoryExisting:
			c.existing = append(c.existing, s)
		case domain.CategoryPotential:
			c.potential = append(c.potential, s)
		default:
			errs = append(errs, fmt.Sprintf("%s: unknown category %q", s.ID, s.Category))
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w:\n  - %s", ErrInvalidDataset, strings.Join(errs, "\n  - "))
	}
	if err := c.index(); err != nil {
		return nil, err
	}
	return c, nil
}

func toSites(records []siteRecord, cat domain.Category) []domain.Site {
	sites := make([]domain.Site, 0, len(records))
	for _, r := range records {
		sites = append(sites, domain.Site{
			ID:          strings.TrimSpace(r.ID),
			Name:        strings.TrimSpace(r.Name),
			Location:    domain.GeoPoint{Lat: r.Latitude, Lon: r.Longitude},
			State:       strings.TrimSpace(r.State),
			Category:    cat,
			Description: strings.TrimSpace(r.Description),
		})
	}
	return sites
}

// index validates every site and builds the ID lookup. All problems are
// reported together.
func (c *Catalog) index() error {
	var errs []string
	c.byID = make(map[string]domain.Site, len(c.existing)+len(c.potential))

	check := func(s domain.Site, want domain.Category) {
		label := s.ID
		if label == "" {
			label = fmt.Sprintf("%q", s.Name)
		}
		if s.ID == "" {
			errs = append(errs, label+": id is required")
		}
		if s.Name == "" {
			errs = append(errs, label+": name is required")
		}
		if s.Category != want {
			errs = append(errs, fmt.Sprintf("%s: category %q in %s collection", label, s.Category, want))
		}
		if math.IsNaN(s.Location.Lat) || math.IsInf(s.Location.Lat, 0) || s.Location.Lat < -90 || s.Location.Lat > 90 {
			errs = append(errs, fmt.Sprintf("%s: latitude %v out of [-90, 90]", label, s.Location.Lat))
		}
		if math.IsNaN(s.Location.Lon) || math.IsInf(s.Location.Lon, 0) || s.Location.Lon < -180 || s.Location.Lon > 180 {
			errs = append(errs, fmt.Sprintf("%s: longitude %v out of [-180, 180]", label, s.Location.Lon))
		}
		if s.ID != "" {
			if _, dup := c.byID[s.ID]; dup {
				errs = append(errs, s.ID+": duplicate id")
			} else {
				c.byID[s.ID] = s
			}
		}
	}

	for _, s := range c.existing {
		check(s, domain.CategoryExisting)
	}
	for _, s := range c.potential {
		check(s, domain.CategoryPotential)
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w:\n  - %s", ErrInvalidDataset, strings.Join(errs, "\n  - "))
	}
	return nil
}

// ExistingSites returns a copy of the existing-project collection.
func (c *Catalog) ExistingSites() []domain.Site { return clone(c.existing) }

// PotentialSites returns a copy of the potential-site collection.
func (c *Catalog) PotentialSites() []domain.Site { return clone(c.potential) }

// AllSites returns existing followed by potential sites.
func (c *Catalog) AllSites() []domain.Site {
	all := make([]domain.Site, 0, len(c.existing)+len(c.potential))
	all = append(all, c.existing...)
	return append(all, c.potential...)
}

// Len is the total number of sites.
func (c *Catalog) Len() int { return len(c.existing) + len(c.potential) }

// States returns the distinct state names, sorted.
func (c *Catalog) States() []string {
	seen := make(map[string]struct{})
	for _, s := range c.byID {
		seen[s.State] = struct{}{}
	}
	states := make([]string, 0, len(seen))
	for st := range seen {
		states = append(states, st)
	}
	sort.Strings(states)
	return states
}

// List implements ports.SiteRepository.
func (c *Catalog) List(ctx context.Context) ([]domain.Site, error) {
	return c.AllSites(), nil
}

// ListByCategory implements ports.SiteRepository.
func (c *Catalog) ListByCategory(ctx context.Context, cat domain.Category) ([]domain.Site, error) {
	switch cat {
	case domain.CategoryExisting:
		return c.ExistingSites(), nil
	case domain.CategoryPotential:
		return c.PotentialSites(), nil
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrUnknownCategory, cat)
}

// GetByID implements ports.SiteRepository.
func (c *Catalog) GetByID(ctx context.Context, id string) (*domain.Site, error) {
	s, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSiteNotFound, id)
	}
	return &s, nil
}

func clone(sites []domain.Site) []domain.Site {
	out := make([]domain.Site, len(sites))
	copy(out, sites)
	return out
}

package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownCategory is returned when a category string is neither existing nor potential.
var ErrUnknownCategory = errors.New("unknown site category")

// ErrSiteNotFound is returned when no site matches the requested ID.
var ErrSiteNotFound = errors.New("site not found")

// Category partitions the dataset into built and proposed hydrogen sites.
type Category string

const (
	CategoryExisting  Category = "existing"
	CategoryPotential Category = "potential"
)

// DefaultCategory is the tab shown when a session starts.
const DefaultCategory = CategoryPotential

// Categories lists every category in display order.
var Categories = []Category{CategoryPotential, CategoryExisting}

// ParseCategory converts a raw string (case-insensitive) into a Category.
func ParseCategory(s string) (Category, error) {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case CategoryExisting:
		return CategoryExisting, nil
	case CategoryPotential:
		return CategoryPotential, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	return c == CategoryExisting || c == CategoryPotential
}

// Label is the human-readable type shown in the detail view.
func (c Category) Label() string {
	if c == CategoryPotential {
		return "Potential Site"
	}
	return "Existing Project"
}

// LegendTitle is the heading of the map legend for this tab.
func (c Category) LegendTitle() string {
	if c == CategoryPotential {
		return "Potential Sites"
	}
	return "Existing Projects"
}

// StatLabel is the caption under the site counter.
func (c Category) StatLabel() string {
	if c == CategoryPotential {
		return "Potential Sites"
	}
	return "Active Sites"
}

// MarkerColor is the display token for markers of this category.
func (c Category) MarkerColor() string {
	if c == CategoryPotential {
		return "emerald"
	}
	return "red"
}

// MarkerIcon is the icon name drawn inside markers of this category.
func (c Category) MarkerIcon() string {
	if c == CategoryPotential {
		return "zap"
	}
	return "factory"
}

// Site is a green-hydrogen production site. Sites are reference data and are
// never mutated after the catalog is loaded.
type Site struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Location    GeoPoint `json:"location"`
	State       string   `json:"state"`
	Category    Category `json:"category"`
	Description string   `json:"description,omitempty"`
	Distance    *float64 `json:"distance,omitempty"` // computed field, meters
}

// Marker is a site positioned on the map canvas, in percent of width/height.
type Marker struct {
	SiteID  string  `json:"site_id"`
	Name    string  `json:"name"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Clamped bool    `json:"clamped"` // pinned to the canvas edge
}

// Legend describes the legend and stats panels for one tab.
type Legend struct {
	Title       string `json:"title"`
	Count       int    `json:"count"`
	StatLabel   string `json:"stat_label"`
	MarkerColor string `json:"marker_color"`
	MarkerIcon  string `json:"marker_icon"`
}

// MapLayout is the full set of markers for one category.
type MapLayout struct {
	Category Category    `json:"category"`
	Bounds   BoundingBox `json:"bounds"`
	Policy   string      `json:"policy"`
	Markers  []Marker    `json:"markers"`
	Excluded []string    `json:"excluded,omitempty"` // site IDs dropped by the reject policy
	Legend   Legend      `json:"legend"`
}

// SiteDetail is the formatted view of a single site.
type SiteDetail struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	State       string `json:"state"`
	Category    string `json:"category"`
	Type        string `json:"type"`
	Location    string `json:"location"`
	Description string `json:"description,omitempty"`
	MarkerColor string `json:"marker_color"`
	MarkerIcon  string `json:"marker_icon"`
}

// Detail renders s field by field for display.
func (s Site) Detail() SiteDetail {
	return SiteDetail{
		ID:          s.ID,
		Name:        s.Name,
		State:       s.State,
		Category:    string(s.Category),
		Type:        s.Category.Label(),
		Location:    FormatCoordinates(s.Location),
		Description: s.Description,
		MarkerColor: s.Category.MarkerColor(),
		MarkerIcon:  s.Category.MarkerIcon(),
	}
}

// FormatCoordinates renders a point with three decimals and hemisphere suffixes,
// e.g. "28.022°N, 73.311°E".
func FormatCoordinates(p GeoPoint) string {
	ns, ew := "N", "E"
	lat, lon := p.Lat, p.Lon
	if lat < 0 {
		ns, lat = "S", -lat
	}
	if lon < 0 {
		ew, lon = "W", -lon
	}
	return fmt.Sprintf("%.3f°%s, %.3f°%s", lat, ns, lon, ew)
}

// StateSummary counts sites per administrative region.
type StateSummary struct {
	State     string `json:"state"`
	Existing  int    `json:"existing"`
	Potential int    `json:"potential"`
	Total     int    `json:"total"`
}

// Interaction is a map-session event (tab switch, site selection, ...).
type Interaction struct {
	Kind      string   `json:"kind"`
	SessionID string   `json:"session_id,omitempty"`
	Category  Category `json:"category,omitempty"`
	SiteID    string   `json:"site_id,omitempty"`
}

// Interaction kinds.
const (
	InteractionTabSelected   = "tab_selected"
	InteractionSiteSelected  = "site_selected"
	InteractionSiteCleared   = "site_cleared"
	InteractionCatalogSynced = "catalog_synced"
)

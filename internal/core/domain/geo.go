package domain

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidBounds is returned for a bounding box that is degenerate, inverted or non-finite.
	ErrInvalidBounds = errors.New("invalid bounding box")
	// ErrInvalidCoordinate is returned for points outside WGS 84 ranges or non-finite.
	ErrInvalidCoordinate = errors.New("invalid coordinate")
)

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the point is finite and within the WGS 84 ranges.
func (p GeoPoint) Valid() bool {
	if !finite(p.Lat) || !finite(p.Lon) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// BoundingBox is the geographic viewport a map canvas is drawn over.
type BoundingBox struct {
	North float64 `json:"north" yaml:"north" mapstructure:"north"`
	South float64 `json:"south" yaml:"south" mapstructure:"south"`
	East  float64 `json:"east" yaml:"east" mapstructure:"east"`
	West  float64 `json:"west" yaml:"west" mapstructure:"west"`
}

// IndiaBounds is the approximate extent of India used by the map view.
var IndiaBounds = BoundingBox{
	North: 37.6,
	South: 6.4,
	East:  97.25,
	West:  68.7,
}

// Validate checks north > south and east > west with finite values.
func (b BoundingBox) Validate() error {
	for _, v := range []float64{b.North, b.South, b.East, b.West} {
		if !finite(v) {
			return fmt.Errorf("%w: non-finite bound", ErrInvalidBounds)
		}
	}
	if b.North <= b.South {
		return fmt.Errorf("%w: north (%g) must be greater than south (%g)", ErrInvalidBounds, b.North, b.South)
	}
	if b.East <= b.West {
		return fmt.Errorf("%w: east (%g) must be greater than west (%g)", ErrInvalidBounds, b.East, b.West)
	}
	return nil
}

// Width is the longitudinal span in degrees.
func (b BoundingBox) Width() float64 { return b.East - b.West }

// Height is the latitudinal span in degrees.
func (b BoundingBox) Height() float64 { return b.North - b.South }

// Contains reports whether p lies inside the box, edges included.
func (b BoundingBox) Contains(p GeoPoint) bool {
	return p.Lat <= b.North && p.Lat >= b.South && p.Lon <= b.East && p.Lon >= b.West
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

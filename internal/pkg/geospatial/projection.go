package geospatial

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/hydroline/analytics/internal/core/domain"
)

var (
	// ErrNonFiniteCoordinate is returned for NaN or infinite latitude/longitude.
	ErrNonFiniteCoordinate = errors.New("non-finite coordinate")
	// ErrOutsideBounds is returned by the reject policy for points outside the box.
	ErrOutsideBounds = errors.New("coordinate outside bounding box")
)

// Policy decides what happens to coordinates that fall outside the bounding box.
type Policy string

const (
	// PolicyClamp pins out-of-box coordinates to the nearest canvas edge.
	PolicyClamp Policy = "clamp"
	// PolicyReject reports out-of-box coordinates as ErrOutsideBounds.
	PolicyReject Policy = "reject"
)

// ParsePolicy converts a config string into a Policy. Empty means clamp.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyClamp:
		return PolicyClamp, nil
	case PolicyReject:
		return PolicyReject, nil
	}
	return "", fmt.Errorf("unknown projection policy %q (want clamp or reject)", s)
}

// Position is a projected point in percent of the canvas, both axes in [0, 100].
type Position struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Clamped bool    `json:"clamped"`
}

// Projector maps geographic coordinates onto a rectangular canvas using a linear
// (equirectangular) interpolation over a fixed bounding box.
type Projector struct {
	box    domain.BoundingBox
	policy Policy
}

// NewProjector validates the box and returns a Projector for it.
func NewProjector(box domain.BoundingBox, policy Policy) (*Projector, error) {
	if err := box.Validate(); err != nil {
		return nil, err
	}
	if policy == "" {
		policy = PolicyClamp
	}
	if policy != PolicyClamp && policy != PolicyReject {
		return nil, fmt.Errorf("unknown projection policy %q", policy)
	}
	return &Projector{box: box, policy: policy}, nil
}

// Bounds returns the projector's bounding box.
func (p *Projector) Bounds() domain.BoundingBox { return p.box }

// Policy returns the out-of-box policy.
func (p *Projector) Policy() Policy { return p.policy }

// Project converts pt into a canvas position.
func (p *Projector) Project(pt domain.GeoPoint) (Position, error) {
	x, y, err := Equirectangular(pt, p.box)
	if err != nil {
		return Position{}, err
	}

	cx, cy := clamp(x), clamp(y)
	clamped := cx != x || cy != y
	if clamped && p.policy == PolicyReject {
		return Position{}, fmt.Errorf("%w: (%g, %g)", ErrOutsideBounds, pt.Lat, pt.Lon)
	}
	return Position{X: cx, Y: cy, Clamped: clamped}, nil
}

// Equirectangular returns the unclamped percent position of pt inside box.
// Screen y grows downward, so latitude is inverted.
func Equirectangular(pt domain.GeoPoint, box domain.BoundingBox) (x, y float64, err error) {
	if math.IsNaN(pt.Lat) || math.IsInf(pt.Lat, 0) || math.IsNaN(pt.Lon) || math.IsInf(pt.Lon, 0) {
		return 0, 0, ErrNonFiniteCoordinate
	}
	if err := box.Validate(); err != nil {
		return 0, 0, err
	}

	x = (pt.Lon - box.West) / box.Width() * 100
	y = (box.North - pt.Lat) / box.Height() * 100
	return x, y, nil
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

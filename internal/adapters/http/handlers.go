package http

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/hydroline/analytics/internal/core/domain"
	"github.com/hydroline/analytics/internal/core/usecases"
	"github.com/hydroline/analytics/internal/pkg/geospatial"
)

// Nearby search limits, in meters.
const (
	defaultNearbyRadius = 50_000
	maxNearbyRadius     = 500_000
)

// ListSitesHandler returns sites, optionally filtered by category and state.
func ListSitesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var filter usecases.SiteFilter
		if raw := c.Query("category"); raw != "" {
			cat, err := domain.ParseCategory(raw)
			if err != nil {
				return errBadRequest(c, "category must be existing or potential")
			}
			filter.Category = cat
		}
		filter.State = strings.TrimSpace(c.Query("state"))

		sites, err := deps.Sites.List(c.UserContext(), filter)
		if err != nil {
			return errInternal(c, err.Error())
		}

		// Apply offset/limit pagination on the full list
		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 100)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 200 {
			limit = 100
		}

		total := len(sites)
		if offset >= total {
			sites = []domain.Site{}
		} else {
			end := offset + limit
			if end > total {
				end = total
			}
			sites = sites[offset:end]
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: sites, Pagination: pg})
	}
}

// NearbySitesHandler returns sites within a radius of a point, closest first.
func NearbySitesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		pt, err := queryPoint(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		radius := c.QueryFloat("radius", defaultNearbyRadius)
		if !(radius > 0 && radius <= maxNearbyRadius) {
			return errBadRequest(c, fmt.Sprintf("radius must be between 1 and %d meters", maxNearbyRadius))
		}
		limit := c.QueryInt("limit", 20)

		sites, err := deps.Sites.FindNearby(c.UserContext(), pt, radius, limit)
		if err != nil {
			return errInternal(c, err.Error())
		}
		if sites == nil {
			sites = []domain.Site{}
		}
		return c.JSON(sites)
	}
}

// GetSiteHandler returns a single site by ID.
func GetSiteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		site, err := deps.Sites.GetByID(c.UserContext(), c.Params("id"))
		if err != nil {
			return siteError(c, err)
		}
		return c.JSON(site)
	}
}

// SiteDetailHandler returns the formatted detail view of a site.
func SiteDetailHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		detail, err := deps.Sites.Detail(c.UserContext(), c.Params("id"))
		if err != nil {
			return siteError(c, err)
		}
		return c.JSON(detail)
	}
}

// ListStatesHandler returns per-state site counts.
func ListStatesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sums, err := deps.Sites.StateSummaries(c.UserContext())
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(sums)
	}
}

// MapBoundsHandler returns the bounding box and out-of-box policy of the map.
func MapBoundsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"bounds": deps.Maps.Bounds(),
			"policy": deps.Maps.Policy(),
		})
	}
}

// MapLayoutHandler returns the marker layout of one tab. The default tab is potential.
func MapLayoutHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cat := domain.DefaultCategory
		if raw := c.Query("category"); raw != "" {
			parsed, err := domain.ParseCategory(raw)
			if err != nil {
				return errBadRequest(c, "category must be existing or potential")
			}
			cat = parsed
		}

		layout, err := deps.Maps.Layout(c.UserContext(), cat)
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(layout)
	}
}

// ProjectHandler converts a single coordinate into a canvas position.
func ProjectHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		pt, err := queryPoint(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		pos, err := deps.Maps.Project(c.UserContext(), pt)
		switch {
		case errors.Is(err, geospatial.ErrOutsideBounds):
			return errUnprocessable(c, "coordinate is outside the map bounds")
		case err != nil:
			return errBadRequest(c, err.Error())
		}
		return c.JSON(pos)
	}
}

// queryPoint reads the required lat and lon query parameters.
func queryPoint(c *fiber.Ctx) (domain.GeoPoint, error) {
	rawLat, rawLon := c.Query("lat"), c.Query("lon")
	if rawLat == "" || rawLon == "" {
		return domain.GeoPoint{}, errors.New("lat and lon are required")
	}
	lat, err := strconv.ParseFloat(rawLat, 64)
	if err != nil {
		return domain.GeoPoint{}, errors.New("lat must be a number")
	}
	lon, err := strconv.ParseFloat(rawLon, 64)
	if err != nil {
		return domain.GeoPoint{}, errors.New("lon must be a number")
	}
	pt := domain.GeoPoint{Lat: lat, Lon: lon}
	if !pt.Valid() {
		return domain.GeoPoint{}, errors.New("lat must be in [-90, 90] and lon in [-180, 180]")
	}
	return pt, nil
}

func siteError(c *fiber.Ctx, err error) error {
	if errors.Is(err, domain.ErrSiteNotFound) {
		return errNotFound(c, "site not found")
	}
	return errInternal(c, err.Error())
}

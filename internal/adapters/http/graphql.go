package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/hydroline/analytics/internal/core/domain"
	"github.com/hydroline/analytics/internal/core/usecases"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	categoryEnum := graphql.NewEnum(graphql.EnumConfig{
		Name: "Category",
		Values: graphql.EnumValueConfigMap{
			"EXISTING":  &graphql.EnumValueConfig{Value: domain.CategoryExisting},
			"POTENTIAL": &graphql.EnumValueConfig{Value: domain.CategoryPotential},
		},
	})

	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	detailType := graphql.NewObject(graphql.ObjectConfig{
		Name: "SiteDetail",
		Fields: graphql.Fields{
			"type":         &graphql.Field{Type: graphql.String},
			"location":     &graphql.Field{Type: graphql.String},
			"marker_color": &graphql.Field{Type: graphql.String},
			"marker_icon":  &graphql.Field{Type: graphql.String},
		},
	})

	siteType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Site",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.String},
			"name":        &graphql.Field{Type: graphql.String},
			"state":       &graphql.Field{Type: graphql.String},
			"category":    &graphql.Field{Type: categoryEnum},
			"description": &graphql.Field{Type: graphql.String},
			"location":    &graphql.Field{Type: geoPointType},
			"distance":    &graphql.Field{Type: graphql.Float},
			"detail": &graphql.Field{
				Type:        detailType,
				Description: "Formatted view, coordinates rendered to three decimals",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					switch s := p.Source.(type) {
					case domain.Site:
						return s.Detail(), nil
					case *domain.Site:
						return s.Detail(), nil
					}
					return nil, nil
				},
			},
		},
	})

	boundsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "BoundingBox",
		Fields: graphql.Fields{
			"north": &graphql.Field{Type: graphql.Float},
			"south": &graphql.Field{Type: graphql.Float},
			"east":  &graphql.Field{Type: graphql.Float},
			"west":  &graphql.Field{Type: graphql.Float},
		},
	})

	positionFields := graphql.Fields{
		"x":       &graphql.Field{Type: graphql.Float},
		"y":       &graphql.Field{Type: graphql.Float},
		"clamped": &graphql.Field{Type: graphql.Boolean},
	}

	markerType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Marker",
		Fields: graphql.Fields{
			"site_id": &graphql.Field{Type: graphql.String},
			"name":    &graphql.Field{Type: graphql.String},
			"x":       positionFields["x"],
			"y":       positionFields["y"],
			"clamped": positionFields["clamped"],
		},
	})

	legendType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Legend",
		Fields: graphql.Fields{
			"title":        &graphql.Field{Type: graphql.String},
			"count":        &graphql.Field{Type: graphql.Int},
			"stat_label":   &graphql.Field{Type: graphql.String},
			"marker_color": &graphql.Field{Type: graphql.String},
			"marker_icon":  &graphql.Field{Type: graphql.String},
		},
	})

	layoutType := graphql.NewObject(graphql.ObjectConfig{
		Name: "MapLayout",
		Fields: graphql.Fields{
			"category": &graphql.Field{Type: categoryEnum},
			"bounds":   &graphql.Field{Type: boundsType},
			"policy":   &graphql.Field{Type: graphql.String},
			"markers":  &graphql.Field{Type: graphql.NewList(markerType)},
			"excluded": &graphql.Field{Type: graphql.NewList(graphql.String)},
			"legend":   &graphql.Field{Type: legendType},
		},
	})

	positionType := graphql.NewObject(graphql.ObjectConfig{
		Name:   "Position",
		Fields: positionFields,
	})

	stateType := graphql.NewObject(graphql.ObjectConfig{
		Name: "StateSummary",
		Fields: graphql.Fields{
			"state":     &graphql.Field{Type: graphql.String},
			"existing":  &graphql.Field{Type: graphql.Int},
			"potential": &graphql.Field{Type: graphql.Int},
			"total":     &graphql.Field{Type: graphql.Int},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"sites": &graphql.Field{
				Type:        graphql.NewList(siteType),
				Description: "List sites, optionally by category and state",
				Args: graphql.FieldConfigArgument{
					"category": &graphql.ArgumentConfig{Type: categoryEnum},
					"state":    &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					var f usecases.SiteFilter
					if c, ok := p.Args["category"].(domain.Category); ok {
						f.Category = c
					}
					if s, ok := p.Args["state"].(string); ok {
						f.State = s
					}
					return deps.Sites.List(p.Context, f)
				},
			},
			"site": &graphql.Field{
				Type:        siteType,
				Description: "Get a site by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := p.Args["id"].(string)
					return deps.Sites.GetByID(p.Context, id)
				},
			},
			"sitesNearby": &graphql.Field{
				Type:        graphql.NewList(siteType),
				Description: "Find sites near a location, closest first",
				Args: graphql.FieldConfigArgument{
					"lat":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"radius": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: float64(defaultNearbyRadius)},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					pt := domain.GeoPoint{Lat: p.Args["lat"].(float64), Lon: p.Args["lon"].(float64)}
					radius := p.Args["radius"].(float64)
					if !(radius > 0 && radius <= maxNearbyRadius) {
						return nil, fmt.Errorf("radius must be between 1 and %d meters", maxNearbyRadius)
					}
					return deps.Sites.FindNearby(p.Context, pt, radius, p.Args["limit"].(int))
				},
			},
			"states": &graphql.Field{
				Type:        graphql.NewList(stateType),
				Description: "Site counts per state",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Sites.StateSummaries(p.Context)
				},
			},
			"layout": &graphql.Field{
				Type:        layoutType,
				Description: "Marker layout of one tab",
				Args: graphql.FieldConfigArgument{
					"category": &graphql.ArgumentConfig{Type: categoryEnum, DefaultValue: domain.DefaultCategory},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					c, _ := p.Args["category"].(domain.Category)
					if c == "" {
						c = domain.DefaultCategory
					}
					return deps.Maps.Layout(p.Context, c)
				},
			},
			"project": &graphql.Field{
				Type:        positionType,
				Description: "Project a coordinate onto the map canvas",
				Args: graphql.FieldConfigArgument{
					"lat": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					pt := domain.GeoPoint{Lat: p.Args["lat"].(float64), Lon: p.Args["lon"].(float64)}
					if !pt.Valid() {
						return nil, fmt.Errorf("%w: (%v, %v)", domain.ErrInvalidCoordinate, pt.Lat, pt.Lon)
					}
					return deps.Maps.Project(p.Context, pt)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Query == "" {
			return errBadRequest(c, "query is required")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}

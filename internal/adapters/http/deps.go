package http

import (
	"github.com/nats-io/nats.go"

	"github.com/hydroline/analytics/internal/adapters/postgres"
	"github.com/hydroline/analytics/internal/adapters/valkey"
	"github.com/hydroline/analytics/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
// NATS, DB and Cache are optional and only consulted by the readiness check.
type Dependencies struct {
	Sites    *usecases.SiteService
	Maps     *usecases.MapService
	Sessions *usecases.SessionService
	NATS     *nats.Conn
	DB       *postgres.DB
	Cache    *valkey.Cache
	Version  string
	SpecPath string // OpenAPI document served at /docs, DefaultSpecPath if empty
}

package telemetry

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/hydroline/analytics"

// Span names used for instrumentation.
const (
	SpanMapLayout   = "map.layout"
	SpanMapProject  = "map.project"
	SpanSiteNearby  = "sites.nearby"
	SpanCatalogSync = "catalog.sync"
)

// Tracer returns the service tracer from the global provider. Without
// InitTracer it is a no-op tracer.
func Tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}

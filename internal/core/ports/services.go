package ports

import (
	"context"

	"github.com/hydroline/analytics/internal/core/domain"
)

// EventPublisher publishes map-session interactions to a message broker.
type EventPublisher interface {
	PublishInteraction(ctx context.Context, event *domain.Interaction) error
}

// EventSubscriber consumes map-session interactions from a message broker.
type EventSubscriber interface {
	SubscribeInteractions(ctx context.Context, handler func(ctx context.Context, event *domain.Interaction) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

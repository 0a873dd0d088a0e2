package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/hydroline/analytics/internal/core/domain"
)

const (
	// InteractionsStream holds map-session interactions.
	InteractionsStream = "HYDROLINE_INTERACTIONS"
	// InteractionSubjectPrefix is followed by the interaction kind.
	InteractionSubjectPrefix = "hydroline.interactions."
)

// InteractionSubject returns the subject an interaction of kind is published on.
func InteractionSubject(kind string) string {
	return InteractionSubjectPrefix + kind
}

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	if err := ensureStream(js); err != nil {
		conn.Close()
		return nil, err
	}

	return &Publisher{conn: conn, js: js}, nil
}

func ensureStream(js nats.JetStreamContext) error {
	cfg := &nats.StreamConfig{
		Name:      InteractionsStream,
		Subjects:  []string{InteractionSubjectPrefix + ">"},
		Retention: nats.LimitsPolicy,
		MaxAge:    7 * 24 * time.Hour,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(cfg); err != nil {
		// Stream may already exist, try update
		if _, err := js.UpdateStream(cfg); err != nil {
			return fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}
	return nil
}

// PublishInteraction publishes event on hydroline.interactions.<kind>.
func (p *Publisher) PublishInteraction(ctx context.Context, event *domain.Interaction) error {
	if event.Kind == "" {
		return fmt.Errorf("interaction kind is required")
	}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(InteractionSubject(event.Kind), data, nats.Context(ctx))
	return err
}

// Conn exposes the underlying connection for health checks.
func (p *Publisher) Conn() *nats.Conn {
	return p.conn
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection with reconnects enabled.
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("hydroline"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}

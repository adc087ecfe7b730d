package queue

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"briefroom.app/relay/internal/domain"
)

// Producer publishes session lifecycle events.
type Producer interface {
	Publish(ctx context.Context, evt domain.Event) error
	Close() error
}

type redisProducer struct {
	client *redis.Client
	stream string
	logger *slog.Logger
}

func NewRedisProducer(client *redis.Client, stream string, logger *slog.Logger) Producer {
	if logger == nil {
		logger = slog.Default()
	}
	return &redisProducer{
		client: client,
		stream: stream,
		logger: logger,
	}
}

func (p *redisProducer) Publish(ctx context.Context, evt domain.Event) error {
	occurredAt := evt.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	fields := map[string]any{
		"event_type":   string(evt.Type),
		"session_id":   evt.SessionID,
		"session_type": evt.SessionType,
		"occurred_at":  occurredAt.Format(time.RFC3339Nano),
	}
	if evt.Actor != "" {
		fields["actor"] = evt.Actor
	}
	if evt.Version > 0 {
		fields["version"] = strconv.Itoa(evt.Version)
	}
	if evt.TraceID != nil && *evt.TraceID != "" {
		fields["trace_id"] = *evt.TraceID
	}

	if err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: fields,
	}).Err(); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}

	p.logger.DebugContext(ctx, "published session event", "event_type", evt.Type, "session_id", evt.SessionID, "version", evt.Version)
	return nil
}

func (p *redisProducer) Close() error {
	return p.client.Close()
}

// NoopProducer drops events. Used when no stream is configured.
type NoopProducer struct{}

func (NoopProducer) Publish(context.Context, domain.Event) error { return nil }

func (NoopProducer) Close() error { return nil }

// NewRedisClient parses url and pings the server.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

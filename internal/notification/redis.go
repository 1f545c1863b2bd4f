package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/evaluation-criteria/internal/core/events"
	goredis "github.com/redis/go-redis/v9"
)

// Publisher is the part of the redis client the forwarder uses.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *goredis.IntCmd
}

// Message is the JSON document written to the channel.
type Message struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

// RedisForwarder pushes category events to a redis pub/sub channel for
// downstream notification services.
type RedisForwarder struct {
	rdb     Publisher
	channel string
	timeout time.Duration
	logger  *slog.Logger
}

func NewRedisForwarder(rdb Publisher, channel string, logger *slog.Logger) *RedisForwarder {
	return &RedisForwarder{
		rdb:     rdb,
		channel: channel,
		timeout: 2 * time.Second,
		logger:  logger.With("service", "RedisForwarder"),
	}
}

// NewRedisClient dials and pings redis.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// Handle is an events.Handler. Failures are logged and swallowed so a broken
// redis never affects category operations.
func (f *RedisForwarder) Handle(ctx context.Context, event events.Event) error {
	raw, err := json.Marshal(Message{
		ID:         event.EventID(),
		Type:       event.EventType(),
		OccurredAt: event.OccurredAt(),
		Payload:    event.Payload(),
	})
	if err != nil {
		f.logger.Warn("failed to encode event", "event_type", event.EventType(), "error", err)
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	receivers, err := f.rdb.Publish(ctx, f.channel, raw).Result()
	if err != nil {
		f.logger.Warn("failed to forward event", "event_type", event.EventType(), "event_id", event.EventID(), "error", err)
		return nil
	}

	f.logger.Debug("event forwarded", "event_type", event.EventType(), "channel", f.channel, "receivers", receivers)
	return nil
}

// Register subscribes the forwarder to every category event type.
func (f *RedisForwarder) Register(bus *events.EventBus) {
	for _, eventType := range events.CategoryEventTypes {
		bus.Subscribe(eventType, f.Handle)
	}
}

// DecodeMessage parses a payload written by RedisForwarder.
func DecodeMessage(payload string) (Message, error) {
	var msg Message
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		return Message{}, fmt.Errorf("decode notification: %w", err)
	}
	if msg.Type == "" {
		return Message{}, fmt.Errorf("decode notification: missing type")
	}
	return msg, nil
}

// Listen subscribes to channel and hands every decoded message to handle until
// ctx is cancelled. Malformed payloads are logged and skipped.
func Listen(ctx context.Context, rdb *goredis.Client, channel string, logger *slog.Logger, handle func(context.Context, Message)) error {
	sub := rdb.Subscribe(ctx, channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", channel, err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			msg, err := DecodeMessage(m.Payload)
			if err != nil {
				logger.Warn("skipping notification", "channel", m.Channel, "error", err)
				continue
			}
			handle(ctx, msg)
		}
	}
}

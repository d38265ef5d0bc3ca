package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	apperrors "expressivart/pkg/errors"
	"expressivart/pkg/logger"
)

const DefaultRelayChannel = "expressivart:changes"

// RedisRelay shares changes between service instances over Redis pub/sub.
// Publish goes to Redis; Run feeds everything received back into the local hub,
// including this instance's own publishes.
type RedisRelay struct {
	client  *redis.Client
	hub     *Hub
	channel string
	retry   time.Duration
	log     zerolog.Logger
}

func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}
	c := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := c.Ping(pingCtx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return c, nil
}

func NewRedisRelay(client *redis.Client, hub *Hub) *RedisRelay {
	return &RedisRelay{
		client:  client,
		hub:     hub,
		channel: DefaultRelayChannel,
		retry:   time.Second,
		log:     logger.With("redis-relay"),
	}
}

func (r *RedisRelay) Publish(ctx context.Context, change Change) error {
	payload, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("realtime: encode change: %w", err)
	}
	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		return fmt.Errorf("realtime: redis publish: %w", err)
	}
	return nil
}

// Run consumes the relay channel until ctx ends. A receive error fails every
// live subscription on this instance; clients reopen and merge on their side.
func (r *RedisRelay) Run(ctx context.Context) error {
	pubsub := r.client.Subscribe(ctx, r.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("realtime: redis subscribe: %w", err)
	}
	r.log.Info().Str("channel", r.channel).Msg("relay subscribed")

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, redis.ErrClosed) {
				return nil
			}
			r.log.Error().Err(err).Msg("relay receive failed")
			r.hub.Fail(apperrors.SubscriptionFailed("Realtime connection lost", err))

			select {
			case <-ctx.Done():
				return nil
			case <-time.After(r.retry):
			}
			continue
		}

		var change Change
		if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
			r.log.Warn().Err(err).Msg("relay dropped malformed change")
			continue
		}
		if err := r.hub.Publish(ctx, change); err != nil {
			return nil
		}
	}
}

// Package cache keeps short-lived copies of event availability in Redis.
//
// The cache only ever serves display reads. Booking decisions are made
// against the database under the event row lock, and every committed
// booking or cancellation invalidates the event's entry.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/Shivanand-hulikatti/cinebook/internal/config"
	"github.com/Shivanand-hulikatti/cinebook/internal/model"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix        = "cinebook:availability:"
	generationPrefix = "cinebook:availability-gen:"

	// generationTTL outlives any snapshot written under the generation.
	generationTTL = 24 * time.Hour
)

// NewClient connects to Redis and verifies the connection.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// AvailabilityCache stores Availability snapshots keyed by event id.
//
// Each event has a generation counter that Invalidate advances. A snapshot
// records the generation it was read under and is served only while that
// generation is current, so a read that raced with a commit is never served
// after the commit's invalidation.
type AvailabilityCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewAvailabilityCache constructs an AvailabilityCache.
func NewAvailabilityCache(client redis.Cmdable, ttl time.Duration) *AvailabilityCache {
	return &AvailabilityCache{client: client, ttl: ttl}
}

type entry struct {
	Generation int64            `json:"generation"`
	Event      model.Event      `json:"event"`
	Remaining  model.TierCounts `json:"remaining"`
}

// Key returns the Redis key holding an event's availability.
func Key(eventID string) string {
	return keyPrefix + eventID
}

// GenerationKey returns the Redis key holding an event's generation.
func GenerationKey(eventID string) string {
	return generationPrefix + eventID
}

// Get returns the cached availability, or nil on a miss, together with the
// event's current generation. Pass the generation to Set when filling a miss.
func (c *AvailabilityCache) Get(ctx context.Context, eventID string) (*model.Availability, int64, error) {
	vals, err := c.client.MGet(ctx, Key(eventID), GenerationKey(eventID)).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("cache get: %w", err)
	}

	var gen int64
	if s, ok := vals[1].(string); ok {
		if gen, err = strconv.ParseInt(s, 10, 64); err != nil {
			return nil, 0, fmt.Errorf("cache generation: %w", err)
		}
	}

	raw, ok := vals[0].(string)
	if !ok {
		return nil, gen, nil
	}
	var e entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return nil, gen, fmt.Errorf("cache decode: %w", err)
	}
	if e.Generation != gen {
		return nil, gen, nil
	}
	return &model.Availability{Event: e.Event, Remaining: e.Remaining}, gen, nil
}

// Set stores a snapshot read under generation gen for the configured TTL.
func (c *AvailabilityCache) Set(ctx context.Context, a *model.Availability, gen int64) error {
	raw, err := json.Marshal(entry{Generation: gen, Event: a.Event, Remaining: a.Remaining})
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.client.Set(ctx, Key(a.Event.ID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Invalidate advances the event's generation and drops its snapshot.
func (c *AvailabilityCache) Invalidate(ctx context.Context, eventID string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, GenerationKey(eventID))
		pipe.Expire(ctx, GenerationKey(eventID), max(generationTTL, 2*c.ttl))
		pipe.Del(ctx, Key(eventID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}

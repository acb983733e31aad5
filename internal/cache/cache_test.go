package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/Shivanand-hulikatti/cinebook/internal/config"
	"github.com/Shivanand-hulikatti/cinebook/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *AvailabilityCache {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client, err := NewClient(context.Background(), config.RedisConfig{Addr: addr})
	if err != nil {
		t.Skipf("skipping Redis tests: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return NewAvailabilityCache(client, time.Minute)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "cinebook:availability:abc", Key("abc"))
	assert.Equal(t, "cinebook:availability-gen:abc", GenerationKey("abc"))
}

func testAvailability(remaining model.TierCounts) *model.Availability {
	return &model.Availability{
		Event: model.Event{
			ID:     uuid.NewString(),
			Title:  "Concert",
			Date:   time.Date(2026, 12, 1, 19, 0, 0, 0, time.UTC),
			Prices: model.DefaultTierPrices,
			Seats:  model.TierCounts{VIP: 10, VVIP: 5},
		},
		Remaining: remaining,
	}
}

func TestAvailabilityCache_RoundTrip(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	a := testAvailability(model.TierCounts{VIP: -2, VVIP: 5})

	got, gen, err := c.Get(ctx, a.Event.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Zero(t, gen)

	require.NoError(t, c.Set(ctx, a, gen))

	got, _, err = c.Get(ctx, a.Event.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, a.Remaining, got.Remaining)
	assert.Equal(t, "Concert", got.Event.Title)
	assert.True(t, a.Event.Date.Equal(got.Event.Date))

	require.NoError(t, c.Invalidate(ctx, a.Event.ID))
	got, gen, err = c.Get(ctx, a.Event.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, int64(1), gen)
}

func TestAvailabilityCache_IgnoresWritesFromBeforeInvalidate(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	stale := testAvailability(model.TierCounts{VIP: 10, VVIP: 5})

	_, gen, err := c.Get(ctx, stale.Event.ID)
	require.NoError(t, err)

	require.NoError(t, c.Invalidate(ctx, stale.Event.ID))
	require.NoError(t, c.Set(ctx, stale, gen))

	got, current, err := c.Get(ctx, stale.Event.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, gen+1, current)

	fresh := *stale
	fresh.Remaining = model.TierCounts{VIP: 8, VVIP: 5}
	require.NoError(t, c.Set(ctx, &fresh, current))
	got, _, err = c.Get(ctx, stale.Event.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 8, got.Remaining.VIP)
}

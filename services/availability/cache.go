package availability

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bookify/models"

	"github.com/go-redis/redis/v8"
)

// SlotCache stores computed day projections in Redis with an expiry. It is a
// lagging read optimization: the booking table remains the single source of
// truth and the cache is never consulted before committing a booking.
type SlotCache struct {
	Client *redis.Client
	TTL    time.Duration
}

// NewSlotCache returns a cache over the given Redis client.
func NewSlotCache(client *redis.Client, ttl time.Duration) *SlotCache {
	return &SlotCache{Client: client, TTL: ttl}
}

func cacheKey(providerID, date string, duration int) string {
	return fmt.Sprintf("slots:%s:%s:%d", providerID, date, duration)
}

// Get returns the cached slots and whether the entry was present.
func (c *SlotCache) Get(ctx context.Context, providerID, date string, duration int) ([]models.TimeSlot, bool) {
	data, err := c.Client.Get(ctx, cacheKey(providerID, date, duration)).Result()
	if err != nil {
		return nil, false
	}
	var slots []models.TimeSlot
	if err := json.Unmarshal([]byte(data), &slots); err != nil {
		return nil, false
	}
	return slots, true
}

// Set stores the slots under the provider/date key.
func (c *SlotCache) Set(ctx context.Context, providerID, date string, duration int, slots []models.TimeSlot) error {
	data, err := json.Marshal(slots)
	if err != nil {
		return fmt.Errorf("failed to marshal slots: %w", err)
	}
	return c.Client.Set(ctx, cacheKey(providerID, date, duration), data, c.TTL).Err()
}

// Invalidate drops every cached duration variant for the provider/date.
func (c *SlotCache) Invalidate(ctx context.Context, providerID, date string) error {
	pattern := fmt.Sprintf("slots:%s:%s:*", providerID, date)
	iter := c.Client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := c.Client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to invalidate slot cache: %w", err)
		}
	}
	return iter.Err()
}

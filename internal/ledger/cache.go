package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores rendered dashboard overviews in Redis for a short TTL.
// Entries are invalidated on every ledger mutation because the running
// balance of every line can change when any event is created or deleted.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache constructs a Cache. A nil client disables caching.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func overviewKey(p Period) string {
	if p.Mode == PeriodYearly {
		return fmt.Sprintf("ledger:overview:%d", p.Year)
	}
	return fmt.Sprintf("ledger:overview:%d-%02d", p.Year, int(p.Month))
}

// GetOverview returns the cached overview for the period, or ok=false.
func (c *Cache) GetOverview(ctx context.Context, p Period) (Overview, bool) {
	if c == nil || c.client == nil {
		return Overview{}, false
	}
	data, err := c.client.Get(ctx, overviewKey(p)).Bytes()
	if err != nil {
		return Overview{}, false
	}
	var ov Overview
	if err := json.Unmarshal(data, &ov); err != nil {
		return Overview{}, false
	}
	return ov, true
}

// SetOverview stores the overview for the period.
func (c *Cache) SetOverview(ctx context.Context, ov Overview) error {
	if c == nil || c.client == nil {
		return nil
	}
	data, err := json.Marshal(ov)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, overviewKey(ov.Period), data, c.ttl).Err()
}

// Invalidate drops every cached overview.
func (c *Cache) Invalidate(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	iter := c.client.Scan(ctx, 0, "ledger:overview:*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

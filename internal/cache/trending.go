package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/agrimarket/recommendation-engine/internal/domain"
	"github.com/redis/go-redis/v9"
)

const trendingKey = "trending:stats:7d"

// StatsFetcher is the underlying source of trending counters, normally the
// interaction repository.
type StatsFetcher interface {
	TrendingStats(ctx context.Context, window time.Duration) ([]domain.TrendingStat, error)
}

// CachedTrending serves trending counters from redis, falling back to the
// fetcher on a miss. Counters are user-independent so one snapshot serves
// every request within the TTL. Cache errors degrade to direct reads.
type CachedTrending struct {
	client *redis.Client
	next   StatsFetcher
	ttl    time.Duration
}

func NewCachedTrending(client *redis.Client, next StatsFetcher, ttl time.Duration) *CachedTrending {
	return &CachedTrending{client: client, next: next, ttl: ttl}
}

func (c *CachedTrending) TrendingStats(ctx context.Context, window time.Duration) ([]domain.TrendingStat, error) {
	val, err := c.client.Get(ctx, trendingKey).Result()
	if err == nil {
		var stats []domain.TrendingStat
		if err := json.Unmarshal([]byte(val), &stats); err == nil {
			return stats, nil
		}
		log.Printf("[cache] corrupt trending snapshot, refetching: %v", err)
	} else if err != redis.Nil {
		log.Printf("[cache] trending get error: %v", err)
	}

	stats, err := c.next.TrendingStats(ctx, window)
	if err != nil {
		return nil, err
	}

	if setErr := c.set(ctx, stats); setErr != nil {
		log.Printf("[cache] trending set error: %v", setErr)
	}
	return stats, nil
}

func (c *CachedTrending) set(ctx context.Context, stats []domain.TrendingStat) error {
	val, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshal trending snapshot: %w", err)
	}
	if err := c.client.Set(ctx, trendingKey, val, c.ttl).Err(); err != nil {
		return fmt.Errorf("set trending snapshot: %w", err)
	}
	return nil
}

// Ping connectivity
func (c *CachedTrending) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/actuallystonmai/university-recommender/internal/domain"
	"github.com/actuallystonmai/university-recommender/internal/recommend"
)

const defaultTTL = 10 * time.Minute

// Cache stores pipeline results in Redis. Results are a pure function of the
// key inputs, so entries never need invalidation beyond their TTL.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Cache{client: client, ttl: ttl}
}

type keyInput struct {
	Dataset  string                   `json:"dataset"`
	Country  string                   `json:"country"`
	Scores   [3]*float64              `json:"scores"`
	Pipeline recommend.PipelineConfig `json:"pipeline"`
	Limit    int                      `json:"limit"`
}

// BuildKey derives the cache key for one pipeline run. Country is folded to
// lower case because country matching is case-insensitive.
func BuildKey(datasetVersion string, pref domain.Preference, cfg recommend.PipelineConfig, limit int) string {
	in := keyInput{
		Dataset:  datasetVersion,
		Scores:   pref.Scores(),
		Pipeline: cfg,
		Limit:    limit,
	}
	if pref.HasCountry() {
		in.Country = strings.ToLower(strings.TrimSpace(*pref.Country))
	}
	raw, err := json.Marshal(in)
	if err != nil {
		// keyInput holds only plain values
		panic(fmt.Sprintf("marshal cache key: %v", err))
	}
	sum := sha256.Sum256(raw)
	return "rec:" + hex.EncodeToString(sum[:16])
}

// Fingerprint identifies a dataset by content.
func Fingerprint(rows []domain.University) string {
	h := sha256.New()
	enc := json.NewEncoder(h)
	for _, u := range rows {
		_ = enc.Encode(u)
	}
	return hex.EncodeToString(h.Sum(nil)[:8])
}

// Get returns the cached recommendation and whether it was found.
func (c *Cache) Get(ctx context.Context, key string) (*domain.Recommendation, bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get recommendation from cache: %w", err)
	}

	var rec domain.Recommendation
	if err := json.Unmarshal(val, &rec); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal recommendation %s: %w", key, err)
	}
	return &rec, true, nil
}

func (c *Cache) Set(ctx context.Context, key string, rec domain.Recommendation) error {
	val, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal recommendation: %w", err)
	}

	if err := c.client.Set(ctx, key, val, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set recommendation in cache: %w", err)
	}
	return nil
}

// Clear drops every cached result, used after the dataset is re-imported.
func (c *Cache) Clear(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, "rec:*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("cache delete %s: %w", iter.Val(), err)
		}
	}
	return iter.Err()
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

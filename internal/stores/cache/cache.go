// Package cache stores JSON values in Redis with a TTL.
package cache

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"sort"
	"strings"
	"time"

	"legal-rag-workers/internal/common/errors"
	"legal-rag-workers/internal/common/metrics"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "legal:"

type JSONCache struct {
	client redis.Cmdable
	name   string
}

// New returns a cache reporting metrics under name (for example "definition").
func New(client redis.Cmdable, name string) *JSONCache {
	return &JSONCache{client: client, name: name}
}

// Get decodes the value at key into v. A miss returns false with no error.
func (c *JSONCache) Get(ctx context.Context, key string, v interface{}) (bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if stderrors.Is(err, redis.Nil) {
		metrics.CacheRequests.WithLabelValues(c.name, "miss").Inc()
		return false, nil
	}
	if err != nil {
		metrics.CacheRequests.WithLabelValues(c.name, "error").Inc()
		return false, errors.NewCacheError("get", err)
	}
	if err := json.Unmarshal([]byte(val), v); err != nil {
		metrics.CacheRequests.WithLabelValues(c.name, "error").Inc()
		return false, errors.NewCacheError("decode", err)
	}
	metrics.CacheRequests.WithLabelValues(c.name, "hit").Inc()
	return true, nil
}

func (c *JSONCache) Set(ctx context.Context, key string, v interface{}, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.NewCacheError("encode", err)
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return errors.NewCacheError("set", err)
	}
	return nil
}

// DefinitionKey is keyed by lower-cased term and jurisdiction, ALL when none is given.
func DefinitionKey(term, jurisdiction string) string {
	if jurisdiction == "" {
		jurisdiction = "ALL"
	}
	return keyPrefix + "definition:" + normalizeConcept(term) + ":" + jurisdiction
}

// ComparisonKey ignores state order so permutations share an entry.
func ComparisonKey(concept string, states []string) string {
	sorted := append([]string(nil), states...)
	sort.Strings(sorted)
	return keyPrefix + "compare:" + normalizeConcept(concept) + ":" + strings.Join(sorted, ",")
}

func normalizeConcept(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

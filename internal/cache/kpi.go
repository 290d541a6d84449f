package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/andresuchdata/qms-dashboard/backend-go/internal/config"
	"github.com/andresuchdata/qms-dashboard/backend-go/internal/domain"
	"github.com/andresuchdata/qms-dashboard/backend-go/internal/metrics"
)

const (
	defaultKeyPrefix = "qms"
	defaultKpiTTL    = 2 * time.Minute
	unlinkBatchSize  = 100
)

// KpiView is the cached answer of a filtered KPI query.
type KpiView struct {
	Kpis      []domain.MonthlySiteKpi `json:"kpis"`
	GlobalPpm domain.GlobalPpm        `json:"globalPpm"`
}

type KpiCache interface {
	Get(ctx context.Context, filter domain.KpiFilter) (*KpiView, bool, error)
	Set(ctx context.Context, filter domain.KpiFilter, view *KpiView) error
	InvalidateAll(ctx context.Context) error
}

type redisKpiCache struct {
	client *redis.Client
	ttl    time.Duration
	// namespace is "<prefix>:kpi"; every key of this cache starts with it.
	namespace string
}

type noopKpiCache struct{}

// NewKpiCache connects to redis when caching is enabled and falls back to a
// cache that never hits otherwise.
func NewKpiCache(cfg config.CacheConfig) (KpiCache, error) {
	if !cfg.Enabled {
		return NewNoopKpiCache(), nil
	}

	opts, err := redisOptions(cfg)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return newRedisKpiCache(client, cfg), nil
}

func newRedisKpiCache(client *redis.Client, cfg config.CacheConfig) *redisKpiCache {
	ttl := time.Duration(cfg.KpiTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = defaultKpiTTL
	}
	prefix := strings.Trim(cfg.KeyPrefix, ": ")
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &redisKpiCache{client: client, ttl: ttl, namespace: prefix + ":kpi"}
}

// redisOptions prefers REDIS_URL and otherwise dials host:port.
func redisOptions(cfg config.CacheConfig) (*redis.Options, error) {
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		return opts, nil
	}

	host, port := cfg.RedisHost, cfg.RedisPort
	if host == "" {
		host = "127.0.0.1"
	}
	if port == "" {
		port = "6379"
	}
	return &redis.Options{
		Addr:     net.JoinHostPort(host, port),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, nil
}

func NewNoopKpiCache() KpiCache {
	return &noopKpiCache{}
}

func (c *redisKpiCache) Get(ctx context.Context, filter domain.KpiFilter) (*KpiView, bool, error) {
	payload, err := c.client.Get(ctx, c.key(filter)).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.KpiCacheMisses.Inc()
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var view KpiView
	if err := json.Unmarshal(payload, &view); err != nil {
		return nil, false, fmt.Errorf("decode kpi cache: %w", err)
	}

	metrics.KpiCacheHits.Inc()
	return &view, true, nil
}

func (c *redisKpiCache) Set(ctx context.Context, filter domain.KpiFilter, view *KpiView) error {
	payload, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("encode kpi cache: %w", err)
	}

	if err := c.client.Set(ctx, c.key(filter), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	return nil
}

// InvalidateAll unlinks every cached KPI query. Ingests and manual saves
// change any filter's answer, so there is no finer invalidation.
func (c *redisKpiCache) InvalidateAll(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, c.namespace+":*", unlinkBatchSize).Iterator()
	batch := make([]string, 0, unlinkBatchSize)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == unlinkBatchSize {
			if err := c.client.Unlink(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("redis unlink failed: %w", err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan failed: %w", err)
	}
	if len(batch) > 0 {
		if err := c.client.Unlink(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("redis unlink failed: %w", err)
		}
	}
	return nil
}

func (c *redisKpiCache) key(filter domain.KpiFilter) string {
	return c.namespace + ":" + filterKey(filter)
}

func (n *noopKpiCache) Get(ctx context.Context, filter domain.KpiFilter) (*KpiView, bool, error) {
	return nil, false, nil
}

func (n *noopKpiCache) Set(ctx context.Context, filter domain.KpiFilter, view *KpiView) error {
	return nil
}

func (n *noopKpiCache) InvalidateAll(ctx context.Context) error {
	return nil
}

// filterKey hashes the normalized filter; site order and case do not matter.
func filterKey(filter domain.KpiFilter) string {
	var parts []string
	if filter.FromMonth != "" {
		parts = append(parts, "from="+filter.FromMonth)
	}
	if filter.ToMonth != "" {
		parts = append(parts, "to="+filter.ToMonth)
	}
	if len(filter.Sites) > 0 {
		sites := make([]string, len(filter.Sites))
		for i, s := range filter.Sites {
			sites[i] = strings.ToUpper(strings.TrimSpace(s))
		}
		sort.Strings(sites)
		parts = append(parts, "sites="+strings.Join(sites, ","))
	}

	if len(parts) == 0 {
		return "all"
	}
	hash := sha1.Sum([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(hash[:])
}

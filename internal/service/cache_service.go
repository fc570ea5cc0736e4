package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/ects-quest/internal/models"
	"github.com/noah-isme/ects-quest/pkg/cache"
	appErrors "github.com/noah-isme/ects-quest/pkg/errors"
)

// CacheRepository stores JSON payloads under string keys.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// SnapshotCache fronts snapshot reads. After a backend failure it stays out
// of the request path for the cooldown period.
type SnapshotCache struct {
	repo     CacheRepository
	metrics  *MetricsService
	ttl      time.Duration
	cooldown time.Duration
	logger   *zap.Logger
	now      func() time.Time

	mu          sync.Mutex
	bypassUntil time.Time
}

// NewSnapshotCache constructs the cache. A nil repo disables it.
func NewSnapshotCache(repo CacheRepository, metrics *MetricsService, ttl time.Duration, logger *zap.Logger) *SnapshotCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnapshotCache{
		repo:     repo,
		metrics:  metrics,
		ttl:      ttl,
		cooldown: 30 * time.Second,
		logger:   logger,
		now:      time.Now,
	}
}

func snapshotKey(sessionID string) string {
	return cache.Key("snapshot", sessionID)
}

// Enabled reports whether lookups currently reach the backend.
func (c *SnapshotCache) Enabled() bool {
	if c == nil || c.repo == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.now().Before(c.bypassUntil)
}

func (c *SnapshotCache) trip(op, sessionID string, err error) {
	c.mu.Lock()
	c.bypassUntil = c.now().Add(c.cooldown)
	c.mu.Unlock()
	c.logger.Warn("snapshot cache bypassed", zap.String("op", op), zap.String("session_id", sessionID), zap.Duration("cooldown", c.cooldown), zap.Error(err))
}

// Load returns the cached snapshot of a session, if any.
func (c *SnapshotCache) Load(ctx context.Context, sessionID string) (models.Snapshot, bool) {
	var snap models.Snapshot
	if !c.Enabled() {
		return snap, false
	}
	start := time.Now()
	err := c.repo.Get(ctx, snapshotKey(sessionID), &snap)
	c.metrics.RecordCacheOperation(err == nil, time.Since(start))
	if err != nil {
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			c.trip("load", sessionID, err)
		}
		return models.Snapshot{}, false
	}
	return snap, true
}

// Store caches snap for the configured TTL.
func (c *SnapshotCache) Store(ctx context.Context, sessionID string, snap models.Snapshot) {
	if !c.Enabled() {
		return
	}
	if err := c.repo.Set(ctx, snapshotKey(sessionID), snap, c.ttl); err != nil {
		c.trip("store", sessionID, err)
	}
}

// Forget drops a session's cached snapshot.
func (c *SnapshotCache) Forget(ctx context.Context, sessionID string) {
	if !c.Enabled() {
		return
	}
	if err := c.repo.Delete(ctx, snapshotKey(sessionID)); err != nil {
		c.trip("forget", sessionID, err)
	}
}

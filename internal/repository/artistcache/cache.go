// Package artistcache caches per-artist catalogue lookups so repeated
// recommendation runs for the same artists skip the media-server search.
package artistcache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/segue/internal/db"
	"github.com/kailas-cloud/segue/internal/domain"
)

const defaultTTL = time.Hour

// store is the consumer interface for the artist cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Cache stores per-artist song lists as JSON with a TTL. Store failures
// degrade to a miss; the catalogue stays the source of truth.
type Cache struct {
	store      store
	keyPrefix  string
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates the artist cache.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(s store, keyPrefix string, ttl time.Duration, cacheTotal *prometheus.CounterVec, logger *zap.Logger) *Cache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		store:      s,
		keyPrefix:  keyPrefix,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Get returns the cached song list for an artist, reporting whether it was
// present. An expired or unreadable entry is a miss.
func (c *Cache) Get(ctx context.Context, artist string) ([]domain.Song, bool) {
	data, err := c.store.Get(ctx, c.key(artist))
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("artist cache read failed", zap.Error(err))
		}
		c.count("miss")
		return nil, false
	}

	var songs []domain.Song
	if err := json.Unmarshal(data, &songs); err != nil {
		c.logger.Warn("artist cache entry corrupted", zap.Error(err))
		c.count("miss")
		return nil, false
	}

	c.count("hit")
	return songs, true
}

// Set stores the song list for an artist. Write failures are logged and
// swallowed; the next lookup simply misses.
func (c *Cache) Set(ctx context.Context, artist string, songs []domain.Song) {
	data, err := json.Marshal(songs)
	if err != nil {
		c.logger.Warn("artist cache marshal failed", zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, c.key(artist), data, c.ttl); err != nil {
		c.logger.Warn("artist cache write failed", zap.Error(err))
	}
}

func (c *Cache) key(artist string) string {
	return c.keyPrefix + "artist_songs:" + strings.ToLower(strings.TrimSpace(artist))
}

func (c *Cache) count(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

// Package cache provides in-memory caches for hot read paths.
package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/erp/ledger/internal/domain/ledger"
)

const (
	defaultChartTTL        = 5 * time.Minute
	defaultCleanupInterval = 30 * time.Second
)

// ChartCache caches accounts by code in front of the account repository.
// The chart is small and nearly static, so entries live until the TTL
// elapses or an explicit Invalidate after a chart edit.
type ChartCache struct {
	repo    ledger.AccountRepository
	logger  *zap.Logger
	ttl     time.Duration
	entries sync.Map // map[string]*chartEntry
	stopCh  chan struct{}
	stopped int32

	hits   int64
	misses int64
}

type chartEntry struct {
	account   *ledger.Account
	expiresAt time.Time
}

func (e *chartEntry) isExpired() bool {
	return time.Now().After(e.expiresAt)
}

// ChartCacheOption is a functional option for configuring the cache.
type ChartCacheOption func(*ChartCache)

// WithChartTTL sets the entry TTL.
func WithChartTTL(ttl time.Duration) ChartCacheOption {
	return func(c *ChartCache) {
		c.ttl = ttl
	}
}

// WithChartLogger sets the logger for the cache.
func WithChartLogger(logger *zap.Logger) ChartCacheOption {
	return func(c *ChartCache) {
		c.logger = logger
	}
}

// NewChartCache creates a chart-of-accounts cache over the given repository.
func NewChartCache(repo ledger.AccountRepository, opts ...ChartCacheOption) *ChartCache {
	cache := &ChartCache{
		repo:   repo,
		logger: zap.NewNop(),
		ttl:    defaultChartTTL,
		stopCh: make(chan struct{}),
	}

	for _, opt := range opts {
		opt(cache)
	}

	go cache.cleanupExpired()

	return cache
}

// Lookup returns the account for the given code, reading through to the
// repository on a miss. Unknown codes are not cached.
func (c *ChartCache) Lookup(ctx context.Context, code string) (*ledger.Account, error) {
	if value, ok := c.entries.Load(code); ok {
		entry := value.(*chartEntry)
		if !entry.isExpired() {
			atomic.AddInt64(&c.hits, 1)
			return entry.account, nil
		}
		c.entries.Delete(code)
	}

	atomic.AddInt64(&c.misses, 1)

	account, err := c.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	c.entries.Store(code, &chartEntry{
		account:   account,
		expiresAt: time.Now().Add(c.ttl),
	})
	c.logger.Debug("Cached account", zap.String("code", code))

	return account, nil
}

// Invalidate drops every cached account. Call after chart edits.
func (c *ChartCache) Invalidate() {
	c.entries.Range(func(key, _ any) bool {
		c.entries.Delete(key)
		return true
	})
	c.logger.Info("Invalidated chart of accounts cache")
}

// Close stops the background cleanup goroutine.
func (c *ChartCache) Close() error {
	if atomic.CompareAndSwapInt32(&c.stopped, 0, 1) {
		close(c.stopCh)
	}
	return nil
}

// Stats returns hit and miss counts.
func (c *ChartCache) Stats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

// Count returns the number of cached accounts.
func (c *ChartCache) Count() (n int) {
	c.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func (c *ChartCache) cleanupExpired() {
	ticker := time.NewTicker(defaultCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.doCleanup()
		}
	}
}

func (c *ChartCache) doCleanup() {
	var removed int

	c.entries.Range(func(key, value any) bool {
		if value.(*chartEntry).isExpired() {
			c.entries.Delete(key)
			removed++
		}
		return true
	})

	if removed > 0 {
		c.logger.Debug("Cleaned up expired chart cache entries", zap.Int("removed", removed))
	}
}

// Ensure ChartCache implements ChartOfAccounts
var _ ledger.ChartOfAccounts = (*ChartCache)(nil)

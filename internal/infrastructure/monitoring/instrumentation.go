package monitoring

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/pantrychef/backend/internal/ports/outbound"
)

const startTimeKey = "metrics:start_time"

// InstrumentGorm registers callbacks that time every create, query, update,
// delete and raw statement
func InstrumentGorm(db *gorm.DB, m *MetricsCollector) error {
	before := func(tx *gorm.DB) {
		tx.InstanceSet(startTimeKey, time.Now())
	}
	after := func(operation string) func(*gorm.DB) {
		return func(tx *gorm.DB) {
			value, ok := tx.InstanceGet(startTimeKey)
			if !ok {
				return
			}
			start, ok := value.(time.Time)
			if !ok {
				return
			}
			table := tx.Statement.Table
			if table == "" {
				table = "unknown"
			}
			m.DBQuery(operation, table, time.Since(start))
		}
	}

	cb := db.Callback()
	registrations := []struct {
		name     string
		register func() error
	}{
		{"create", func() error {
			if err := cb.Create().Before("gorm:create").Register("metrics:before_create", before); err != nil {
				return err
			}
			return cb.Create().After("gorm:create").Register("metrics:after_create", after("create"))
		}},
		{"query", func() error {
			if err := cb.Query().Before("gorm:query").Register("metrics:before_query", before); err != nil {
				return err
			}
			return cb.Query().After("gorm:query").Register("metrics:after_query", after("query"))
		}},
		{"update", func() error {
			if err := cb.Update().Before("gorm:update").Register("metrics:before_update", before); err != nil {
				return err
			}
			return cb.Update().After("gorm:update").Register("metrics:after_update", after("update"))
		}},
		{"delete", func() error {
			if err := cb.Delete().Before("gorm:delete").Register("metrics:before_delete", before); err != nil {
				return err
			}
			return cb.Delete().After("gorm:delete").Register("metrics:after_delete", after("delete"))
		}},
		{"raw", func() error {
			if err := cb.Raw().Before("gorm:raw").Register("metrics:before_raw", before); err != nil {
				return err
			}
			return cb.Raw().After("gorm:raw").Register("metrics:after_raw", after("raw"))
		}},
	}

	for _, r := range registrations {
		if err := r.register(); err != nil {
			return err
		}
	}
	return nil
}

// InstrumentedCache counts hits, misses and errors of a cache repository
type InstrumentedCache struct {
	next    outbound.CacheRepository
	metrics *MetricsCollector
}

// InstrumentCache wraps a cache repository with operation counters
func InstrumentCache(next outbound.CacheRepository, m *MetricsCollector) *InstrumentedCache {
	return &InstrumentedCache{next: next, metrics: m}
}

var _ outbound.CacheRepository = (*InstrumentedCache)(nil)

// Get counts hit, miss or error
func (c *InstrumentedCache) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := c.next.Get(ctx, key)
	switch {
	case errors.Is(err, outbound.ErrCacheMiss):
		c.metrics.CacheOperation("get", "miss")
	case err != nil:
		c.metrics.CacheOperation("get", "error")
	default:
		c.metrics.CacheOperation("get", "hit")
	}
	return value, err
}

// Set counts ok or error
func (c *InstrumentedCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := c.next.Set(ctx, key, value, ttl)
	c.metrics.CacheOperation("set", outcome(err))
	return err
}

// Delete counts ok or error
func (c *InstrumentedCache) Delete(ctx context.Context, key string) error {
	err := c.next.Delete(ctx, key)
	c.metrics.CacheOperation("delete", outcome(err))
	return err
}

// Exists is passed through
func (c *InstrumentedCache) Exists(ctx context.Context, key string) (bool, error) {
	return c.next.Exists(ctx, key)
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

package engine

import (
	"fmt"
	"sync"

	"SwingLab/internal/model"
)

// SeriesCache memoizes fetched-and-enriched bar series across runs, keyed by
// ticker and history length. It is owned and invalidated by the caller, never
// shared implicitly.
type SeriesCache struct {
	mu      sync.Mutex
	entries map[string]*model.BarSeries
}

// NewSeriesCache creates an empty cache.
func NewSeriesCache() *SeriesCache {
	return &SeriesCache{entries: make(map[string]*model.BarSeries)}
}

func cacheKey(ticker string, days int) string {
	return fmt.Sprintf("%s|%d", ticker, days)
}

// Get returns the cached series for a ticker/period pair.
func (c *SeriesCache) Get(ticker string, days int) (*model.BarSeries, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	series, ok := c.entries[cacheKey(ticker, days)]
	return series, ok
}

// Put stores a series.
func (c *SeriesCache) Put(ticker string, days int, series *model.BarSeries) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey(ticker, days)] = series
}

// Invalidate drops every cached period for a ticker.
func (c *SeriesCache) Invalidate(ticker string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if series := c.entries[key]; series != nil && series.Ticker == ticker {
			delete(c.entries, key)
		}
	}
}

// Clear drops everything.
func (c *SeriesCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*model.BarSeries)
}

// Len reports the number of cached series.
func (c *SeriesCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

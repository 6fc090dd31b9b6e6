package filter

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/solatis/fieldfilter/internal/types"
)

// CacheConfig holds configuration for result memoisation.
type CacheConfig struct {
	// TTL is the time-to-live for cached entries.
	// Set to 0 for no expiration (eviction by size only).
	TTL time.Duration

	// MaxEntries bounds the number of cached results.
	// Set to 0 to disable caching entirely.
	MaxEntries int
}

// DefaultCacheConfig returns defaults suited to interactive re-filtering.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		TTL:        5 * time.Minute,
		MaxEntries: 256,
	}
}

// ResultCache memoises engine results keyed by Fingerprint.
// Thread-safe for concurrent access. Oldest entries are evicted first.
type ResultCache struct {
	config  CacheConfig
	entries map[string]cacheEntry
	order   []string // insertion order for eviction
	now     func() time.Time
	mu      sync.RWMutex
}

type cacheEntry struct {
	result   Result
	cachedAt time.Time
}

// NewResultCache creates an empty cache.
func NewResultCache(config CacheConfig) *ResultCache {
	return &ResultCache{
		config:  config,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// Get returns the cached result for key.
// Returns false on miss or expiry.
func (c *ResultCache) Get(key string) (Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok {
		return Result{}, false
	}
	if c.config.TTL > 0 && c.now().Sub(entry.cachedAt) > c.config.TTL {
		return Result{}, false
	}

	// Return copy to prevent external modifications
	out := entry.result
	out.Records = types.CloneRecords(entry.result.Records)
	return out, true
}

// Set stores result under key, evicting the oldest entries past MaxEntries.
func (c *ResultCache) Set(key string, result Result) {
	if c.config.MaxEntries <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists {
		c.order = append(c.order, key)
	}
	stored := result
	stored.Records = types.CloneRecords(result.Records)
	c.entries[key] = cacheEntry{result: stored, cachedAt: c.now()}

	for len(c.order) > c.config.MaxEntries {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
}

// Invalidate clears the cache.
func (c *ResultCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]cacheEntry)
	c.order = nil
}

// Len returns the number of stored entries, expired ones included.
func (c *ResultCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// fingerprintCondition omits the ID: identical rows with new IDs hit the same entry.
type fingerprintCondition struct {
	Field    string            `json:"f"`
	Operator types.Operator    `json:"o"`
	Value    types.FilterValue `json:"v"`
}

// Fingerprint derives a cache key from a dataset key and version, the
// conditions and the sort configuration. Content-addressable: equal inputs
// always produce equal keys.
func Fingerprint(datasetKey string, conds []types.Condition, cfg *types.SortConfig) string {
	rows := make([]fingerprintCondition, len(conds))
	for i, c := range conds {
		rows[i] = fingerprintCondition{Field: c.Field, Operator: c.Operator, Value: c.Value}
	}

	h := sha256.New()
	h.Write([]byte(datasetKey))
	h.Write([]byte{0})
	// Marshal of these types cannot fail: no channels, funcs or cycles
	condJSON, _ := json.Marshal(rows)
	h.Write(condJSON)
	h.Write([]byte{0})
	if cfg != nil {
		sortJSON, _ := json.Marshal(cfg)
		h.Write(sortJSON)
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

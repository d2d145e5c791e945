package services

import (
	"fmt"
	"strings"
	"sync"

	"github.com/bantotal-ai/bantotal-engine/pkg/models"
)

// DefaultCacheCapacity bounds the synthesis result cache.
const DefaultCacheCapacity = 50

// SynthesisCache memoizes synthesis results keyed by normalized
// (query, table) pairs. The cache is bounded: once full, new entries are
// rejected rather than evicting old ones, which favors a small working set
// of frequent queries over churn.
type SynthesisCache struct {
	mu       sync.RWMutex
	entries  map[string]*models.SynthesisResult
	capacity int
}

// NewSynthesisCache creates a cache with the given capacity. Non-positive
// capacities fall back to the default.
func NewSynthesisCache(capacity int) *SynthesisCache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	return &SynthesisCache{
		entries:  make(map[string]*models.SynthesisResult, capacity),
		capacity: capacity,
	}
}

// CacheKey normalizes a (query, table) pair into the cache key.
func CacheKey(query, table string) string {
	return strings.ToLower(strings.TrimSpace(query)) + "|" + strings.ToUpper(strings.TrimSpace(table))
}

// RequestCacheKey serializes every request field that influences the
// generated statement, so only equivalent structured requests share an
// entry. RawQuery is deliberately excluded: the synthesizer never reads it.
func RequestCacheKey(req models.SynthesisRequest) string {
	var sb strings.Builder
	sb.WriteString(strings.ToUpper(strings.TrimSpace(req.Table)))
	fmt.Fprintf(&sb, "|%s|%s", req.Operation, strings.ToLower(strings.Join(req.Columns, ",")))
	fmt.Fprintf(&sb, "|all=%t|joins=%t|kind=%s|limit=%d|", req.AllColumns, req.WithJoins, req.EffectiveJoinKind(), req.Limit)
	sb.WriteString(strings.Join(req.FilterHints, " AND "))
	return sb.String()
}

// GetOrCompute returns the cached result for key, or runs compute and
// stores its result when there is capacity left. Hits are returned as
// copies flagged with CacheHit; the cached value itself is never mutated.
// Errors from compute are returned as-is and never cached.
func (c *SynthesisCache) GetOrCompute(key string, compute func() (*models.SynthesisResult, error)) (*models.SynthesisResult, error) {
	c.mu.RLock()
	cached, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return copyResult(cached, true), nil
	}

	result, err := compute()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// Another caller may have computed the same key meanwhile; keep the
	// stored value and report this call as a miss, the texts are identical.
	if _, exists := c.entries[key]; !exists && len(c.entries) < c.capacity {
		c.entries[key] = copyResult(result, false)
	}
	return result, nil
}

// Len returns the number of stored entries.
func (c *SynthesisCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func copyResult(r *models.SynthesisResult, hit bool) *models.SynthesisResult {
	cp := *r
	cp.Tables = append([]string(nil), r.Tables...)
	cp.Warnings = append([]string(nil), r.Warnings...)
	cp.CacheHit = hit
	return &cp
}

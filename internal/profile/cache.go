package profile

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/leafmint/spendscan/internal/model"
	"github.com/leafmint/spendscan/internal/normalize"
	"github.com/leafmint/spendscan/internal/service"
)

const (
	// DefaultTTL is how long a published snapshot stays fresh.
	DefaultTTL = 60 * time.Second

	// fallbackWeight is the weight of tokens derived from the category
	// name itself. Low on purpose: they only decide when no curated
	// keyword matched.
	fallbackWeight = 0.5
)

// Cache builds and refreshes keyword profiles for all categories on a
// time-to-live policy. Readers always get a complete, immutable
// snapshot; at most one rebuild runs at a time.
type Cache struct {
	store    service.CategoryStore
	now      func() time.Time
	snapshot atomic.Pointer[model.ProfileSnapshot]
	rules    atomic.Pointer[RuleTable]
	ttl      time.Duration
	mu       sync.Mutex
}

// NewCache creates a profile cache backed by the given category store.
// A ttl of 0 selects DefaultTTL.
func NewCache(store service.CategoryStore, rules *RuleTable, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if rules == nil {
		rules = DefaultRules()
	}

	c := &Cache{
		store: store,
		ttl:   ttl,
		now:   time.Now,
	}
	c.rules.Store(rules)
	return c
}

// Snapshot returns the current profile snapshot, rebuilding it first if
// it is stale or missing. Concurrent callers during a rebuild block on
// the rebuild lock and reuse the winner's snapshot; the store is fetched
// at most once per staleness window.
//
// If the rebuild fails and a previous snapshot exists, that snapshot
// remains in effect; with no previous snapshot the error propagates.
func (c *Cache) Snapshot(ctx context.Context) (*model.ProfileSnapshot, error) {
	if snap := c.snapshot.Load(); snap != nil && c.fresh(snap) {
		return snap, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Re-check under the lock: another caller may have just rebuilt.
	if snap := c.snapshot.Load(); snap != nil && c.fresh(snap) {
		return snap, nil
	}

	categories, err := c.store.GetCategories(ctx)
	if err != nil {
		if snap := c.snapshot.Load(); snap != nil {
			slog.Warn("Profile rebuild failed, serving previous snapshot",
				"error", err,
				"snapshot_age", c.now().Sub(snap.BuiltAt))
			return snap, nil
		}
		return nil, fmt.Errorf("failed to rebuild keyword profiles: %w", err)
	}

	snap := buildSnapshot(categories, c.rules.Load(), c.now())
	c.snapshot.Store(snap)

	slog.Debug("Rebuilt keyword profile snapshot",
		"categories", len(snap.Profiles),
		"built_at", snap.BuiltAt)
	return snap, nil
}

// SetRules swaps in a new rule table and invalidates the current
// snapshot so the next read rebuilds with the new rules. This is the
// only supported way to change keywords at runtime.
func (c *Cache) SetRules(rules *RuleTable) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rules.Store(rules)
	c.snapshot.Store(nil)
}

// Rules returns the active rule table.
func (c *Cache) Rules() *RuleTable {
	return c.rules.Load()
}

func (c *Cache) fresh(snap *model.ProfileSnapshot) bool {
	return c.now().Sub(snap.BuiltAt) <= c.ttl
}

// buildSnapshot assembles profiles for every category. Profile order
// follows the store's category order, which fixes tie-break behavior.
func buildSnapshot(categories []model.Category, rules *RuleTable, builtAt time.Time) *model.ProfileSnapshot {
	profiles := make([]model.KeywordProfile, 0, len(categories))
	for _, cat := range categories {
		profiles = append(profiles, model.KeywordProfile{
			Category: cat,
			Keywords: buildKeywords(cat, rules),
		})
	}
	return &model.ProfileSnapshot{
		BuiltAt:  builtAt,
		Profiles: profiles,
	}
}

// buildKeywords combines the rule table's curated set with low-weight
// fallback tokens from the category name. The result is never empty:
// every category stays scoreable.
func buildKeywords(cat model.Category, rules *RuleTable) []model.WeightedKeyword {
	keywords := rules.keywordsFor(cat)

	out := make([]model.WeightedKeyword, len(keywords), len(keywords)+4)
	copy(out, keywords)

	seen := make(map[string]bool, len(out))
	for _, kw := range out {
		seen[kw.Token] = true
	}

	for _, word := range strings.Fields(normalize.Normalize(cat.Name)) {
		if len(word) <= 2 || seen[word] {
			continue
		}
		seen[word] = true
		out = append(out, model.WeightedKeyword{Token: word, Weight: fallbackWeight})
	}

	if len(out) == 0 {
		// Name was all short words; keep the whole normalized name so
		// the profile is still matchable.
		out = append(out, model.WeightedKeyword{Token: normalize.Normalize(cat.Name), Weight: fallbackWeight})
	}

	return out
}

package repository

import (
	"context"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/aperia-group/vendor-onboarding/internal/warehouse"
)

// Reference table keys.
const (
	RefStores     = "stores"
	RefGLAccounts = "glAccounts"
	RefCategories = "categories"
)

// ReferenceRepository serves reference lookup tables (stores, GL accounts,
// categories) from a local TTL cache, refetching from the warehouse once a
// table goes stale.
type ReferenceRepository struct {
	wh    *warehouse.Client
	cache *ristretto.Cache[string, []*ReferenceItem]
	ttl   time.Duration
}

// NewReferenceRepository creates a reference repository with the given cache
// validity window.
func NewReferenceRepository(wh *warehouse.Client, ttl time.Duration) (*ReferenceRepository, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, []*ReferenceItem]{
		NumCounters: 1000,
		MaxCost:     1 << 22,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &ReferenceRepository{wh: wh, cache: cache, ttl: ttl}, nil
}

// Get returns one reference table, from cache when fresh.
func (r *ReferenceRepository) Get(ctx context.Context, table string) ([]*ReferenceItem, error) {
	if items, ok := r.cache.Get(table); ok {
		return items, nil
	}

	items, err := r.fetch(ctx, table)
	if err != nil {
		return nil, err
	}

	r.cache.SetWithTTL(table, items, int64(len(items)+1), r.ttl)
	r.cache.Wait()
	return items, nil
}

// Invalidate drops a cached table so the next read refetches.
func (r *ReferenceRepository) Invalidate(table string) {
	r.cache.Del(table)
}

// Close releases the cache.
func (r *ReferenceRepository) Close() {
	r.cache.Close()
}

func (r *ReferenceRepository) fetch(ctx context.Context, table string) ([]*ReferenceItem, error) {
	query := `
		query ListReference($table: String!) {
			listReference(table: $table) {
				items { code name }
			}
		}
	`

	var resp struct {
		ListReference struct {
			Items []*ReferenceItem `json:"items"`
		} `json:"listReference"`
	}

	if err := r.wh.Run(ctx, query, map[string]interface{}{"table": table}, &resp); err != nil {
		return nil, err
	}
	return resp.ListReference.Items, nil
}

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func referenceItems() interface{} {
	return map[string]interface{}{
		"listReference": map[string]interface{}{
			"items": []map[string]interface{}{
				{"code": "4100", "name": "Freight"},
				{"code": "4200", "name": "Handling"},
			},
		},
	}
}

func TestReferenceGetServedFromCache(t *testing.T) {
	wh, requests := newFakeWarehouse(t, func(gqlRequest) interface{} {
		return referenceItems()
	})
	repo, err := NewReferenceRepository(wh, time.Minute)
	require.NoError(t, err)
	t.Cleanup(repo.Close)

	items, err := repo.Get(context.Background(), RefCategories)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "4100", items[0].Code)
	require.Len(t, *requests, 1)

	// A fresh entry never goes back to the warehouse.
	again, err := repo.Get(context.Background(), RefCategories)
	require.NoError(t, err)
	assert.Equal(t, items, again)
	assert.Len(t, *requests, 1)

	// Each table is cached independently.
	_, err = repo.Get(context.Background(), RefStores)
	require.NoError(t, err)
	assert.Len(t, *requests, 2)
}

func TestReferenceGetRefetchesAfterExpiry(t *testing.T) {
	wh, requests := newFakeWarehouse(t, func(gqlRequest) interface{} {
		return referenceItems()
	})
	repo, err := NewReferenceRepository(wh, 50*time.Millisecond)
	require.NoError(t, err)
	t.Cleanup(repo.Close)

	_, err = repo.Get(context.Background(), RefGLAccounts)
	require.NoError(t, err)
	require.Len(t, *requests, 1)

	time.Sleep(150 * time.Millisecond)

	_, err = repo.Get(context.Background(), RefGLAccounts)
	require.NoError(t, err)
	assert.Len(t, *requests, 2)
}

func TestReferenceInvalidateDropsTable(t *testing.T) {
	wh, requests := newFakeWarehouse(t, func(gqlRequest) interface{} {
		return referenceItems()
	})
	repo, err := NewReferenceRepository(wh, time.Minute)
	require.NoError(t, err)
	t.Cleanup(repo.Close)

	_, err = repo.Get(context.Background(), RefCategories)
	require.NoError(t, err)
	require.Len(t, *requests, 1)

	repo.Invalidate(RefCategories)

	_, err = repo.Get(context.Background(), RefCategories)
	require.NoError(t, err)
	assert.Len(t, *requests, 2)
}

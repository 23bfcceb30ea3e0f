package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore(t *testing.T) {
	store := NewConfigStore()
	require.NotNil(t, store)
	assert.NotNil(t, store.values)
	assert.Equal(t, ":memory:", store.Path())
	assert.NoError(t, store.Load())
	assert.NoError(t, store.Save())
}

func TestConfigStore_Set_Update(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("site.uuid", "a"))
	require.NoError(t, store.Set("site.uuid", "b"))

	val, ok := store.Get("site.uuid")
	assert.True(t, ok)
	assert.Equal(t, "b", val)
	assert.Equal(t, "b", store.GetString("site.uuid"))
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("fetch.burst", 3))
	require.NoError(t, store.Set("fetch.requests_per_second", 2.5))
	require.NoError(t, store.Set("sync.site_uuid_check", true))
	require.NoError(t, store.Set("sync.excluded_fields", []any{"node.page.body", 7}))

	assert.Equal(t, 3, store.GetInt("fetch.burst"))
	assert.InDelta(t, 2.5, store.GetFloat("fetch.requests_per_second"), 0.0001)
	assert.True(t, store.GetBool("sync.site_uuid_check"))
	assert.Equal(t, []string{"node.page.body"}, store.GetStringSlice("sync.excluded_fields"))
}

func TestConfigStore_StringConversion(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("sync.site_uuid_check", "true"))
	require.NoError(t, store.Set("fetch.burst", "4"))
	require.NoError(t, store.Set("sync.allowed_entity_types", "node:page, media"))

	assert.True(t, store.GetBool("sync.site_uuid_check"))
	assert.Equal(t, 4, store.GetInt("fetch.burst"))
	assert.Equal(t, []string{"node:page", "media"}, store.GetStringSlice("sync.allowed_entity_types"))
}

func TestConfigStore_Missing(t *testing.T) {
	store := NewConfigStore()

	assert.Empty(t, store.GetString("missing"))
	assert.Zero(t, store.GetInt("missing"))
	assert.False(t, store.GetBool("missing"))
	assert.Nil(t, store.GetStringSlice("missing"))
}

func TestConfigStore_ConcurrentAccess(t *testing.T) {
	store := NewConfigStore()
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = store.Set("k", n)
			_ = store.GetInt("k")
		}(i)
	}
	wg.Wait()

	_, ok := store.Get("k")
	assert.True(t, ok)
}

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
}

func TestConfigStore_SeededValues(t *testing.T) {
	seed := map[string]any{"retrieval.base_url": "http://backend:8000"}
	store := NewConfigStoreWithValues(seed)
	seed["retrieval.base_url"] = "changed"

	assert.Equal(t, "http://backend:8000", store.GetString("retrieval.base_url"))
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStoreWithValues(map[string]any{
		"generation.concurrency":          int64(6),
		"conversion.requests_per_second": 1.5,
		"conversion.burst":                3,
		"flag":                            true,
		"tags.bullet_markers":             []any{"bullet", 7, "list"},
		"tags.chart_markers":              []string{"chart"},
	})

	assert.Equal(t, 6, store.GetInt("generation.concurrency"))
	assert.InDelta(t, 1.5, store.GetFloat("conversion.requests_per_second"), 0.0001)
	assert.InDelta(t, 3.0, store.GetFloat("conversion.burst"), 0.0001)
	assert.True(t, store.GetBool("flag"))
	assert.Equal(t, []string{"bullet", "list"}, store.GetStringSlice("tags.bullet_markers"))
	assert.Equal(t, []string{"chart"}, store.GetStringSlice("tags.chart_markers"))
}

func TestConfigStore_MissingKeysReturnZeroValues(t *testing.T) {
	store := NewConfigStore()

	assert.Equal(t, "", store.GetString("missing"))
	assert.Equal(t, 0, store.GetInt("missing"))
	assert.Zero(t, store.GetFloat("missing"))
	assert.False(t, store.GetBool("missing"))
	assert.Nil(t, store.GetStringSlice("missing"))
}

func TestConfigStore_WrongTypesReturnZeroValues(t *testing.T) {
	store := NewConfigStoreWithValues(map[string]any{"key": struct{}{}})

	assert.Equal(t, "", store.GetString("key"))
	assert.Equal(t, 0, store.GetInt("key"))
	assert.Zero(t, store.GetFloat("key"))
	assert.Nil(t, store.GetStringSlice("key"))
}

func TestConfigStore_SaveCountsAndLoad(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("output.dir", "/tmp/out"))
	require.NoError(t, store.Save())
	require.NoError(t, store.Save())
	require.NoError(t, store.Load())

	assert.Equal(t, 2, store.Saves())
	assert.Equal(t, "/tmp/out", store.GetString("output.dir"))
}

func TestConfigStore_ConcurrentAccess(t *testing.T) {
	store := NewConfigStore()
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = store.Set("generation.concurrency", i)
		}(i)
		go func() {
			defer wg.Done()
			_ = store.GetInt("generation.concurrency")
		}()
	}
	wg.Wait()

	_, ok := store.Get("generation.concurrency")
	assert.True(t, ok)
}

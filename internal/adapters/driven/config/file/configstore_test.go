package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnv() []string { return nil }

func envOf(pairs ...string) func() []string {
	return func() []string { return pairs }
}

func newTestStore(t *testing.T) *ConfigStore {
	t.Helper()
	store, err := newConfigStore(t.TempDir(), noEnv)
	require.NoError(t, err)
	return store
}

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
}

func TestNewConfigStore_DefaultDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := newConfigStore("", noEnv)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".reportgen", "config.toml"), store.Path())
}

func TestConfigStore_SetAndGet(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Set("output.dir", "/tmp/out"))

	val, ok := store.Get("output.dir")
	assert.True(t, ok)
	assert.Equal(t, "/tmp/out", val)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Set("generation.concurrency", 4))
	require.NoError(t, store.Set("retrieval.backoff_seconds", 2.5))
	require.NoError(t, store.Set("generation.skip_pdf", true))
	require.NoError(t, store.Set("proposal.stages", []string{"summary", "pricing"}))

	assert.Equal(t, 4, store.GetInt("generation.concurrency"))
	assert.InDelta(t, 2.5, store.GetFloat("retrieval.backoff_seconds"), 0.0001)
	assert.InDelta(t, 4.0, store.GetFloat("generation.concurrency"), 0.0001)
	assert.True(t, store.GetBool("generation.skip_pdf"))
	assert.Equal(t, []string{"summary", "pricing"}, store.GetStringSlice("proposal.stages"))
}

func TestConfigStore_TypedGetters_WrongType(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Set("flag", true))

	assert.Empty(t, store.GetString("flag"))
	assert.Zero(t, store.GetInt("flag"))
	assert.Zero(t, store.GetFloat("flag"))
	assert.Nil(t, store.GetStringSlice("flag"))
	assert.False(t, store.GetBool("missing"))
}

func TestConfigStore_Get_NotFound(t *testing.T) {
	store := newTestStore(t)

	val, ok := store.Get("nonexistent")

	assert.False(t, ok)
	assert.Nil(t, val)
}

func TestConfigStore_Persistence(t *testing.T) {
	tmpDir := t.TempDir()

	store1, err := newConfigStore(tmpDir, noEnv)
	require.NoError(t, err)
	require.NoError(t, store1.Set("retrieval.base_url", "https://api.example.com"))
	require.NoError(t, store1.Set("generation.concurrency", 3))

	store2, err := newConfigStore(tmpDir, noEnv)
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", store2.GetString("retrieval.base_url"))
	assert.Equal(t, 3, store2.GetInt("generation.concurrency"))
}

func TestConfigStore_Save_WritesNestedTables(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Set("retrieval.base_url", "https://api.example.com"))
	require.NoError(t, store.Set("retrieval.timeout_seconds", 30))
	require.NoError(t, store.Set("verbose", true))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)

	assert.Contains(t, string(data), "[retrieval]")
	assert.Contains(t, string(data), "base_url")
	assert.NotContains(t, string(data), "'retrieval.base_url'")
}

func TestConfigStore_LoadsHandWrittenTables(t *testing.T) {
	tmpDir := t.TempDir()
	content := []byte(`
[templates]
backend = "github"
github_repo = "acme/report-templates"

[generation]
concurrency = 6
`)
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), content, 0o600))

	store, err := newConfigStore(tmpDir, noEnv)
	require.NoError(t, err)

	assert.Equal(t, "github", store.GetString("templates.backend"))
	assert.Equal(t, "acme/report-templates", store.GetString("templates.github_repo"))
	assert.Equal(t, 6, store.GetInt("generation.concurrency"))
}

func TestConfigStore_EnvOverride(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := newConfigStore(tmpDir, noEnv)
	require.NoError(t, err)
	require.NoError(t, store.Set("generation.concurrency", 2))

	store, err = newConfigStore(tmpDir, envOf(
		"REPORTGEN_GENERATION__CONCURRENCY=8",
		"REPORTGEN_GENERATION__SKIP_PDF=true",
		"REPORTGEN_RETRIEVAL__BACKOFF_SECONDS=1.5",
		"REPORTGEN_PROPOSAL__STAGES=summary, pricing,",
		"UNRELATED=1",
	))
	require.NoError(t, err)

	assert.Equal(t, 8, store.GetInt("generation.concurrency"))
	assert.True(t, store.GetBool("generation.skip_pdf"))
	assert.InDelta(t, 1.5, store.GetFloat("retrieval.backoff_seconds"), 0.0001)
	assert.Equal(t, []string{"summary", "pricing"}, store.GetStringSlice("proposal.stages"))
	assert.True(t, store.FromEnv("generation.concurrency"))
	_, ok := store.Get("unrelated")
	assert.False(t, ok)
}

func TestConfigStore_EnvAliases(t *testing.T) {
	store, err := newConfigStore(t.TempDir(), envOf(
		"CONVERT_API_KEY=alias-secret",
		"RETRIEVAL_API_URL=https://retrieval.example.com",
	))
	require.NoError(t, err)

	assert.Equal(t, "alias-secret", store.GetString("conversion.secret"))
	assert.Equal(t, "https://retrieval.example.com", store.GetString("retrieval.base_url"))
}

func TestConfigStore_PrefixedEnvBeatsAlias(t *testing.T) {
	store, err := newConfigStore(t.TempDir(), envOf(
		"CONVERT_API_KEY=alias-secret",
		"REPORTGEN_CONVERSION__SECRET=prefixed-secret",
	))
	require.NoError(t, err)

	assert.Equal(t, "prefixed-secret", store.GetString("conversion.secret"))
}

func TestConfigStore_EnvNeverPersisted(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := newConfigStore(tmpDir, envOf("REPORTGEN_CONVERSION__SECRET=from-env"))
	require.NoError(t, err)

	require.NoError(t, store.Set("output.dir", "/tmp/out"))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.NotContains(t, string(data), "from-env")

	reloaded, err := newConfigStore(tmpDir, noEnv)
	require.NoError(t, err)
	assert.Empty(t, reloaded.GetString("conversion.secret"))
}

func TestConfigStore_Load_NonExistent(t *testing.T) {
	store := newTestStore(t)

	err := store.Load()

	assert.NoError(t, err)
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Set("key", "value"))

	info, err := os.Stat(store.Path())

	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := newTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = store.Set("key", n)
			_ = store.GetInt("key")
		}(i)
	}
	wg.Wait()

	_, ok := store.Get("key")
	assert.True(t, ok)
}

func TestNewConfigStore_LoadCorruptedFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("not [valid toml"), 0o600))

	store, err := newConfigStore(tmpDir, noEnv)

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestConfigStore_Save_WriteFileError(t *testing.T) {
	store := newTestStore(t)
	store.filePath = filepath.Join(t.TempDir(), "missing", "config.toml")

	err := store.Save()

	assert.Error(t, err)
}

func TestConfigStore_SetWithUnmarshallableValue(t *testing.T) {
	store := newTestStore(t)

	err := store.Set("channel", make(chan int))

	assert.Error(t, err)
}

func TestNewConfigStore_WithNestedDirectory(t *testing.T) {
	nestedPath := filepath.Join(t.TempDir(), "nested", "deep", "path")

	store, err := newConfigStore(nestedPath, noEnv)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(nestedPath, "config.toml"), store.Path())

	info, err := os.Stat(nestedPath)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, os.FileMode(0o700), info.Mode().Perm())
}

func TestConfigStore_Load_CommentOnlyFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("# Just a comment\n\n"), 0o600))

	store, err := newConfigStore(tmpDir, noEnv)
	require.NoError(t, err)

	val, ok := store.Get("any_key")
	assert.False(t, ok)
	assert.Nil(t, val)
}

func TestUnflattenMap(t *testing.T) {
	got := unflattenMap(map[string]any{
		"a.b":   1,
		"a.c.d": "x",
		"top":   true,
	})

	assert.Equal(t, map[string]any{
		"a": map[string]any{
			"b": 1,
			"c": map[string]any{"d": "x"},
		},
		"top": true,
	}, got)
	assert.Equal(t, map[string]any{"a.b": 1, "a.c.d": "x", "top": true}, flattenMap(got, ""))
}

func TestUnflattenMap_ValueAndTableClash(t *testing.T) {
	got := unflattenMap(map[string]any{
		"a":   "scalar",
		"a.b": 1,
	})

	assert.Equal(t, "scalar", got["a"])
	assert.Equal(t, 1, got["a.b"])
}

package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/reportgen-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/reportgen-cli/internal/core/domain"
)

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	settings, err := service.Get()

	require.NoError(t, err)
	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Retrieval, settings.Retrieval)
	assert.Equal(t, defaults.Conversion, settings.Conversion)
	assert.Equal(t, defaults.Templates, settings.Templates)
	assert.Equal(t, defaults.Generation, settings.Generation)
	assert.Equal(t, defaults.Classifier, settings.Classifier)
	assert.Equal(t, defaults.OutputDir, settings.OutputDir)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStoreWithValues(map[string]any{
		"retrieval.base_url":                "http://backend:8000/",
		"retrieval.timeout_seconds":         int64(30),
		"conversion.secret":                 "s3cret",
		"conversion.requests_per_second":    0.5,
		"templates.backend":                 "github",
		"templates.github_repo":             "acme/templates",
		"generation.concurrency":            int64(40),
		"generation.max_combinations":       int64(0),
		"generation.prune_interval_minutes": int64(15),
		"tags.bullet_markers":               []any{"points"},
	})
	service := NewSettingsService(store)

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, "http://backend:8000", settings.Retrieval.BaseURL)
	assert.Equal(t, 30*time.Second, settings.Retrieval.Timeout)
	assert.Equal(t, "s3cret", settings.Conversion.Secret)
	assert.True(t, settings.Conversion.IsConfigured())
	assert.InDelta(t, 0.5, settings.Conversion.RequestsPerSecond, 0.0001)
	assert.Equal(t, domain.TemplateBackendGitHub, settings.Templates.Backend)
	assert.Equal(t, domain.MaxConcurrency, settings.Generation.Concurrency)
	assert.Equal(t, 0, settings.Generation.MaxCombinations)
	assert.Equal(t, 15*time.Minute, settings.Generation.PruneInterval)
	assert.Equal(t, []string{"points"}, settings.Classifier.BulletMarkers)
	assert.Equal(t, []string{"chart"}, settings.Classifier.ChartMarkers)
}

func TestSettingsService_Get_InvalidBackendReturnsDefault(t *testing.T) {
	store := memory.NewConfigStoreWithValues(map[string]any{"templates.backend": "ftp"})
	service := NewSettingsService(store)

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.TemplateBackendFile, settings.Templates.Backend)
}

func TestSettingsService_Set(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		want  any
	}{
		{"string", "retrieval.base_url", "http://x", "http://x"},
		{"secret", "conversion.secret", " abc ", "abc"},
		{"int", "generation.keep", "3", 3},
		{"float", "conversion.requests_per_second", "1.5", 1.5},
		{"list", "tags.chart_markers", "chart, graph,,", []string{"chart", "graph"}},
		{"backend", "templates.backend", "Drive", "drive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewConfigStore()
			service := NewSettingsService(store)

			require.NoError(t, service.Set(tt.key, tt.value))

			got, ok := store.Get(tt.key)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSettingsService_Set_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown key", "render.engine", "libreoffice"},
		{"not an int", "generation.keep", "many"},
		{"negative int", "generation.keep", "-1"},
		{"concurrency too high", "generation.concurrency", "17"},
		{"concurrency zero", "generation.concurrency", "0"},
		{"zero rate", "conversion.requests_per_second", "0"},
		{"bad backend", "templates.backend", "ftp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewSettingsService(memory.NewConfigStore())
			assert.ErrorIs(t, service.Set(tt.key, tt.value), domain.ErrInvalidInput)
		})
	}
}

func TestSettingsService_Keys(t *testing.T) {
	keys := NewSettingsService(memory.NewConfigStore()).Keys()

	assert.Contains(t, keys, "generation.concurrency")
	assert.Contains(t, keys, "conversion.secret")
	assert.IsIncreasing(t, keys)
}

func TestIsSecretKey(t *testing.T) {
	assert.True(t, IsSecretKey("conversion.secret"))
	assert.True(t, IsSecretKey("templates.github_token"))
	assert.False(t, IsSecretKey("retrieval.base_url"))
	assert.False(t, IsSecretKey("nope"))
}

func TestSettingsService_Validate(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)
	require.NoError(t, service.Validate())

	require.NoError(t, service.Set("templates.backend", "http"))
	assert.ErrorIs(t, service.Validate(), domain.ErrInvalidInput)

	require.NoError(t, service.Set("templates.base_url", "http://assets"))
	assert.NoError(t, service.Validate())
}

func TestSettingsService_GetDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())
	assert.Equal(t, domain.DefaultAppSettings().Generation, service.GetDefaults().Generation)
}

func TestSettingsService_GetSchedulerConfig(t *testing.T) {
	store := memory.NewConfigStoreWithValues(map[string]any{
		"scheduler.enabled":                  false,
		"generation.prune_interval_minutes":  int64(30),
		"scheduler.contents_expire.enabled":  false,
		"scheduler.contents_expire.interval": "6h",
		"scheduler.contents_expire.max_age":  "48h",
	})
	service := NewSettingsService(store)

	cfg := service.GetSchedulerConfig()

	assert.False(t, cfg.Enabled)
	assert.Equal(t, 30*time.Minute, cfg.GetTaskConfig(domain.TaskIDArtifactPrune).Interval)
	assert.True(t, cfg.GetTaskConfig(domain.TaskIDArtifactPrune).Enabled)
	assert.False(t, cfg.GetTaskConfig(domain.TaskIDContentsExpire).Enabled)
	assert.Equal(t, 6*time.Hour, cfg.GetTaskConfig(domain.TaskIDContentsExpire).Interval)
	assert.Equal(t, 48*time.Hour, service.ContentsMaxAge())
}

func TestSettingsService_GetSchedulerConfig_IgnoresBadInterval(t *testing.T) {
	store := memory.NewConfigStoreWithValues(map[string]any{
		"scheduler.artifact_prune.interval": "soon",
	})
	service := NewSettingsService(store)

	cfg := service.GetSchedulerConfig()

	assert.Equal(t, time.Hour, cfg.GetTaskConfig(domain.TaskIDArtifactPrune).Interval)
	assert.Equal(t, DefaultContentsMaxAge, service.ContentsMaxAge())
}

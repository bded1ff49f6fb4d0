package services

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/reportgen-cli/internal/core/domain"
	"github.com/custodia-labs/reportgen-cli/internal/core/ports/driven"
	"github.com/custodia-labs/reportgen-cli/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyRetrievalBaseURL = "retrieval.base_url"
	keyRetrievalTimeout = "retrieval.timeout_seconds"

	keyConversionBaseURL = "conversion.base_url"
	keyConversionSecret  = "conversion.secret"
	keyConversionRate    = "conversion.requests_per_second"
	keyConversionBurst   = "conversion.burst"

	keyTemplatesBackend     = "templates.backend"
	keyTemplatesDir         = "templates.dir"
	keyTemplatesBaseURL     = "templates.base_url"
	keyTemplatesDriveFolder = "templates.drive_folder_id"
	keyTemplatesDriveAPIKey = "templates.drive_api_key"
	keyTemplatesGitHubRepo  = "templates.github_repo"
	keyTemplatesGitHubPath  = "templates.github_path"
	keyTemplatesGitHubRef   = "templates.github_ref"
	keyTemplatesGitHubToken = "templates.github_token"

	keyGenerationConcurrency = "generation.concurrency"
	keyGenerationMax         = "generation.max_combinations"
	keyGenerationKeep        = "generation.keep"
	keyGenerationPrune       = "generation.prune_interval_minutes"

	keyOutputDir     = "output.dir"
	keyBulletMarkers = "tags.bullet_markers"
	keyChartMarkers  = "tags.chart_markers"

	keySchedulerEnabled = "scheduler.enabled"
	keyContentsMaxAge   = "scheduler.contents_expire.max_age"
)

type keyKind int

const (
	kindString keyKind = iota
	kindSecret
	kindInt
	kindFloat
	kindList
	kindBackend
)

var settingKinds = map[string]keyKind{
	keyRetrievalBaseURL:      kindString,
	keyRetrievalTimeout:      kindInt,
	keyConversionBaseURL:     kindString,
	keyConversionSecret:      kindSecret,
	keyConversionRate:        kindFloat,
	keyConversionBurst:       kindInt,
	keyTemplatesBackend:      kindBackend,
	keyTemplatesDir:          kindString,
	keyTemplatesBaseURL:      kindString,
	keyTemplatesDriveFolder:  kindString,
	keyTemplatesDriveAPIKey:  kindSecret,
	keyTemplatesGitHubRepo:   kindString,
	keyTemplatesGitHubPath:   kindString,
	keyTemplatesGitHubRef:    kindString,
	keyTemplatesGitHubToken:  kindSecret,
	keyGenerationConcurrency: kindInt,
	keyGenerationMax:         kindInt,
	keyGenerationKeep:        kindInt,
	keyGenerationPrune:       kindInt,
	keyOutputDir:             kindString,
	keyBulletMarkers:         kindList,
	keyChartMarkers:          kindList,
}

// IsSecretKey reports whether a setting holds a credential that should not be
// echoed back to the terminal.
func IsSecretKey(key string) bool {
	return settingKinds[key] == kindSecret
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Retrieval: domain.RetrievalSettings{
			BaseURL: strings.TrimRight(s.getString(keyRetrievalBaseURL, defaults.Retrieval.BaseURL), "/"),
			Timeout: s.getSeconds(keyRetrievalTimeout, defaults.Retrieval.Timeout),
		},
		Conversion: domain.ConversionSettings{
			BaseURL:           strings.TrimRight(s.getString(keyConversionBaseURL, defaults.Conversion.BaseURL), "/"),
			Secret:            s.configStore.GetString(keyConversionSecret),
			RequestsPerSecond: s.getFloat(keyConversionRate, defaults.Conversion.RequestsPerSecond),
			Burst:             s.getInt(keyConversionBurst, defaults.Conversion.Burst),
		},
		Templates: domain.TemplateSettings{
			Backend:       s.getBackend(defaults.Templates.Backend),
			Dir:           s.getString(keyTemplatesDir, defaults.Templates.Dir),
			BaseURL:       strings.TrimRight(s.configStore.GetString(keyTemplatesBaseURL), "/"),
			DriveFolderID: s.configStore.GetString(keyTemplatesDriveFolder),
			DriveAPIKey:   s.configStore.GetString(keyTemplatesDriveAPIKey),
			GitHubRepo:    s.configStore.GetString(keyTemplatesGitHubRepo),
			GitHubPath:    s.configStore.GetString(keyTemplatesGitHubPath),
			GitHubRef:     s.getString(keyTemplatesGitHubRef, defaults.Templates.GitHubRef),
			GitHubToken:   s.configStore.GetString(keyTemplatesGitHubToken),
		},
		Generation: domain.GenerationSettings{
			Concurrency:     domain.ClampConcurrency(s.getInt(keyGenerationConcurrency, defaults.Generation.Concurrency)),
			MaxCombinations: s.getIntAllowZero(keyGenerationMax, defaults.Generation.MaxCombinations),
			Keep:            s.getInt(keyGenerationKeep, defaults.Generation.Keep),
			PruneInterval:   s.getMinutes(keyGenerationPrune, defaults.Generation.PruneInterval),
		},
		OutputDir: s.getString(keyOutputDir, defaults.OutputDir),
		Classifier: domain.TagClassifier{
			BulletMarkers: s.getList(keyBulletMarkers, defaults.Classifier.BulletMarkers),
			ChartMarkers:  s.getList(keyChartMarkers, defaults.Classifier.ChartMarkers),
		},
	}

	return settings, nil
}

// Set parses value according to the key's type and persists it.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("unknown setting %q: %w", key, domain.ErrInvalidInput)
	}
	value = strings.TrimSpace(value)

	var stored any
	switch kind {
	case kindString, kindSecret:
		stored = value
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%s must be a non-negative integer: %w", key, domain.ErrInvalidInput)
		}
		if key == keyGenerationConcurrency && (n < domain.MinConcurrency || n > domain.MaxConcurrency) {
			return fmt.Errorf("%s must be between %d and %d: %w",
				key, domain.MinConcurrency, domain.MaxConcurrency, domain.ErrInvalidInput)
		}
		stored = n
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f <= 0 {
			return fmt.Errorf("%s must be a positive number: %w", key, domain.ErrInvalidInput)
		}
		stored = f
	case kindList:
		var items []string
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		stored = items
	case kindBackend:
		backend := domain.TemplateBackend(strings.ToLower(value))
		if !backend.IsValid() {
			return fmt.Errorf("invalid template backend %q: %w", value, domain.ErrInvalidInput)
		}
		stored = backend.String()
	}

	if err := s.configStore.Set(key, stored); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys returns all recognised setting keys in sorted order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKinds))
	for k := range settingKinds {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// IsSecret reports whether a key holds a credential.
func (s *SettingsService) IsSecret(key string) bool {
	return IsSecretKey(key)
}

// Validate checks if current settings can drive the application.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return settings.Validate()
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// GetSchedulerConfig returns the scheduler configuration.
// Returns default configuration if nothing is configured.
func (s *SettingsService) GetSchedulerConfig() domain.SchedulerConfig {
	defaults := domain.DefaultSchedulerConfig()

	if _, exists := s.configStore.Get(keySchedulerEnabled); exists {
		defaults.Enabled = s.configStore.GetBool(keySchedulerEnabled)
	}

	prune := defaults.TaskConfigs[domain.TaskIDArtifactPrune]
	prune.Interval = s.getMinutes(keyGenerationPrune, prune.Interval)
	defaults.TaskConfigs[domain.TaskIDArtifactPrune] = prune

	// Map from task ID to config key (underscore version for TOML)
	taskKeys := map[string]string{
		domain.TaskIDArtifactPrune:  "artifact_prune",
		domain.TaskIDContentsExpire: "contents_expire",
	}

	for taskID, configKey := range taskKeys {
		prefix := "scheduler." + configKey + "."
		taskCfg := defaults.TaskConfigs[taskID]

		if _, exists := s.configStore.Get(prefix + "enabled"); exists {
			taskCfg.Enabled = s.configStore.GetBool(prefix + "enabled")
		}

		// Duration strings like "45m", "1h"
		if interval := s.configStore.GetString(prefix + "interval"); interval != "" {
			if d, err := time.ParseDuration(interval); err == nil && d > 0 {
				taskCfg.Interval = d
			}
		}

		defaults.TaskConfigs[taskID] = taskCfg
	}

	return defaults
}

// ContentsMaxAge returns how long cached contents are kept.
func (s *SettingsService) ContentsMaxAge() time.Duration {
	if v := s.configStore.GetString(keyContentsMaxAge); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return DefaultContentsMaxAge
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getIntAllowZero(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val := s.configStore.GetFloat(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getSeconds(key string, defaultVal time.Duration) time.Duration {
	if n := s.configStore.GetInt(key); n > 0 {
		return time.Duration(n) * time.Second
	}
	return defaultVal
}

func (s *SettingsService) getMinutes(key string, defaultVal time.Duration) time.Duration {
	if n := s.configStore.GetInt(key); n > 0 {
		return time.Duration(n) * time.Minute
	}
	return defaultVal
}

func (s *SettingsService) getList(key string, defaultVal []string) []string {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetStringSlice(key)
}

func (s *SettingsService) getBackend(defaultVal domain.TemplateBackend) domain.TemplateBackend {
	val := s.configStore.GetString(keyTemplatesBackend)
	if val == "" {
		return defaultVal
	}
	backend := domain.TemplateBackend(val)
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}

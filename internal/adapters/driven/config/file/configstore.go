package file

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/reportgen-cli/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// EnvPrefix marks environment variables that override configuration keys.
// Double underscores separate key segments:
// REPORTGEN_RETRIEVAL__BASE_URL overrides retrieval.base_url.
const EnvPrefix = "REPORTGEN_"

// envAliases map well-known variables onto configuration keys.
var envAliases = map[string]string{
	"CONVERT_API_KEY":    "conversion.secret",
	"CONVERT_API_SECRET": "conversion.secret",
	"RETRIEVAL_API_URL":  "retrieval.base_url",
	"GITHUB_TOKEN":       "templates.github_token",
}

// ConfigStore is a TOML-file implementation of driven.ConfigStore.
// Environment overrides take precedence over the file and are never saved.
type ConfigStore struct {
	mu       sync.RWMutex
	filePath string
	data     map[string]any
	env      map[string]string
	environ  func() []string
}

// NewConfigStore creates a TOML-based config store.
// If configDir is empty, defaults to ~/.reportgen/config.toml.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	return newConfigStore(configDir, os.Environ)
}

func newConfigStore(configDir string, environ func() []string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".reportgen")
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return nil, err
	}

	s := &ConfigStore{
		filePath: filepath.Join(configDir, "config.toml"),
		data:     make(map[string]any),
		env:      make(map[string]string),
		environ:  environ,
	}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Get retrieves a configuration value by key.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if v, ok := s.env[key]; ok {
		return v, true
	}
	val, ok := s.data[key]
	return val, ok
}

// FromEnv reports whether key is overridden by the environment.
func (s *ConfigStore) FromEnv(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.env[key]
	return ok
}

// GetString retrieves a string configuration value.
func (s *ConfigStore) GetString(key string) string {
	val, _ := s.Get(key)
	str, _ := val.(string)
	return str
}

// GetInt retrieves an integer configuration value.
func (s *ConfigStore) GetInt(key string) int {
	val, ok := s.Get(key)
	if !ok {
		return 0
	}

	// TOML integers are parsed as int64
	switch v := val.(type) {
	case int64:
		return int(v)
	case int:
		return v
	case string:
		n, _ := strconv.Atoi(strings.TrimSpace(v))
		return n
	default:
		return 0
	}
}

// GetFloat retrieves a numeric configuration value.
func (s *ConfigStore) GetFloat(key string) float64 {
	val, ok := s.Get(key)
	if !ok {
		return 0
	}

	switch v := val.(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f
	default:
		return 0
	}
}

// GetBool retrieves a boolean configuration value.
func (s *ConfigStore) GetBool(key string) bool {
	val, ok := s.Get(key)
	if !ok {
		return false
	}

	switch v := val.(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(v))
		return b
	default:
		return false
	}
}

// GetStringSlice retrieves a string slice configuration value. Environment
// overrides are comma separated.
func (s *ConfigStore) GetStringSlice(key string) []string {
	val, ok := s.Get(key)
	if !ok {
		return nil
	}

	// TOML arrays are parsed as []any
	switch v := val.(type) {
	case []string:
		return v
	case []any:
		result := make([]string, 0, len(v))
		for _, item := range v {
			if str, ok := item.(string); ok {
				result = append(result, str)
			}
		}
		return result
	case string:
		var result []string
		for _, item := range strings.Split(v, ",") {
			if item = strings.TrimSpace(item); item != "" {
				result = append(result, item)
			}
		}
		return result
	default:
		return nil
	}
}

// Set stores a configuration value and persists immediately.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = value
	return s.save()
}

// Save persists the current configuration to disk.
func (s *ConfigStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save()
}

// save writes the file-backed values as nested TOML tables (caller must
// hold lock).
func (s *ConfigStore) save() error {
	data, err := toml.Marshal(unflattenMap(s.data))
	if err != nil {
		return err
	}
	return os.WriteFile(s.filePath, data, 0o600)
}

// Load reads the TOML file and the environment overrides.
func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.env = readEnv(s.environ())

	data, err := os.ReadFile(s.filePath)
	if os.IsNotExist(err) {
		s.data = make(map[string]any)
		return nil
	}
	if err != nil {
		return err
	}

	var loaded map[string]any
	if err := toml.Unmarshal(data, &loaded); err != nil {
		return err
	}
	s.data = flattenMap(loaded, "")
	return nil
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}

// readEnv collects overrides from KEY=VALUE pairs. Prefixed variables win
// over aliases.
func readEnv(pairs []string) map[string]string {
	env := make(map[string]string)
	sort.Strings(pairs)

	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		if key, ok := envAliases[name]; ok && value != "" {
			if _, set := env[key]; !set {
				env[key] = value
			}
		}
	}
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || !strings.HasPrefix(name, EnvPrefix) || len(name) == len(EnvPrefix) {
			continue
		}
		key := strings.ToLower(strings.ReplaceAll(name[len(EnvPrefix):], "__", "."))
		env[key] = value
	}
	return env
}

// flattenMap converts nested maps to dot-notation keys.
// E.g., {"a": {"b": 1}} becomes {"a.b": 1}.
func flattenMap(m map[string]any, prefix string) map[string]any {
	result := make(map[string]any)
	for key, value := range m {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}
		if nested, ok := value.(map[string]any); ok {
			for k, v := range flattenMap(nested, fullKey) {
				result[k] = v
			}
			continue
		}
		result[fullKey] = value
	}
	return result
}

// unflattenMap is the inverse of flattenMap. A key that is both a value and
// a table prefix keeps the value under its full dotted name.
func unflattenMap(m map[string]any) map[string]any {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := make(map[string]any)
	for _, key := range keys {
		parts := strings.Split(key, ".")
		node := result
		placed := true
		for _, part := range parts[:len(parts)-1] {
			child, exists := node[part]
			if !exists {
				next := make(map[string]any)
				node[part] = next
				node = next
				continue
			}
			next, ok := child.(map[string]any)
			if !ok {
				placed = false
				break
			}
			node = next
		}
		if placed {
			if _, clash := node[parts[len(parts)-1]].(map[string]any); !clash {
				node[parts[len(parts)-1]] = m[key]
				continue
			}
		}
		result[key] = m[key]
	}
	return result
}

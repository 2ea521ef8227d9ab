// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/jeranaias/microstep-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Mode values.
const (
	// ModeMulti gates the views behind login/registration.
	ModeMulti = "multi"
	// ModeSingle skips authentication and uses a fixed identity.
	ModeSingle = "single"
)

// Config represents the complete microstep configuration.
type Config struct {
	// Mode is "multi" (login required) or "single" (no auth).
	Mode string `toml:"mode" json:"mode"`

	API     APIConfig     `toml:"api" json:"api"`
	Session SessionConfig `toml:"session" json:"session"`
	Log     LogConfig     `toml:"log" json:"log"`
	UI      UIConfig      `toml:"ui" json:"ui"`
}

// APIConfig describes the backend.
type APIConfig struct {
	// BaseURL includes the /api prefix, e.g. http://localhost:5000/api
	BaseURL string `toml:"base_url" json:"base_url"`
	// TimeoutSecs bounds each request. 0 means the default.
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
	// RateLimit caps requests per second (0 = unlimited).
	RateLimit float64 `toml:"rate_limit" json:"rate_limit"`
	// RateBurst is the burst allowed above RateLimit.
	RateBurst int `toml:"rate_burst" json:"rate_burst"`
}

// SessionConfig controls where the bearer token lives.
type SessionConfig struct {
	// Path of the token file (empty = ~/.microstep/session.json).
	Path string `toml:"path" json:"path"`
	// Watch reloads the token when another process changes the file.
	Watch bool `toml:"watch" json:"watch"`
}

// LogConfig controls the diagnostic log file.
type LogConfig struct {
	Enabled bool `toml:"enabled" json:"enabled"`
	// Path of the log file (empty = ~/.microstep/microstep.log).
	Path string `toml:"path" json:"path"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is "auto", "dark" or "light". It picks the digest markdown style.
	Theme string `toml:"theme" json:"theme"`
	// FocusCount is how many pending tasks the dashboard highlights.
	FocusCount int `toml:"focus_count" json:"focus_count"`
	// CelebrationSecs is how long the completion modal stays up.
	CelebrationSecs int `toml:"celebration_secs" json:"celebration_secs"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// DefaultBaseURL matches the backend's development address.
const DefaultBaseURL = "http://localhost:5000/api"

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Mode: ModeMulti,
		API: APIConfig{
			BaseURL:     DefaultBaseURL,
			TimeoutSecs: 30,
			RateBurst:   5,
		},
		Session: SessionConfig{
			Watch: true,
		},
		Log: LogConfig{
			Enabled: true,
		},
		UI: UIConfig{
			Theme:           "auto",
			FocusCount:      3,
			CelebrationSecs: 3,
		},
	}
}

// Timeout returns the request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.API.TimeoutSecs) * time.Second
}

// CelebrationDuration returns how long the completion modal stays up.
func (c *Config) CelebrationDuration() time.Duration {
	return time.Duration(c.UI.CelebrationSecs) * time.Second
}

// SingleUser reports whether authentication is skipped.
func (c *Config) SingleUser() bool {
	return c.Mode == ModeSingle
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the microstep configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".microstep"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// SessionPath resolves the token file location.
func (c *Config) SessionPath() (string, error) {
	return c.resolve(c.Session.Path, "session.json")
}

// LogPath resolves the log file location.
func (c *Config) LogPath() (string, error) {
	return c.resolve(c.Log.Path, "microstep.log")
}

func (c *Config) resolve(p, name string) (string, error) {
	if p != "" {
		return expandHome(p)
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

func expandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// LoadDotEnv reads KEY=VALUE pairs from the given files (default ".env")
// into the process environment. Variables already set win; missing files
// are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// Load loads configuration from ~/.microstep (TOML first, then JSON),
// falling back to defaults. .env and environment overrides are applied
// last, then the result is validated.
func Load() (*Config, error) {
	cfg := Default()

	for _, pathFn := range []func() (string, error){ConfigPathTOML, ConfigPathJSON} {
		path, err := pathFn()
		if err != nil {
			continue
		}
		if _, statErr := os.Stat(path); statErr != nil {
			continue
		}
		if err := loadFile(cfg, path); err != nil {
			return nil, err
		}
		break
	}

	return finish(cfg)
}

// LoadFromPath loads configuration from a specific file path with full validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if err := loadFile(cfg, path); err != nil {
		return nil, err
	}
	return finish(cfg)
}

func loadFile(cfg *Config, path string) error {
	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
		return nil
	}
	if err := LoadTOML(cfg, path); err != nil {
		return fmt.Errorf("failed to load TOML config from %s: %w", path, err)
	}
	return nil
}

func finish(cfg *Config) (*Config, error) {
	if err := LoadDotEnv(); err != nil {
		return nil, err
	}
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file over cfg.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON decodes a JSON file over cfg.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration atomically with owner-only permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# microstep configuration file\n")
	buf.WriteString("# Environment (MICROSTEP_*) and flags override these values.\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600, 0700); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	switch c.Mode {
	case ModeMulti, ModeSingle:
	default:
		errs = append(errs, ValidationError{
			Field:   "mode",
			Message: fmt.Sprintf("invalid mode '%s', must be one of: multi, single", c.Mode),
		})
	}

	if u, err := url.Parse(c.API.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "api.base_url",
			Message: fmt.Sprintf("invalid URL '%s', must be an absolute http(s) URL", c.API.BaseURL),
		})
	}

	if c.API.TimeoutSecs < 1 || c.API.TimeoutSecs > 600 {
		errs = append(errs, ValidationError{
			Field:   "api.timeout_secs",
			Message: fmt.Sprintf("must be between 1 and 600, got %d", c.API.TimeoutSecs),
		})
	}

	if c.API.RateLimit < 0 {
		errs = append(errs, ValidationError{
			Field:   "api.rate_limit",
			Message: "must not be negative",
		})
	}

	switch c.UI.Theme {
	case "auto", "dark", "light":
	default:
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: auto, dark, light", c.UI.Theme),
		})
	}

	if c.UI.FocusCount < 1 || c.UI.FocusCount > 20 {
		errs = append(errs, ValidationError{
			Field:   "ui.focus_count",
			Message: fmt.Sprintf("must be between 1 and 20, got %d", c.UI.FocusCount),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults fills zero values that Validate would otherwise reject.
func (c *Config) SetDefaults() {
	d := Default()

	c.Mode = strings.ToLower(strings.TrimSpace(c.Mode))
	if c.Mode == "" {
		c.Mode = d.Mode
	}
	c.API.BaseURL = strings.TrimRight(strings.TrimSpace(c.API.BaseURL), "/")
	if c.API.BaseURL == "" {
		c.API.BaseURL = d.API.BaseURL
	}
	if c.API.TimeoutSecs == 0 {
		c.API.TimeoutSecs = d.API.TimeoutSecs
	}
	if c.API.RateBurst <= 0 {
		c.API.RateBurst = d.API.RateBurst
	}
	c.UI.Theme = strings.ToLower(strings.TrimSpace(c.UI.Theme))
	if c.UI.Theme == "" {
		c.UI.Theme = d.UI.Theme
	}
	if c.UI.FocusCount == 0 {
		c.UI.FocusCount = d.UI.FocusCount
	}
	if c.UI.CelebrationSecs <= 0 {
		c.UI.CelebrationSecs = d.UI.CelebrationSecs
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// Environment variables read by ApplyEnvOverrides.
const (
	EnvAPIURL      = "MICROSTEP_API_URL"
	EnvMode        = "MICROSTEP_MODE"
	EnvSessionPath = "MICROSTEP_SESSION_PATH"
	EnvLogPath     = "MICROSTEP_LOG_PATH"
	EnvTimeout     = "MICROSTEP_TIMEOUT"
)

// ApplyEnvOverrides overlays MICROSTEP_* variables.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv(EnvAPIURL); v != "" {
		c.API.BaseURL = v
	}

	if v := os.Getenv(EnvMode); v != "" {
		c.Mode = v
	}

	if v := os.Getenv(EnvSessionPath); v != "" {
		c.Session.Path = v
	}

	if v := os.Getenv(EnvLogPath); v != "" {
		c.Log.Path = v
	}

	// Either a Go duration ("10s") or whole seconds ("10").
	if v := os.Getenv(EnvTimeout); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.API.TimeoutSecs = int(d / time.Second)
		} else if n, err := strconv.Atoi(v); err == nil {
			c.API.TimeoutSecs = n
		}
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "api.base_url").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation (e.g., "ui.theme").
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	if strings.TrimSpace(key) == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}
	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Float64:
			floatVal, err := strconv.ParseFloat(strVal, 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %v", err)
			}
			field.SetFloat(floatVal)
			return nil
		case reflect.Bool:
			lower := strings.ToLower(strVal)
			field.SetBool(lower == "1" || lower == "true" || lower == "yes")
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if !val.IsValid() {
		return fmt.Errorf("cannot assign nil to %s", field.Type())
	}
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	return []string{
		"mode",
		"api.base_url",
		"api.timeout_secs",
		"api.rate_limit",
		"api.rate_burst",
		"session.path",
		"session.watch",
		"log.enabled",
		"log.path",
		"ui.theme",
		"ui.focus_count",
		"ui.celebration_secs",
	}
}

// String renders the config as indented JSON.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

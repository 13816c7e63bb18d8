// Package config provides configuration management for the git-cache tool.
// It handles loading, validating, and persisting application settings. The
// package supports YAML configuration files and provides sensible defaults,
// with git-config keys and command line flags layered on top by the caller.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/revdeer/git-cache/pkg/errors"
	"github.com/revdeer/git-cache/pkg/fsutil"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	// General settings
	Settings Settings `yaml:"settings"`
}

// Settings represents general application settings.
type Settings struct {
	// CacheRoot is the directory that holds all cache entries.
	CacheRoot string `yaml:"cache_root,omitempty"`

	// Mode selects how new cache entries mirror their remote ("bare" or "mirror").
	Mode string `yaml:"mode"`

	// Locking settings. LockTimeout is in seconds; negative waits forever,
	// zero gives up immediately when an entry is busy.
	NoLock      bool `yaml:"no_lock"`
	LockTimeout int  `yaml:"lock_timeout"`

	// MaxConcurrentRefresh bounds the number of parallel fetches during
	// a whole-cache refresh.
	MaxConcurrentRefresh int `yaml:"max_concurrent_refresh"`

	// GitBinary is the git executable to invoke.
	GitBinary string `yaml:"git_binary"`

	// HooksDir is the directory holding lifecycle hook scripts.
	HooksDir string `yaml:"hooks_dir,omitempty"`

	// Output settings
	OutputFormat string `yaml:"output_format"` // text, json
	LogLevel     string `yaml:"log_level"`     // error, warn, info, debug
}

// Default configuration values.
const (
	// DefaultMode is the clone mode used when none is configured.
	DefaultMode = "bare"

	// DefaultLockTimeout is the default lock wait budget in seconds.
	DefaultLockTimeout = 300

	// DefaultMaxConcurrentRefresh is the default number of parallel fetches.
	DefaultMaxConcurrentRefresh = 4

	// DefaultGitBinary is the git executable looked up on PATH.
	DefaultGitBinary = "git"

	// YAMLIndent is the number of spaces to use for YAML indentation.
	YAMLIndent = 2
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	cacheRoot, err := fsutil.DefaultCacheRoot()
	if err != nil {
		// Fallback to a temp location if the user cache dir is unknown
		cacheRoot = filepath.Join(os.TempDir(), fsutil.AppName)
	}

	hooksDir, err := fsutil.DefaultHooksDir()
	if err != nil {
		// Hooks stay disabled when no config dir can be determined
		hooksDir = ""
	}

	return &Config{
		Settings: Settings{
			CacheRoot:            cacheRoot,
			Mode:                 DefaultMode,
			LockTimeout:          DefaultLockTimeout,
			MaxConcurrentRefresh: DefaultMaxConcurrentRefresh,
			GitBinary:            DefaultGitBinary,
			HooksDir:             hooksDir,
			OutputFormat:         "text",
			LogLevel:             "info",
		},
	}
}

// LoadConfig loads configuration from a file.
func LoadConfig(path string) (*Config, error) {
	// Validate the config file path
	if path == "" {
		return nil, errors.ErrEmptyConfigPath
	}

	// Ensure the path is clean and absolute
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	// Check if file exists and is accessible
	file, err := os.Open(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, errors.Wrapf(err, "failed to open config file: %s", path)
	}
	defer func() { _ = file.Close() }()

	return LoadConfigFromReader(file)
}

// LoadConfigFromReader loads configuration from an io.Reader.
func LoadConfigFromReader(reader io.Reader) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config data")
	}

	// Decode over the defaults so keys absent from the file keep their
	// built-in values. lock_timeout in particular has a meaningful zero.
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.Wrap(errors.ErrConfigParse, err.Error())
	}

	config.applyDefaults()

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrConfigValidation, err.Error())
	}

	return config, nil
}

// SaveConfig saves configuration to a file.
func (c *Config) SaveConfig(path string) error {
	// Validate the config file path
	if path == "" {
		return errors.ErrEmptyConfigPath
	}

	// Ensure the path is clean and absolute
	absPath, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	// Ensure the directory exists
	if err := os.MkdirAll(filepath.Dir(absPath), fsutil.DirModeDefault); err != nil {
		return errors.Wrap(errors.ErrConfigDirectory, err.Error())
	}

	tempPath := absPath + ".tmp"
	file, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fsutil.FileModeDefault)
	if err != nil {
		return errors.Wrap(errors.ErrConfigFileCreate, err.Error())
	}

	// Write YAML data
	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(YAMLIndent)

	if err := encoder.Encode(c); err != nil {
		_ = file.Close()
		_ = os.Remove(tempPath)
		return errors.Wrap(errors.ErrConfigEncode, err.Error())
	}

	_ = encoder.Close()
	_ = file.Close()

	// Atomically replace the config file
	if err := os.Rename(tempPath, absPath); err != nil {
		// Clean up temp file if rename fails
		_ = os.Remove(tempPath)
		return errors.Wrap(errors.ErrConfigFileRename, err.Error())
	}

	return nil
}

// ToYAML converts the config to YAML bytes.
func (c *Config) ToYAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(errors.ErrConfigEncode, err.Error())
	}
	return data, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c == nil {
		return errors.ErrConfigValidation
	}
	return validateSettings(c.Settings)
}

func validateSettings(s Settings) error {
	validModes := map[string]bool{"bare": true, "mirror": true}
	if !validModes[s.Mode] {
		return fmt.Errorf("invalid mode %q (must be bare or mirror)", s.Mode)
	}
	if s.MaxConcurrentRefresh < 1 {
		return fmt.Errorf("max_concurrent_refresh must be at least 1, got %d", s.MaxConcurrentRefresh)
	}
	if s.GitBinary == "" {
		return fmt.Errorf("git_binary cannot be empty")
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[s.OutputFormat] {
		return fmt.Errorf("invalid output format %q (must be text or json)", s.OutputFormat)
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(s.LogLevel)] {
		return fmt.Errorf("invalid log level %q (must be debug, info, warn or error)", s.LogLevel)
	}
	return nil
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() (string, error) {
	path, err := fsutil.DefaultConfigPath()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return path, nil
}

// LockTimeoutDuration returns the configured lock wait budget as a duration.
// A negative configured value means wait indefinitely; the returned duration
// is negative in that case, which the lock manager treats the same way.
func (s Settings) LockTimeoutDuration() time.Duration {
	if s.LockTimeout < 0 {
		return -1
	}
	return time.Duration(s.LockTimeout) * time.Second
}

// applyDefaults fills in missing values with defaults.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	// Apply default settings if not set
	if c.Settings.CacheRoot == "" {
		c.Settings.CacheRoot = defaults.Settings.CacheRoot
	}
	if c.Settings.Mode == "" {
		c.Settings.Mode = defaults.Settings.Mode
	}
	if c.Settings.MaxConcurrentRefresh == 0 {
		c.Settings.MaxConcurrentRefresh = defaults.Settings.MaxConcurrentRefresh
	}
	if c.Settings.GitBinary == "" {
		c.Settings.GitBinary = defaults.Settings.GitBinary
	}
	if c.Settings.HooksDir == "" {
		c.Settings.HooksDir = defaults.Settings.HooksDir
	}
	if c.Settings.OutputFormat == "" {
		c.Settings.OutputFormat = defaults.Settings.OutputFormat
	}
	if c.Settings.LogLevel == "" {
		c.Settings.LogLevel = defaults.Settings.LogLevel
	}
}

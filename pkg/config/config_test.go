package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/revdeer/git-cache/pkg/fsutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	// Test default values
	assert.Equal(t, "bare", cfg.Settings.Mode)
	assert.Equal(t, DefaultLockTimeout, cfg.Settings.LockTimeout)
	assert.Equal(t, DefaultMaxConcurrentRefresh, cfg.Settings.MaxConcurrentRefresh)
	assert.Equal(t, "git", cfg.Settings.GitBinary)
	assert.Equal(t, "info", cfg.Settings.LogLevel)
	assert.False(t, cfg.Settings.NoLock)
	assert.NotEmpty(t, cfg.Settings.CacheRoot)
}

func TestLoadConfig(t *testing.T) {
	// Create a temporary config file
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")

	configContent := `settings:
  cache_root: /srv/git-cache
  mode: mirror
  no_lock: true
  lock_timeout: 30
  log_level: debug`

	err := os.WriteFile(configPath, []byte(configContent), fsutil.FileModeDefault)
	require.NoError(t, err)

	// Test loading the config
	cfg, err := LoadConfig(configPath)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	// Verify loaded values
	assert.Equal(t, "/srv/git-cache", cfg.Settings.CacheRoot)
	assert.Equal(t, "mirror", cfg.Settings.Mode)
	assert.True(t, cfg.Settings.NoLock)
	assert.Equal(t, 30, cfg.Settings.LockTimeout)
	assert.Equal(t, "debug", cfg.Settings.LogLevel)

	// Keys absent from the file keep their defaults
	assert.Equal(t, DefaultMaxConcurrentRefresh, cfg.Settings.MaxConcurrentRefresh)
	assert.Equal(t, "git", cfg.Settings.GitBinary)
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "no-such-config.yaml"))
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, DefaultConfig().Settings.Mode, cfg.Settings.Mode)
}

func TestLoadConfigZeroLockTimeout(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")

	// An explicit zero means fail fast, not "use the default"
	configContent := `settings:
  lock_timeout: 0`

	err := os.WriteFile(configPath, []byte(configContent), fsutil.FileModeDefault)
	require.NoError(t, err)

	cfg, err := LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Settings.LockTimeout)
	assert.Equal(t, time.Duration(0), cfg.Settings.LockTimeoutDuration())
}

func TestSaveConfig(t *testing.T) {
	// Create a test config
	cfg := DefaultConfig()
	cfg.Settings.Mode = "mirror"
	cfg.Settings.LockTimeout = -1
	cfg.Settings.LogLevel = "debug"

	// Save to a temporary file
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "test-config.yaml")

	err := cfg.SaveConfig(configPath)
	require.NoError(t, err)

	// Verify the file exists and has content
	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.True(t, len(data) > 0)

	// Load it back and verify
	loadedCfg, err := LoadConfig(configPath)
	require.NoError(t, err)
	require.NotNil(t, loadedCfg)

	assert.Equal(t, "mirror", loadedCfg.Settings.Mode)
	assert.Equal(t, -1, loadedCfg.Settings.LockTimeout)
	assert.Equal(t, "debug", loadedCfg.Settings.LogLevel)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid config",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name: "invalid mode",
			mutate: func(c *Config) {
				c.Settings.Mode = "shallow"
			},
			wantErr: true,
			errMsg:  "invalid mode",
		},
		{
			name: "invalid refresh concurrency",
			mutate: func(c *Config) {
				c.Settings.MaxConcurrentRefresh = -2
			},
			wantErr: true,
			errMsg:  "max_concurrent_refresh",
		},
		{
			name: "empty git binary",
			mutate: func(c *Config) {
				c.Settings.GitBinary = ""
			},
			wantErr: true,
			errMsg:  "git_binary",
		},
		{
			name: "invalid log level",
			mutate: func(c *Config) {
				c.Settings.LogLevel = "verbose"
			},
			wantErr: true,
			errMsg:  "invalid log level",
		},
		{
			name: "invalid output format",
			mutate: func(c *Config) {
				c.Settings.OutputFormat = "xml"
			},
			wantErr: true,
			errMsg:  "invalid output format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestLoadConfigRejectsInvalidSettings(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")

	configContent := `settings:
  mode: sideways`

	err := os.WriteFile(configPath, []byte(configContent), fsutil.FileModeDefault)
	require.NoError(t, err)

	_, err = LoadConfig(configPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid mode")
}

func TestApplyGitConfig(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(*Config)
		values map[string]string
		check  func(*testing.T, *Config)
	}{
		{
			name:  "fills unset settings",
			setup: func(*Config) {},
			values: map[string]string{
				GitKeyRoot:        "/opt/cache",
				GitKeyMode:        "mirror",
				GitKeyNoLock:      "yes",
				GitKeyLockTimeout: "15",
			},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, "/opt/cache", c.Settings.CacheRoot)
				assert.Equal(t, "mirror", c.Settings.Mode)
				assert.True(t, c.Settings.NoLock)
				assert.Equal(t, 15, c.Settings.LockTimeout)
			},
		},
		{
			name: "file settings win over git config",
			setup: func(c *Config) {
				c.Settings.CacheRoot = "/from/file"
				c.Settings.Mode = "mirror"
				c.Settings.LockTimeout = 60
			},
			values: map[string]string{
				GitKeyRoot:        "/opt/cache",
				GitKeyMode:        "bare",
				GitKeyLockTimeout: "15",
			},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, "/from/file", c.Settings.CacheRoot)
				assert.Equal(t, "mirror", c.Settings.Mode)
				assert.Equal(t, 60, c.Settings.LockTimeout)
			},
		},
		{
			name:  "bad timeout value is ignored",
			setup: func(*Config) {},
			values: map[string]string{
				GitKeyLockTimeout: "soon",
			},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, DefaultLockTimeout, c.Settings.LockTimeout)
			},
		},
		{
			name:   "empty values map is a no-op",
			setup:  func(*Config) {},
			values: map[string]string{},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, DefaultConfig().Settings, c.Settings)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.setup(cfg)
			cfg.ApplyGitConfig(tt.values)
			tt.check(t, cfg)
		})
	}
}

func TestParseGitBool(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"true", true},
		{"yes", true},
		{"on", true},
		{"1", true},
		{"", true},
		{"TRUE", true},
		{"false", false},
		{"no", false},
		{"off", false},
		{"0", false},
		{"maybe", false},
	}

	for _, tt := range tests {
		t.Run("value "+tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, parseGitBool(tt.value))
		})
	}
}

func TestLockTimeoutDuration(t *testing.T) {
	s := Settings{LockTimeout: 30}
	assert.Equal(t, 30*time.Second, s.LockTimeoutDuration())

	s.LockTimeout = 0
	assert.Equal(t, time.Duration(0), s.LockTimeoutDuration())

	s.LockTimeout = -5
	assert.True(t, s.LockTimeoutDuration() < 0)
}

func TestToYAML(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Settings.CacheRoot = "/srv/git-cache"

	data, err := cfg.ToYAML()
	require.NoError(t, err)

	text := string(data)
	assert.True(t, strings.HasPrefix(text, "settings:"))
	assert.Contains(t, text, "cache_root: /srv/git-cache")
	assert.Contains(t, text, "mode: bare")
}

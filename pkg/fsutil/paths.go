package fsutil

import (
	"os"
	"path/filepath"
)

const (
	// AppName is the name of the application used in paths.
	AppName = "git-cache"
)

// DefaultCacheRoot returns the platform-specific default cache root.
// On Linux: ~/.cache/git-cache/
// On macOS: ~/Library/Caches/git-cache/
// On Windows: %LOCALAPPDATA%\git-cache\
func DefaultCacheRoot() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cacheDir, AppName), nil
}

// DefaultConfigPath returns the default location of the settings file.
// On Linux: ~/.config/git-cache/config.yaml
// On macOS: ~/Library/Application Support/git-cache/config.yaml
// On Windows: %AppData%\git-cache\config.yaml
func DefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, AppName, "config.yaml"), nil
}

// DefaultHooksDir returns the default directory for lifecycle hook scripts,
// a "hooks" subdirectory next to the settings file.
func DefaultHooksDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, AppName, "hooks"), nil
}

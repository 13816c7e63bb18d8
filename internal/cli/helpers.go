package cli

import (
	"fmt"
	"os"

	"github.com/revdeer/git-cache/internal/logger"
	"github.com/revdeer/git-cache/pkg/archive"
	"github.com/revdeer/git-cache/pkg/cache"
	"github.com/revdeer/git-cache/pkg/config"
	"github.com/revdeer/git-cache/pkg/git"
	"github.com/revdeer/git-cache/pkg/hooks"
	"github.com/revdeer/git-cache/pkg/lockfile"
	"github.com/spf13/cobra"
)

// ConfigPath will be set by the main package from the --config flag.
var ConfigPath *string

// loadConfig loads the layered configuration: built-in defaults, gitcache.*
// keys from git config, the YAML file, then command line flags on top. It
// also brings the logger in line with the merged settings.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath := getConfigPath()
	if configPath == "" {
		return nil, fmt.Errorf("failed to determine config file path")
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	applyGitConfigLayer(cmd, cfg)
	applyFlagOverrides(cmd, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger.InitLogger(cfg.Settings.LogLevel, logger.OutputFormat(cfg.Settings.OutputFormat))
	return cfg, nil
}

// applyGitConfigLayer folds gitcache.* keys from git's own configuration
// into cfg. A missing or failing git binary only costs this layer, not the
// whole command.
func applyGitConfigLayer(cmd *cobra.Command, cfg *config.Config) {
	gitClient := git.NewClient(cfg.Settings.GitBinary)
	values, err := gitClient.ConfigValues(cmd.Context(), "gitcache.")
	if err != nil {
		logger.Debug("skipping git config settings", logger.Fields{"error": err.Error()})
		return
	}
	cfg.ApplyGitConfig(values)
}

// applyFlagOverrides lays explicitly set command line flags over cfg. Flags
// are checked for presence so that explicit zero values like
// `--lock-timeout 0` still override the file. Values are read back from the
// merged flag set; a command's local --mode shadows the global one and both
// must land here.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()

	if flags.Changed("cache-path") {
		if v, err := flags.GetString("cache-path"); err == nil {
			cfg.Settings.CacheRoot = v
		}
	}
	if flags.Changed("mode") {
		if v, err := flags.GetString("mode"); err == nil && v != "" {
			cfg.Settings.Mode = v
		}
	}
	if flags.Changed("no-lock") {
		if v, err := flags.GetBool("no-lock"); err == nil {
			cfg.Settings.NoLock = v
		}
	}
	if flags.Changed("lock-timeout") {
		if v, err := flags.GetInt("lock-timeout"); err == nil {
			cfg.Settings.LockTimeout = v
		}
	}
	if flags.Changed("log-format") {
		if v, err := flags.GetString("log-format"); err == nil {
			cfg.Settings.OutputFormat = v
		}
	}
	if flags.Changed("verbose") {
		cfg.Settings.LogLevel = "debug"
	}
	if flags.Changed("quiet") {
		cfg.Settings.LogLevel = "error"
	}
}

// buildEngine builds the cache engine and its collaborators from the merged
// configuration.
func buildEngine(cfg *config.Config) (*cache.Manager, error) {
	mode, err := cache.ParseMode(cfg.Settings.Mode)
	if err != nil {
		return nil, err
	}

	gitClient := git.NewClient(cfg.Settings.GitBinary)
	if cfg.Settings.LogLevel != "error" {
		// Pass git's own progress output through while not in quiet mode.
		gitClient = gitClient.WithProgress(os.Stderr)
	}

	executor := hooks.NewTengoExecutor()
	if cfg.Settings.HooksDir != "" {
		if err := hooks.LoadFromDir(executor, cfg.Settings.HooksDir); err != nil {
			logger.Warn("failed to load hooks", logger.Fields{"dir": cfg.Settings.HooksDir, "error": err.Error()})
		}
	}

	store := cache.NewStore(cfg.Settings.CacheRoot)
	locks := lockfile.NewManager(cfg.Settings.LockTimeoutDuration(), cfg.Settings.NoLock)

	manager := cache.New(store, locks, gitClient, archive.NewManager(), executor)
	manager.DefaultMode = mode
	manager.RefreshWorkers = cfg.Settings.MaxConcurrentRefresh
	return manager, nil
}

// loadEngine is the usual command entry: merged config plus a ready engine.
func loadEngine(cmd *cobra.Command) (*cache.Manager, *config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	manager, err := buildEngine(cfg)
	if err != nil {
		return nil, nil, err
	}
	return manager, cfg, nil
}

func getConfigPath() string {
	if ConfigPath != nil && *ConfigPath != "" {
		return *ConfigPath
	}

	defaultPath, err := config.GetDefaultConfigPath()
	if err != nil {
		// If we can't get the default path, use an empty string which will cause a more descriptive error later
		// when the config file is actually being read/written
		logger.Warn("Failed to get default config path, using empty path", logger.Fields{"error": err})
		return ""
	}
	return defaultPath
}

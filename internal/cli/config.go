package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/revdeer/git-cache/internal/logger"
	"github.com/revdeer/git-cache/pkg/config"
	"github.com/revdeer/git-cache/pkg/errors"
	"github.com/revdeer/git-cache/pkg/hooks"
	"github.com/spf13/cobra"
)

// NewConfigCmd creates the config command with subcommands.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long:  "View and initialize git-cache configuration settings",
	}

	cmd.AddCommand(
		newConfigShowCmd(),
		newConfigInitCmd(),
	)

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the effective configuration after merging defaults, git config, the file and flags",
		RunE:  runConfigShow,
	}

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration file",
		Long:  "Create a default configuration file and sample hook scripts",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runConfigInit(force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration file")

	return cmd
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	data, err := cfg.ToYAML()
	if err != nil {
		return err
	}

	fmt.Printf("# %s\n%s", getConfigPath(), data)
	return nil
}

func runConfigInit(force bool) error {
	configPath := getConfigPath()

	// Check if config file already exists
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists at %s (use --force to overwrite): %w", configPath, errors.ErrConfigFileExists)
	}

	// Hook samples live next to the config file they belong to.
	defaultConfig := config.DefaultConfig()
	defaultConfig.Settings.HooksDir = filepath.Join(filepath.Dir(configPath), "hooks")
	if err := defaultConfig.SaveConfig(configPath); err != nil {
		return fmt.Errorf("failed to save default configuration: %w", err)
	}
	logger.Success("Configuration file created", logger.Fields{"path": configPath})

	if err := hooks.WriteSampleHooks(defaultConfig.Settings.HooksDir); err != nil {
		logger.Warn("failed to write sample hooks", logger.Fields{"dir": defaultConfig.Settings.HooksDir, "error": err.Error()})
	} else {
		logger.Success("Sample hook scripts created", logger.Fields{"dir": defaultConfig.Settings.HooksDir})
	}

	return nil
}

package cli

import (
	"fmt"

	"github.com/revdeer/git-cache/internal/logger"
	"github.com/spf13/cobra"
)

// NewRefreshCmd creates the refresh command.
func NewRefreshCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "refresh [REPOSITORY]",
		Short: "Fetch updates into cached repositories",
		Long: `Fetch the remote into the cache entry for a repository. Without a
repository argument every cached entry is refreshed; failures are reported
per entry and do not stop the others.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			location := ""
			if len(args) > 0 {
				location = args[0]
			}
			return runRefresh(cmd, location, all)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "refresh every cached repository")

	return cmd
}

func runRefresh(cmd *cobra.Command, location string, all bool) error {
	if all && location != "" {
		return fmt.Errorf("either name a repository or use --all, not both")
	}

	manager, _, err := loadEngine(cmd)
	if err != nil {
		return err
	}

	if location != "" {
		if err := manager.Refresh(cmd.Context(), location); err != nil {
			return err
		}
		logger.Success("repository refreshed", logger.Fields{"url": location})
		return nil
	}

	result, err := manager.RefreshAll(cmd.Context())
	if err != nil {
		if result != nil {
			logger.Warn("refresh finished with failures", logger.Fields{
				"refreshed": result.Refreshed,
				"failed":    result.Failed,
			})
		}
		return err
	}

	logger.Success("cache refreshed", logger.Fields{"refreshed": result.Refreshed})
	return nil
}

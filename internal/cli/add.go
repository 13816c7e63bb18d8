package cli

import (
	"github.com/revdeer/git-cache/internal/logger"
	"github.com/revdeer/git-cache/pkg/cache"
	"github.com/spf13/cobra"
)

// NewAddCmd creates the add command.
func NewAddCmd() *cobra.Command {
	var (
		mode      string
		overwrite bool
		refresh   bool
	)

	cmd := &cobra.Command{
		Use:   "add REPOSITORY",
		Short: "Add a repository to the cache",
		Long: `Clone a repository into the cache without producing a working copy.
An already cached repository is left untouched unless --refresh or --overwrite
is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(cmd, args[0], mode, overwrite, refresh)
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "", "clone mode for the new entry (bare or mirror)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "discard an existing entry and clone again")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "fetch into the entry if it already exists")

	return cmd
}

func runAdd(cmd *cobra.Command, location, mode string, overwrite, refresh bool) error {
	manager, _, err := loadEngine(cmd)
	if err != nil {
		return err
	}

	opts := cache.AddOptions{Overwrite: overwrite, Refresh: refresh}
	if mode != "" {
		opts.Mode, err = cache.ParseMode(mode)
		if err != nil {
			return err
		}
	}

	if err := manager.Add(cmd.Context(), location, opts); err != nil {
		return err
	}

	logger.Success("repository cached", logger.Fields{"url": location})
	return nil
}

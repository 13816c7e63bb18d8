package cli

import (
	"github.com/revdeer/git-cache/pkg/cache"
	"github.com/spf13/cobra"
)

// Maximum number of positional arguments the clone command accepts.
const cloneCommandMaxArgs = 2

// NewCloneCmd creates the clone command.
func NewCloneCmd() *cobra.Command {
	var (
		mode       string
		dissociate bool
		noAdd      bool
		noRetry    bool
	)

	cmd := &cobra.Command{
		Use:   "clone REPOSITORY [DESTINATION]",
		Short: "Clone a repository through the cache",
		Long: `Produce a working clone whose objects come from the cache entry for the
repository, adding the entry first if it does not exist yet. When the cache
path fails, a plain git clone is attempted unless --no-retry is given.`,
		Args: cobra.RangeArgs(1, cloneCommandMaxArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			dest := ""
			if len(args) > 1 {
				dest = args[1]
			}
			return runClone(cmd, args[0], dest, mode, dissociate, noAdd, noRetry)
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "", "clone mode for a newly created entry (bare or mirror)")
	cmd.Flags().BoolVar(&dissociate, "dissociate", false, "detach the clone from the cache entry afterwards")
	cmd.Flags().BoolVar(&noAdd, "no-add", false, "serve only repositories that are already cached")
	cmd.Flags().BoolVar(&noRetry, "no-retry", false, "do not fall back to a direct clone on cache failure")

	return cmd
}

func runClone(cmd *cobra.Command, location, dest, mode string, dissociate, noAdd, noRetry bool) error {
	manager, _, err := loadEngine(cmd)
	if err != nil {
		return err
	}

	opts := cache.CloneOptions{Dissociate: dissociate, NoAdd: noAdd, NoRetry: noRetry}
	if mode != "" {
		opts.Mode, err = cache.ParseMode(mode)
		if err != nil {
			return err
		}
	}

	return manager.Clone(cmd.Context(), location, dest, opts)
}

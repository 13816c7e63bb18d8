package cli

import (
	"github.com/revdeer/git-cache/internal/logger"
	"github.com/spf13/cobra"
)

// Number of arguments expected by the export and import commands.
const transferCommandArgs = 2

// NewExportCmd creates the export command.
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export REPOSITORY FILE",
		Short: "Export a cache entry to an archive",
		Long:  "Pack the cache entry for a repository into a tar.gz archive.",
		Args:  cobra.ExactArgs(transferCommandArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, args[0], args[1])
		},
	}

	return cmd
}

func runExport(cmd *cobra.Command, location, outFile string) error {
	manager, _, err := loadEngine(cmd)
	if err != nil {
		return err
	}

	if err := manager.Export(cmd.Context(), location, outFile); err != nil {
		return err
	}

	logger.Success("entry exported", logger.Fields{"url": location, "file": outFile})
	return nil
}

package cli

import (
	"github.com/revdeer/git-cache/internal/logger"
	"github.com/revdeer/git-cache/pkg/cache"
	"github.com/spf13/cobra"
)

// NewImportCmd creates the import command.
func NewImportCmd() *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "import REPOSITORY FILE",
		Short: "Import a cache entry from an archive",
		Long: `Unpack a previously exported archive as the cache entry for a repository.
The entry must not exist yet; clean it first to replace it.`,
		Args: cobra.ExactArgs(transferCommandArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args[0], args[1], mode)
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "", "clone mode recorded for the imported entry (bare or mirror)")

	return cmd
}

func runImport(cmd *cobra.Command, location, archiveFile, mode string) error {
	manager, _, err := loadEngine(cmd)
	if err != nil {
		return err
	}

	entryMode := cache.Mode("")
	if mode != "" {
		entryMode, err = cache.ParseMode(mode)
		if err != nil {
			return err
		}
	}

	if err := manager.Import(cmd.Context(), location, archiveFile, entryMode); err != nil {
		return err
	}

	logger.Success("entry imported", logger.Fields{"url": location, "file": archiveFile})
	return nil
}

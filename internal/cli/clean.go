package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/revdeer/git-cache/internal/logger"
	"github.com/revdeer/git-cache/pkg/cache"
	"github.com/spf13/cobra"
)

// NewCleanCmd creates the clean command.
func NewCleanCmd() *cobra.Command {
	var (
		all       bool
		olderThan string
		unusedFor string
	)

	cmd := &cobra.Command{
		Use:   "clean [REPOSITORY]",
		Short: "Remove entries from the cache",
		Long: `Remove cache entries to free disk space. Entries can be selected by
repository, by age (--older-than), by inactivity (--unused-for), or all at
once. Entries that are busy or protected by a pre-clean hook are skipped.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			location := ""
			if len(args) > 0 {
				location = args[0]
			}
			return runClean(cmd, location, all, olderThan, unusedFor)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "remove every cache entry")
	cmd.Flags().StringVar(&olderThan, "older-than", "", "remove entries created longer ago than this (e.g. 30d, 12w, 36h)")
	cmd.Flags().StringVar(&unusedFor, "unused-for", "", "remove entries with no activity for this long (e.g. 90d)")

	return cmd
}

func runClean(cmd *cobra.Command, location string, all bool, olderThan, unusedFor string) error {
	if all && location != "" {
		return fmt.Errorf("either name a repository or use --all, not both")
	}

	opts := cache.CleanOptions{All: all, Location: location}

	var err error
	if olderThan != "" {
		opts.OlderThan, err = parseAge(olderThan)
		if err != nil {
			return err
		}
	}
	if unusedFor != "" {
		opts.UnusedFor, err = parseAge(unusedFor)
		if err != nil {
			return err
		}
	}

	manager, _, err := loadEngine(cmd)
	if err != nil {
		return err
	}

	result, cleanErr := manager.Clean(cmd.Context(), opts)
	if result != nil {
		for _, key := range result.Skipped {
			logger.Warn("entry skipped", logger.Fields{"key": key})
		}
		logger.Success("cache cleaned", logger.Fields{
			"removed": len(result.Removed),
			"freed":   humanize.Bytes(uint64(result.FreedBytes)),
		})
	}
	return cleanErr
}

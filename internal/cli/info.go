package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// NewInfoCmd creates the info command.
func NewInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info [REPOSITORY]",
		Short: "Show cache information",
		Long: `Display a summary of the cache, or the details of the entry for one
repository.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return runEntryInfo(cmd, args[0])
			}
			return runInfo(cmd)
		},
	}

	return cmd
}

func runInfo(cmd *cobra.Command) error {
	manager, _, err := loadEngine(cmd)
	if err != nil {
		return err
	}

	info, err := manager.GetInfo()
	if err != nil {
		return err
	}

	fmt.Printf("Cache root: %s\n", info.Root)
	fmt.Printf("Entries: %d", len(info.Entries))
	if info.Incomplete > 0 {
		fmt.Printf(" (%d incomplete)", info.Incomplete)
	}
	fmt.Println()
	fmt.Printf("Total size: %s (%d files)\n", humanize.Bytes(uint64(info.TotalSize)), info.TotalFiles)

	if len(info.Entries) == 0 {
		return nil
	}

	fmt.Println()
	tabWriter := tabwriter.NewWriter(os.Stdout, 0, 0, TabWidth, ' ', 0)
	_, _ = fmt.Fprintln(tabWriter, "KEY\tMODE\tSIZE\tLAST REFRESHED\tURL")
	for _, entry := range info.Entries {
		mode := string(entry.Mode)
		if !entry.Populated {
			mode = "incomplete"
		}
		_, _ = fmt.Fprintf(tabWriter, "%s\t%s\t%s\t%s\t%s\n",
			entry.Key, mode, humanize.Bytes(uint64(entry.Size)),
			formatAge(entry.LastRefreshed), entry.URL)
	}
	_ = tabWriter.Flush()

	return nil
}

func runEntryInfo(cmd *cobra.Command, location string) error {
	manager, _, err := loadEngine(cmd)
	if err != nil {
		return err
	}

	entry, err := manager.GetEntry(location)
	if err != nil {
		return err
	}

	fmt.Printf("Key: %s\n", entry.Key)
	fmt.Printf("URL: %s\n", entry.URL)
	fmt.Printf("Mode: %s\n", entry.Mode)
	fmt.Printf("Path: %s\n", manager.Store.EntryPath(entry.Key))
	fmt.Printf("Populated: %t\n", entry.Populated)
	fmt.Printf("Size: %s (%d files)\n", humanize.Bytes(uint64(entry.Size)), entry.Files)
	fmt.Printf("Created: %s\n", formatStamp(entry.CreatedAt))
	fmt.Printf("Last refreshed: %s\n", formatStamp(entry.LastRefreshed))
	fmt.Printf("Last used: %s\n", formatStamp(entry.LastUsed))

	return nil
}

func formatStamp(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return fmt.Sprintf("%s (%s)", t.Format("2006-01-02 15:04:05"), humanize.Time(t))
}

func formatAge(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.Time(t)
}

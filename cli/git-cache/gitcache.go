package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/revdeer/git-cache/internal/cli"
	"github.com/spf13/cobra"
)

var (
	configPath  string
	cachePath   string
	mode        string
	noLock      bool
	lockTimeout int
	logFormat   string
	verbose     bool
	quiet       bool
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	rootCmd := newRootCmd()
	rootCmd.SetArgs(withDefaultCommand(rootCmd, os.Args[1:]))

	err := rootCmd.ExecuteContext(ctx)
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(cli.ExitCodeFor(err))
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "git-cache",
		Short: "A local clone cache for git repositories",
		Long: `git-cache keeps bare mirrors of remote repositories in a local cache and
serves clones out of it, so repeated clones of the same repository cost one
fetch instead of a full download.

Running git-cache with a repository as the first argument is shorthand for
the clone command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default: auto-detect)")
	cmd.PersistentFlags().StringVar(&cachePath, "cache-path", "", "cache root directory (overrides config)")
	cmd.PersistentFlags().StringVar(&mode, "mode", "", "default clone mode (bare or mirror)")
	cmd.PersistentFlags().BoolVar(&noLock, "no-lock", false, "do not lock cache entries")
	cmd.PersistentFlags().IntVar(&lockTimeout, "lock-timeout", 0, "seconds to wait for a busy entry (negative waits forever, 0 fails fast)")
	cmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log output format (text or json)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "errors only")

	// Set up CLI pkg variables
	cli.ConfigPath = &configPath

	// Add subcommands
	cmd.AddCommand(
		cli.NewAddCmd(),
		cli.NewCloneCmd(),
		cli.NewRefreshCmd(),
		cli.NewCleanCmd(),
		cli.NewInfoCmd(),
		cli.NewExportCmd(),
		cli.NewImportCmd(),
		cli.NewConfigCmd(),
		cli.NewVersionCmd(),
	)

	return cmd
}

// withDefaultCommand turns "git-cache URL [DEST]" into "git-cache clone URL
// [DEST]". Only a first argument that is neither a flag nor a known
// subcommand is treated as a repository location.
func withDefaultCommand(root *cobra.Command, args []string) []string {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return args
	}

	name := args[0]
	if name == "help" || name == cobra.ShellCompRequestCmd || name == cobra.ShellCompNoDescRequestCmd {
		return args
	}
	for _, c := range root.Commands() {
		if c.Name() == name || c.HasAlias(name) {
			return args
		}
	}

	return append([]string{"clone"}, args...)
}

// Command tg runs guided tours: a terminal playground over demo pages, a
// driver for real pages in Chrome, and progress bookkeeping.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/tourguide/pkg/debug"
	"github.com/vanderheijden86/tourguide/pkg/version"
)

type rootOptions struct {
	configPath string
	debug      bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "tg",
		Short: "Guided tours for multi-page apps",
		Long: `tg walks users through an app one step at a time: it navigates to the
page a step lives on, highlights the element the step is about, and remembers
which tours each user has finished.

Without a subcommand tg opens the terminal playground.`,
		Version:      version.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.debug {
				debug.SetEnabled(true)
			}
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			debug.Sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd, opts)
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default ~/.config/tourguide/config.yaml)")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging (same as TG_DEBUG=1)")

	root.AddCommand(
		newPlayCmd(opts),
		newToursCmd(opts),
		newStatusCmd(opts),
		newNameCmd(opts),
		newResetCmd(opts),
		newBrowseCmd(opts),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the tg version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tg %s\n", version.Version)
		},
	}
}

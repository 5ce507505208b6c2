package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/orris-inc/tracksync/internal/interfaces/cli/migrate"
	"github.com/orris-inc/tracksync/internal/interfaces/cli/server"
	"github.com/orris-inc/tracksync/internal/interfaces/cli/tracker"
	"github.com/orris-inc/tracksync/internal/shared/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "tracksync",
		Short:         "Tracksync - customer requests mirrored to Linear",
		Long:          `Tracksync files customer bug reports and feature requests as Linear issues and keeps their status in sync through Linear webhooks.`,
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
		tracker.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

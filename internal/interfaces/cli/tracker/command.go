// Package tracker holds operator commands that talk to Linear directly.
package tracker

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/orris-inc/tracksync/internal/infrastructure/config"
	"github.com/orris-inc/tracksync/internal/infrastructure/linear"
	"github.com/orris-inc/tracksync/internal/shared/logger"
)

var (
	env        string
	configPath string
	limit      int
)

// ProjectLister is the part of the Linear client the projects command uses.
type ProjectLister interface {
	ListProjects(ctx context.Context, first int) ([]linear.Project, error)
}

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tracker",
		Short: "Inspect the Linear workspace",
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")

	cmd.AddCommand(newProjectsCommand())
	return cmd
}

func newProjectsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List Linear projects usable as project_id scopes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(env, config.Options{ConfigFile: configPath, Optional: true})
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			client := linear.NewClient(cfg.Linear, logger.NewLogger())
			if !client.Configured() {
				return fmt.Errorf("linear.api_key or linear.oauth credentials are required")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			return listProjects(ctx, client, limit, cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 25, "Maximum number of projects to list")
	return cmd
}

func listProjects(ctx context.Context, lister ProjectLister, first int, out io.Writer) error {
	projects, err := lister.ListProjects(ctx, first)
	if err != nil {
		return fmt.Errorf("failed to list projects: %w", err)
	}
	if len(projects) == 0 {
		_, err := fmt.Fprintln(out, "no projects found")
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSTATE\tTARGET\tURL")
	for _, p := range projects {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.Name, deref(p.State), deref(p.TargetDate), deref(p.URL))
	}
	return w.Flush()
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

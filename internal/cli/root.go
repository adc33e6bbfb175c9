package cli

import (
	"github.com/spf13/cobra"
)

// annotationNoStore marks commands that run without opening the store or
// the recommendation gateway.
const annotationNoStore = "staffplan/no-store"

// NewRootCmd creates the top-level "staffplan" command and registers all
// subcommands against the provided App. Store and gateway are opened
// lazily before the selected command runs, so `config init` and `--help`
// work without a database.
func NewRootCmd(app *App) *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "staffplan",
		Short:         "Warehouse staffing planner with capacity derivation and AI suggestions",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[annotationNoStore] == "true" {
				return nil
			}
			return app.Open(cmd.Context(), configPath, logsToFile(cmd))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.IsInteractive != nil && app.IsInteractive() {
				return runDashboard(cmd, app, planSource{})
			}
			return cmd.Help()
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $STAFFPLAN_CONFIG or ~/.config/staffplan/config.toml)")

	root.AddCommand(
		newDashboardCmd(app),
		newStatusCmd(app),
		newRecommendCmd(app),
		newMoveCmd(app),
		newScenarioCmd(app),
		newHistoryCmd(app),
		newServeCmd(app),
		newConfigCmd(app),
	)

	return root
}

// logsToFile reports whether cmd owns the terminal, in which case log
// lines would corrupt the screen and go to the configured file instead.
func logsToFile(cmd *cobra.Command) bool {
	return cmd.Name() == "dashboard" || cmd.Parent() == nil
}

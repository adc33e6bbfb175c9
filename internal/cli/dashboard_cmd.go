package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newDashboardCmd(app *App) *cobra.Command {
	var src planSource

	cmd := &cobra.Command{
		Use:     "dashboard",
		Aliases: []string{"ui"},
		Short:   "Open the interactive planning dashboard",
		Long: `Opens the terminal dashboard. Staffing, schedule, workload and throughput
are edited cell by cell; weekly capacity is recomputed after every edit.

Keys: tab switches panel, arrows move, enter edits, g asks the AI service
for suggestions, v reviews them, u/r undo and redo, s saves a scenario,
o opens saved scenarios, X resets to the defaults, q quits.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard(cmd, app, src)
		},
	}
	addPlanSourceFlags(cmd, &src)
	return cmd
}

func runDashboard(cmd *cobra.Command, app *App, src planSource) error {
	plan, name, err := src.resolve(cmd.Context(), app)
	if err != nil {
		return err
	}
	ws := app.Workspace(name, plan)

	p := tea.NewProgram(newAppModel(app, ws),
		tea.WithAltScreen(),
		tea.WithContext(cmd.Context()),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	_, err = p.Run()
	return err
}

package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/staffplan/internal/cli/formatter"
	"github.com/alexanderramin/staffplan/internal/domain"
	"github.com/alexanderramin/staffplan/internal/planfile"
	"github.com/alexanderramin/staffplan/internal/repository"
)

func newScenarioCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "scenario",
		Aliases: []string{"sc"},
		Short:   "Manage saved plans",
	}

	cmd.AddCommand(
		newScenarioListCmd(app),
		newScenarioSaveCmd(app),
		newScenarioShowCmd(app),
		newScenarioDeleteCmd(app),
		newScenarioExportCmd(app),
		newScenarioImportCmd(app),
	)

	return cmd
}

func newScenarioListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := app.Scenarios.List(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatScenarioList(list, time.Now()))
			return nil
		},
	}
}

func newScenarioSaveCmd(app *App) *cobra.Command {
	var src planSource

	cmd := &cobra.Command{
		Use:   "save NAME",
		Short: "Save a plan under NAME, replacing any scenario with that name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, _, err := src.resolve(cmd.Context(), app)
			if err != nil {
				return err
			}
			s := &domain.Scenario{Name: args[0], Plan: plan}
			if err := app.Scenarios.Save(cmd.Context(), s); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.StyleGreen.Render("Escenario guardado: ")+formatter.Bold(s.Name))
			return nil
		},
	}
	addPlanSourceFlags(cmd, &src)
	return cmd
}

func newScenarioShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:               "show NAME",
		Short:             "Show a saved scenario",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeScenarios(app),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := getScenario(cmd, app, args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s  %s\n", formatter.Bold(s.Name), formatter.Dim("actualizado "+formatter.HumanTimestamp(s.UpdatedAt)))
			fmt.Fprintln(w, formatter.FormatStatus(s.Plan))
			fmt.Fprint(w, formatter.FormatSchedule(s.Plan.Schedule, nil))
			return nil
		},
	}
}

func newScenarioDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:               "delete NAME",
		Aliases:           []string{"rm"},
		Short:             "Delete a scenario and its recommendation history",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeScenarios(app),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := repository.DeleteScenario(cmd.Context(), app.UoW, args[0])
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("scenario %q not found", args[0])
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("Escenario eliminado: "+args[0]))
			return nil
		},
	}
}

func newScenarioExportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:               "export NAME FILE",
		Short:             "Write a scenario to a YAML or XLSX file",
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeScenarios(app),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := getScenario(cmd, app, args[0])
			if err != nil {
				return err
			}
			if err := planfile.Save(args[1], s.Plan); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim(fmt.Sprintf("Escenario %s exportado a %s", s.Name, args[1])))
			return nil
		},
	}
}

func newScenarioImportCmd(app *App) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Save a YAML or XLSX plan file as a scenario",
		Long: `Reads a plan file and saves it as a scenario. The scenario is named after
the file unless --name is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := planfile.Load(args[0])
			if err != nil {
				return err
			}
			if name == "" {
				base := filepath.Base(args[0])
				name = strings.TrimSuffix(base, filepath.Ext(base))
			}
			s := &domain.Scenario{Name: name, Plan: plan}
			if err := app.Scenarios.Save(cmd.Context(), s); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.StyleGreen.Render("Escenario importado: ")+formatter.Bold(s.Name))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Scenario name (default: file name without extension)")
	return cmd
}

func getScenario(cmd *cobra.Command, app *App, name string) (*domain.Scenario, error) {
	s, err := app.Scenarios.GetByName(cmd.Context(), name)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("scenario %q not found", name)
	}
	return s, err
}

func completeScenarios(app *App) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 || app.Scenarios == nil {
			return nil, cobra.ShellCompDirectiveDefault
		}
		list, err := app.Scenarios.List(cmd.Context())
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		names := make([]string, 0, len(list))
		for _, s := range list {
			names = append(names, s.Name)
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	}
}

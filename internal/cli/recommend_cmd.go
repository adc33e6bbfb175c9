package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/staffplan/internal/capacity"
	"github.com/alexanderramin/staffplan/internal/cli/formatter"
	"github.com/alexanderramin/staffplan/internal/planfile"
)

func newRecommendCmd(app *App) *cobra.Command {
	var src planSource
	var apply, asJSON bool
	var out string

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Ask the AI service for staffing moves",
		Long: `Sends the plan to the configured model and prints its suggestions.

When the service cannot be reached a single placeholder suggestion is
shown together with an alert. With --apply every suggestion is applied in
order and the resulting capacity is printed; --out saves that plan.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, name, err := src.resolve(cmd.Context(), app)
			if err != nil {
				return err
			}
			ws := app.Workspace(name, plan)
			w := cmd.OutOrStdout()

			animate := !asJSON && app.IsInteractive != nil && app.IsInteractive()
			stop := formatter.StartSpinner(cmd.ErrOrStderr(), "Consultando al servicio de IA...", animate)
			snap := ws.RequestRecommendations(cmd.Context())
			stop()

			if asJSON && !apply {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(snap.Pending)
			}
			if !asJSON {
				fmt.Fprint(w, formatter.FormatSuggestions(snap.Pending, -1))
			}
			if !apply {
				return nil
			}

			var results []applyResult
			for len(ws.Snapshot().Pending.Suggestions) > 0 {
				sg := ws.Snapshot().Pending.Suggestions[0]
				after, moved, err := ws.ApplySuggestion(0)
				if err != nil {
					return err
				}
				snap = after
				results = append(results, applyResult{Title: sg.Title, Requested: sg.Amount, Moved: moved})
				if !asJSON {
					fmt.Fprintln(w, formatter.FormatMoveResult(sg.Role, sg.FromShift, sg.ToShift, sg.Amount, moved))
				}
			}

			if out != "" {
				if err := planfile.Save(out, snap.Plan); err != nil {
					return err
				}
			}

			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					Applied []applyResult    `json:"applied"`
					Summary capacity.Summary `json:"summary"`
				}{results, snap.Summary()})
			}
			fmt.Fprintln(w)
			fmt.Fprint(w, formatter.FormatCapacity(snap.Loads(), snap.Summary()))
			if out != "" {
				fmt.Fprintln(w, formatter.Dim("Plan guardado en "+out))
			}
			return nil
		},
	}

	addPlanSourceFlags(cmd, &src)
	cmd.Flags().BoolVar(&apply, "apply", false, "Apply every suggestion in order")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of formatted text")
	cmd.Flags().StringVar(&out, "out", "", "With --apply, save the resulting plan to this YAML or XLSX file")

	return cmd
}

type applyResult struct {
	Title     string `json:"title"`
	Requested int    `json:"requested"`
	Moved     int    `json:"moved"`
}

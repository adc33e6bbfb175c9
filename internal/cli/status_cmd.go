package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/staffplan/internal/capacity"
	"github.com/alexanderramin/staffplan/internal/cli/formatter"
	"github.com/alexanderramin/staffplan/internal/domain"
	"github.com/alexanderramin/staffplan/internal/report"
)

func newStatusCmd(app *App) *cobra.Command {
	var src planSource
	var formatName string
	var day domain.Day

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show staffing and weekly capacity for a plan",
		Long: `Derives capacity, workload and over-capacity days for a plan.

Without --format the plan is printed as a styled overview. The table, csv,
markdown and html formats print the capacity and staffing reports.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, _, err := src.resolve(cmd.Context(), app)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if day != "" {
				l := capacity.ForDay(plan, day)
				loads := []capacity.DayLoad{l}
				fmt.Fprint(out, formatter.FormatCapacity(loads, capacity.Summarize(loads)))
				return nil
			}

			if formatName == "" {
				fmt.Fprintln(out, formatter.FormatStatus(plan))
				return nil
			}

			format, err := report.ParseFormat(formatName)
			if err != nil {
				return err
			}
			loads := capacity.Derive(plan)
			if err := report.Render(out, loads, capacity.Summarize(loads), format); err != nil {
				return err
			}
			fmt.Fprintln(out)
			return report.RenderStaffing(out, plan.Staffing, format)
		},
	}

	addPlanSourceFlags(cmd, &src)
	cmd.Flags().StringVar(&formatName, "format", "", "Report format: table, csv, markdown or html")
	cmd.Flags().Var(dayValue{&day}, "day", "Only show one day")
	_ = cmd.RegisterFlagCompletionFunc("format", completeNames(formatNames()))

	return cmd
}

func formatNames() []string {
	out := make([]string, 0, len(report.Formats))
	for _, f := range report.Formats {
		out = append(out, string(f))
	}
	return out
}

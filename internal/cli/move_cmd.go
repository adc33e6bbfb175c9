package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/staffplan/internal/capacity"
	"github.com/alexanderramin/staffplan/internal/cli/formatter"
	"github.com/alexanderramin/staffplan/internal/domain"
	"github.com/alexanderramin/staffplan/internal/planfile"
	"github.com/alexanderramin/staffplan/internal/staffing"
)

func newMoveCmd(app *App) *cobra.Command {
	var src planSource
	var from, to domain.ShiftName
	var role domain.Role
	var amount int
	var out string

	cmd := &cobra.Command{
		Use:   "move",
		Short: "Move people of one role between shifts",
		Long: `Moves up to --amount people of --role from one shift to another and
prints the resulting staffing and capacity. Fewer people move when the
source shift does not have enough.`,
		Example: `  staffplan move --from turno1 --to turno2 --role operativo --amount 2
  staffplan move --from "Turno PT" --to turno1 --role reach --amount 1 --plan week.yaml --out week.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if from == "" || to == "" || role == "" {
				return errors.New("--from, --to and --role are required")
			}
			plan, name, err := src.resolve(cmd.Context(), app)
			if err != nil {
				return err
			}

			var moved int
			plan.Staffing, moved = staffing.Move(plan.Staffing, from, to, role, amount)

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, formatter.FormatMoveResult(role, from, to, amount, moved))
			fmt.Fprintln(w)
			fmt.Fprint(w, formatter.FormatStaffing(plan.Staffing, nil))
			fmt.Fprintln(w)
			loads := capacity.Derive(plan)
			fmt.Fprint(w, formatter.FormatCapacity(loads, capacity.Summarize(loads)))

			if out != "" {
				if err := planfile.Save(out, plan); err != nil {
					return err
				}
				fmt.Fprintln(w, formatter.Dim("Plan guardado en "+out))
			} else if name != "" && moved > 0 {
				fmt.Fprintln(w, formatter.Dim(fmt.Sprintf("Escenario %q sin cambios; usa --out o `scenario save` para conservar el resultado.", name)))
			}
			return nil
		},
	}

	addPlanSourceFlags(cmd, &src)
	cmd.Flags().Var(shiftValue{&from}, "from", "Source shift")
	cmd.Flags().Var(shiftValue{&to}, "to", "Destination shift")
	cmd.Flags().Var(roleValue{&role}, "role", "Role to move")
	cmd.Flags().IntVar(&amount, "amount", 1, "Number of people to move")
	cmd.Flags().StringVar(&out, "out", "", "Save the resulting plan to this YAML or XLSX file")
	_ = cmd.RegisterFlagCompletionFunc("from", completeNames(shiftNames()))
	_ = cmd.RegisterFlagCompletionFunc("to", completeNames(shiftNames()))
	_ = cmd.RegisterFlagCompletionFunc("role", completeNames(roleNames()))

	return cmd
}

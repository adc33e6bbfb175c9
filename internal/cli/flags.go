package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/alexanderramin/staffplan/internal/domain"
)

// shiftValue is a pflag.Value accepting shift ids or labels.
type shiftValue struct{ v *domain.ShiftName }

func (s shiftValue) String() string {
	if s.v == nil {
		return ""
	}
	return string(*s.v)
}

func (s shiftValue) Set(text string) error {
	sh, err := domain.ParseShift(text)
	if err != nil {
		return err
	}
	*s.v = sh
	return nil
}

func (shiftValue) Type() string { return "shift" }

// roleValue is a pflag.Value accepting role ids or labels.
type roleValue struct{ v *domain.Role }

func (r roleValue) String() string {
	if r.v == nil {
		return ""
	}
	return string(*r.v)
}

func (r roleValue) Set(text string) error {
	role, err := domain.ParseRole(text)
	if err != nil {
		return err
	}
	*r.v = role
	return nil
}

func (roleValue) Type() string { return "role" }

// dayValue is a pflag.Value accepting day names with or without accents.
type dayValue struct{ v *domain.Day }

func (d dayValue) String() string {
	if d.v == nil {
		return ""
	}
	return string(*d.v)
}

func (d dayValue) Set(text string) error {
	day, err := domain.ParseDay(text)
	if err != nil {
		return err
	}
	*d.v = day
	return nil
}

func (dayValue) Type() string { return "day" }

var (
	_ pflag.Value = shiftValue{}
	_ pflag.Value = roleValue{}
	_ pflag.Value = dayValue{}
)

// addPlanSourceFlags registers --plan and --scenario on cmd.
func addPlanSourceFlags(cmd *cobra.Command, src *planSource) {
	cmd.Flags().StringVar(&src.File, "plan", "", "Read the plan from a YAML or XLSX file")
	cmd.Flags().StringVar(&src.Scenario, "scenario", "", "Read the plan from a saved scenario")
	cmd.MarkFlagsMutuallyExclusive("plan", "scenario")
}

func completeNames(names []string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return names, cobra.ShellCompDirectiveNoFileComp
	}
}

func shiftNames() []string {
	out := make([]string, 0, len(domain.Shifts))
	for _, sh := range domain.Shifts {
		out = append(out, string(sh))
	}
	return out
}

func roleNames() []string {
	out := make([]string, 0, len(domain.Roles))
	for _, r := range domain.Roles {
		out = append(out, string(r))
	}
	return out
}

// Package staffing applies headcount changes to a staffing snapshot. Every
// operation returns a new snapshot and leaves its input untouched.
package staffing

import (
	"strconv"
	"strings"

	"github.com/alexanderramin/staffplan/internal/domain"
)

// Move transfers up to amount people of role from one shift to another.
// The amount actually moved is min(amount, available) and is returned with
// the new snapshot. Non-positive amounts, an empty source, unknown shifts or
// roles, and from == to all leave the staffing unchanged and report 0.
func Move(s domain.Staffing, from, to domain.ShiftName, role domain.Role, amount int) (domain.Staffing, int) {
	out := s.Clone()
	if from == to || !from.Valid() || !to.Valid() || !role.Valid() {
		return out, 0
	}

	src := out[from]
	moved := min(amount, src.Count(role))
	if moved <= 0 {
		return out, 0
	}

	dst := out[to]
	out[from] = src.WithCount(role, src.Count(role)-moved)
	out[to] = dst.WithCount(role, dst.Count(role)+moved)
	return out, moved
}

// Apply performs the move described by a suggestion.
func Apply(s domain.Staffing, sg domain.OptimizationSuggestion) (domain.Staffing, int) {
	return Move(s, sg.FromShift, sg.ToShift, sg.Role, sg.Amount)
}

// SetCount sets one cell directly. Negative values are stored as 0.
func SetCount(s domain.Staffing, shift domain.ShiftName, role domain.Role, value int) domain.Staffing {
	out := s.Clone()
	if !shift.Valid() || !role.Valid() {
		return out
	}
	out[shift] = out[shift].WithCount(role, max(value, 0))
	return out
}

// ParseCount turns operator input into a headcount. Text that is not an
// integer, or a negative one, becomes 0.
func ParseCount(text string) int {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

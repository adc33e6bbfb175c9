package domain

import "fmt"

// ShiftName identifies a work shift internally. Display labels only appear
// at rendering and parsing boundaries.
type ShiftName string

const (
	ShiftTurno1  ShiftName = "turno1"
	ShiftTurno2  ShiftName = "turno2"
	ShiftTurnoPT ShiftName = "turnoPT"
)

// Shifts lists every shift in display order.
var Shifts = []ShiftName{ShiftTurno1, ShiftTurno2, ShiftTurnoPT}

var shiftLabels = map[ShiftName]string{
	ShiftTurno1:  "Turno 1",
	ShiftTurno2:  "Turno 2",
	ShiftTurnoPT: "Turno PT",
}

func (s ShiftName) Valid() bool {
	_, ok := shiftLabels[s]
	return ok
}

func (s ShiftName) Label() string {
	if l, ok := shiftLabels[s]; ok {
		return l
	}
	return string(s)
}

// ParseShift accepts "turno1" as well as "Turno 1", case-insensitively.
func ParseShift(s string) (ShiftName, error) {
	f := Fold(s)
	for _, sh := range Shifts {
		if f == Fold(string(sh)) || f == Fold(sh.Label()) {
			return sh, nil
		}
	}
	return "", fmt.Errorf("unknown shift %q", s)
}

package domain

import "fmt"

type Day string

const (
	Domingo   Day = "Domingo"
	Lunes     Day = "Lunes"
	Martes    Day = "Martes"
	Miercoles Day = "Miercoles"
	Jueves    Day = "Jueves"
	Viernes   Day = "Viernes"
	Sabado    Day = "Sabado"
)

// Week lists the days in planning order, starting on Sunday.
var Week = []Day{Domingo, Lunes, Martes, Miercoles, Jueves, Viernes, Sabado}

var dayLabels = map[Day]string{
	Domingo:   "Domingo",
	Lunes:     "Lunes",
	Martes:    "Martes",
	Miercoles: "Miércoles",
	Jueves:    "Jueves",
	Viernes:   "Viernes",
	Sabado:    "Sábado",
}

func (d Day) Valid() bool {
	_, ok := dayLabels[d]
	return ok
}

// Label returns the accented display name.
func (d Day) Label() string {
	if l, ok := dayLabels[d]; ok {
		return l
	}
	return string(d)
}

// Short returns the three-letter abbreviation used in narrow tables.
func (d Day) Short() string {
	l := []rune(d.Label())
	if len(l) <= 3 {
		return string(l)
	}
	return string(l[:3])
}

// ParseDay accepts full names with or without accents and three-letter
// abbreviations, case-insensitively.
func ParseDay(s string) (Day, error) {
	f := Fold(s)
	for _, d := range Week {
		if f == Fold(string(d)) || f == Fold(d.Short()) {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown day %q", s)
}

// Index returns the position of d in Week, or -1.
func (d Day) Index() int {
	for i, w := range Week {
		if w == d {
			return i
		}
	}
	return -1
}

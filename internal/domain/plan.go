package domain

import "time"

// DefaultSKUPerPerson is the throughput assumed when none is configured.
const DefaultSKUPerPerson = 25

// Plan is the full editable planning state: who works, when, and how much
// volume each day carries.
type Plan struct {
	Staffing     Staffing      `json:"staffing" yaml:"staffing"`
	Schedule     ShiftSchedule `json:"schedule" yaml:"schedule"`
	Workload     DailyWorkload `json:"workload" yaml:"workload"`
	SKUPerPerson int           `json:"skuPerPerson" yaml:"sku_per_person"`
}

// Clone deep-copies every map so the result shares nothing with p.
func (p Plan) Clone() Plan {
	return Plan{
		Staffing:     p.Staffing.Clone(),
		Schedule:     p.Schedule.Clone(),
		Workload:     p.Workload.Clone(),
		SKUPerPerson: p.SKUPerPerson,
	}
}

// Normalize returns a copy with every shift and day key present and every
// count clamped to zero or above. Unknown keys are dropped.
func (p Plan) Normalize() Plan {
	out := Plan{
		Staffing:     make(Staffing, len(Shifts)),
		Schedule:     make(ShiftSchedule, len(Shifts)),
		Workload:     make(DailyWorkload, len(Week)),
		SKUPerPerson: max(p.SKUPerPerson, 0),
	}
	for _, sh := range Shifts {
		st := p.Staffing[sh]
		for _, r := range Roles {
			st = st.WithCount(r, max(st.Count(r), 0))
		}
		out.Staffing[sh] = st

		sched := make(Schedule, len(Week))
		for _, d := range Week {
			sched[d] = p.Schedule[sh][d]
		}
		out.Schedule[sh] = sched
	}
	for _, d := range Week {
		out.Workload[d] = max(p.Workload[d], 0)
	}
	return out
}

// DefaultPlan returns the initial state an operator starts from.
func DefaultPlan() Plan {
	return Plan{
		Staffing: Staffing{
			ShiftTurno1:  {Reach: 3, Gruas: 1, Operativo: 3, Certificador: 1},
			ShiftTurno2:  {Reach: 3, Gruas: 1, Operativo: 3, Certificador: 1},
			ShiftTurnoPT: {Reach: 2, Gruas: 1, Operativo: 3, Certificador: 1},
		},
		Schedule: ShiftSchedule{
			ShiftTurno1: {
				Domingo: "14:00-22:30", Lunes: "22:00-07:30", Martes: "22:00-07:30",
				Miercoles: "22:00-07:30", Jueves: "14:00-22:30", Viernes: "Salida", Sabado: "Libre",
			},
			ShiftTurno2: {
				Domingo: "22:00-07:30", Lunes: "22:00-07:30", Martes: "22:00-07:30",
				Miercoles: "22:00-07:30", Jueves: "Libre", Viernes: "22:00-07:30", Sabado: "Libre",
			},
			ShiftTurnoPT: {
				Domingo: "22:00-07:30", Lunes: "Libre", Martes: "Libre",
				Miercoles: "Libre", Jueves: "22:00-07:30", Viernes: "Salida", Sabado: "Salida",
			},
		},
		Workload: DailyWorkload{
			Domingo: 600, Lunes: 600, Martes: 550, Miercoles: 450,
			Jueves: 450, Viernes: 450, Sabado: 0,
		},
		SKUPerPerson: DefaultSKUPerPerson,
	}
}

// Scenario is a plan saved under an operator-chosen name.
type Scenario struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Plan      Plan      `json:"plan"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

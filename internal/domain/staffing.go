package domain

// Staff is the headcount of one shift, per role.
type Staff struct {
	Reach        int `json:"reach" yaml:"reach"`
	Gruas        int `json:"gruas" yaml:"gruas"`
	Operativo    int `json:"operativo" yaml:"operativo"`
	Certificador int `json:"certificador" yaml:"certificador"`
}

// Total is the sum of all role counts.
func (s Staff) Total() int {
	return s.Reach + s.Gruas + s.Operativo + s.Certificador
}

// Count returns the headcount for role, or 0 for an unknown role.
func (s Staff) Count(role Role) int {
	switch role {
	case RoleReach:
		return s.Reach
	case RoleGruas:
		return s.Gruas
	case RoleOperativo:
		return s.Operativo
	case RoleCertificador:
		return s.Certificador
	}
	return 0
}

// WithCount returns a copy of s with role set to n. Unknown roles leave s unchanged.
func (s Staff) WithCount(role Role, n int) Staff {
	switch role {
	case RoleReach:
		s.Reach = n
	case RoleGruas:
		s.Gruas = n
	case RoleOperativo:
		s.Operativo = n
	case RoleCertificador:
		s.Certificador = n
	}
	return s
}

// Staffing maps every shift to its headcount.
type Staffing map[ShiftName]Staff

// Clone returns an independent copy.
func (s Staffing) Clone() Staffing {
	out := make(Staffing, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Total is the headcount across every shift and role.
func (s Staffing) Total() int {
	n := 0
	for _, st := range s {
		n += st.Total()
	}
	return n
}

// RoleTotal sums one role across every shift.
func (s Staffing) RoleTotal(role Role) int {
	n := 0
	for _, st := range s {
		n += st.Count(role)
	}
	return n
}

// DailyWorkload is the expected SKU volume per day.
type DailyWorkload map[Day]int

func (w DailyWorkload) Clone() DailyWorkload {
	out := make(DailyWorkload, len(w))
	for k, v := range w {
		out[k] = v
	}
	return out
}

// Total is the SKU volume of the whole week.
func (w DailyWorkload) Total() int {
	n := 0
	for _, v := range w {
		n += v
	}
	return n
}

// Schedule holds a free-text entry per day: a time range such as
// "22:00-07:30" or an inactive marker such as "Libre".
type Schedule map[Day]string

func (s Schedule) Clone() Schedule {
	out := make(Schedule, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// ShiftSchedule holds the weekly schedule of every shift.
type ShiftSchedule map[ShiftName]Schedule

func (s ShiftSchedule) Clone() ShiftSchedule {
	out := make(ShiftSchedule, len(s))
	for k, v := range s {
		out[k] = v.Clone()
	}
	return out
}

// Entry returns the schedule text of shift on day, or "" when unset.
func (s ShiftSchedule) Entry(shift ShiftName, day Day) string {
	return s[shift][day]
}

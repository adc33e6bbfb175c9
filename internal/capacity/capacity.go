package capacity

import (
	"github.com/alexanderramin/staffplan/internal/domain"
)

// inactiveMarkers are the schedule entries meaning a shift does not work
// that day. Anything else, including an empty entry, counts as working.
var inactiveMarkers = map[string]bool{
	"libre":  true,
	"salida": true,
}

// IsShiftActive reports whether a schedule entry means the shift works.
func IsShiftActive(entry string) bool {
	return !inactiveMarkers[domain.Fold(entry)]
}

// DayLoad is the derived capacity picture of one day.
type DayLoad struct {
	Day          domain.Day         `json:"day"`
	Workload     int                `json:"workload"`
	StaffActive  int                `json:"staffActive"`
	Capacity     int                `json:"capacity"`
	OverCapacity bool               `json:"overCapacity"`
	ActiveShifts []domain.ShiftName `json:"activeShifts"`
}

// Gap is workload minus capacity. Positive means unserved volume.
func (d DayLoad) Gap() int {
	return d.Workload - d.Capacity
}

// Utilization is workload over capacity as a percentage. A day with no
// capacity and some workload reports 100 plus; zero over zero reports 0.
func (d DayLoad) Utilization() float64 {
	if d.Capacity == 0 {
		if d.Workload > 0 {
			return 100
		}
		return 0
	}
	return float64(d.Workload) / float64(d.Capacity) * 100
}

// ActiveShifts lists the shifts whose entry for day is active, in shift order.
func ActiveShifts(schedule domain.ShiftSchedule, day domain.Day) []domain.ShiftName {
	var out []domain.ShiftName
	for _, sh := range domain.Shifts {
		if IsShiftActive(schedule.Entry(sh, day)) {
			out = append(out, sh)
		}
	}
	return out
}

// StaffActive sums the headcount of every shift working on day.
func StaffActive(staffing domain.Staffing, schedule domain.ShiftSchedule, day domain.Day) int {
	n := 0
	for _, sh := range ActiveShifts(schedule, day) {
		n += staffing[sh].Total()
	}
	return n
}

// ForDay derives the load of a single day.
func ForDay(p domain.Plan, day domain.Day) DayLoad {
	active := ActiveShifts(p.Schedule, day)
	staff := 0
	for _, sh := range active {
		staff += p.Staffing[sh].Total()
	}
	capacity := staff * p.SKUPerPerson
	workload := p.Workload[day]
	return DayLoad{
		Day:          day,
		Workload:     workload,
		StaffActive:  staff,
		Capacity:     capacity,
		OverCapacity: workload > capacity,
		ActiveShifts: active,
	}
}

// Derive computes the load of every day of the week, in week order.
// It is pure and recomputes from scratch on each call.
func Derive(p domain.Plan) []DayLoad {
	out := make([]DayLoad, 0, len(domain.Week))
	for _, d := range domain.Week {
		out = append(out, ForDay(p, d))
	}
	return out
}

// Summary aggregates a week of day loads.
type Summary struct {
	TotalWorkload    int        `json:"totalWorkload"`
	TotalCapacity    int        `json:"totalCapacity"`
	OverCapacityDays int        `json:"overCapacityDays"`
	PeakDay          domain.Day `json:"peakDay"`
	PeakGap          int        `json:"peakGap"`
}

// Summarize folds loads into weekly totals. PeakDay is the day with the
// largest gap; ties keep the earlier day.
func Summarize(loads []DayLoad) Summary {
	var s Summary
	for i, l := range loads {
		s.TotalWorkload += l.Workload
		s.TotalCapacity += l.Capacity
		if l.OverCapacity {
			s.OverCapacityDays++
		}
		if i == 0 || l.Gap() > s.PeakGap {
			s.PeakDay = l.Day
			s.PeakGap = l.Gap()
		}
	}
	return s
}

package capacity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/staffplan/internal/domain"
)

func TestIsShiftActive(t *testing.T) {
	inactive := []string{"Libre", "libre", "LIBRE", "  Salida ", "salida", "SaLiDa"}
	for _, e := range inactive {
		assert.False(t, IsShiftActive(e), "%q should be inactive", e)
	}

	active := []string{"22:00-07:30", "", "Libre hasta las 10", "vacaciones", "???"}
	for _, e := range active {
		assert.True(t, IsShiftActive(e), "%q should be active", e)
	}
}

func TestDerive_DefaultPlan_Sunday(t *testing.T) {
	loads := Derive(domain.DefaultPlan())
	require.Len(t, loads, 7)

	sun := loads[0]
	assert.Equal(t, domain.Domingo, sun.Day)
	assert.Equal(t, 23, sun.StaffActive)
	assert.Equal(t, 575, sun.Capacity)
	assert.Equal(t, 600, sun.Workload)
	assert.True(t, sun.OverCapacity)
	assert.Equal(t, 25, sun.Gap())
	assert.Equal(t, []domain.ShiftName{domain.ShiftTurno1, domain.ShiftTurno2, domain.ShiftTurnoPT}, sun.ActiveShifts)
}

func TestDerive_DefaultPlan_Week(t *testing.T) {
	loads := Derive(domain.DefaultPlan())

	// Lunes: turno1 + turno2 = 16 staff, 400 capacity
	assert.Equal(t, 16, loads[1].StaffActive)
	assert.Equal(t, 400, loads[1].Capacity)
	assert.True(t, loads[1].OverCapacity)

	// Jueves: turno1 + turnoPT = 15 staff
	assert.Equal(t, 15, loads[4].StaffActive)
	assert.Equal(t, 375, loads[4].Capacity)

	// Viernes: only turno2
	assert.Equal(t, 8, loads[5].StaffActive)

	// Sabado: every shift off, no workload
	assert.Equal(t, 0, loads[6].StaffActive)
	assert.Equal(t, 0, loads[6].Capacity)
	assert.False(t, loads[6].OverCapacity)
	assert.Empty(t, loads[6].ActiveShifts)
}

func TestDerive_CapacityIsExactProduct(t *testing.T) {
	p := domain.DefaultPlan()
	for _, k := range []int{0, 1, 7, 25, 1000} {
		p.SKUPerPerson = k
		for _, l := range Derive(p) {
			assert.Equal(t, l.StaffActive*k, l.Capacity, "day %s k=%d", l.Day, k)
		}
	}
}

func TestForDay_StrictComparison(t *testing.T) {
	p := domain.DefaultPlan()
	p.Workload[domain.Domingo] = 575
	assert.False(t, ForDay(p, domain.Domingo).OverCapacity)

	p.Workload[domain.Domingo] = 576
	assert.True(t, ForDay(p, domain.Domingo).OverCapacity)
}

func TestForDay_AllInactive(t *testing.T) {
	p := domain.DefaultPlan()
	for _, sh := range domain.Shifts {
		p.Schedule[sh][domain.Martes] = "libre"
	}
	p.Workload[domain.Martes] = 1

	l := ForDay(p, domain.Martes)
	assert.Equal(t, 0, l.StaffActive)
	assert.Equal(t, 0, l.Capacity)
	assert.True(t, l.OverCapacity)
}

func TestForDay_MissingScheduleCountsAsActive(t *testing.T) {
	p := domain.DefaultPlan()
	delete(p.Schedule, domain.ShiftTurnoPT)

	// Sabado: turno1/turno2 libre, turnoPT has no entry
	assert.Equal(t, 7, ForDay(p, domain.Sabado).StaffActive)
}

func TestDerive_DoesNotMutatePlan(t *testing.T) {
	p := domain.DefaultPlan()
	before := p.Clone()
	Derive(p)
	assert.Equal(t, before, p)
}

func TestSummarize(t *testing.T) {
	s := Summarize(Derive(domain.DefaultPlan()))

	assert.Equal(t, 3100, s.TotalWorkload)
	// 575 + 400 + 400 + 400 + 375 + 200 + 0
	assert.Equal(t, 2350, s.TotalCapacity)
	assert.Equal(t, 6, s.OverCapacityDays)
	assert.Equal(t, domain.Viernes, s.PeakDay)
	assert.Equal(t, 250, s.PeakGap)
}

func TestUtilization(t *testing.T) {
	assert.InDelta(t, 50.0, DayLoad{Workload: 100, Capacity: 200}.Utilization(), 0.001)
	assert.InDelta(t, 100.0, DayLoad{Workload: 5}.Utilization(), 0.001)
	assert.InDelta(t, 0.0, DayLoad{}.Utilization(), 0.001)
}

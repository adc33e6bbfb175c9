package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/staffplan/internal/capacity"
	"github.com/alexanderramin/staffplan/internal/domain"
)

const (
	loadBarWidth  = 10
	chartBarWidth = 24
)

// FormatCapacity renders the weekly derivation as a table followed by a
// one-line summary.
func FormatCapacity(loads []capacity.DayLoad, summary capacity.Summary) string {
	var b strings.Builder

	headers := []string{"DÍA", "TURNOS", "PERSONAL", "CAPACIDAD", "CARGA", "BRECHA", "USO", "ESTADO"}
	rows := make([][]string, 0, len(loads))
	for _, l := range loads {
		shifts := make([]string, 0, len(l.ActiveShifts))
		for _, sh := range l.ActiveShifts {
			shifts = append(shifts, sh.Label())
		}
		shiftText := Dim("--")
		if len(shifts) > 0 {
			shiftText = strings.Join(shifts, ", ")
		}
		style := LoadStyle(l.Utilization(), l.OverCapacity)
		rows = append(rows, []string{
			Bold(l.Day.Label()),
			shiftText,
			strconv.Itoa(l.StaffActive),
			strconv.Itoa(l.Capacity),
			strconv.Itoa(l.Workload),
			style.Render(Signed(l.Gap())),
			RenderLoadBar(l.Utilization(), l.OverCapacity, loadBarWidth),
			LoadIndicator(l.OverCapacity),
		})
	}
	b.WriteString(RenderTable(headers, rows, 2, 3, 4, 5))
	b.WriteString("\n")
	b.WriteString(FormatSummary(summary))
	return b.String()
}

// FormatSummary is the weekly totals line.
func FormatSummary(s capacity.Summary) string {
	over := StyleGreen.Render("0 días sobre capacidad")
	if s.OverCapacityDays > 0 {
		word := "días"
		if s.OverCapacityDays == 1 {
			word = "día"
		}
		over = StyleRed.Render(fmt.Sprintf("%d %s sobre capacidad", s.OverCapacityDays, word))
	}
	line := fmt.Sprintf("Carga %s / Capacidad %s  ·  %s",
		Bold(strconv.Itoa(s.TotalWorkload)), Bold(strconv.Itoa(s.TotalCapacity)), over)
	if s.PeakGap > 0 {
		line += Dim(fmt.Sprintf("  ·  peor día %s (%s)", s.PeakDay.Label(), Signed(s.PeakGap)))
	}
	return line + "\n"
}

// FormatStaffing renders the head-count grid with role and shift totals.
// When cursor is valid the selected cell is highlighted.
func FormatStaffing(s domain.Staffing, cursor *Cell) string {
	headers := []string{"TURNO"}
	for _, r := range domain.Roles {
		headers = append(headers, strings.ToUpper(r.Label()))
	}
	headers = append(headers, "TOTAL")

	rows := make([][]string, 0, len(domain.Shifts)+1)
	for ri, sh := range domain.Shifts {
		staff := s[sh]
		row := []string{Bold(sh.Label())}
		for ci, r := range domain.Roles {
			row = append(row, highlight(strconv.Itoa(staff.Count(r)), cursor, ri, ci))
		}
		rows = append(rows, append(row, Dim(strconv.Itoa(staff.Total()))))
	}
	total := []string{Dim("Total")}
	for _, r := range domain.Roles {
		total = append(total, Dim(strconv.Itoa(s.RoleTotal(r))))
	}
	rows = append(rows, append(total, Bold(strconv.Itoa(s.Total()))))

	right := make([]int, 0, len(domain.Roles)+1)
	for i := 1; i <= len(domain.Roles)+1; i++ {
		right = append(right, i)
	}
	return RenderTable(headers, rows, right...)
}

// FormatSchedule renders each shift's week. Days off are dimmed.
func FormatSchedule(s domain.ShiftSchedule, cursor *Cell) string {
	headers := []string{"TURNO"}
	for _, d := range domain.Week {
		headers = append(headers, strings.ToUpper(d.Short()))
	}
	rows := make([][]string, 0, len(domain.Shifts))
	for ri, sh := range domain.Shifts {
		row := []string{Bold(sh.Label())}
		for ci, d := range domain.Week {
			entry := s.Entry(sh, d)
			cell := ShiftIndicator(entry, capacity.IsShiftActive(entry))
			if cursor != nil && cursor.Row == ri && cursor.Col == ci {
				cell = StyleYellow.Bold(true).Render("›" + stripEmpty(entry))
			}
			row = append(row, cell)
		}
		rows = append(rows, row)
	}
	return RenderTable(headers, rows)
}

// FormatWorkload renders the editable workload row and the throughput
// parameter. Column 7 of the cursor addresses the throughput cell.
func FormatWorkload(w domain.DailyWorkload, skuPerPerson int, cursor *Cell) string {
	headers := make([]string, 0, len(domain.Week)+1)
	row := make([]string, 0, len(domain.Week)+1)
	right := make([]int, 0, len(domain.Week)+1)
	for ci, d := range domain.Week {
		headers = append(headers, strings.ToUpper(d.Short()))
		row = append(row, highlight(strconv.Itoa(w[d]), cursor, 0, ci))
		right = append(right, ci)
	}
	headers = append(headers, "SKU/PERSONA")
	row = append(row, highlight(strconv.Itoa(skuPerPerson), cursor, 0, len(domain.Week)))
	right = append(right, len(domain.Week))
	return RenderTable(headers, [][]string{row}, right...)
}

// FormatWorkloadChart draws one horizontal bar per day, scaled to the
// largest of workload and capacity across the week.
func FormatWorkloadChart(loads []capacity.DayLoad) string {
	peak := 0
	for _, l := range loads {
		peak = max(peak, l.Workload, l.Capacity)
	}
	var b strings.Builder
	for _, l := range loads {
		fmt.Fprintf(&b, "%-4s %s %s\n",
			l.Day.Short(),
			RenderCompactBar(l.Workload, peak, chartBarWidth, l.OverCapacity),
			Dim(fmt.Sprintf("%d / %d", l.Workload, l.Capacity)))
	}
	return b.String()
}

// FormatStatus is the full plan overview printed by the status command.
func FormatStatus(plan domain.Plan) string {
	loads := capacity.Derive(plan)
	var b strings.Builder
	b.WriteString(Header("Dotación"))
	b.WriteString("\n")
	b.WriteString(FormatStaffing(plan.Staffing, nil))
	b.WriteString("\n")
	b.WriteString(Header("Capacidad semanal"))
	b.WriteString("\n")
	b.WriteString(FormatCapacity(loads, capacity.Summarize(loads)))
	b.WriteString(Dim(fmt.Sprintf("Cada persona procesa %d SKU por turno.", plan.SKUPerPerson)))
	return RenderBox("Plan", b.String())
}

// Cell addresses a grid position for highlighting.
type Cell struct {
	Row, Col int
}

func highlight(text string, cursor *Cell, row, col int) string {
	if cursor != nil && cursor.Row == row && cursor.Col == col {
		return StyleYellow.Bold(true).Render("›" + text)
	}
	return text
}

func stripEmpty(s string) string {
	if strings.TrimSpace(s) == "" {
		return "--"
	}
	return s
}

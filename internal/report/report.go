// Package report renders derived capacity figures as text tables.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/alexanderramin/staffplan/internal/capacity"
	"github.com/alexanderramin/staffplan/internal/domain"
)

// Format selects the table renderer.
type Format string

const (
	FormatTable    Format = "table"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// Formats lists every supported format.
var Formats = []Format{FormatTable, FormatCSV, FormatMarkdown, FormatHTML}

// ParseFormat accepts a format name in any case; "md" is an alias for markdown.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatTable:
		return FormatTable, nil
	case "md":
		return FormatMarkdown, nil
	case FormatCSV, FormatMarkdown, FormatHTML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (want one of table, csv, markdown, html)", s)
	}
}

const (
	statusOver = "SOBRECAPACIDAD"
	statusOK   = "OK"
)

// Render writes the weekly capacity table with a totals footer.
func Render(w io.Writer, loads []capacity.DayLoad, summary capacity.Summary, format Format) error {
	tw := newWriter(format)
	tw.AppendHeader(table.Row{"Día", "Turnos", "Personal", "Capacidad", "Carga", "Brecha", "Uso %", "Estado"})
	for _, l := range loads {
		status := statusOK
		if l.OverCapacity {
			status = statusOver
		}
		tw.AppendRow(table.Row{
			l.Day.Label(),
			shiftList(l.ActiveShifts),
			l.StaffActive,
			l.Capacity,
			l.Workload,
			signed(l.Gap()),
			fmt.Sprintf("%.0f", l.Utilization()),
			status,
		})
	}
	tw.AppendFooter(table.Row{
		"Total", "", "",
		summary.TotalCapacity,
		summary.TotalWorkload,
		signed(summary.TotalWorkload - summary.TotalCapacity),
		"",
		fmt.Sprintf("%d días", summary.OverCapacityDays),
	})
	tw.SetColumnConfigs(numericColumns(3, 4, 5, 6, 7))
	return write(w, tw, format)
}

// RenderStaffing writes the head-count grid: one row per shift, one column per role.
func RenderStaffing(w io.Writer, staffing domain.Staffing, format Format) error {
	tw := newWriter(format)
	header := table.Row{"Turno"}
	for _, r := range domain.Roles {
		header = append(header, r.Label())
	}
	header = append(header, "Total")
	tw.AppendHeader(header)

	for _, sh := range domain.Shifts {
		staff := staffing[sh]
		row := table.Row{sh.Label()}
		for _, r := range domain.Roles {
			row = append(row, staff.Count(r))
		}
		tw.AppendRow(append(row, staff.Total()))
	}

	footer := table.Row{"Total"}
	for _, r := range domain.Roles {
		footer = append(footer, staffing.RoleTotal(r))
	}
	tw.AppendFooter(append(footer, staffing.Total()))

	cols := make([]int, 0, len(domain.Roles)+1)
	for i := range len(domain.Roles) + 1 {
		cols = append(cols, i+2)
	}
	tw.SetColumnConfigs(numericColumns(cols...))
	return write(w, tw, format)
}

func newWriter(format Format) table.Writer {
	tw := table.NewWriter()
	if format == FormatTable {
		tw.SetStyle(table.StyleRounded)
		tw.Style().Format.Footer = text.FormatDefault
	}
	return tw
}

func write(w io.Writer, tw table.Writer, format Format) error {
	var out string
	switch format {
	case FormatTable, "":
		out = tw.Render()
	case FormatCSV:
		out = tw.RenderCSV()
	case FormatMarkdown:
		out = tw.RenderMarkdown()
	case FormatHTML:
		out = tw.RenderHTML()
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	_, err := io.WriteString(w, out+"\n")
	return err
}

func numericColumns(numbers ...int) []table.ColumnConfig {
	cfgs := make([]table.ColumnConfig, 0, len(numbers))
	for _, n := range numbers {
		cfgs = append(cfgs, table.ColumnConfig{Number: n, Align: text.AlignRight, AlignHeader: text.AlignLeft})
	}
	return cfgs
}

func shiftList(shifts []domain.ShiftName) string {
	if len(shifts) == 0 {
		return "-"
	}
	labels := make([]string, len(shifts))
	for i, sh := range shifts {
		labels[i] = sh.Label()
	}
	return strings.Join(labels, ", ")
}

func signed(n int) string {
	if n > 0 {
		return "+" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

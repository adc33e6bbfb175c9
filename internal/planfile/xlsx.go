package planfile

import (
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/alexanderramin/staffplan/internal/domain"
)

const (
	sheetStaffing   = "Dotacion"
	sheetSchedule   = "Horario"
	sheetWorkload   = "Carga"
	sheetParameters = "Parametros"

	paramSKUPerPerson = "SKU por persona"
)

func decodeXLSX(r io.Reader) (domain.Plan, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("opening workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	plan := base()
	sheets := f.GetSheetList()
	read := func(name string, fn func(rows [][]string) error) error {
		if !slices.Contains(sheets, name) {
			return nil
		}
		rows, err := f.GetRows(name)
		if err != nil {
			return fmt.Errorf("reading sheet %s: %w", name, err)
		}
		if err := fn(rows); err != nil {
			return fmt.Errorf("sheet %s: %w", name, err)
		}
		return nil
	}

	if err := read(sheetStaffing, func(rows [][]string) error { return readStaffing(&plan, rows) }); err != nil {
		return domain.Plan{}, err
	}
	if err := read(sheetSchedule, func(rows [][]string) error { return readSchedule(&plan, rows) }); err != nil {
		return domain.Plan{}, err
	}
	if err := read(sheetWorkload, func(rows [][]string) error { return readWorkload(&plan, rows) }); err != nil {
		return domain.Plan{}, err
	}
	if err := read(sheetParameters, func(rows [][]string) error { return readParameters(&plan, rows) }); err != nil {
		return domain.Plan{}, err
	}
	return plan.Normalize(), nil
}

// readStaffing expects a header row of role names followed by one row per shift.
func readStaffing(plan *domain.Plan, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}
	roles := make([]domain.Role, len(rows[0]))
	for col := 1; col < len(rows[0]); col++ {
		role, err := domain.ParseRole(rows[0][col])
		if err != nil {
			return fmt.Errorf("header %s: %w", cellName(col, 1), err)
		}
		roles[col] = role
	}
	for i, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		shift, err := domain.ParseShift(row[0])
		if err != nil {
			return fmt.Errorf("%s: %w", cellName(0, i+2), err)
		}
		staff := plan.Staffing[shift]
		for col := 1; col < len(row) && col < len(roles); col++ {
			n, err := cellInt(row[col])
			if err != nil {
				return fmt.Errorf("%s: %w", cellName(col, i+2), err)
			}
			staff = staff.WithCount(roles[col], n)
		}
		plan.Staffing[shift] = staff
	}
	return nil
}

// readSchedule expects a header row of day names followed by one row per shift.
func readSchedule(plan *domain.Plan, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}
	days := make([]domain.Day, len(rows[0]))
	for col := 1; col < len(rows[0]); col++ {
		day, err := domain.ParseDay(rows[0][col])
		if err != nil {
			return fmt.Errorf("header %s: %w", cellName(col, 1), err)
		}
		days[col] = day
	}
	for i, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		shift, err := domain.ParseShift(row[0])
		if err != nil {
			return fmt.Errorf("%s: %w", cellName(0, i+2), err)
		}
		for col := 1; col < len(days); col++ {
			entry := ""
			if col < len(row) {
				entry = strings.TrimSpace(row[col])
			}
			plan.Schedule[shift][days[col]] = entry
		}
	}
	return nil
}

// readWorkload expects a header row, then day/SKU pairs.
func readWorkload(plan *domain.Plan, rows [][]string) error {
	for i, row := range rows {
		if i == 0 || blankRow(row) {
			continue
		}
		day, err := domain.ParseDay(row[0])
		if err != nil {
			return fmt.Errorf("%s: %w", cellName(0, i+1), err)
		}
		n := 0
		if len(row) > 1 {
			if n, err = cellInt(row[1]); err != nil {
				return fmt.Errorf("%s: %w", cellName(1, i+1), err)
			}
		}
		plan.Workload[day] = n
	}
	return nil
}

func readParameters(plan *domain.Plan, rows [][]string) error {
	for i, row := range rows {
		if len(row) < 2 || domain.Fold(row[0]) != domain.Fold(paramSKUPerPerson) {
			continue
		}
		n, err := cellInt(row[1])
		if err != nil {
			return fmt.Errorf("%s: %w", cellName(1, i+1), err)
		}
		plan.SKUPerPerson = n
	}
	return nil
}

func encodeXLSX(w io.Writer, plan domain.Plan) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	staffing := [][]any{{"Turno"}}
	for _, role := range domain.Roles {
		staffing[0] = append(staffing[0], role.Label())
	}
	for _, shift := range domain.Shifts {
		row := []any{shift.Label()}
		for _, role := range domain.Roles {
			row = append(row, plan.Staffing[shift].Count(role))
		}
		staffing = append(staffing, row)
	}

	schedule := [][]any{{"Turno"}}
	for _, day := range domain.Week {
		schedule[0] = append(schedule[0], day.Label())
	}
	for _, shift := range domain.Shifts {
		row := []any{shift.Label()}
		for _, day := range domain.Week {
			row = append(row, plan.Schedule.Entry(shift, day))
		}
		schedule = append(schedule, row)
	}

	workload := [][]any{{"Día", "SKU"}}
	for _, day := range domain.Week {
		workload = append(workload, []any{day.Label(), plan.Workload[day]})
	}

	params := [][]any{{"Parámetro", "Valor"}, {paramSKUPerPerson, plan.SKUPerPerson}}

	if err := f.SetSheetName("Sheet1", sheetStaffing); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}
	for _, sheet := range []struct {
		name string
		rows [][]any
	}{
		{sheetStaffing, staffing},
		{sheetSchedule, schedule},
		{sheetWorkload, workload},
		{sheetParameters, params},
	} {
		if sheet.name != sheetStaffing {
			if _, err := f.NewSheet(sheet.name); err != nil {
				return fmt.Errorf("creating sheet %s: %w", sheet.name, err)
			}
		}
		for i, row := range sheet.rows {
			if err := f.SetSheetRow(sheet.name, cellName(0, i+1), &row); err != nil {
				return fmt.Errorf("writing sheet %s: %w", sheet.name, err)
			}
		}
		if err := f.SetRowStyle(sheet.name, 1, 1, bold); err != nil {
			return fmt.Errorf("styling sheet %s: %w", sheet.name, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// cellInt parses a numeric cell, rounding fractional values. Blank cells are zero.
func cellInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	return int(math.Round(v)), nil
}

func blankRow(row []string) bool {
	return len(row) == 0 || strings.TrimSpace(row[0]) == ""
}

// cellName converts a zero-based column and one-based row to "A1" notation.
func cellName(col, row int) string {
	name, err := excelize.CoordinatesToCellName(col+1, row)
	if err != nil {
		return fmt.Sprintf("R%dC%d", row, col+1)
	}
	return name
}

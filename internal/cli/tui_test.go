package cli

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/staffplan/internal/domain"
	"github.com/alexanderramin/staffplan/internal/teatest"
	"github.com/alexanderramin/staffplan/internal/testutil"
	"github.com/alexanderramin/staffplan/internal/workspace"
)

// TestDriver wraps teatest.Driver with access to the appModel internals
// and the workspace the dashboard edits.
type TestDriver struct {
	*teatest.Driver
	WS *workspace.Workspace
}

// NewTestDriver builds the appModel on the default plan, sets a wide
// terminal and drains Init().
func NewTestDriver(t *testing.T, app *App) *TestDriver {
	t.Helper()
	ws := app.Workspace("", domain.DefaultPlan())
	d := teatest.New(t, newAppModel(app, ws), teatest.WithSize(180, 60))
	d.DrainInit()
	return &TestDriver{Driver: d, WS: ws}
}

func (d *TestDriver) appModel() appModel {
	return d.Model.(appModel)
}

// ActiveViewID returns the ViewID of the top view on the stack.
func (d *TestDriver) ActiveViewID() ViewID {
	m := d.appModel()
	v := m.activeView()
	if v == nil {
		return ViewID(-1)
	}
	return v.ID()
}

// Flash returns the current status-line message without styling.
func (d *TestDriver) Flash() string {
	return ansi.ReplaceAllString(d.appModel().flash, "")
}

// EditCell opens the form on the focused cell, replaces its text and submits.
func (d *TestDriver) EditCell(text string) {
	d.T.Helper()
	d.Press("enter")
	require.Equal(d.T, ViewForm, d.ActiveViewID(), "enter should open the edit form")
	d.ClearInput()
	d.Type(text)
	d.Press("enter")
}

func TestDashboard_RendersPlanAndCapacity(t *testing.T) {
	d := NewTestDriver(t, testApp(t))

	out := d.PlainView()
	assert.Contains(t, out, "staffplan")
	assert.Contains(t, out, "▸ DOTACIÓN")
	assert.Contains(t, out, "CAPACIDAD SEMANAL")
	assert.Contains(t, out, "SOBRECAPACIDAD")
	assert.Contains(t, out, "Pulsa g para pedir sugerencias.")
	assert.Contains(t, out, "›3", "cursor starts on the first staffing cell")
}

func TestDashboard_EditStaffingWithUndoRedo(t *testing.T) {
	d := NewTestDriver(t, testApp(t))

	d.EditCell("5")
	assert.Equal(t, ViewDashboard, d.ActiveViewID())
	assert.Equal(t, 5, d.WS.Snapshot().Plan.Staffing[domain.ShiftTurno1].Reach)
	assert.Contains(t, d.Flash(), "Turno 1 · Reach actualizado.")

	d.Press("u")
	assert.Equal(t, 3, d.WS.Snapshot().Plan.Staffing[domain.ShiftTurno1].Reach)
	d.Press("r")
	assert.Equal(t, 5, d.WS.Snapshot().Plan.Staffing[domain.ShiftTurno1].Reach)
	d.Press("r")
	assert.Equal(t, "Nada que rehacer.", d.Flash())
}

func TestDashboard_InvalidCountBecomesZero(t *testing.T) {
	d := NewTestDriver(t, testApp(t))

	d.Press("down", "right")
	d.EditCell("muchos")
	assert.Equal(t, 0, d.WS.Snapshot().Plan.Staffing[domain.ShiftTurno2].Gruas)
}

func TestDashboard_EditScheduleChangesCapacity(t *testing.T) {
	d := NewTestDriver(t, testApp(t))

	d.Press("tab", "right")
	d.EditCell("Libre")

	snap := d.WS.Snapshot()
	assert.Equal(t, "Libre", snap.Plan.Schedule.Entry(domain.ShiftTurno1, domain.Lunes))
	lunes := snap.Loads()[1]
	assert.Equal(t, 8, lunes.StaffActive)
	assert.Equal(t, 200, lunes.Capacity)
}

func TestDashboard_EditWorkloadAndThroughput(t *testing.T) {
	d := NewTestDriver(t, testApp(t))

	d.Press("tab", "tab")
	d.EditCell("100")
	assert.Equal(t, 100, d.WS.Snapshot().Plan.Workload[domain.Domingo])

	for range 10 {
		d.Press("right")
	}
	d.EditCell("40")
	assert.Equal(t, 40, d.WS.Snapshot().Plan.SKUPerPerson)
	assert.Contains(t, d.PlainView(), "›40")
}

func TestDashboard_EscCancelsEdit(t *testing.T) {
	d := NewTestDriver(t, testApp(t))
	before := d.WS.Snapshot().Version

	d.Press("enter")
	require.Equal(t, ViewForm, d.ActiveViewID())
	d.Type("9")
	d.Press("esc")

	assert.Equal(t, ViewDashboard, d.ActiveViewID())
	assert.Equal(t, before, d.WS.Snapshot().Version)
	assert.Equal(t, "Cancelado.", d.Flash())
}

func TestDashboard_RecommendApplyDismiss(t *testing.T) {
	d := NewTestDriver(t, testApp(t))

	d.Press("v")
	assert.Equal(t, ViewDashboard, d.ActiveViewID(), "nothing to review yet")

	d.Press("g")
	assert.Contains(t, d.Flash(), "▲ Viernes en riesgo")
	assert.Contains(t, d.Flash(), "2 sugerencias recibidas")
	assert.Contains(t, d.PlainView(), "1. Mover personal 1")

	d.Press("v")
	require.Equal(t, ViewSuggestions, d.ActiveViewID())
	assert.Contains(t, d.PlainView(), "› 1. Mover personal 1")

	d.Press("enter")
	assert.Contains(t, d.Flash(), "Movidos 1")
	snap := d.WS.Snapshot()
	assert.Equal(t, 2, snap.Plan.Staffing[domain.ShiftTurno1].Operativo)
	assert.Equal(t, 4, snap.Plan.Staffing[domain.ShiftTurno2].Operativo)
	require.Len(t, snap.Pending.Suggestions, 1)
	assert.Equal(t, "Mover personal 2", snap.Pending.Suggestions[0].Title)

	d.Press("x")
	assert.Empty(t, d.WS.Snapshot().Pending.Suggestions)
	assert.Contains(t, d.PlainView(), "No hay sugerencias para este plan.")

	d.Press("esc")
	assert.Equal(t, ViewDashboard, d.ActiveViewID())
	d.Press("u")
	assert.Equal(t, 3, d.WS.Snapshot().Plan.Staffing[domain.ShiftTurno1].Operativo)
}

func TestDashboard_RequestDisabledWhilePending(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int32
	app := testApp(t, gatewayFunc(func(ctx context.Context, _ domain.Plan) *domain.AIResponse {
		calls.Add(1)
		<-release
		return testutil.NewTestResponse("")
	}))
	d := NewTestDriver(t, app)

	// The driver gives up on the blocked request, leaving it in flight.
	d.Press("g")
	require.Eventually(t, func() bool { return d.WS.Snapshot().Requesting }, time.Second, 5*time.Millisecond)
	assert.Contains(t, d.PlainView(), "Consultando al servicio de IA...")

	d.Press("g")
	assert.Equal(t, "Ya hay una consulta en curso.", d.Flash())
	assert.Equal(t, int32(1), calls.Load())

	close(release)
	require.Eventually(t, func() bool { return !d.WS.Snapshot().Requesting }, time.Second, 5*time.Millisecond)
	assert.NotNil(t, d.WS.Snapshot().Pending)
}

func TestDashboard_SaveAndLoadScenario(t *testing.T) {
	app := testApp(t)
	require.NoError(t, app.Scenarios.Save(context.Background(),
		&domain.Scenario{Name: "alt", Plan: testutil.NewTestPlan(testutil.WithWorkload(domain.Lunes, 900))}))
	d := NewTestDriver(t, app)

	d.Press("s")
	require.Equal(t, ViewForm, d.ActiveViewID())
	d.Type("pico")
	d.Press("enter")

	saved, err := app.Scenarios.GetByName(context.Background(), "pico")
	require.NoError(t, err)
	assert.Equal(t, 3100, saved.Plan.Workload.Total())
	assert.Equal(t, "pico", d.WS.Snapshot().Scenario)
	assert.Contains(t, d.PlainView(), "[pico]")

	d.Press("o")
	require.Equal(t, ViewScenarios, d.ActiveViewID())
	out := d.PlainView()
	assert.Contains(t, out, "alt")
	assert.Contains(t, out, "pico")

	// Scenarios are listed by name, so "alt" is first.
	d.Press("enter")
	assert.Equal(t, ViewDashboard, d.ActiveViewID())
	snap := d.WS.Snapshot()
	assert.Equal(t, "alt", snap.Scenario)
	assert.Equal(t, 900, snap.Plan.Workload[domain.Lunes])
	assert.Contains(t, d.Flash(), "Escenario cargado: alt")
}

func TestDashboard_DeleteScenario(t *testing.T) {
	app := testApp(t)
	require.NoError(t, app.Scenarios.Save(context.Background(), testutil.NewTestScenario()))
	d := NewTestDriver(t, app)

	d.Press("o", "d")
	list, err := app.Scenarios.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Contains(t, d.PlainView(), "No hay escenarios guardados.")
}

func TestDashboard_ResetAndQuit(t *testing.T) {
	d := NewTestDriver(t, testApp(t))

	d.EditCell("7")
	d.Press("X")
	assert.Equal(t, 3, d.WS.Snapshot().Plan.Staffing[domain.ShiftTurno1].Reach)

	d.Press("q")
	assert.True(t, d.Quitting)
}

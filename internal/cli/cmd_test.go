package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/alexanderramin/staffplan/internal/config"
	"github.com/alexanderramin/staffplan/internal/domain"
	"github.com/alexanderramin/staffplan/internal/intelligence"
	"github.com/alexanderramin/staffplan/internal/planfile"
	"github.com/alexanderramin/staffplan/internal/repository"
	"github.com/alexanderramin/staffplan/internal/testutil"
)

type gatewayFunc func(ctx context.Context, plan domain.Plan) *domain.AIResponse

func (f gatewayFunc) Recommend(ctx context.Context, plan domain.Plan) *domain.AIResponse {
	return f(ctx, plan)
}

// countingGateway answers with a fixed response and counts calls.
func countingGateway(resp *domain.AIResponse, calls *atomic.Int32) gatewayFunc {
	return func(context.Context, domain.Plan) *domain.AIResponse {
		calls.Add(1)
		return resp.Clone()
	}
}

// testApp wires a full App backed by an in-memory DB. The gateway answers
// with two suggestions and an alert unless gw is given.
func testApp(t *testing.T, gw ...intelligence.RecommendationService) *App {
	t.Helper()
	database := testutil.NewTestDB(t)

	cfg := config.Default()
	cfg.Store.Path = ":memory:"
	cfg.Server.LockFile = filepath.Join(t.TempDir(), "serve.lock")

	app := &App{
		Config:    &cfg,
		Log:       zap.NewNop(),
		Scenarios: repository.NewSQLiteScenarioRepo(database),
		History:   repository.NewSQLiteRecommendationRepo(database),
		UoW:       testutil.NewTestUoW(database),
	}
	if len(gw) > 0 {
		app.Gateway = gw[0]
	} else {
		app.Gateway = gatewayFunc(func(context.Context, domain.Plan) *domain.AIResponse {
			return testutil.NewTestResponse("Viernes en riesgo",
				domain.ShiftTurno1, domain.ShiftTurno2,
				domain.ShiftTurnoPT, domain.ShiftTurno2)
		})
	}
	return app
}

var ansi = regexp.MustCompile(`\x1b\[[0-9;?]*[a-zA-Z]`)

func runCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(bytes.NewReader(nil))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return ansi.ReplaceAllString(out.String(), ""), err
}

func TestStatus_DefaultPlan(t *testing.T) {
	out, err := runCmd(t, testApp(t), "status")
	require.NoError(t, err)
	assert.Contains(t, out, "DOTACIÓN")
	assert.Contains(t, out, "SOBRECAPACIDAD")
	assert.Contains(t, out, "Carga 3100 / Capacidad 2350")
}

func TestStatus_CSVReport(t *testing.T) {
	out, err := runCmd(t, testApp(t), "status", "--format", "csv")
	require.NoError(t, err)
	assert.Contains(t, out, ",23,575,600,+25,")
	assert.Contains(t, out, "Total,8,3,9,3,23")
}

func TestStatus_SingleDay(t *testing.T) {
	out, err := runCmd(t, testApp(t), "status", "--day", "lunes")
	require.NoError(t, err)
	assert.Contains(t, out, "Lunes")
	assert.Contains(t, out, "+200")
	assert.NotContains(t, out, "Martes")
}

func TestStatus_Errors(t *testing.T) {
	app := testApp(t)

	_, err := runCmd(t, app, "status", "--format", "pdf")
	assert.ErrorContains(t, err, "unknown format")

	_, err = runCmd(t, app, "status", "--day", "someday")
	assert.Error(t, err)

	_, err = runCmd(t, app, "status", "--scenario", "missing")
	assert.ErrorContains(t, err, `scenario "missing" not found`)

	_, err = runCmd(t, app, "status", "--plan", "a.yaml", "--scenario", "b")
	assert.Error(t, err)
}

func TestStatus_FromPlanFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "week.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workload:\n  Lunes: 900\n"), 0o644))

	out, err := runCmd(t, testApp(t), "status", "--plan", path, "--day", "Lunes")
	require.NoError(t, err)
	assert.Contains(t, out, "900")
	assert.Contains(t, out, "+500")
}

func TestMove_SavesResult(t *testing.T) {
	path := filepath.Join(t.TempDir(), "moved.yaml")

	out, err := runCmd(t, testApp(t), "move",
		"--from", "turno1", "--to", "Turno 2", "--role", "operativo", "--amount", "2", "--out", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Movidos 2")
	assert.Contains(t, out, "Plan guardado en")

	plan, err := planfile.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, plan.Staffing[domain.ShiftTurno1].Operativo)
	assert.Equal(t, 5, plan.Staffing[domain.ShiftTurno2].Operativo)
	assert.Equal(t, 23, plan.Staffing.Total())
}

func TestMove_ClampsToAvailable(t *testing.T) {
	out, err := runCmd(t, testApp(t), "move",
		"--from", "turnoPT", "--to", "turno1", "--role", "reach", "--amount", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "Movidos 2 de 10")
}

func TestMove_Errors(t *testing.T) {
	app := testApp(t)

	_, err := runCmd(t, app, "move", "--from", "turno1", "--role", "reach")
	assert.ErrorContains(t, err, "required")

	_, err = runCmd(t, app, "move", "--from", "turno9", "--to", "turno1", "--role", "reach")
	assert.Error(t, err)

	_, err = runCmd(t, app, "move", "--from", "turno1", "--to", "turno2", "--role", "chofer")
	assert.Error(t, err)
}

func TestRecommend_PrintsSuggestions(t *testing.T) {
	out, err := runCmd(t, testApp(t), "recommend")
	require.NoError(t, err)
	assert.Contains(t, out, "▲ Viernes en riesgo")
	assert.Contains(t, out, "1. Mover personal 1")
	assert.Contains(t, out, "1× Operativo: Turno 1 → Turno 2")
}

func TestRecommend_JSON(t *testing.T) {
	out, err := runCmd(t, testApp(t), "recommend", "--json")
	require.NoError(t, err)

	var resp domain.AIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "Viernes en riesgo", resp.OperationAlert)
	assert.Len(t, resp.Suggestions, 2)
}

func TestRecommend_ApplyAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "applied.xlsx")

	out, err := runCmd(t, testApp(t), "recommend", "--apply", "--json", "--out", path)
	require.NoError(t, err)

	var result struct {
		Applied []applyResult `json:"applied"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Applied, 2)
	assert.Equal(t, 1, result.Applied[0].Moved)
	assert.Equal(t, 1, result.Applied[1].Moved)

	plan, err := planfile.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, plan.Staffing[domain.ShiftTurno1].Operativo)
	assert.Equal(t, 5, plan.Staffing[domain.ShiftTurno2].Operativo)
	assert.Equal(t, 2, plan.Staffing[domain.ShiftTurnoPT].Operativo)
}

func TestRecommend_DegradedIsRecordedInHistory(t *testing.T) {
	app := testApp(t)
	app.Gateway = intelligence.NewRecommendationService(nil, zap.NewNop(),
		repository.NewHistoryRecorder(app.History, zap.NewNop(), app.scenarioName))

	_, err := runCmd(t, app, "scenario", "save", "pico")
	require.NoError(t, err)

	out, err := runCmd(t, app, "recommend", "--scenario", "pico", "--apply")
	require.NoError(t, err)
	assert.Contains(t, out, "Error al contactar al servicio de IA.")
	assert.Contains(t, out, "Sin cambios")

	out, err = runCmd(t, app, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "pico")
	assert.Contains(t, out, "sin conexión")

	records, err := app.History.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].Degraded)
	assert.Equal(t, "pico", records[0].ScenarioName)
}

func TestHistory_Empty(t *testing.T) {
	out, err := runCmd(t, testApp(t), "history", "-n", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "Aún no se han solicitado recomendaciones.")
}

func TestScenario_Lifecycle(t *testing.T) {
	app := testApp(t)
	dir := t.TempDir()

	src := filepath.Join(dir, "pico.yaml")
	require.NoError(t, os.WriteFile(src, []byte("workload:\n  Lunes: 900\nsku_per_person: 30\n"), 0o644))

	out, err := runCmd(t, app, "scenario", "import", src)
	require.NoError(t, err)
	assert.Contains(t, out, "Escenario importado: pico")

	_, err = runCmd(t, app, "scenario", "save", "base")
	require.NoError(t, err)

	out, err = runCmd(t, app, "scenario", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "base")
	assert.Contains(t, out, "pico")
	assert.Contains(t, out, "3400")

	out, err = runCmd(t, app, "scenario", "show", "pico")
	require.NoError(t, err)
	assert.Contains(t, out, "Cada persona procesa 30 SKU por turno.")

	exported := filepath.Join(dir, "out.xlsx")
	_, err = runCmd(t, app, "scenario", "export", "pico", exported)
	require.NoError(t, err)
	plan, err := planfile.Load(exported)
	require.NoError(t, err)
	assert.Equal(t, 900, plan.Workload[domain.Lunes])
	assert.Equal(t, 30, plan.SKUPerPerson)

	_, err = runCmd(t, app, "scenario", "delete", "pico")
	require.NoError(t, err)
	_, err = runCmd(t, app, "scenario", "show", "pico")
	assert.ErrorContains(t, err, `scenario "pico" not found`)
	_, err = runCmd(t, app, "scenario", "delete", "pico")
	assert.ErrorContains(t, err, "not found")
}

func TestScenario_SaveCopiesAnotherScenario(t *testing.T) {
	app := testApp(t)
	require.NoError(t, app.Scenarios.Save(context.Background(),
		&domain.Scenario{Name: "a", Plan: testutil.NewTestPlan(testutil.WithSKUPerPerson(40))}))

	_, err := runCmd(t, app, "scenario", "save", "b", "--scenario", "a")
	require.NoError(t, err)

	b, err := app.Scenarios.GetByName(context.Background(), "b")
	require.NoError(t, err)
	assert.Equal(t, 40, b.Plan.SKUPerPerson)
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	app := &App{}

	out, err := runCmd(t, app, "config", "init", "--path", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)
	assert.FileExists(t, path)
	assert.Nil(t, app.Scenarios, "config init must not open the store")

	_, err = runCmd(t, app, "config", "init", "--path", path)
	assert.Error(t, err, "existing file is not overwritten")
}

func TestConfigShow_MasksSecrets(t *testing.T) {
	app := testApp(t)
	app.Config.LLM.APIKey = "sk-secret"

	out, err := runCmd(t, app, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "********")
	assert.NotContains(t, out, "sk-secret")
}

func TestRoot_NonInteractiveShowsHelp(t *testing.T) {
	app := testApp(t)
	app.IsInteractive = func() bool { return false }

	out, err := runCmd(t, app)
	require.NoError(t, err)
	assert.Contains(t, out, "Usage:")
	assert.Contains(t, out, "dashboard")
}

func TestServe_SingleInstance(t *testing.T) {
	app := testApp(t)
	ws := app.Workspace("", domain.DefaultPlan())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, app, ws, ln) }()

	url := fmt.Sprintf("http://%s/healthz", ln.Addr())
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	second, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	assert.ErrorIs(t, serve(context.Background(), app, ws, second), errAlreadyServing)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

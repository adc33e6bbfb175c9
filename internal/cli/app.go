package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/alexanderramin/staffplan/internal/config"
	"github.com/alexanderramin/staffplan/internal/db"
	"github.com/alexanderramin/staffplan/internal/domain"
	"github.com/alexanderramin/staffplan/internal/intelligence"
	"github.com/alexanderramin/staffplan/internal/llm"
	"github.com/alexanderramin/staffplan/internal/logging"
	"github.com/alexanderramin/staffplan/internal/metrics"
	"github.com/alexanderramin/staffplan/internal/planfile"
	"github.com/alexanderramin/staffplan/internal/repository"
	"github.com/alexanderramin/staffplan/internal/workspace"
)

// App holds the collaborators every command works against. Fields left
// nil by the caller are filled in by Open from the loaded configuration.
type App struct {
	Config     *config.Config
	ConfigPath string
	Log        *zap.Logger

	Scenarios repository.ScenarioRepo
	History   repository.RecommendationRepo
	UoW       db.UnitOfWork
	Gateway   intelligence.RecommendationService

	// IsInteractive reports whether stdin is a terminal.
	IsInteractive func() bool

	db *sql.DB

	mu sync.Mutex
	ws *workspace.Workspace
}

// Open loads the configuration, builds the logger, opens the scenario store
// and wires the recommendation gateway. When toFile is set, logs go to the
// configured log file rather than the terminal. Calling Open on an App
// whose collaborators are already set is a no-op.
func (a *App) Open(ctx context.Context, configPath string, toFile bool) error {
	if a.Gateway != nil && a.Scenarios != nil {
		return nil
	}

	if a.Config == nil {
		cfg, resolved, _, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		a.Config = cfg
		a.ConfigPath = resolved
	}

	if a.Log == nil {
		opts := logging.Options{
			Level:  a.Config.Log.Level,
			Format: a.Config.Log.Format,
			Output: a.Config.Log.Output,
		}
		if toFile && (opts.Output == "" || opts.Output == "stderr" || opts.Output == "stdout") {
			if err := os.MkdirAll(filepath.Dir(a.Config.Log.File), 0o755); err != nil {
				return fmt.Errorf("creating log directory: %w", err)
			}
			opts.Output = a.Config.Log.File
		}
		log, err := logging.New(opts)
		if err != nil {
			return err
		}
		a.Log = log
	}

	if a.Scenarios == nil {
		database, err := db.OpenDB(a.Config.Store.Path)
		if err != nil {
			return fmt.Errorf("opening store: %w", err)
		}
		a.db = database
		a.Scenarios = repository.NewSQLiteScenarioRepo(database)
		a.History = repository.NewSQLiteRecommendationRepo(database)
		a.UoW = db.NewSQLiteUnitOfWork(database)
	}

	if a.Gateway == nil {
		a.Gateway = a.newGateway(ctx)
	}
	return nil
}

// newGateway builds the LLM client named by the [llm] section. A disabled
// or misconfigured provider leaves the client nil so every request
// degrades instead of failing the command.
func (a *App) newGateway(ctx context.Context) intelligence.RecommendationService {
	cfg := a.Config.LLMConfig()

	observers := llm.MultiObserver{metrics.LLMObserver{}}
	if cfg.LogCalls {
		observers = append(observers, llm.NewLogObserver(a.Log))
	}

	var client llm.LLMClient
	if cfg.Enabled {
		c, err := llm.NewClient(ctx, cfg, observers)
		if err != nil {
			a.Log.Warn("recommendation provider unavailable", zap.String("provider", string(cfg.Provider)), zap.Error(err))
		} else {
			client = c
		}
	}

	outcomes := []intelligence.OutcomeObserver{metrics.OutcomeObserver{}}
	if a.History != nil {
		outcomes = append(outcomes, repository.NewHistoryRecorder(a.History, a.Log, a.scenarioName))
	}
	return intelligence.NewRecommendationService(client, a.Log, outcomes...)
}

// Close releases the store and flushes the logger.
func (a *App) Close() error {
	var errs []error
	if a.db != nil {
		errs = append(errs, a.db.Close())
		a.db = nil
	}
	if a.Log != nil {
		_ = a.Log.Sync()
	}
	return errors.Join(errs...)
}

// Workspace starts a fresh editing session on plan. The session is
// remembered so recommendation history can be attributed to its scenario.
func (a *App) Workspace(name string, plan domain.Plan) *workspace.Workspace {
	ws := workspace.New(plan, a.Gateway, workspace.WithLogger(a.Log))
	if name != "" {
		ws.SetScenario(name)
	}
	a.mu.Lock()
	a.ws = ws
	a.mu.Unlock()
	return ws
}

func (a *App) scenarioName() string {
	a.mu.Lock()
	ws := a.ws
	a.mu.Unlock()
	if ws == nil {
		return ""
	}
	return ws.Snapshot().Scenario
}

// planSource is the --plan / --scenario pair shared by plan-reading commands.
type planSource struct {
	File     string
	Scenario string
}

// resolve returns the plan named by src, or the default plan when neither
// flag is set, together with the scenario name it came from.
func (src planSource) resolve(ctx context.Context, app *App) (domain.Plan, string, error) {
	switch {
	case src.File != "" && src.Scenario != "":
		return domain.Plan{}, "", errors.New("--plan and --scenario are mutually exclusive")
	case src.File != "":
		plan, err := planfile.Load(src.File)
		if err != nil {
			return domain.Plan{}, "", err
		}
		return plan, "", nil
	case src.Scenario != "":
		s, err := app.Scenarios.GetByName(ctx, src.Scenario)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return domain.Plan{}, "", fmt.Errorf("scenario %q not found", src.Scenario)
			}
			return domain.Plan{}, "", err
		}
		return s.Plan, s.Name, nil
	default:
		return domain.DefaultPlan(), "", nil
	}
}

package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alexanderramin/staffplan/internal/db"
	"github.com/alexanderramin/staffplan/internal/domain"
	"github.com/alexanderramin/staffplan/internal/intelligence"
)

// historyTimeLayout has a fixed width so stored timestamps sort lexically.
const historyTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// RecommendationRepo stores the history of recommendation responses.
type RecommendationRepo interface {
	Append(ctx context.Context, rec *domain.RecommendationRecord) error
	// ListRecent returns the newest records first.
	ListRecent(ctx context.Context, limit int) ([]*domain.RecommendationRecord, error)
	DeleteForScenario(ctx context.Context, scenario string) (int64, error)
}

// SQLiteRecommendationRepo implements RecommendationRepo using a SQLite database.
type SQLiteRecommendationRepo struct {
	db db.DBTX
}

func NewSQLiteRecommendationRepo(conn db.DBTX) *SQLiteRecommendationRepo {
	return &SQLiteRecommendationRepo{db: conn}
}

func (r *SQLiteRecommendationRepo) Append(ctx context.Context, rec *domain.RecommendationRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.RequestedAt.IsZero() {
		rec.RequestedAt = time.Now().UTC()
	}
	rec.SuggestionCount = len(rec.Response.Suggestions)
	rec.Alert = rec.Response.OperationAlert

	body, err := json.Marshal(rec.Response)
	if err != nil {
		return fmt.Errorf("encoding response: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO recommendations (id, scenario_name, requested_at, degraded, alert, suggestion_count, response_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.ScenarioName, rec.RequestedAt.UTC().Format(historyTimeLayout),
		boolToInt(rec.Degraded), rec.Alert, rec.SuggestionCount, string(body),
	)
	if err != nil {
		return fmt.Errorf("inserting recommendation: %w", err)
	}
	return nil
}

func (r *SQLiteRecommendationRepo) ListRecent(ctx context.Context, limit int) ([]*domain.RecommendationRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, scenario_name, requested_at, degraded, alert, suggestion_count, response_json
		FROM recommendations ORDER BY requested_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing recommendations: %w", err)
	}
	defer rows.Close()

	var out []*domain.RecommendationRecord
	for rows.Next() {
		var (
			rec       domain.RecommendationRecord
			requested string
			degraded  int
			body      string
		)
		if err := rows.Scan(&rec.ID, &rec.ScenarioName, &requested, &degraded, &rec.Alert, &rec.SuggestionCount, &body); err != nil {
			return nil, fmt.Errorf("scanning recommendation: %w", err)
		}
		rec.RequestedAt, _ = time.Parse(historyTimeLayout, requested)
		rec.Degraded = intToBool(degraded)
		if err := json.Unmarshal([]byte(body), &rec.Response); err != nil {
			return nil, fmt.Errorf("decoding recommendation %s: %w", rec.ID, err)
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}

func (r *SQLiteRecommendationRepo) DeleteForScenario(ctx context.Context, scenario string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM recommendations WHERE scenario_name = ?`, scenario)
	if err != nil {
		return 0, fmt.Errorf("deleting recommendations: %w", err)
	}
	return res.RowsAffected()
}

// HistoryRecorder appends every recommendation outcome to a
// RecommendationRepo. It satisfies intelligence.OutcomeObserver. Storage
// failures are logged and never reach the operator.
type HistoryRecorder struct {
	repo     RecommendationRepo
	log      *zap.Logger
	scenario func() string
}

// NewHistoryRecorder records into repo. scenario, when non-nil, names the
// scenario the current plan was loaded from.
func NewHistoryRecorder(repo RecommendationRepo, log *zap.Logger, scenario func() string) *HistoryRecorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &HistoryRecorder{repo: repo, log: log, scenario: scenario}
}

func (h *HistoryRecorder) OnRecommendation(ctx context.Context, o intelligence.Outcome, resp *domain.AIResponse) {
	if resp == nil {
		return
	}
	rec := &domain.RecommendationRecord{
		Degraded: o == intelligence.OutcomeDegraded,
		Response: *resp,
	}
	if h.scenario != nil {
		rec.ScenarioName = h.scenario()
	}
	if err := h.repo.Append(context.WithoutCancel(ctx), rec); err != nil {
		h.log.Warn("recording recommendation history", zap.Error(err))
	}
}

// DeleteScenario removes a scenario and its recommendation history in one
// transaction.
func DeleteScenario(ctx context.Context, uow db.UnitOfWork, name string) error {
	return uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := NewSQLiteScenarioRepo(tx).Delete(ctx, name); err != nil {
			return err
		}
		_, err := NewSQLiteRecommendationRepo(tx).DeleteForScenario(ctx, name)
		return err
	})
}

package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/staffplan/internal/db"
	"github.com/alexanderramin/staffplan/internal/domain"
)

// ScenarioRepo stores named plans.
type ScenarioRepo interface {
	// Save inserts a scenario or replaces the plan of the one with the same name.
	Save(ctx context.Context, s *domain.Scenario) error
	GetByName(ctx context.Context, name string) (*domain.Scenario, error)
	List(ctx context.Context) ([]*domain.Scenario, error)
	Delete(ctx context.Context, name string) error
}

// SQLiteScenarioRepo implements ScenarioRepo using a SQLite database.
type SQLiteScenarioRepo struct {
	db db.DBTX
}

func NewSQLiteScenarioRepo(conn db.DBTX) *SQLiteScenarioRepo {
	return &SQLiteScenarioRepo{db: conn}
}

func (r *SQLiteScenarioRepo) Save(ctx context.Context, s *domain.Scenario) error {
	s.Name = strings.TrimSpace(s.Name)
	if s.Name == "" {
		return errors.New("scenario name is required")
	}
	planJSON, err := json.Marshal(s.Plan)
	if err != nil {
		return fmt.Errorf("encoding plan: %w", err)
	}

	now := time.Now().UTC()
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now

	query := `INSERT INTO scenarios (id, name, plan_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET plan_json = excluded.plan_json, updated_at = excluded.updated_at
		RETURNING id, created_at`
	var created string
	err = r.db.QueryRowContext(ctx, query,
		s.ID, s.Name, string(planJSON),
		s.CreatedAt.Format(time.RFC3339), s.UpdatedAt.Format(time.RFC3339),
	).Scan(&s.ID, &created)
	if err != nil {
		return fmt.Errorf("saving scenario %q: %w", s.Name, err)
	}
	if t, err := time.Parse(time.RFC3339, created); err == nil {
		s.CreatedAt = t
	}
	return nil
}

func (r *SQLiteScenarioRepo) GetByName(ctx context.Context, name string) (*domain.Scenario, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, plan_json, created_at, updated_at FROM scenarios WHERE name = ?`,
		strings.TrimSpace(name))
	s, err := scanScenario(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("scenario %q: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning scenario: %w", err)
	}
	return s, nil
}

func (r *SQLiteScenarioRepo) List(ctx context.Context) ([]*domain.Scenario, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, plan_json, created_at, updated_at FROM scenarios ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing scenarios: %w", err)
	}
	defer rows.Close()

	var out []*domain.Scenario
	for rows.Next() {
		s, err := scanScenario(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning scenario: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLiteScenarioRepo) Delete(ctx context.Context, name string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM scenarios WHERE name = ?`, strings.TrimSpace(name))
	if err != nil {
		return fmt.Errorf("deleting scenario: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("scenario %q: %w", name, ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanScenario(row rowScanner) (*domain.Scenario, error) {
	var (
		s                domain.Scenario
		planJSON         string
		created, updated string
	)
	if err := row.Scan(&s.ID, &s.Name, &planJSON, &created, &updated); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(planJSON), &s.Plan); err != nil {
		return nil, fmt.Errorf("decoding plan of %q: %w", s.Name, err)
	}
	s.Plan = s.Plan.Normalize()
	s.CreatedAt, _ = time.Parse(time.RFC3339, created)
	s.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
	return &s, nil
}

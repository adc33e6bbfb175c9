package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/alexanderramin/staffplan/internal/db"
)

// FailingUoW runs transactions against DB but fails every write that
// touches Table, so multi-table operations can be checked for rollback.
// Reads pass through. Statements executed inside the transaction are
// recorded in order, failed ones included.
type FailingUoW struct {
	DB    *sql.DB
	Table string
	Err   error

	mu    sync.Mutex
	execs []string
}

func (u *FailingUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	tx, err := u.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	if fnErr := fn(ctx, &failingTx{DBTX: tx, uow: u}); fnErr != nil {
		_ = tx.Rollback()
		return fnErr
	}
	return tx.Commit()
}

// Execs returns the statements seen so far, whitespace-collapsed.
func (u *FailingUoW) Execs() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string(nil), u.execs...)
}

type failingTx struct {
	db.DBTX
	uow *FailingUoW
}

func (f *failingTx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	q := strings.Join(strings.Fields(query), " ")
	f.uow.mu.Lock()
	f.uow.execs = append(f.uow.execs, q)
	f.uow.mu.Unlock()

	if f.uow.Table != "" && strings.Contains(q, " "+f.uow.Table+" ") {
		return nil, f.uow.Err
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}

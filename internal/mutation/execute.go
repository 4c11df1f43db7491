package mutation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
)

// Querier is the subset of database/sql used by the executor. Satisfied by
// *sql.Tx and *sql.DB.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxBeginner starts transactions for mutation batches.
type TxBeginner interface {
	Begin(ctx context.Context) (*sql.Tx, error)
}

// Executor runs planned statement sets against the store.
type Executor struct {
	store  TxBeginner
	logger *slog.Logger
}

// NewExecutor creates an Executor writing through store.
func NewExecutor(store TxBeginner, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{store: store, logger: logger}
}

// Execute runs the planned statements sequentially inside one transaction
// and returns one outcome per executable statement, in planner order.
// Unknown statements never run. A dance insert whose title
// already exists is skipped as a duplicate; that skip is the idempotency
// guarantee of the whole pipeline. Every statement is attempted and
// individually recorded; the transaction commits only if none failed, so a
// failed dance insert cannot leave newly created reference rows behind.
func (e *Executor) Execute(ctx context.Context, statements []Statement) []Outcome {
	outcomes := make([]Outcome, 0, len(statements))

	tx, err := e.store.Begin(ctx)
	if err != nil {
		for _, stmt := range statements {
			if stmt.Kind == KindUnknown {
				continue
			}
			outcomes = append(outcomes, Outcome{
				Statement: stmt,
				Status:    StatusFailed,
				Detail:    fmt.Sprintf("begin transaction: %v", err),
			})
		}
		return outcomes
	}

	failed := false
	for _, stmt := range statements {
		if stmt.Kind == KindUnknown {
			// Classification already excluded these; they get no
			// outcome and never appear in the executed summary.
			continue
		}
		outcome := e.executeOne(ctx, tx, stmt)
		if outcome.Status == StatusFailed {
			failed = true
		}
		outcomes = append(outcomes, outcome)
	}

	if failed {
		if err := tx.Rollback(); err != nil {
			e.logger.Error("rollback failed", "error", err)
		}
		return markRolledBack(outcomes)
	}

	if err := tx.Commit(); err != nil {
		e.logger.Error("commit failed", "error", err)
		for i := range outcomes {
			if outcomes[i].Status == StatusExecuted {
				outcomes[i].Status = StatusFailed
				outcomes[i].Detail = fmt.Sprintf("commit: %v", err)
			}
		}
	}

	return outcomes
}

func (e *Executor) executeOne(ctx context.Context, tx Querier, stmt Statement) Outcome {
	if stmt.Kind == KindDanceInsert && stmt.SemanticKey != "" {
		exists, err := danceExists(ctx, tx, stmt.SemanticKey)
		if err != nil {
			return Outcome{
				Statement: stmt,
				Status:    StatusFailed,
				Detail:    fmt.Sprintf("duplicate check: %v", err),
			}
		}
		if exists {
			e.logger.Info("skipping duplicate dance", "title", stmt.SemanticKey)
			return Outcome{
				Statement: stmt,
				Status:    StatusSkippedDuplicate,
				Detail:    fmt.Sprintf("dance %q already exists", stmt.SemanticKey),
			}
		}
	}

	result, err := tx.ExecContext(ctx, stmt.RawSQL)
	if err != nil {
		e.logger.Warn("statement failed", "kind", stmt.Kind, "error", err)
		return Outcome{
			Statement: stmt,
			Status:    StatusFailed,
			Detail:    err.Error(),
		}
	}

	detail := "inserted"
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		// INSERT OR IGNORE hit an existing row
		detail = "already present"
	}

	return Outcome{
		Statement: stmt,
		Status:    StatusExecuted,
		Detail:    detail,
	}
}

func danceExists(ctx context.Context, q Querier, title string) (bool, error) {
	var id int64
	err := q.QueryRowContext(ctx,
		`SELECT id FROM dances WHERE title = ?`, title).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func markRolledBack(outcomes []Outcome) []Outcome {
	for i := range outcomes {
		if outcomes[i].Status == StatusExecuted {
			outcomes[i].Status = StatusFailed
			outcomes[i].Detail = "rolled back: another statement in the block failed"
		}
	}
	return outcomes
}

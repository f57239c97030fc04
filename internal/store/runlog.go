package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/netusage/internal/db"
	"github.com/sells-group/netusage/internal/model"
)

// Import log statuses.
const (
	StatusRunning  = "running"
	StatusComplete = "complete"
	StatusFailed   = "failed"
)

// RunEntry represents a row in import_log.
type RunEntry struct {
	ID          int64      `json:"id"`
	RunID       string     `json:"run_id"`
	Importer    string     `json:"importer"`
	Year        int        `json:"year"`
	Month       int        `json:"month"`
	Status      string     `json:"status"`
	Inserted    int64      `json:"inserted"`
	Updated     int64      `json:"updated"`
	Skipped     int64      `json:"skipped"`
	Error       string     `json:"error,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// RunCounts is the record tally passed to Complete and Fail.
type RunCounts struct {
	Inserted int64
	Updated  int64
	Skipped  int64
}

// RunLog provides read/write access to the import_log table.
type RunLog struct {
	pool db.Pool
}

// NewRunLog creates a RunLog backed by the given pool.
func NewRunLog(pool db.Pool) *RunLog {
	return &RunLog{pool: pool}
}

// Start records the beginning of one importer execution and returns its id.
func (l *RunLog) Start(ctx context.Context, runID, importer string, p model.Period) (int64, error) {
	var id int64
	err := l.pool.QueryRow(ctx,
		`INSERT INTO import_log (run_id, importer, year, month, status, started_at)
		 VALUES ($1, $2, $3, $4, 'running', now()) RETURNING id`,
		runID, importer, p.Year, p.Month,
	).Scan(&id)
	if err != nil {
		return 0, eris.Wrapf(err, "runlog: start %s", importer)
	}
	return id, nil
}

// Complete marks an execution as finished.
func (l *RunLog) Complete(ctx context.Context, id int64, c RunCounts) error {
	_, err := l.pool.Exec(ctx,
		`UPDATE import_log
		 SET status = 'complete', completed_at = now(), inserted = $1, updated = $2, skipped = $3
		 WHERE id = $4`,
		c.Inserted, c.Updated, c.Skipped, id,
	)
	if err != nil {
		return eris.Wrapf(err, "runlog: complete %d", id)
	}
	return nil
}

// Fail marks an execution as failed, keeping the counts reached before the failure.
func (l *RunLog) Fail(ctx context.Context, id int64, c RunCounts, errMsg string) error {
	_, err := l.pool.Exec(ctx,
		`UPDATE import_log
		 SET status = 'failed', completed_at = now(), inserted = $1, updated = $2, skipped = $3, error = $4
		 WHERE id = $5`,
		c.Inserted, c.Updated, c.Skipped, errMsg, id,
	)
	if err != nil {
		return eris.Wrapf(err, "runlog: fail %d", id)
	}
	return nil
}

// List returns the most recent entries first. limit <= 0 returns all.
func (l *RunLog) List(ctx context.Context, limit int) ([]RunEntry, error) {
	query := `SELECT id, run_id::text, importer, year, month, status, inserted, updated, skipped, error, started_at, completed_at
		 FROM import_log ORDER BY started_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	rows, err := l.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "runlog: list")
	}
	defer rows.Close()

	var entries []RunEntry
	for rows.Next() {
		var e RunEntry
		var errStr *string
		if err := rows.Scan(&e.ID, &e.RunID, &e.Importer, &e.Year, &e.Month, &e.Status,
			&e.Inserted, &e.Updated, &e.Skipped, &errStr, &e.StartedAt, &e.CompletedAt); err != nil {
			return nil, eris.Wrap(err, "runlog: scan entry")
		}
		if errStr != nil {
			e.Error = *errStr
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

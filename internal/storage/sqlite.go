package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a run id is unknown.
var ErrNotFound = errors.New("not found")

// timeLayout is fixed width so stored timestamps sort chronologically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates or opens a SQLite database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			mode TEXT,
			source_taxon TEXT,
			target_taxon TEXT,
			started_at TEXT,
			finished_at TEXT,
			status TEXT,
			output_path TEXT,
			counters JSON,
			error TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS rejections (
			run_id TEXT,
			bucket TEXT,
			subject TEXT,
			object TEXT,
			evidence TEXT,
			provided_by TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS skips (
			run_id TEXT,
			reason TEXT,
			subject TEXT,
			target TEXT,
			object TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_rejections_run ON rejections(run_id);`,
		`CREATE INDEX IF NOT EXISTS idx_skips_run ON skips(run_id);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// --- RunStore Implementation ---

func (s *SQLiteStore) BeginRun(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	run.Status = "running"

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, mode, source_taxon, target_taxon, started_at, status)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			mode=excluded.mode,
			source_taxon=excluded.source_taxon,
			target_taxon=excluded.target_taxon,
			started_at=excluded.started_at,
			status=excluded.status
	`, run.ID, run.Mode, run.SourceTaxon, run.TargetTaxon, run.StartedAt.UTC().Format(timeLayout), run.Status)
	return err
}

func (s *SQLiteStore) FinishRun(ctx context.Context, run *Run) error {
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now().UTC()
	}
	counters, _ := json.Marshal(run.Counters)

	res, err := s.db.ExecContext(ctx, `
		UPDATE runs SET finished_at = ?, status = ?, output_path = ?, counters = ?, error = ?
		WHERE id = ?
	`, run.FinishedAt.UTC().Format(timeLayout), run.Status, run.OutputPath, counters, run.Error, run.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run %s: %w", run.ID, ErrNotFound)
	}
	return nil
}

const runColumns = "id, mode, source_taxon, target_taxon, started_at, finished_at, status, output_path, counters, error"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		r                                  Run
		started, finished, output, errText sql.NullString
		counters                           []byte
	)
	if err := row.Scan(&r.ID, &r.Mode, &r.SourceTaxon, &r.TargetTaxon, &started, &finished, &r.Status, &output, &counters, &errText); err != nil {
		return nil, err
	}
	r.StartedAt, _ = time.Parse(timeLayout, started.String)
	if finished.Valid {
		r.FinishedAt, _ = time.Parse(timeLayout, finished.String)
	}
	r.OutputPath = output.String
	r.Error = errText.String
	if len(counters) > 0 {
		_ = json.Unmarshal(counters, &r.Counters)
	}
	return &r, nil
}

func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+runColumns+" FROM runs WHERE id = ?", id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	return r, err
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, "SELECT "+runColumns+" FROM runs ORDER BY started_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// --- DiagnosticsStore Implementation ---

func (s *SQLiteStore) SaveRejections(ctx context.Context, runID string, items []Rejection) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO rejections (run_id, bucket, subject, object, evidence, provided_by)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range items {
		if _, err := stmt.ExecContext(ctx, runID, r.Bucket, r.Subject, r.Object, r.Evidence, r.ProvidedBy); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) SaveSkips(ctx context.Context, runID string, items []Skip) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO skips (run_id, reason, subject, target, object) VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, sk := range items {
		if _, err := stmt.ExecContext(ctx, runID, sk.Reason, sk.Subject, sk.Target, sk.Object); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) RejectionCounts(ctx context.Context, runID string) (map[string]int, error) {
	return s.countBy(ctx, "SELECT bucket, COUNT(*) FROM rejections WHERE run_id = ? GROUP BY bucket", runID)
}

func (s *SQLiteStore) SkipCounts(ctx context.Context, runID string) (map[string]int, error) {
	return s.countBy(ctx, "SELECT reason, COUNT(*) FROM skips WHERE run_id = ? GROUP BY reason", runID)
}

func (s *SQLiteStore) countBy(ctx context.Context, query, runID string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var (
			key string
			n   int
		)
		if err := rows.Scan(&key, &n); err != nil {
			return nil, err
		}
		out[key] = n
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Skips(ctx context.Context, runID string, limit int) ([]Skip, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, "SELECT reason, subject, target, object FROM skips WHERE run_id = ? ORDER BY rowid LIMIT ?", runID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Skip
	for rows.Next() {
		var sk Skip
		if err := rows.Scan(&sk.Reason, &sk.Subject, &sk.Target, &sk.Object); err != nil {
			return nil, err
		}
		out = append(out, sk)
	}
	return out, rows.Err()
}

// Package sqlite provides the SQLite-backed activity store.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/strideapp/stride/internal/models"
	"github.com/strideapp/stride/internal/store"
	_ "modernc.org/sqlite"
)

// querier is satisfied by both *sql.DB and *sql.Tx so the same statement
// code serves direct calls and Transact callbacks.
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// Store provides access to the Stride SQLite database.
type Store struct {
	db *sql.DB
	q  querier
}

// New opens (creating if necessary) the database at dbPath and runs
// migrations.
func New(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// WAL mode for better concurrency between the read and write paths.
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// SQLite only supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db, q: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// migrate runs idempotent schema migrations.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS activities (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		category TEXT,
		description TEXT NOT NULL,
		tags TEXT,
		begin DATETIME NOT NULL,
		end DATETIME,
		duration_sec INTEGER,
		status TEXT NOT NULL,
		parent_id TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_activities_status ON activities(status);
	CREATE INDEX IF NOT EXISTS idx_activities_begin ON activities(begin);
	CREATE INDEX IF NOT EXISTS idx_activities_parent_id ON activities(parent_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

const activityColumns = `id, kind, category, description, tags, begin, end, duration_sec, status, parent_id`

func (s *Store) Insert(a *models.Activity) (string, error) {
	cp := *a
	if cp.ID == "" {
		cp.ID = models.NewID()
	}

	var tagsJSON any
	if len(cp.Tags) > 0 {
		b, err := json.Marshal(models.NormalizeTags(cp.Tags))
		if err != nil {
			return "", fmt.Errorf("marshal tags: %w", err)
		}
		tagsJSON = string(b)
	}

	var end any
	if cp.End != nil {
		end = cp.End.UTC()
	}
	var durationSec any
	if cp.DurationSec != nil {
		durationSec = *cp.DurationSec
	}

	_, err := s.q.Exec(
		`INSERT INTO activities (`+activityColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		cp.ID, cp.Kind, nullIfEmpty(cp.Category), cp.Description, tagsJSON,
		cp.Begin.UTC(), end, durationSec, cp.Status, nullIfEmpty(cp.ParentID),
	)
	if err != nil {
		return "", fmt.Errorf("insert activity: %w", err)
	}
	return cp.ID, nil
}

func (s *Store) Get(id string) (*models.Activity, error) {
	row := s.q.QueryRow(`SELECT `+activityColumns+` FROM activities WHERE id = ?`, id)
	a, err := scanActivity(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query activity: %w", err)
	}
	return a, nil
}

func (s *Store) Update(id string, mut store.Mutation) error {
	var sets []string
	var args []any

	if mut.Category != nil {
		sets = append(sets, "category = ?")
		args = append(args, nullIfEmpty(*mut.Category))
	}
	if mut.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *mut.Description)
	}
	if mut.Tags != nil {
		var tagsJSON any
		if normalized := models.NormalizeTags(*mut.Tags); len(normalized) > 0 {
			b, err := json.Marshal(normalized)
			if err != nil {
				return fmt.Errorf("marshal tags: %w", err)
			}
			tagsJSON = string(b)
		}
		sets = append(sets, "tags = ?")
		args = append(args, tagsJSON)
	}
	if mut.Begin != nil {
		sets = append(sets, "begin = ?")
		args = append(args, mut.Begin.UTC())
	}
	if mut.End != nil {
		sets = append(sets, "end = ?")
		args = append(args, mut.End.UTC())
	}
	if mut.DurationSec != nil {
		sets = append(sets, "duration_sec = ?")
		args = append(args, *mut.DurationSec)
	}
	if mut.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *mut.Status)
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	result, err := s.q.Exec(
		`UPDATE activities SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...,
	)
	if err != nil {
		return fmt.Errorf("update activity: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) FindActiveWork() (*models.Activity, error) {
	row := s.q.QueryRow(
		`SELECT `+activityColumns+` FROM activities WHERE kind = ? AND status = ? LIMIT 1`,
		models.KindWork, models.StatusActive,
	)
	a, err := scanActivity(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query active work: %w", err)
	}
	return a, nil
}

func (s *Store) FindOpenIntermission(parentID string) (*models.Activity, error) {
	row := s.q.QueryRow(
		`SELECT `+activityColumns+` FROM activities WHERE kind = ? AND parent_id = ? AND status = ? LIMIT 1`,
		models.KindIntermission, parentID, models.StatusActive,
	)
	a, err := scanActivity(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query open intermission: %w", err)
	}
	return a, nil
}

func (s *Store) FindHeldWork(id string) (*models.Activity, error) {
	row := s.q.QueryRow(
		`SELECT `+activityColumns+` FROM activities WHERE id = ? AND kind = ? AND status = ?`,
		id, models.KindWork, models.StatusHeld,
	)
	a, err := scanActivity(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query held work: %w", err)
	}
	return a, nil
}

func (s *Store) ListHeldWork() ([]models.Activity, error) {
	rows, err := s.q.Query(
		`SELECT `+activityColumns+` FROM activities WHERE kind = ? AND status = ? ORDER BY begin, id`,
		models.KindWork, models.StatusHeld,
	)
	if err != nil {
		return nil, fmt.Errorf("query held work: %w", err)
	}
	return collectActivities(rows)
}

func (s *Store) ScanRange(start, end time.Time) ([]models.Activity, error) {
	rows, err := s.q.Query(
		`SELECT `+activityColumns+` FROM activities WHERE begin >= ? AND begin < ? ORDER BY begin, id`,
		start.UTC(), end.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("query range: %w", err)
	}
	return collectActivities(rows)
}

// Transact runs fn inside a single database transaction. On any error the
// transaction is rolled back and none of the callback's writes persist.
func (s *Store) Transact(fn func(tx store.Store) error) error {
	if _, inTx := s.q.(*sql.Tx); inTx {
		return fn(s)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&Store{db: s.db, q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// --- row scanning ---

type rowScanner interface {
	Scan(dest ...any) error
}

func scanActivity(row rowScanner) (*models.Activity, error) {
	var a models.Activity
	var category, tagsJSON, parentID sql.NullString
	var end sql.NullTime
	var durationSec sql.NullInt64
	var begin time.Time

	err := row.Scan(&a.ID, &a.Kind, &category, &a.Description, &tagsJSON,
		&begin, &end, &durationSec, &a.Status, &parentID)
	if err != nil {
		return nil, err
	}

	a.Begin = begin
	if category.Valid {
		a.Category = category.String
	}
	if tagsJSON.Valid && tagsJSON.String != "" {
		if err := json.Unmarshal([]byte(tagsJSON.String), &a.Tags); err != nil {
			return nil, fmt.Errorf("unmarshal tags: %w", err)
		}
	}
	if end.Valid {
		t := end.Time
		a.End = &t
	}
	if durationSec.Valid {
		d := durationSec.Int64
		a.DurationSec = &d
	}
	if parentID.Valid {
		a.ParentID = parentID.String
	}
	return &a, nil
}

func collectActivities(rows *sql.Rows) ([]models.Activity, error) {
	defer rows.Close()

	var out []models.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"covidboard/internal/core"
	"covidboard/internal/dataset"

	_ "modernc.org/sqlite"
)

// ErrNoSnapshot is returned by Load when nothing has been imported yet.
var ErrNoSnapshot = errors.New("no snapshot imported")

// SQLiteRepository stores an imported copy of the patient table.
type SQLiteRepository struct {
	db *sql.DB
}

var _ dataset.Source = (*SQLiteRepository)(nil)

// SnapshotInfo describes the last import.
type SnapshotInfo struct {
	Source     string
	Rows       int
	ImportedAt time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ReplaceSnapshot atomically swaps the stored rows for the contents of t.
func (r *SQLiteRepository) ReplaceSnapshot(ctx context.Context, t *core.Table, source string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM patients`); err != nil {
		return fmt.Errorf("clear patients: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO patients (
		row_num, patient_id, government_id, diagnosed_date, age, gender,
		detected_city, detected_district, detected_state, nationality,
		current_status, status_change_date, notes, extra
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := 0; i < t.Len(); i++ {
		rec := t.At(i)
		extra := []byte("{}")
		if len(rec.Extra) > 0 {
			if extra, err = json.Marshal(rec.Extra); err != nil {
				return fmt.Errorf("marshal extra (row %d): %w", i, err)
			}
		}
		if _, err := stmt.ExecContext(ctx,
			i, rec.ID, rec.GovernmentID, rec.DiagnosedDate, rec.Age, rec.Gender,
			rec.City, rec.District, rec.State, rec.Nationality,
			string(rec.Status), rec.StatusChangeDate, rec.Notes, string(extra),
		); err != nil {
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO snapshot_meta (id, source, row_count, imported_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET source = excluded.source, row_count = excluded.row_count, imported_at = excluded.imported_at`,
		source, t.Len(), time.Now().Unix()); err != nil {
		return fmt.Errorf("write snapshot meta: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Snapshot stored in SQLite", "source", source, "rows", t.Len())
	return nil
}

// Info returns metadata about the last import.
func (r *SQLiteRepository) Info(ctx context.Context) (SnapshotInfo, error) {
	var (
		info     SnapshotInfo
		imported int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT source, row_count, imported_at FROM snapshot_meta WHERE id = 1`,
	).Scan(&info.Source, &info.Rows, &imported)
	if errors.Is(err, sql.ErrNoRows) {
		return SnapshotInfo{}, ErrNoSnapshot
	}
	if err != nil {
		return SnapshotInfo{}, fmt.Errorf("read snapshot meta: %w", err)
	}
	info.ImportedAt = time.Unix(imported, 0).UTC()
	return info, nil
}

// Count returns the number of stored rows.
func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM patients`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count patients: %w", err)
	}
	return n, nil
}

var knownColumns = []string{
	dataset.ColID, dataset.ColGovernmentID, dataset.ColDiagnosedDate, dataset.ColAge,
	dataset.ColGender, dataset.ColCity, dataset.ColDistrict, dataset.ColState,
	dataset.ColNationality, dataset.ColStatus, dataset.ColStatusChangeDate, dataset.ColNotes,
}

// Load implements dataset.Source. Rows go through the same validation as a
// CSV file.
func (r *SQLiteRepository) Load(ctx context.Context) (*core.Table, error) {
	if _, err := r.Info(ctx); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `SELECT
		patient_id, government_id, diagnosed_date, age, gender,
		detected_city, detected_district, detected_state, nationality,
		current_status, status_change_date, notes, extra
		FROM patients ORDER BY row_num`)
	if err != nil {
		return nil, fmt.Errorf("query patients: %w", err)
	}
	defer rows.Close()

	var (
		fixed  [][]string
		extras []map[string]string
	)
	extraCols := map[string]struct{}{}
	for rows.Next() {
		v := make([]string, len(knownColumns))
		var extraJSON string
		if err := rows.Scan(&v[0], &v[1], &v[2], &v[3], &v[4], &v[5], &v[6], &v[7],
			&v[8], &v[9], &v[10], &v[11], &extraJSON); err != nil {
			return nil, fmt.Errorf("scan patient: %w", err)
		}
		var extra map[string]string
		if err := json.Unmarshal([]byte(extraJSON), &extra); err != nil {
			return nil, fmt.Errorf("decode extra (row %d): %w", len(fixed), err)
		}
		for k := range extra {
			extraCols[k] = struct{}{}
		}
		fixed = append(fixed, v)
		extras = append(extras, extra)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate patients: %w", err)
	}

	extraNames := make([]string, 0, len(extraCols))
	for k := range extraCols {
		extraNames = append(extraNames, k)
	}
	sort.Strings(extraNames)

	header := append(append([]string(nil), knownColumns...), extraNames...)
	values := make([][]string, len(fixed))
	for i, v := range fixed {
		row := v
		for _, k := range extraNames {
			row = append(row, extras[i][k])
		}
		values[i] = row
	}

	t, err := dataset.FromValues(header, values)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	slog.InfoContext(ctx, "Dataset loaded from SQLite snapshot", "rows", t.Len())
	return t, nil
}

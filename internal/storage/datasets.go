package storage

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/grantflow/internal/common"
	"github.com/Veraticus/grantflow/internal/dataset"
)

// DatasetInfo describes a stored table without its rows.
type DatasetInfo struct {
	ImportedAt time.Time
	Name       string
	Source     string
	Checksum   string
	Columns    []string
	Rows       int
}

// SaveOption configures a SaveTable call.
type SaveOption func(*saveConfig)

type saveConfig struct {
	progress func(saved int)
}

// WithProgress registers a callback invoked with the running row count while
// rows are written.
func WithProgress(fn func(saved int)) SaveOption {
	return func(c *saveConfig) {
		c.progress = fn
	}
}

const progressEvery = 1000

// SaveTable replaces the stored copy of t.Name with t. Row order is kept, so
// a table loaded back yields the same ledger sequence numbers.
func (s *SQLiteStore) SaveTable(ctx context.Context, t *dataset.Table, source string, opts ...SaveOption) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTable(t); err != nil {
		return err
	}
	cfg := saveConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	columns, err := json.Marshal(t.Columns)
	if err != nil {
		return fmt.Errorf("failed to encode columns: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM dataset_rows WHERE dataset = ?`, t.Name); err != nil {
		return fmt.Errorf("failed to clear rows of %s: %w", t.Name, err)
	}
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO datasets (name, columns, source, row_count, checksum, imported_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			columns = excluded.columns,
			source = excluded.source,
			row_count = excluded.row_count,
			checksum = excluded.checksum,
			imported_at = excluded.imported_at
	`, t.Name, string(columns), source, t.Len(), Checksum(t), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to save dataset %s: %w", t.Name, err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO dataset_rows (dataset, seq, cells) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare row insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, row := range t.Rows {
		cells, encErr := json.Marshal(row)
		if encErr != nil {
			err = fmt.Errorf("failed to encode row %d: %w", i, encErr)
			return err
		}
		if _, err = stmt.ExecContext(ctx, t.Name, i, string(cells)); err != nil {
			return fmt.Errorf("failed to insert row %d of %s: %w", i, t.Name, err)
		}
		if cfg.progress != nil && (i+1)%progressEvery == 0 {
			cfg.progress(i + 1)
		}
	}
	if cfg.progress != nil {
		cfg.progress(t.Len())
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit dataset %s: %w", t.Name, err)
	}

	s.logger.Info("Saved dataset", "name", t.Name, "rows", t.Len(), "source", source)
	return nil
}

// LoadTable reads a stored table back. It returns an error wrapping
// common.ErrNotFound when no table of that name was imported.
func (s *SQLiteStore) LoadTable(ctx context.Context, name string) (*dataset.Table, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	info, err := s.tableInfo(ctx, s.db, name)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT cells FROM dataset_rows WHERE dataset = ? ORDER BY seq`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to query rows of %s: %w", name, err)
	}
	defer func() { _ = rows.Close() }()

	t := &dataset.Table{Name: name, Columns: info.Columns, Rows: make([][]string, 0, info.Rows)}
	for rows.Next() {
		var cells string
		if err := rows.Scan(&cells); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		var row []string
		if err := json.Unmarshal([]byte(cells), &row); err != nil {
			return nil, fmt.Errorf("%w: row of %s: %w", common.ErrDatabaseCorrupted, name, err)
		}
		t.Append(row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rows of %s: %w", name, err)
	}
	if t.Len() != info.Rows {
		return nil, fmt.Errorf("%w: %s has %d rows, expected %d", common.ErrDatabaseCorrupted, name, t.Len(), info.Rows)
	}
	return t, nil
}

// ListTables returns every stored table ordered by name.
func (s *SQLiteStore) ListTables(ctx context.Context) ([]DatasetInfo, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT name, columns, COALESCE(source, ''), row_count, COALESCE(checksum, ''), imported_at
		FROM datasets ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var infos []DatasetInfo
	for rows.Next() {
		info, err := scanInfo(rows)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// DeleteTable removes a stored table and its rows.
func (s *SQLiteStore) DeleteTable(ctx context.Context, name string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(name, "name"); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM dataset_rows WHERE dataset = ?`, name); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to delete rows of %s: %w", name, err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM datasets WHERE name = ?`, name)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to delete dataset %s: %w", name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		_ = tx.Rollback()
		return fmt.Errorf("dataset %s: %w", name, common.ErrNotFound)
	}
	return tx.Commit()
}

func (s *SQLiteStore) tableInfo(ctx context.Context, q queryable, name string) (DatasetInfo, error) {
	row := q.QueryRowContext(ctx, `
		SELECT name, columns, COALESCE(source, ''), row_count, COALESCE(checksum, ''), imported_at
		FROM datasets WHERE name = ?
	`, name)
	info, err := scanInfo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return DatasetInfo{}, fmt.Errorf("dataset %s: %w", name, common.ErrNotFound)
	}
	return info, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanInfo(sc scanner) (DatasetInfo, error) {
	var (
		info    DatasetInfo
		columns string
	)
	if err := sc.Scan(&info.Name, &columns, &info.Source, &info.Rows, &info.Checksum, &info.ImportedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return info, err
		}
		return info, fmt.Errorf("failed to scan dataset: %w", err)
	}
	if err := json.Unmarshal([]byte(columns), &info.Columns); err != nil {
		return info, fmt.Errorf("%w: columns of %s: %w", common.ErrDatabaseCorrupted, info.Name, err)
	}
	return info, nil
}

// Checksum fingerprints the header and cells of t.
func Checksum(t *dataset.Table) string {
	h := sha256.New()
	for _, c := range t.Columns {
		h.Write([]byte(c))
		h.Write([]byte{0})
	}
	for _, row := range t.Rows {
		h.Write([]byte{1})
		for _, cell := range row {
			h.Write([]byte(cell))
			h.Write([]byte{0})
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

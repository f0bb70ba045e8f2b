package dataset

import (
	"archive/zip"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Archive entry names used by the published grant datasets.
const (
	RegistryEntry = "charities_truncated.csv"
	LedgerEntry   = "grants_truncated.csv"
)

// ErrNoCSVEntry is returned when a zip archive contains no CSV file.
var ErrNoCSVEntry = errors.New("archive contains no csv entry")

// ReadCSV parses a header-first CSV stream into a table. Blank lines are
// skipped and ragged rows are padded to the header width.
func ReadCSV(ctx context.Context, name string, r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = false

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: empty csv", name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s header: %w", name, err)
	}

	table := NewTable(name, header, nil)
	for line := 2; ; line++ {
		if line%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s line %d: %w", name, line, err)
		}
		if blank(record) {
			continue
		}
		table.Append(record)
	}

	slog.Debug("Parsed CSV table",
		"table", name,
		"columns", len(table.Columns),
		"rows", table.Len())

	return table, nil
}

// LoadFile reads a .csv file or the CSV inside a .zip archive. For archives
// the entry named hint is preferred, then the first .csv entry.
func LoadFile(ctx context.Context, path, name, hint string) (*Table, error) {
	if strings.EqualFold(filepath.Ext(path), ".zip") {
		return loadZip(ctx, path, name, hint)
	}

	f, err := os.Open(path) // #nosec G304 -- user supplied dataset path
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	return ReadCSV(ctx, name, f)
}

func loadZip(ctx context.Context, path, name, hint string) (*Table, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", path, err)
	}
	defer func() { _ = zr.Close() }()

	entry := pickEntry(zr.File, hint)
	if entry == nil {
		return nil, fmt.Errorf("%s: %w", path, ErrNoCSVEntry)
	}

	rc, err := entry.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s in %s: %w", entry.Name, path, err)
	}
	defer func() { _ = rc.Close() }()

	slog.Debug("Reading archive entry", "archive", path, "entry", entry.Name)
	return ReadCSV(ctx, name, rc)
}

func pickEntry(files []*zip.File, hint string) *zip.File {
	var first *zip.File
	for _, f := range files {
		if f.FileInfo().IsDir() || !strings.EqualFold(filepath.Ext(f.Name), ".csv") {
			continue
		}
		if hint != "" && filepath.Base(f.Name) == hint {
			return f
		}
		if first == nil {
			first = f
		}
	}
	return first
}

func blank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

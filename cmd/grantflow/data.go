package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/grantflow/internal/common"
	"github.com/Veraticus/grantflow/internal/config"
	"github.com/Veraticus/grantflow/internal/dataset"
	"github.com/Veraticus/grantflow/internal/index"
	"github.com/Veraticus/grantflow/internal/model"
	"github.com/Veraticus/grantflow/internal/service"
	"github.com/Veraticus/grantflow/internal/storage"
)

// openStore opens the dataset database and brings its schema up to date.
func openStore(ctx context.Context, path string) (*storage.SQLiteStore, error) {
	store, err := storage.NewSQLiteStore(path, storage.WithStoreLogger(slog.Default()))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return store, nil
}

// loadTables reads the registry and ledger from the files named in settings,
// or from the store when no files are given.
func loadTables(ctx context.Context, s *config.Settings) (registry, ledger *dataset.Table, err error) {
	if s.UsesFiles() {
		registry, err = dataset.LoadFile(ctx, s.Registry, dataset.RegistryTable, dataset.RegistryEntry)
		if err != nil {
			return nil, nil, err
		}
		ledger, err = dataset.LoadFile(ctx, s.Ledger, dataset.LedgerTable, dataset.LedgerEntry)
		if err != nil {
			return nil, nil, err
		}
		return registry, ledger, nil
	}

	store, err := openStore(ctx, s.Database)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = store.Close() }()

	return loadFromStore(ctx, store)
}

func loadFromStore(ctx context.Context, store service.DatasetStore) (registry, ledger *dataset.Table, err error) {
	registry, err = store.LoadTable(ctx, dataset.RegistryTable)
	if err != nil {
		return nil, nil, missingDataset(err)
	}
	ledger, err = store.LoadTable(ctx, dataset.LedgerTable)
	if err != nil {
		return nil, nil, missingDataset(err)
	}
	return registry, ledger, nil
}

func missingDataset(err error) error {
	if errors.Is(err, common.ErrNotFound) {
		return common.NewUserError(
			"No dataset imported yet. Run 'grantflow import --registry FILE --ledger FILE' or pass --registry and --ledger.",
			fmt.Errorf("%w: %w", common.ErrNoDataset, err))
	}
	return err
}

// buildIndex loads the dataset and indexes it under the configured duplicate policy.
func buildIndex(ctx context.Context, s *config.Settings) (*index.Index, error) {
	registry, ledger, err := loadTables(ctx, s)
	if err != nil {
		return nil, err
	}

	policy, err := index.ParseDuplicatePolicy(s.Duplicates)
	if err != nil {
		return nil, err
	}

	idx, err := index.Build(registry, ledger,
		index.WithDuplicatePolicy(policy),
		index.WithLogger(slog.Default()))
	if err != nil {
		var schemaErr *dataset.SchemaError
		if errors.As(err, &schemaErr) {
			return nil, common.NewUserError(
				fmt.Sprintf("The %s table is missing the %q column.", schemaErr.Table, schemaErr.Column), err)
		}
		return nil, err
	}

	stats := idx.Stats()
	if stats.Anomalies > 0 {
		common.LogInfo("Skipped malformed dataset rows", common.Fields{
			"anomalies":     stats.Anomalies,
			"registry_rows": stats.RegistryRows,
			"ledger_rows":   stats.LedgerRows,
			"duplicates":    idx.DuplicatePolicy().String(),
		})
		for _, a := range idx.Anomalies() {
			common.LogDebug("Dataset anomaly", common.Fields{"table": a.Table, "row": a.Row, "kind": string(a.Kind), "detail": a.Detail})
		}
	}
	return idx, nil
}

// queryFor builds a query for root from the configured defaults.
func queryFor(root string, s *config.Settings) model.Query {
	return model.Query{
		RootIdentifier: root,
		AllowedYears:   s.Years,
		MinAmount:      s.MinAmount,
		MaxDepth:       s.Depth,
	}
}

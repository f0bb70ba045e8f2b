package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Veraticus/grantflow/internal/cli"
	"github.com/Veraticus/grantflow/internal/common"
	"github.com/Veraticus/grantflow/internal/config"
	"github.com/Veraticus/grantflow/internal/dataset"
	"github.com/Veraticus/grantflow/internal/index"
	"github.com/Veraticus/grantflow/internal/storage"
	"github.com/spf13/cobra"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a registry and grant ledger into the local database",
		Long: `Import an organization registry and a grant ledger into the local database.

Both files may be plain CSV or a ZIP archive holding the CSV. The tables are
checked against the required columns before anything is written, and any
previously imported copy is replaced.

Use --list to show what is already imported and --drop to remove it.`,
		RunE: runImport,
	}

	cmd.Flags().Bool("list", false, "List imported datasets without importing")
	cmd.Flags().Bool("drop", false, "Remove the imported registry and ledger")
	cmd.Flags().Int("show-anomalies", 10, "Print up to N skipped rows after importing")

	return cmd
}

func runImport(cmd *cobra.Command, _ []string) error {
	settings, err := config.LoadSettings()
	if err != nil {
		return err
	}

	handler := cli.NewInterruptHandler(cmd.ErrOrStderr(), "Import", "The previous dataset, if any, is left untouched.")
	ctx := handler.HandleInterrupts(cmd.Context())

	store, err := openStore(ctx, settings.Database)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	out := cmd.OutOrStdout()
	if list, _ := cmd.Flags().GetBool("list"); list {
		return listDatasets(ctx, out, store)
	}
	if drop, _ := cmd.Flags().GetBool("drop"); drop {
		return dropDatasets(ctx, out, store)
	}

	if !settings.UsesFiles() {
		return common.NewUserError("Both --registry and --ledger are required to import.", common.ErrMissingConfig)
	}

	fmt.Fprintln(out, cli.FormatTitle("Importing grant dataset"))

	registry, err := dataset.LoadFile(ctx, settings.Registry, dataset.RegistryTable, dataset.RegistryEntry)
	if err != nil {
		return err
	}
	ledger, err := dataset.LoadFile(ctx, settings.Ledger, dataset.LedgerTable, dataset.LedgerEntry)
	if err != nil {
		return err
	}

	// Refuse tables the engine could not index.
	if _, err := dataset.SchemaOf(registry, dataset.RegistryColumns...); err != nil {
		return err
	}
	if _, err := dataset.SchemaOf(ledger, dataset.LedgerColumns...); err != nil {
		return err
	}

	sources := map[string]string{
		dataset.RegistryTable: settings.Registry,
		dataset.LedgerTable:   settings.Ledger,
	}
	for _, t := range []*dataset.Table{registry, ledger} {
		if err := saveWithProgress(ctx, cmd.ErrOrStderr(), store, t, sources[t.Name]); err != nil {
			if handler.WasInterrupted() {
				return common.NewUserError("Import interrupted.", err)
			}
			return err
		}
		fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Imported %s: %d rows from %s", t.Name, t.Len(), sources[t.Name])))
	}

	idx, err := index.Build(registry, ledger, index.WithLogger(slog.Default()))
	if err != nil {
		return err
	}
	stats := idx.Stats()
	summary := strings.Join([]string{
		fmt.Sprintf("Organizations: %d", stats.Organizations),
		fmt.Sprintf("Grants:        %d", stats.Grants),
		fmt.Sprintf("Skipped rows:  %d", stats.Anomalies),
		fmt.Sprintf("Tax years:     %t", idx.HasYears()),
		fmt.Sprintf("Duplicates:    %s", idx.DuplicatePolicy()),
		fmt.Sprintf("Database:      %s", store.Path()),
	}, "\n")
	fmt.Fprintln(out, cli.RenderBox("Import complete", summary))

	limit, _ := cmd.Flags().GetInt("show-anomalies")
	anomalies := idx.Anomalies()
	for i, a := range anomalies {
		if i == limit {
			fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("... and %d more skipped rows", len(anomalies)-limit)))
			break
		}
		fmt.Fprintln(out, cli.FormatWarning(a.String()))
	}
	return nil
}

func saveWithProgress(ctx context.Context, w io.Writer, store *storage.SQLiteStore, t *dataset.Table, source string) error {
	common.LogDebug("Saving dataset", common.Fields{"table": t.Name, "rows": t.Len(), "source": source})
	bar := cli.NewProgressBar(w, t.Len(), "Saving "+t.Name)
	defer func() { _ = bar.Finish() }()

	return store.SaveTable(ctx, t, source, storage.WithProgress(cli.ProgressFunc(bar)))
}

func listDatasets(ctx context.Context, w io.Writer, store *storage.SQLiteStore) error {
	infos, err := store.ListTables(ctx)
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		fmt.Fprintln(w, cli.FormatWarning("No datasets imported"))
		return nil
	}

	lines := make([]string, 0, len(infos))
	for _, info := range infos {
		lines = append(lines, fmt.Sprintf("%-9s %8d rows  %s  %s  %s",
			info.Name, info.Rows, info.ImportedAt.Local().Format("2006-01-02 15:04"),
			shortChecksum(info.Checksum), info.Source))
	}
	fmt.Fprintln(w, cli.RenderBox(cli.FolderIcon+" Imported datasets", strings.Join(lines, "\n")))
	return nil
}

func dropDatasets(ctx context.Context, w io.Writer, store *storage.SQLiteStore) error {
	for _, name := range []string{dataset.RegistryTable, dataset.LedgerTable} {
		err := store.DeleteTable(ctx, name)
		switch {
		case errors.Is(err, common.ErrNotFound):
			fmt.Fprintln(w, cli.FormatInfo(fmt.Sprintf("No %s imported", name)))
		case err != nil:
			return err
		default:
			fmt.Fprintln(w, cli.FormatSuccess(fmt.Sprintf("Removed %s", name)))
		}
	}
	return nil
}

func shortChecksum(sum string) string {
	if len(sum) > 12 {
		return sum[:12]
	}
	return sum
}

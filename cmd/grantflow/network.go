package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Veraticus/grantflow/internal/cli"
	"github.com/Veraticus/grantflow/internal/common"
	"github.com/Veraticus/grantflow/internal/config"
	"github.com/Veraticus/grantflow/internal/ein"
	"github.com/Veraticus/grantflow/internal/export"
	"github.com/Veraticus/grantflow/internal/model"
	"github.com/Veraticus/grantflow/internal/network"
	"github.com/Veraticus/grantflow/internal/service"
	"github.com/Veraticus/grantflow/internal/sheets"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const formatTable = "table"

func networkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "network EIN...",
		Short: "Expand the funding network around one or more organizations",
		Long: `Expand the funding network around each EIN breadth-first, following grants in
both directions out to --depth hops.

Grants below --min-amount are never followed. --year only hides grants from
other years; organizations reached through them still appear. Several EINs
are expanded concurrently against the same dataset.

Output is a styled report by default, or json, yaml, dot or csv with
--format. With several EINs and --output, one file is written per EIN.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runNetwork,
	}

	addFilterFlags(cmd)
	cmd.Flags().IntP("depth", "d", 1, "Number of hops to expand")
	cmd.Flags().Int("max-orgs", 0, "Keep only the root and the N organizations with the most grant volume (0 = all)")
	cmd.Flags().StringP("format", "f", formatTable, "Output format: table, "+strings.Join(export.Formats, ", "))
	cmd.Flags().StringP("output", "o", "", "Write to this file instead of stdout")
	cmd.Flags().Bool("export-sheets", false, "Also export the network to Google Sheets")
	cmd.Flags().Int("concurrency", 4, "Maximum networks expanded at once")

	return cmd
}

func runNetwork(cmd *cobra.Command, args []string) error {
	bindFilterFlags(cmd)
	_ = viper.BindPFlag("query.depth", cmd.Flags().Lookup("depth"))
	_ = viper.BindPFlag("query.max_orgs", cmd.Flags().Lookup("max-orgs"))

	settings, err := config.LoadSettings()
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	format = strings.ToLower(format)
	if format != formatTable && !isExportFormat(format) {
		return common.NewUserError(
			fmt.Sprintf("Unknown format %q; use table, %s.", format, strings.Join(export.Formats, ", ")),
			export.ErrUnknownFormat)
	}
	toSheets, _ := cmd.Flags().GetBool("export-sheets")
	if toSheets && len(args) > 1 {
		return common.NewUserError("--export-sheets takes a single EIN.", common.ErrInvalidConfig)
	}
	output, _ := cmd.Flags().GetString("output")
	concurrency, _ := cmd.Flags().GetInt("concurrency")

	ctx := cmd.Context()
	idx, err := buildIndex(ctx, settings)
	if err != nil {
		return err
	}

	queries := make([]model.Query, len(args))
	for i, root := range args {
		queries[i] = queryFor(root, settings)
	}
	graphs, err := network.ExpandAll(ctx, idx, queries, concurrency)
	if err != nil {
		return err
	}

	generator := "grantflow " + version
	for i, graph := range graphs {
		graph = network.LimitOrganizations(graph, settings.MaxOrgs)
		prov := model.NewProvenance(queries[i], generator)

		slog.Debug("Network expanded",
			"root", queries[i].RootIdentifier,
			"status", graph.Status,
			"nodes", len(graph.Nodes),
			"edges", len(graph.Edges),
			"export_id", prov.ID)

		target := outputPath(output, args[i], len(args) > 1)
		if err := emit(cmd.OutOrStdout(), target, format, idx, graph, prov); err != nil {
			return err
		}

		if toSheets {
			if graph.Status == model.StatusNotFound {
				return common.NewUserError(fmt.Sprintf("Nothing to export: %q was not found.", args[i]), common.ErrNotFound)
			}
			if err := exportToSheets(ctx, graph, prov); err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatSuccess("Exported to Google Sheets"))
		}
	}
	return nil
}

func isExportFormat(format string) bool {
	return slices.Contains(export.Formats, format) || format == "yml"
}

// outputPath returns where one graph is written. With several roots each
// file gets the root's EIN before the extension.
func outputPath(output, root string, multiple bool) string {
	if output == "" || !multiple {
		return output
	}
	ext := filepath.Ext(output)
	return strings.TrimSuffix(output, ext) + "-" + ein.Normalize(root) + ext
}

func emit(stdout io.Writer, target, format string, l network.Lookup, graph *model.ResultGraph, prov model.Provenance) (err error) {
	w := stdout
	if target != "" {
		f, createErr := os.Create(filepath.Clean(target)) // #nosec G304 -- user supplied output path
		if createErr != nil {
			return fmt.Errorf("failed to create %s: %w", target, createErr)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		w = f
	}

	if format == formatTable {
		_, err = fmt.Fprint(w, cli.RenderNetwork(graph, network.Summarize(graph), network.TaxpayerImpact(l, graph)))
		return err
	}
	if err := export.Write(w, format, graph, prov); err != nil {
		return err
	}
	if target != "" {
		slog.Info("Network exported", "path", target, "format", format)
	}
	return nil
}

func exportToSheets(ctx context.Context, graph *model.ResultGraph, prov model.Provenance) error {
	cfg, err := config.LoadSheetsConfig()
	if err != nil {
		return common.NewUserError("Google Sheets is not configured. Run 'grantflow auth sheets' or set sheets.service_account_path.", err)
	}

	writer, err := sheets.NewWriter(ctx, *cfg, slog.Default())
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrSheetsUnavailable, err)
	}
	return publish(ctx, writer, graph, prov)
}

func publish(ctx context.Context, w service.GraphWriter, graph *model.ResultGraph, prov model.Provenance) error {
	if err := w.Write(ctx, graph, prov); err != nil {
		common.LogError(err, "Sheets export failed", common.Fields{"export_id": prov.ID})
		return fmt.Errorf("failed to export to Google Sheets: %w", err)
	}
	return nil
}

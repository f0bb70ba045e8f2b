package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/grantflow/internal/common"
	"github.com/Veraticus/grantflow/internal/ein"
	"github.com/Veraticus/grantflow/internal/model"
	"github.com/Veraticus/grantflow/internal/network"
	"github.com/Veraticus/grantflow/internal/service"
	"github.com/shopspring/decimal"
	"google.golang.org/api/sheets/v4"
)

// Writer implements service.GraphWriter for Google Sheets.
type Writer struct {
	api    spreadsheetAPI
	logger *slog.Logger
	config Config
}

// NewWriter creates a new Google Sheets graph writer.
func NewWriter(ctx context.Context, config Config, logger *slog.Logger) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	srv, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrSheetsUnavailable, err)
	}

	w := newWriter(&googleAPI{service: srv}, config, logger)
	w.logger.Debug("sheets service ready", "auth", config.AuthMethod())
	return w, nil
}

func newWriter(api spreadsheetAPI, config Config, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{api: api, config: config, logger: logger}
}

// Write replaces the Summary, Organizations and Grants tabs with graph.
func (w *Writer) Write(ctx context.Context, graph *model.ResultGraph, provenance model.Provenance) error {
	w.logger.Info("starting sheets export",
		"root", graph.Query.RootIdentifier,
		"organizations", len(graph.Nodes),
		"grants", len(graph.Edges))

	retryOpts := service.RetryOptions{
		MaxAttempts:  w.config.RetryAttempts,
		InitialDelay: w.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	var (
		spreadsheetID string
		tabs          map[string]int64
	)
	err := common.WithRetry(ctx, func() error {
		var err error
		spreadsheetID, tabs, err = w.getOrCreateSpreadsheet(ctx)
		return err
	}, retryOpts)
	if err != nil {
		return fmt.Errorf("failed to get spreadsheet: %w", err)
	}

	data := PrepareTabData(graph, provenance)
	values := map[string][][]any{
		TabSummary:       data.Summary,
		TabOrganizations: organizationValues(data.Organizations),
		TabGrants:        grantValues(data.Grants),
	}

	for _, tab := range tabOrder {
		err = common.WithRetry(ctx, func() error {
			if clearErr := w.api.Clear(ctx, spreadsheetID, quoteTab(tab)); clearErr != nil {
				return fmt.Errorf("failed to clear %s: %w", tab, clearErr)
			}
			return w.writeData(ctx, spreadsheetID, tab, values[tab])
		}, retryOpts)
		if err != nil {
			return fmt.Errorf("failed to write %s: %w", tab, err)
		}
	}

	if w.config.EnableFormatting {
		err = common.WithRetry(ctx, func() error {
			return w.api.BatchUpdate(ctx, spreadsheetID, formatRequests(tabs))
		}, retryOpts)
		if err != nil {
			w.logger.Warn("failed to apply formatting", "error", err)
		}
	}

	w.logger.Info("sheets export completed",
		"spreadsheet_id", spreadsheetID,
		"export_id", provenance.ID)
	return nil
}

// getOrCreateSpreadsheet returns the spreadsheet id and the sheet id of every
// tab, adding tabs that are missing.
func (w *Writer) getOrCreateSpreadsheet(ctx context.Context) (string, map[string]int64, error) {
	if w.config.SpreadsheetID == "" {
		id, tabs, err := w.api.Create(ctx, w.config.SpreadsheetName, w.config.TimeZone, tabOrder)
		if err != nil {
			return "", nil, err
		}
		w.logger.Info("created new spreadsheet", "id", id)
		w.config.SpreadsheetID = id
		return id, tabs, nil
	}

	id := w.config.SpreadsheetID
	tabs, err := w.api.Tabs(ctx, id)
	if err != nil {
		return "", nil, err
	}

	var missing []string
	for _, tab := range tabOrder {
		if _, ok := tabs[tab]; !ok {
			missing = append(missing, tab)
		}
	}
	if len(missing) > 0 {
		added, err := w.api.AddTabs(ctx, id, missing)
		if err != nil {
			return "", nil, err
		}
		for k, v := range added {
			tabs[k] = v
		}
	}
	return id, tabs, nil
}

// writeData writes values into tab in batches to stay under API limits.
func (w *Writer) writeData(ctx context.Context, spreadsheetID, tab string, values [][]any) error {
	for i := 0; i < len(values); i += w.config.BatchSize {
		end := min(i+w.config.BatchSize, len(values))
		batch := values[i:end]

		rng := fmt.Sprintf("%s!A%d", quoteTab(tab), i+1)
		if err := w.api.Update(ctx, spreadsheetID, rng, batch); err != nil {
			return fmt.Errorf("failed to write batch starting at row %d: %w", i+1, err)
		}
		w.logger.Debug("wrote batch", "tab", tab, "start_row", i+1, "rows", len(batch))
	}
	return nil
}

// PrepareTabData lays out graph for export. Amounts are summed as decimals so
// totals match the ledger to the cent.
func PrepareTabData(graph *model.ResultGraph, provenance model.Provenance) TabData {
	names := make(map[string]string, len(graph.Nodes))
	volume := make(map[string]decimal.Decimal, len(graph.Nodes))
	for _, n := range graph.Nodes {
		names[n.ID] = n.Name
	}

	data := TabData{TotalAmount: decimal.Zero}
	for _, e := range graph.Edges {
		amount := decimal.NewFromFloat(e.Amount)
		data.TotalAmount = data.TotalAmount.Add(amount)
		volume[e.From] = volume[e.From].Add(amount)
		if e.To != e.From {
			volume[e.To] = volume[e.To].Add(amount)
		}
		data.Grants = append(data.Grants, GrantRow{
			FromEIN:  e.From,
			FromName: names[e.From],
			ToEIN:    e.To,
			ToName:   names[e.To],
			Amount:   amount,
			Year:     e.Year,
		})
	}

	for _, n := range graph.Nodes {
		data.Organizations = append(data.Organizations, OrganizationRow{
			EIN:    n.ID,
			Name:   n.Name,
			Depth:  n.Depth,
			Known:  n.Known,
			Volume: volume[n.ID],
		})
	}

	stats := network.Summarize(graph)
	q := provenance.Query
	data.Summary = [][]any{
		{"Grant Network", q.RootIdentifier},
		{},
		{"Query"},
		{"Root EIN", q.RootIdentifier},
		{"Max Depth", q.MaxDepth},
		{"Min Amount", q.MinAmount},
		{"Years", formatYears(q.AllowedYears)},
		{"Status", string(graph.Status)},
		{},
		{"Export"},
		{"Generated At", provenance.GeneratedAt.Format(time.RFC3339)},
		{"Generator", provenance.Generator},
		{"Export ID", provenance.ID},
		{},
		{"Statistics"},
		{"Organizations", stats.Organizations},
		{"Known Organizations", stats.KnownOrganizations},
		{"Grants", stats.Grants},
		{"Total Amount", data.TotalAmount.Round(2).InexactFloat64()},
		{"Average Amount", roundCents(stats.AverageAmount)},
		{"Standard Deviation", roundCents(stats.StandardDeviation)},
	}
	return data
}

func organizationValues(rows []OrganizationRow) [][]any {
	values := make([][]any, 0, len(rows)+1)
	values = append(values, []any{"EIN", "Name", "Depth", "In Registry", "Grant Volume"})
	for _, r := range rows {
		values = append(values, []any{ein.Format(r.EIN), r.Name, r.Depth, r.Known, r.Volume.Round(2).InexactFloat64()})
	}
	return values
}

func grantValues(rows []GrantRow) [][]any {
	values := make([][]any, 0, len(rows)+1)
	values = append(values, []any{"Filer EIN", "Filer", "Recipient EIN", "Recipient", "Amount", "Tax Year"})
	for _, r := range rows {
		var year any = r.Year
		if r.Year == 0 {
			year = ""
		}
		values = append(values, []any{
			ein.Format(r.FromEIN), r.FromName,
			ein.Format(r.ToEIN), r.ToName,
			r.Amount.Round(2).InexactFloat64(), year,
		})
	}
	return values
}

func formatYears(years []int) string {
	if len(years) == 0 {
		return "all"
	}
	parts := make([]string, len(years))
	for i, y := range years {
		parts[i] = strconv.Itoa(y)
	}
	return strings.Join(parts, ", ")
}

func roundCents(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func quoteTab(tab string) string {
	return "'" + strings.ReplaceAll(tab, "'", "''") + "'"
}

// formatRequests bolds header rows and applies currency formatting to the
// amount columns.
func formatRequests(tabs map[string]int64) []*sheets.Request {
	var requests []*sheets.Request
	bold := func(sheetID int64, endCol int64) *sheets.Request {
		return &sheets.Request{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{SheetId: sheetID, StartRowIndex: 0, EndRowIndex: 1, EndColumnIndex: endCol},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{TextFormat: &sheets.TextFormat{Bold: true}},
				},
				Fields: "userEnteredFormat.textFormat",
			},
		}
	}
	currency := func(sheetID int64, col int64) *sheets.Request {
		return &sheets.Request{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{SheetId: sheetID, StartRowIndex: 1, StartColumnIndex: col, EndColumnIndex: col + 1},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						NumberFormat: &sheets.NumberFormat{Type: "CURRENCY", Pattern: "$#,##0.00"},
					},
				},
				Fields: "userEnteredFormat.numberFormat",
			},
		}
	}
	freeze := func(sheetID int64) *sheets.Request {
		return &sheets.Request{
			UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
				Properties: &sheets.SheetProperties{
					SheetId:        sheetID,
					GridProperties: &sheets.GridProperties{FrozenRowCount: 1},
				},
				Fields: "gridProperties.frozenRowCount",
			},
		}
	}

	if id, ok := tabs[TabSummary]; ok {
		requests = append(requests, bold(id, 2))
	}
	if id, ok := tabs[TabOrganizations]; ok {
		requests = append(requests, bold(id, 5), currency(id, 4), freeze(id))
	}
	if id, ok := tabs[TabGrants]; ok {
		requests = append(requests, bold(id, 6), currency(id, 4), freeze(id))
	}
	return requests
}

package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/Veraticus/grantflow/internal/common"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// spreadsheetAPI is the subset of the Sheets API the writer uses.
type spreadsheetAPI interface {
	Create(ctx context.Context, title, timeZone string, tabs []string) (id string, tabIDs map[string]int64, err error)
	Tabs(ctx context.Context, id string) (map[string]int64, error)
	AddTabs(ctx context.Context, id string, tabs []string) (map[string]int64, error)
	Clear(ctx context.Context, id, rng string) error
	Update(ctx context.Context, id, rng string, values [][]any) error
	BatchUpdate(ctx context.Context, id string, requests []*sheets.Request) error
}

type googleAPI struct {
	service *sheets.Service
}

// createSheetsService creates a Google Sheets API service.
func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}
		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		client := oauthConfig(config.ClientID, config.ClientSecret, "")
		tokenSource = client.TokenSource(ctx, &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		})
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(oauth2.NewClient(ctx, tokenSource)))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}
	return srv, nil
}

func (g *googleAPI) Create(ctx context.Context, title, timeZone string, tabs []string) (string, map[string]int64, error) {
	spreadsheet := &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{Title: title, TimeZone: timeZone},
	}
	for i, tab := range tabs {
		spreadsheet.Sheets = append(spreadsheet.Sheets, &sheets.Sheet{
			Properties: &sheets.SheetProperties{Title: tab, SheetId: int64(i), ForceSendFields: []string{"SheetId"}},
		})
	}

	created, err := g.service.Spreadsheets.Create(spreadsheet).Context(ctx).Do()
	if err != nil {
		return "", nil, fmt.Errorf("unable to create spreadsheet: %w", classify(err))
	}
	return created.SpreadsheetId, tabIDs(created), nil
}

func (g *googleAPI) Tabs(ctx context.Context, id string) (map[string]int64, error) {
	spreadsheet, err := g.service.Spreadsheets.Get(id).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to access spreadsheet %s: %w", id, classify(err))
	}
	return tabIDs(spreadsheet), nil
}

func (g *googleAPI) AddTabs(ctx context.Context, id string, tabs []string) (map[string]int64, error) {
	requests := make([]*sheets.Request, len(tabs))
	for i, tab := range tabs {
		requests[i] = &sheets.Request{
			AddSheet: &sheets.AddSheetRequest{Properties: &sheets.SheetProperties{Title: tab}},
		}
	}

	resp, err := g.service.Spreadsheets.BatchUpdate(id, &sheets.BatchUpdateSpreadsheetRequest{Requests: requests}).
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to add tabs: %w", classify(err))
	}

	added := make(map[string]int64, len(tabs))
	for _, reply := range resp.Replies {
		if reply.AddSheet != nil && reply.AddSheet.Properties != nil {
			added[reply.AddSheet.Properties.Title] = reply.AddSheet.Properties.SheetId
		}
	}
	return added, nil
}

func (g *googleAPI) Clear(ctx context.Context, id, rng string) error {
	_, err := g.service.Spreadsheets.Values.Clear(id, rng, &sheets.ClearValuesRequest{}).Context(ctx).Do()
	return classify(err)
}

func (g *googleAPI) Update(ctx context.Context, id, rng string, values [][]any) error {
	_, err := g.service.Spreadsheets.Values.Update(id, rng, &sheets.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	return classify(err)
}

func (g *googleAPI) BatchUpdate(ctx context.Context, id string, requests []*sheets.Request) error {
	_, err := g.service.Spreadsheets.BatchUpdate(id, &sheets.BatchUpdateSpreadsheetRequest{Requests: requests}).
		Context(ctx).Do()
	return classify(err)
}

func tabIDs(s *sheets.Spreadsheet) map[string]int64 {
	ids := make(map[string]int64, len(s.Sheets))
	for _, sh := range s.Sheets {
		if sh.Properties != nil {
			ids[sh.Properties.Title] = sh.Properties.SheetId
		}
	}
	return ids
}

// classify marks API errors for the retry loop: quota errors back off to the
// maximum delay and client errors other than timeouts fail immediately.
func classify(err error) error {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	switch {
	case apiErr.Code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", common.ErrRateLimit, err)
	case apiErr.Code == http.StatusRequestTimeout:
		return err
	case apiErr.Code >= 400 && apiErr.Code < 500:
		return &common.RetryableError{Err: err, Retryable: false}
	}
	return err
}

// Package sheets stores records in a Google spreadsheet with three tabs:
// Bookmarks (A:J), Tags (A) and Categories (A). Row 1 of each tab is a header.
package sheets

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

// Gateway is the narrow slice of the Sheets API the store needs.
// Ranges use A1 notation ("Bookmarks!A2:J").
type Gateway interface {
	Get(ctx context.Context, rng string) ([][]string, error)
	Update(ctx context.Context, rng string, row []string) error
	Append(ctx context.Context, rng string, row []string) error
	// DeleteRow removes the row at the zero-based grid index of the named tab.
	DeleteRow(ctx context.Context, sheet string, index int) error
	Ping(ctx context.Context) error
}

// GoogleGateway talks to the Sheets v4 API with a service account.
type GoogleGateway struct {
	svc           *sheetsapi.Service
	spreadsheetID string

	mu       sync.Mutex
	sheetIDs map[string]int64 // tab title -> numeric sheet id
}

var _ Gateway = (*GoogleGateway)(nil)

// NewGoogleGateway authenticates with the service account key (JSON).
func NewGoogleGateway(ctx context.Context, spreadsheetID string, serviceAccountKey []byte) (*GoogleGateway, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is required")
	}

	cfg, err := google.JWTConfigFromJSON(serviceAccountKey, sheetsapi.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse service account key: %w", err)
	}

	svc, err := sheetsapi.NewService(ctx, option.WithHTTPClient(cfg.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}

	return &GoogleGateway{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetIDs:      make(map[string]int64),
	}, nil
}

func (g *GoogleGateway) Get(ctx context.Context, rng string) ([][]string, error) {
	resp, err := g.svc.Spreadsheets.Values.Get(g.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", rng, err)
	}

	rows := make([][]string, len(resp.Values))
	for i, raw := range resp.Values {
		row := make([]string, len(raw))
		for j, cell := range raw {
			if cell != nil {
				row[j] = fmt.Sprint(cell)
			}
		}
		rows[i] = row
	}
	return rows, nil
}

func (g *GoogleGateway) Update(ctx context.Context, rng string, row []string) error {
	_, err := g.svc.Spreadsheets.Values.Update(g.spreadsheetID, rng, valueRange(row)).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", rng, err)
	}
	return nil
}

func (g *GoogleGateway) Append(ctx context.Context, rng string, row []string) error {
	_, err := g.svc.Spreadsheets.Values.Append(g.spreadsheetID, rng, valueRange(row)).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append %s: %w", rng, err)
	}
	return nil
}

func (g *GoogleGateway) DeleteRow(ctx context.Context, sheet string, index int) error {
	sheetID, err := g.sheetID(ctx, sheet)
	if err != nil {
		return err
	}

	req := &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsapi.Request{{
			DeleteDimension: &sheetsapi.DeleteDimensionRequest{
				Range: &sheetsapi.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(index),
					EndIndex:   int64(index + 1),
					// sheet 0 and row 0 are valid values
					ForceSendFields: []string{"SheetId", "StartIndex"},
				},
			},
		}},
	}

	if _, err := g.svc.Spreadsheets.BatchUpdate(g.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete row %d of %s: %w", index, sheet, err)
	}
	return nil
}

func (g *GoogleGateway) Ping(ctx context.Context) error {
	if _, err := g.svc.Spreadsheets.Get(g.spreadsheetID).Fields("spreadsheetId").Context(ctx).Do(); err != nil {
		return fmt.Errorf("spreadsheet unreachable: %w", err)
	}
	return nil
}

// sheetID resolves a tab title to its numeric id, memoized for the process lifetime.
func (g *GoogleGateway) sheetID(ctx context.Context, title string) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if id, ok := g.sheetIDs[title]; ok {
		return id, nil
	}

	sp, err := g.svc.Spreadsheets.Get(g.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("failed to load spreadsheet metadata: %w", err)
	}
	for _, s := range sp.Sheets {
		if s.Properties == nil {
			continue
		}
		g.sheetIDs[s.Properties.Title] = s.Properties.SheetId
	}

	id, ok := g.sheetIDs[title]
	if !ok {
		return 0, fmt.Errorf("sheet %q not found in spreadsheet", title)
	}
	return id, nil
}

func valueRange(row []string) *sheetsapi.ValueRange {
	cells := make([]interface{}, len(row))
	for i, v := range row {
		cells[i] = v
	}
	return &sheetsapi.ValueRange{Values: [][]interface{}{cells}}
}

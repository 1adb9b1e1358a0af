package sheets

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	sheetsv4 "google.golang.org/api/sheets/v4"
)

// Store is one worksheet accessed through the Google Sheets API with a
// service account, the Go equivalent of the gspread connection the rest of
// the pipeline uses.
type Store struct {
	svc           *sheetsv4.Service
	spreadsheetID string
	sheetName     string
}

// NewService creates a Sheets API client from a service account
// credentials file.
func NewService(ctx context.Context, credentialsFile string) (*sheetsv4.Service, error) {
	svc, err := sheetsv4.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheetsv4.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return svc, nil
}

// NewStore wraps one worksheet of a spreadsheet.
func NewStore(svc *sheetsv4.Service, spreadsheetID, sheetName string) *Store {
	return &Store{svc: svc, spreadsheetID: spreadsheetID, sheetName: sheetName}
}

// ReadTable fetches all values of the worksheet.
func (s *Store) ReadTable(ctx context.Context) (*Table, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, s.sheetName).
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.sheetName, err)
	}

	values := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, 0, len(raw))
		for _, cell := range raw {
			row = append(row, fmt.Sprint(cell))
		}
		values = append(values, row)
	}

	return NewTable(values), nil
}

// BatchUpdate writes all cell updates in a single batched request. An
// empty update list is a no-op.
func (s *Store) BatchUpdate(ctx context.Context, updates []CellUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	data := make([]*sheetsv4.ValueRange, 0, len(updates))
	for _, u := range updates {
		data = append(data, &sheetsv4.ValueRange{
			Range:  fmt.Sprintf("%s!%s", s.sheetName, u.Ref),
			Values: [][]interface{}{{u.Value}},
		})
	}

	req := &sheetsv4.BatchUpdateValuesRequest{
		ValueInputOption: "USER_ENTERED",
		Data:             data,
	}

	if _, err := s.svc.Spreadsheets.Values.BatchUpdate(s.spreadsheetID, req).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("batch update %s: %w", s.sheetName, err)
	}
	return nil
}

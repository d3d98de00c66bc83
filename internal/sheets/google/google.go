package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"budgettracker/internal/gateway"
	"budgettracker/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	expensesSheet string
}

// Ensure interface conformance
var _ sheets.RowAppender = (*Client)(nil)

// Options configures the mirror. SheetName is a base name; the current year
// is prefixed unless the name already carries one.
type Options struct {
	SpreadsheetID      string
	SheetName          string
	ServiceAccountFile string
	ServiceAccountJSON string
}

func New(ctx context.Context, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	credentialsJSON, err := readCredentials(ctx, opts)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	slog.InfoContext(ctx, "Google Sheets service created successfully")

	return NewWithService(svc, opts.SpreadsheetID, opts.SheetName, time.Now().Year()), nil
}

// NewWithService wraps an existing service, e.g. one pointed at a test endpoint.
func NewWithService(svc *gsheet.Service, spreadsheetID, sheetName string, year int) *Client {
	if strings.TrimSpace(sheetName) == "" {
		sheetName = "Expenses"
	}
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		expensesSheet: yearPrefixedName(sheetName, year),
	}
}

// readCredentials prefers inline JSON, then the configured file, then
// GOOGLE_APPLICATION_CREDENTIALS.
func readCredentials(ctx context.Context, opts Options) ([]byte, error) {
	inline := strings.TrimSpace(opts.ServiceAccountJSON)
	file := strings.TrimSpace(opts.ServiceAccountFile)
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case inline != "":
		slog.InfoContext(ctx, "Using inline JSON credentials")
		return []byte(inline), nil
	case file != "":
		slog.InfoContext(ctx, "Reading credentials from file", "path", file)
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// AppendExpense adds the expense after the last row of the expenses sheet.
func (c *Client) AppendExpense(ctx context.Context, e gateway.StoredExpense) (string, error) {
	if err := e.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A:D", c.expensesSheet)
	vr := &gsheet.ValueRange{Values: [][]any{sheets.Row(e)}}

	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", c.expensesSheet, err)
	}

	ref := rng
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}
	slog.InfoContext(ctx, "Expense mirrored to sheet", "id", e.ID, "range", ref)
	return ref, nil
}

// yearPrefixedName returns "<year> <base>" unless base already starts with
// a four digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if len(base) >= 5 && base[4] == ' ' {
		isYear := true
		for _, r := range base[:4] {
			if r < '0' || r > '9' {
				isYear = false
				break
			}
		}
		if isYear {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}

package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"fiado/internal/core"
	ports "fiado/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Client mirrors the debt ledger into a Google Sheets spreadsheet. Columns:
// A=ID, B=Person, C=Description, D=Amount, E=Status, F=CreatedAt, G=PaidAt.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// Ensure interface conformance
var (
	_ ports.DebtWriter  = (*Client)(nil)
	_ ports.DebtRemover = (*Client)(nil)
)

// New creates a Sheets client for the given spreadsheet using Service Account
// credentials from the environment.
func New(ctx context.Context, spreadsheetID, sheetName string) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	if strings.TrimSpace(sheetName) == "" {
		sheetName = "Debts"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
// Uses GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))

	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created")
	return service, nil
}

// findRow scans column A for the debt ID. Returns the 1-based row number and
// the total number of occupied rows; row is 0 when the ID is not on the sheet.
func (c *Client) findRow(ctx context.Context, debtID string) (row, total int, err error) {
	rng := fmt.Sprintf("%s!A:A", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return 0, 0, fmt.Errorf("read %s: %w", rng, err)
	}
	for i, cells := range resp.Values {
		if len(cells) == 0 {
			continue
		}
		if strings.TrimSpace(fmt.Sprint(cells[0])) == debtID {
			return i + 1, len(resp.Values), nil
		}
	}
	return 0, len(resp.Values), nil
}

// Append upserts the debt keyed by its ID in column A. A debt already on the
// sheet gets its row rewritten in place, so a payment updates the existing
// mirror row instead of leaving a pending and a paid copy side by side.
func (c *Client) Append(ctx context.Context, d core.Debt) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	row, total, err := c.findRow(ctx, d.ID)
	if err != nil {
		return "", err
	}
	if row == 0 {
		row = total + 1
	}

	paidAt := ""
	if !d.PaidAt.IsZero() {
		paidAt = d.PaidAt.Format(time.RFC3339)
	}
	cells := []any{
		d.ID,
		d.PersonName,
		d.Description,
		d.Amount.Reais(),
		string(d.Status),
		d.CreatedAt.Format(time.RFC3339),
		paidAt,
	}

	dataRange := fmt.Sprintf("%s!A%d:G%d", c.sheetName, row, row)
	vr := &gsheet.ValueRange{Values: [][]any{cells}}

	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, dataRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("update %s: %w", dataRange, err)
	}

	return dataRange, nil
}

// Remove clears the row whose column A matches the debt ID. The row is blanked
// rather than deleted so concurrently computed row references stay valid.
func (c *Client) Remove(ctx context.Context, debtID string) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	row, _, err := c.findRow(ctx, debtID)
	if err != nil {
		return err
	}
	if row == 0 {
		// Already gone, nothing to do.
		return nil
	}

	clearRange := fmt.Sprintf("%s!A%d:G%d", c.sheetName, row, row)
	_, err = c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear %s: %w", clearRange, err)
	}
	return nil
}

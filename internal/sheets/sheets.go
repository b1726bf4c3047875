package sheets

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

// TimeLayout is how start/end times are written to the worksheet. The
// daily report matches rows by the date prefix of this layout.
const TimeLayout = "2006-01-02 15:04:05"

// Row is one completed activity as read back from the worksheet.
type Row struct {
	StartTime    string
	ActivityName string
	Category     string
	Duration     string
}

// Client appends completed activities to a Google Sheets worksheet and
// reads them back for reporting. Column order: Activity Name, Category,
// Start Time, End Time, Duration.
type Client struct {
	svc           *gsheets.Service
	spreadsheetID string
	sheetName     string
}

// NewClient authenticates with a service-account key file and binds to one
// spreadsheet.
func NewClient(ctx context.Context, serviceAccountFile, spreadsheetID, sheetName string) (*Client, error) {
	key, err := os.ReadFile(serviceAccountFile)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	conf, err := google.JWTConfigFromJSON(key, gsheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account credentials: %w", err)
	}
	svc, err := gsheets.NewService(ctx, option.WithHTTPClient(conf.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID, sheetName: sheetName}, nil
}

// Append adds one activity row at the bottom of the worksheet.
func (c *Client) Append(ctx context.Context, name, category string, start, end time.Time, duration string) error {
	vr := &gsheets.ValueRange{
		Values: [][]interface{}{{
			name,
			category,
			start.Format(TimeLayout),
			end.Format(TimeLayout),
			duration,
		}},
	}
	_, err := c.svc.Spreadsheets.Values.
		Append(c.spreadsheetID, c.sheetName, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append activity row: %w", err)
	}
	return nil
}

// Rows returns every data row. The first worksheet row is the header.
func (c *Client) Rows(ctx context.Context) ([]Row, error) {
	resp, err := c.svc.Spreadsheets.Values.
		Get(c.spreadsheetID, fmt.Sprintf("%s!A2:E", c.sheetName)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("read activity rows: %w", err)
	}
	rows := make([]Row, 0, len(resp.Values))
	for _, v := range resp.Values {
		rows = append(rows, Row{
			ActivityName: cell(v, 0),
			Category:     cell(v, 1),
			StartTime:    cell(v, 2),
			Duration:     cell(v, 4),
		})
	}
	return rows, nil
}

func cell(v []interface{}, i int) string {
	if i >= len(v) {
		return ""
	}
	if s, ok := v[i].(string); ok {
		return s
	}
	return fmt.Sprint(v[i])
}

package sheetclient

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/sheets/v4"
)

// RemoveRows deletes rows start..end (1-based, inclusive).
func (c *Client) RemoveRows(ctx context.Context, ws *Worksheet, start, end int) error {
	ws = c.target(ws)
	if err := c.deleteDimension(ctx, ws, "ROWS", start, end); err != nil {
		return err
	}
	ws.Rows -= int64(end - start + 1)
	return nil
}

// RemoveColumns deletes columns start..end (1-based, inclusive).
func (c *Client) RemoveColumns(ctx context.Context, ws *Worksheet, start, end int) error {
	ws = c.target(ws)
	if err := c.deleteDimension(ctx, ws, "COLUMNS", start, end); err != nil {
		return err
	}
	ws.Cols -= int64(end - start + 1)
	return nil
}

func (c *Client) deleteDimension(ctx context.Context, ws *Worksheet, dim string, start, end int) error {
	if start < 1 || end < start {
		return fmt.Errorf("remove %s: invalid range %d..%d", strings.ToLower(dim), start, end)
	}
	_, err := c.batchUpdate(ctx, c.spreadsheetID(ws), &sheets.Request{
		DeleteDimension: &sheets.DeleteDimensionRequest{
			Range: dimensionRange(ws, dim, start-1, end),
		},
	})
	if err != nil {
		return fmt.Errorf("remove %s %d..%d from %q: %w", strings.ToLower(dim), start, end, ws.Title, err)
	}
	return nil
}

// Clear removes every value from ws.
func (c *Client) Clear(ctx context.Context, ws *Worksheet) error {
	ws = c.target(ws)
	return c.clearValues(ctx, ws, "")
}

// ClearRange removes values from start:end. An empty end clears start only.
// A sheet-qualified start ("Orders!A1") targets that worksheet.
func (c *Client) ClearRange(ctx context.Context, ws *Worksheet, start, end string) error {
	rng := strings.TrimSpace(start)
	if e := strings.TrimSpace(end); e != "" {
		rng += ":" + e
	}
	ws, _, rangePart, err := c.rangeTarget(ws, rng)
	if err != nil {
		return err
	}
	return c.clearValues(ctx, ws, rangePart)
}

func (c *Client) clearValues(ctx context.Context, ws *Worksheet, rng string) error {
	full := sheetRange(ws.Title, rng)
	_, err := c.sheets.Spreadsheets.Values.Clear(c.spreadsheetID(ws), full, &sheets.ClearValuesRequest{}).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("clear %s: %w", full, err)
	}
	return nil
}

// ClearByField resets the given cell fields (for example "userEnteredFormat"
// or "*") across the whole worksheet.
func (c *Client) ClearByField(ctx context.Context, ws *Worksheet, fields string) error {
	ws = c.target(ws)
	fields = strings.TrimSpace(fields)
	if fields == "" {
		return fmt.Errorf("clear by field: empty field mask")
	}
	_, err := c.batchUpdate(ctx, c.spreadsheetID(ws), &sheets.Request{
		UpdateCells: &sheets.UpdateCellsRequest{
			Range: &sheets.GridRange{
				SheetId:         ws.ID,
				ForceSendFields: []string{"SheetId"},
			},
			Fields: fields,
		},
	})
	if err != nil {
		return fmt.Errorf("clear %s in %q: %w", fields, ws.Title, err)
	}
	return nil
}

package sheetclient

import (
	"context"
	"fmt"
)

// ReadTable fetches the bound worksheet, uses its first row as the header and
// drops rows with missing values.
func (c *Client) ReadTable(ctx context.Context) (*Table, error) {
	values, err := c.values(ctx, c.worksheet)
	if err != nil {
		return nil, err
	}
	return tableFromValues(values), nil
}

// ReadList is ReadTable without the header.
func (c *Client) ReadList(ctx context.Context) ([][]any, error) {
	t, err := c.ReadTable(ctx)
	if err != nil {
		return nil, err
	}
	return t.List(), nil
}

// ReadMap is ReadTable keyed by column name, then row index.
func (c *Client) ReadMap(ctx context.Context) (map[string]map[int]any, error) {
	t, err := c.ReadTable(ctx)
	if err != nil {
		return nil, err
	}
	return t.Map(), nil
}

// renderUnformatted keeps numbers and booleans typed instead of returning
// their display strings.
const renderUnformatted = "UNFORMATTED_VALUE"

func (c *Client) values(ctx context.Context, ws *Worksheet) ([][]any, error) {
	resp, err := c.sheets.Spreadsheets.Values.Get(c.spreadsheetID(ws), sheetRange(ws.Title, "")).
		MajorDimension("ROWS").
		ValueRenderOption(renderUnformatted).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("get values of %q: %w", ws.Title, err)
	}
	return resp.Values, nil
}

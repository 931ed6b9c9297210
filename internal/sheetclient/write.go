package sheetclient

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/sheets/v4"
)

const (
	inputUserEntered = "USER_ENTERED"
	inputRaw         = "RAW"
)

// WriteOptions control how a payload is laid into a worksheet.
type WriteOptions struct {
	// CopyIndex writes the row position as the first column.
	CopyIndex bool
	// CopyHead writes the column names as the first row.
	CopyHead bool
	// Extend grows the worksheet when the payload does not fit.
	Extend bool
	// Fit resizes the worksheet to exactly the written extent.
	Fit bool
	// EscapeFormulae prefixes values starting with '=' with an apostrophe.
	EscapeFormulae bool
}

func DefaultWriteOptions() WriteOptions {
	return WriteOptions{CopyHead: true}
}

// CellValue is one entry of an UpdateCells call.
type CellValue struct {
	Cell  string
	Value any
}

// WriteTable writes t with its top-left corner at start.
func (c *Client) WriteTable(ctx context.Context, t *Table, start string, ws *Worksheet, opts WriteOptions) error {
	if t == nil {
		return fmt.Errorf("write table: nil table")
	}
	return c.writeGrid(ctx, c.target(ws), start, t.Values(opts.CopyIndex, opts.CopyHead), opts)
}

// WriteList writes rows of values with the first row at start. CopyIndex and
// CopyHead do not apply.
func (c *Client) WriteList(ctx context.Context, values [][]any, start string, ws *Worksheet, opts WriteOptions) error {
	return c.writeGrid(ctx, c.target(ws), start, values, opts)
}

// WriteMap writes column -> values as a table with a header row.
func (c *Client) WriteMap(ctx context.Context, data map[string][]any, start string, ws *Worksheet, opts WriteOptions) error {
	opts.CopyIndex = false
	opts.CopyHead = true
	return c.WriteTable(ctx, TableFromMap(data), start, ws, opts)
}

func (c *Client) writeGrid(ctx context.Context, ws *Worksheet, start string, grid [][]any, opts WriteOptions) error {
	if len(grid) == 0 {
		return nil
	}
	r, err := parseA1Range(start)
	if err != nil {
		return fmt.Errorf("start cell: %w", err)
	}

	width := 0
	out := make([][]any, len(grid))
	for i, row := range grid {
		if len(row) > width {
			width = len(row)
		}
		out[i] = make([]any, len(row))
		for j, v := range row {
			out[i][j] = writableValue(v, opts.EscapeFormulae)
		}
	}
	if width == 0 {
		return nil
	}

	endRow := r.StartRow + len(out) - 1
	endCol := r.StartCol + width - 1

	switch {
	case opts.Fit:
		if err := c.ResizeWorksheet(ctx, ws, int64(endRow), int64(endCol)); err != nil {
			return err
		}
	case opts.Extend:
		if err := c.extendTo(ctx, ws, endRow, endCol); err != nil {
			return err
		}
	}

	rng := cellName(r.StartCol, r.StartRow) + ":" + cellName(endCol, endRow)
	return c.updateValues(ctx, ws, rng, "ROWS", out, true)
}

func writableValue(v any, escape bool) any {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok && escape && strings.HasPrefix(s, "=") {
		return "'" + s
	}
	return v
}

func (c *Client) extendTo(ctx context.Context, ws *Worksheet, rows, cols int) error {
	if int64(rows) <= ws.Rows && int64(cols) <= ws.Cols {
		return nil
	}
	return c.ResizeWorksheet(ctx, ws, max(ws.Rows, int64(rows)), max(ws.Cols, int64(cols)))
}

func (c *Client) updateValues(ctx context.Context, ws *Worksheet, rng, majorDim string, values [][]any, parse bool) error {
	input := inputRaw
	if parse {
		input = inputUserEntered
	}
	full := sheetRange(ws.Title, rng)
	_, err := c.sheets.Spreadsheets.Values.Update(c.spreadsheetID(ws), full, &sheets.ValueRange{
		Range:          full,
		MajorDimension: majorDim,
		Values:         values,
	}).ValueInputOption(input).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", full, err)
	}
	return nil
}

// UpdateCell sets one cell.
func (c *Client) UpdateCell(ctx context.Context, ws *Worksheet, cell string, value any) error {
	ws = c.target(ws)
	if _, _, err := parseA1Cell(strings.TrimSpace(cell)); err != nil {
		return err
	}
	return c.updateValues(ctx, ws, strings.TrimSpace(cell), "ROWS", [][]any{{writableValue(value, false)}}, true)
}

// InsertRows inserts number rows after row (0 inserts at the top) and fills
// them with values. inherit copies formatting from the row above.
func (c *Client) InsertRows(ctx context.Context, ws *Worksheet, row, number int, inherit bool, values [][]any) error {
	ws = c.target(ws)
	if err := c.insertDimension(ctx, ws, "ROWS", row, number, inherit); err != nil {
		return err
	}
	ws.Rows += int64(number)
	if len(values) == 0 {
		return nil
	}
	return c.writeGrid(ctx, ws, cellName(1, row+1), values, WriteOptions{})
}

// InsertColumns inserts number columns after col and fills them with values,
// one inner slice per column.
func (c *Client) InsertColumns(ctx context.Context, ws *Worksheet, col, number int, inherit bool, values [][]any) error {
	ws = c.target(ws)
	if err := c.insertDimension(ctx, ws, "COLUMNS", col, number, inherit); err != nil {
		return err
	}
	ws.Cols += int64(number)
	if len(values) == 0 {
		return nil
	}
	height := 0
	for _, v := range values {
		height = max(height, len(v))
	}
	if height == 0 {
		return nil
	}
	rng := cellName(col+1, 1) + ":" + cellName(col+len(values), height)
	return c.updateValues(ctx, ws, rng, "COLUMNS", normalizeGrid(values), true)
}

func (c *Client) insertDimension(ctx context.Context, ws *Worksheet, dim string, at, number int, inherit bool) error {
	if at < 0 || number < 1 {
		return fmt.Errorf("insert %s: invalid position %d / count %d", strings.ToLower(dim), at, number)
	}
	if inherit && at == 0 {
		return fmt.Errorf("insert %s: cannot inherit before the first one", strings.ToLower(dim))
	}
	_, err := c.batchUpdate(ctx, c.spreadsheetID(ws), &sheets.Request{
		InsertDimension: &sheets.InsertDimensionRequest{
			Range:             dimensionRange(ws, dim, at, at+number),
			InheritFromBefore: inherit,
		},
	})
	if err != nil {
		return fmt.Errorf("insert %s in %q: %w", strings.ToLower(dim), ws.Title, err)
	}
	return nil
}

// UpdateRange writes values into rng row by row. A sheet-qualified rng
// ("Orders!A1:B2") targets that worksheet. parse selects USER_ENTERED over RAW
// input; extend grows the worksheet to fit.
func (c *Client) UpdateRange(ctx context.Context, ws *Worksheet, rng string, values [][]any, extend, parse bool) error {
	ws, r, rangePart, err := c.rangeTarget(ws, rng)
	if err != nil {
		return err
	}
	if extend {
		width := 0
		for _, row := range values {
			width = max(width, len(row))
		}
		endRow := max(r.EndRow, r.StartRow+len(values)-1)
		endCol := max(r.EndCol, r.StartCol+width-1)
		if err := c.extendTo(ctx, ws, endRow, endCol); err != nil {
			return err
		}
	}
	return c.updateValues(ctx, ws, rangePart, "ROWS", normalizeGrid(values), parse)
}

// UpdateRow writes values into row index, skipping colOffset columns.
func (c *Client) UpdateRow(ctx context.Context, ws *Worksheet, index int, values []any, colOffset int) error {
	ws = c.target(ws)
	if index < 1 || colOffset < 0 {
		return fmt.Errorf("update row: invalid row %d / offset %d", index, colOffset)
	}
	if len(values) == 0 {
		return nil
	}
	rng := cellName(colOffset+1, index) + ":" + cellName(colOffset+len(values), index)
	return c.updateValues(ctx, ws, rng, "ROWS", normalizeGrid([][]any{values}), true)
}

// UpdateColumn writes values into column index, skipping rowOffset rows.
func (c *Client) UpdateColumn(ctx context.Context, ws *Worksheet, index int, values []any, rowOffset int) error {
	ws = c.target(ws)
	if index < 1 || rowOffset < 0 {
		return fmt.Errorf("update column: invalid column %d / offset %d", index, rowOffset)
	}
	if len(values) == 0 {
		return nil
	}
	rng := cellName(index, rowOffset+1) + ":" + cellName(index, rowOffset+len(values))
	return c.updateValues(ctx, ws, rng, "COLUMNS", normalizeGrid([][]any{values}), true)
}

// UpdateCells sets each cell in one request.
func (c *Client) UpdateCells(ctx context.Context, ws *Worksheet, cells []CellValue) error {
	ws = c.target(ws)
	if len(cells) == 0 {
		return nil
	}
	data := make([]*sheets.ValueRange, 0, len(cells))
	for _, cv := range cells {
		cell := strings.TrimSpace(cv.Cell)
		if _, _, err := parseA1Cell(cell); err != nil {
			return err
		}
		data = append(data, &sheets.ValueRange{
			Range:  sheetRange(ws.Title, cell),
			Values: [][]any{{writableValue(cv.Value, false)}},
		})
	}
	_, err := c.sheets.Spreadsheets.Values.BatchUpdate(c.spreadsheetID(ws), &sheets.BatchUpdateValuesRequest{
		ValueInputOption: inputUserEntered,
		Data:             data,
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update cells in %q: %w", ws.Title, err)
	}
	return nil
}

func normalizeGrid(values [][]any) [][]any {
	out := make([][]any, len(values))
	for i, row := range values {
		out[i] = make([]any, len(row))
		for j, v := range row {
			out[i][j] = writableValue(v, false)
		}
	}
	return out
}

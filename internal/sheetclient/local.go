package sheetclient

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/xuri/excelize/v2"
)

// Format is a local mirror file format.
type Format string

const (
	FormatExcel Format = "excel"
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatExcel, FormatCSV, FormatJSON:
		return f, nil
	case "xlsx":
		return FormatExcel, nil
	default:
		return "", fmt.Errorf("unknown format %q (expected excel|csv|json)", s)
	}
}

// FormatFromPath infers the format from the file extension. Anything that is
// neither .xlsx nor .csv is treated as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return FormatExcel
	case ".csv":
		return FormatCSV
	default:
		return FormatJSON
	}
}

// ExportLocal writes the current ReadTable result to path.
func (c *Client) ExportLocal(ctx context.Context, path string, format Format) error {
	t, err := c.ReadTable(ctx)
	if err != nil {
		return err
	}
	return WriteTableFile(c.fs, path, format, t)
}

// ImportLocal reads a local mirror file written in format.
func (c *Client) ImportLocal(path string, format Format) (*Table, error) {
	return ReadTableFile(c.fs, path, format)
}

// WriteTableFile writes t to path on fsys (the OS filesystem when nil).
func WriteTableFile(fsys afero.Fs, path string, format Format, t *Table) (err error) {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := EncodeTable(f, format, t); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// EncodeTable writes t to w in format.
func EncodeTable(w io.Writer, format Format, t *Table) error {
	switch format {
	case FormatExcel:
		return writeExcel(w, t)
	case FormatCSV:
		return writeCSV(w, t)
	case FormatJSON:
		return writeJSON(w, t)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func ReadTableFile(fsys afero.Fs, path string, format Format) (*Table, error) {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	f, err := fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	t, err := DecodeTable(f, format)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return t, nil
}

// DecodeTable reads a table in format from r. Empty cells become nil.
func DecodeTable(r io.Reader, format Format) (*Table, error) {
	switch format {
	case FormatExcel:
		return readExcel(r)
	case FormatCSV:
		return readCSV(r)
	case FormatJSON:
		return readJSON(r)
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

func writeExcel(w io.Writer, t *Table) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	head := make([]any, len(t.Columns))
	for i, c := range t.Columns {
		head[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &head); err != nil {
		return err
	}
	for i, row := range t.Rows {
		r := append([]any(nil), row...)
		if err := f.SetSheetRow(sheet, cellName(1, i+2), &r); err != nil {
			return err
		}
	}
	return f.Write(w)
}

func readExcel(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, err
	}
	return tableFromStrings(rows), nil
}

func writeCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	for _, row := range t.Rows {
		rec := make([]string, len(row))
		for i, v := range row {
			rec[i] = cellString(v)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func readCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	return tableFromStrings(rows), nil
}

// tableFromStrings keeps every row; empty cells become nil.
func tableFromStrings(rows [][]string) *Table {
	t := &Table{Columns: []string{}, Rows: [][]any{}}
	if len(rows) == 0 {
		return t
	}
	t.Columns = append(t.Columns, rows[0]...)
	for _, raw := range rows[1:] {
		row := make([]any, len(t.Columns))
		for i := range row {
			if i < len(raw) && raw[i] != "" {
				row[i] = raw[i]
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// writeJSON emits an array of records with keys in column order.
func writeJSON(w io.Writer, t *Table) error {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, row := range t.Rows {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		for c, name := range t.Columns {
			if c > 0 {
				buf.WriteByte(',')
			}
			k, err := json.Marshal(name)
			if err != nil {
				return err
			}
			var v any
			if c < len(row) {
				v = row[c]
			}
			b, err := json.Marshal(v)
			if err != nil {
				return err
			}
			buf.Write(k)
			buf.WriteByte(':')
			buf.Write(b)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "    "); err != nil {
		return err
	}
	out.WriteByte('\n')
	_, err := w.Write(out.Bytes())
	return err
}

// readJSON reads an array of records. Columns appear in first-seen key order.
func readJSON(r io.Reader) (*Table, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := expectDelim(dec, '['); err != nil {
		return nil, err
	}

	var (
		cols    []string
		index   = map[string]int{}
		records []map[string]any
	)
	for dec.More() {
		if err := expectDelim(dec, '{'); err != nil {
			return nil, err
		}
		rec := map[string]any{}
		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := tok.(string)
			if !ok {
				return nil, fmt.Errorf("expected object key, got %v", tok)
			}
			var v any
			if err := dec.Decode(&v); err != nil {
				return nil, err
			}
			if _, seen := index[key]; !seen {
				index[key] = len(cols)
				cols = append(cols, key)
			}
			rec[key] = v
		}
		if err := expectDelim(dec, '}'); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := expectDelim(dec, ']'); err != nil {
		return nil, err
	}

	t := &Table{Columns: []string{}, Rows: [][]any{}}
	t.Columns = append(t.Columns, cols...)
	for _, rec := range records {
		row := make([]any, len(cols))
		for k, v := range rec {
			if n, ok := v.(json.Number); ok {
				v = numberValue(n)
			}
			row[index[k]] = v
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func numberValue(n json.Number) any {
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}

var errUnexpectedToken = errors.New("unexpected JSON token")

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("%w: %v (expected %v)", errUnexpectedToken, tok, want)
	}
	return nil
}

package sheetclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/steipete/gsheet/internal/config"
)

type cell struct{ row, col int }

type fakeSheet struct {
	props sheets.SheetProperties
	cells map[cell]any
}

type fakeDoc struct {
	id     string
	title  string
	sheets []*fakeSheet
}

// fakeGoogle is an in-memory stand-in for the Sheets v4 and Drive v3 REST
// surface the client uses.
type fakeGoogle struct {
	t  *testing.T
	mu sync.Mutex

	docs    map[string]*fakeDoc
	nextID  int64
	nextDoc int

	requests    []*sheets.Request
	inputs      []string
	renders     []string
	permissions []drive.Permission
	emailMsgs   []string
	deleted     []string
	copied      []string
	moved       []string
	gets        int
}

func newFakeGoogle(t *testing.T) *fakeGoogle {
	return &fakeGoogle{t: t, docs: map[string]*fakeDoc{}, nextID: 100}
}

func (f *fakeGoogle) addDoc(id, title string, sheetTitles ...string) *fakeDoc {
	d := &fakeDoc{id: id, title: title}
	for i, st := range sheetTitles {
		d.sheets = append(d.sheets, &fakeSheet{
			props: sheets.SheetProperties{
				SheetId: int64(i),
				Title:   st,
				Index:   int64(i),
				GridProperties: &sheets.GridProperties{
					RowCount:    defaultRows,
					ColumnCount: defaultCols,
				},
			},
			cells: map[cell]any{},
		})
	}
	f.docs[id] = d
	return d
}

func (d *fakeDoc) sheet(title string) *fakeSheet {
	for _, s := range d.sheets {
		if s.props.Title == title {
			return s
		}
	}
	return nil
}

func (d *fakeDoc) sheetByID(id int64) *fakeSheet {
	for _, s := range d.sheets {
		if s.props.SheetId == id {
			return s
		}
	}
	return nil
}

func (d *fakeDoc) api() *sheets.Spreadsheet {
	out := &sheets.Spreadsheet{
		SpreadsheetId:  d.id,
		SpreadsheetUrl: "https://docs.google.com/spreadsheets/d/" + d.id,
		Properties:     &sheets.SpreadsheetProperties{Title: d.title},
	}
	for _, s := range d.sheets {
		p := s.props
		out.Sheets = append(out.Sheets, &sheets.Sheet{Properties: &p})
	}
	return out
}

func (s *fakeSheet) set(row, col int, v any) {
	if str, ok := v.(string); ok && str == "" {
		delete(s.cells, cell{row, col})
		return
	}
	if v == nil {
		return
	}
	s.cells[cell{row, col}] = v
}

// grid returns the populated extent, omitting trailing empty cells per row.
func (s *fakeSheet) grid(r a1Range) [][]any {
	var out [][]any
	for row := r.StartRow; row <= r.EndRow; row++ {
		var line []any
		last := -1
		for col := r.StartCol; col <= r.EndCol; col++ {
			v, ok := s.cells[cell{row, col}]
			if !ok {
				v = ""
			} else {
				last = col - r.StartCol
			}
			line = append(line, v)
		}
		out = append(out, line[:last+1])
	}
	for len(out) > 0 && len(out[len(out)-1]) == 0 {
		out = out[:len(out)-1]
	}
	return out
}

func (s *fakeSheet) extent() a1Range {
	r := a1Range{StartRow: 1, StartCol: 1}
	for c := range s.cells {
		r.EndRow = max(r.EndRow, c.row)
		r.EndCol = max(r.EndCol, c.col)
	}
	return r
}

func (f *fakeGoogle) resolve(d *fakeDoc, rng string) (*fakeSheet, a1Range) {
	f.t.Helper()
	if !strings.Contains(rng, "!") {
		name, err := unquoteSheetName(rng)
		if err != nil {
			f.t.Fatalf("bad range %q: %v", rng, err)
		}
		s := d.sheet(name)
		if s == nil {
			f.t.Fatalf("unknown sheet %q", name)
		}
		return s, s.extent()
	}
	r, err := parseA1Range(rng)
	if err != nil {
		f.t.Fatalf("bad range %q: %v", rng, err)
	}
	s := d.sheet(r.SheetName)
	if s == nil {
		f.t.Fatalf("unknown sheet %q", r.SheetName)
	}
	return s, r
}

func (f *fakeGoogle) writeRange(d *fakeDoc, vr *sheets.ValueRange, rng string) {
	s, r := f.resolve(d, rng)
	for i, line := range vr.Values {
		for j, v := range line {
			if vr.MajorDimension == "COLUMNS" {
				s.set(r.StartRow+j, r.StartCol+i, v)
			} else {
				s.set(r.StartRow+i, r.StartCol+j, v)
			}
		}
	}
}

// formatted mimics FORMATTED_VALUE, the API default: every cell comes back
// as its display string.
func formatted(grid [][]any) [][]any {
	out := make([][]any, len(grid))
	for i, row := range grid {
		out[i] = make([]any, len(row))
		for j, v := range row {
			out[i][j] = fmt.Sprint(v)
		}
	}
	return out
}

func writeJSONResponse(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeGoogle) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path
	for _, p := range []string{"/sheets/v4", "/v4", "/drive/v3"} {
		path = strings.TrimPrefix(path, p)
	}

	switch {
	case path == "/spreadsheets" && r.Method == http.MethodPost:
		f.createSpreadsheet(w, r)
	case strings.HasPrefix(path, "/spreadsheets/"):
		f.serveSheets(w, r, strings.TrimPrefix(path, "/spreadsheets/"))
	case strings.HasPrefix(path, "/files"):
		f.serveDrive(w, r, strings.TrimPrefix(path, "/files"))
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeGoogle) createSpreadsheet(w http.ResponseWriter, r *http.Request) {
	var req sheets.Spreadsheet
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		f.t.Fatalf("decode create: %v", err)
	}
	f.nextDoc++
	d := f.addDoc(fmt.Sprintf("new-%d", f.nextDoc), req.Properties.Title, "Sheet1")
	writeJSONResponse(w, d.api())
}

func (f *fakeGoogle) serveSheets(w http.ResponseWriter, r *http.Request, rest string) {
	parts := strings.SplitN(rest, "/", 3)
	id := strings.TrimSuffix(parts[0], ":batchUpdate")
	d, ok := f.docs[id]
	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":404,"message":"Requested entity was not found.","errors":[{"reason":"notFound"}]}}`))
		return
	}

	switch {
	case len(parts) == 1 && strings.HasSuffix(parts[0], ":batchUpdate") && r.Method == http.MethodPost:
		var req sheets.BatchUpdateSpreadsheetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			f.t.Fatalf("decode batchUpdate: %v", err)
		}
		replies := make([]*sheets.Response, 0, len(req.Requests))
		for _, q := range req.Requests {
			f.requests = append(f.requests, q)
			replies = append(replies, f.apply(d, q))
		}
		writeJSONResponse(w, &sheets.BatchUpdateSpreadsheetResponse{SpreadsheetId: d.id, Replies: replies})
	case len(parts) == 1 && r.Method == http.MethodGet:
		f.gets++
		writeJSONResponse(w, d.api())
	case len(parts) == 2 && parts[1] == "values:batchUpdate" && r.Method == http.MethodPost:
		var req sheets.BatchUpdateValuesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			f.t.Fatalf("decode values batchUpdate: %v", err)
		}
		f.inputs = append(f.inputs, req.ValueInputOption)
		for _, vr := range req.Data {
			f.writeRange(d, vr, vr.Range)
		}
		writeJSONResponse(w, map[string]any{"spreadsheetId": d.id})
	case len(parts) == 3 && parts[1] == "values":
		rng := parts[2]
		switch {
		case strings.HasSuffix(rng, ":clear") && r.Method == http.MethodPost:
			s, rg := f.resolve(d, strings.TrimSuffix(rng, ":clear"))
			for c := range s.cells {
				if c.row >= rg.StartRow && c.row <= rg.EndRow && c.col >= rg.StartCol && c.col <= rg.EndCol {
					delete(s.cells, c)
				}
			}
			writeJSONResponse(w, map[string]any{"clearedRange": rng})
		case r.Method == http.MethodGet:
			s, rg := f.resolve(d, rng)
			render := r.URL.Query().Get("valueRenderOption")
			f.renders = append(f.renders, render)
			grid := s.grid(rg)
			if render != renderUnformatted {
				grid = formatted(grid)
			}
			writeJSONResponse(w, map[string]any{
				"range":          rng,
				"majorDimension": "ROWS",
				"values":         grid,
			})
		case r.Method == http.MethodPut:
			var vr sheets.ValueRange
			if err := json.NewDecoder(r.Body).Decode(&vr); err != nil {
				f.t.Fatalf("decode update: %v", err)
			}
			f.inputs = append(f.inputs, r.URL.Query().Get("valueInputOption"))
			f.writeRange(d, &vr, rng)
			writeJSONResponse(w, map[string]any{"updatedRange": rng})
		default:
			http.NotFound(w, r)
		}
	case len(parts) == 3 && parts[1] == "sheets" && strings.HasSuffix(parts[2], ":copyTo"):
		var req sheets.CopySheetToAnotherSpreadsheetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			f.t.Fatalf("decode copyTo: %v", err)
		}
		srcID, _ := strconv.ParseInt(strings.TrimSuffix(parts[2], ":copyTo"), 10, 64)
		src := d.sheetByID(srcID)
		dst := f.docs[req.DestinationSpreadsheetId]
		if src == nil || dst == nil {
			http.NotFound(w, r)
			return
		}
		ns := f.cloneSheet(dst, src, "Copy of "+src.props.Title)
		writeJSONResponse(w, ns.props)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeGoogle) cloneSheet(d *fakeDoc, src *fakeSheet, title string) *fakeSheet {
	f.nextID++
	ns := &fakeSheet{props: src.props, cells: map[cell]any{}}
	g := *src.props.GridProperties
	ns.props.GridProperties = &g
	ns.props.SheetId = f.nextID
	ns.props.Title = title
	ns.props.Index = int64(len(d.sheets))
	for k, v := range src.cells {
		ns.cells[k] = v
	}
	d.sheets = append(d.sheets, ns)
	return ns
}

func (f *fakeGoogle) apply(d *fakeDoc, q *sheets.Request) *sheets.Response {
	switch {
	case q.AddSheet != nil:
		f.nextID++
		p := *q.AddSheet.Properties
		p.SheetId = f.nextID
		p.Index = int64(len(d.sheets))
		d.sheets = append(d.sheets, &fakeSheet{props: p, cells: map[cell]any{}})
		return &sheets.Response{AddSheet: &sheets.AddSheetResponse{Properties: &p}}
	case q.DuplicateSheet != nil:
		src := d.sheetByID(q.DuplicateSheet.SourceSheetId)
		ns := f.cloneSheet(d, src, q.DuplicateSheet.NewSheetName)
		p := ns.props
		return &sheets.Response{DuplicateSheet: &sheets.DuplicateSheetResponse{Properties: &p}}
	case q.DeleteSheet != nil:
		kept := d.sheets[:0]
		for _, s := range d.sheets {
			if s.props.SheetId != q.DeleteSheet.SheetId {
				kept = append(kept, s)
			}
		}
		d.sheets = kept
	case q.UpdateSpreadsheetProperties != nil:
		d.title = q.UpdateSpreadsheetProperties.Properties.Title
	case q.UpdateSheetProperties != nil:
		p := q.UpdateSheetProperties.Properties
		s := d.sheetByID(p.SheetId)
		for _, field := range strings.Split(q.UpdateSheetProperties.Fields, ",") {
			switch field {
			case "title":
				s.props.Title = p.Title
			case "gridProperties.rowCount":
				s.props.GridProperties.RowCount = p.GridProperties.RowCount
			case "gridProperties.columnCount":
				s.props.GridProperties.ColumnCount = p.GridProperties.ColumnCount
			case "gridProperties.frozenRowCount":
				s.props.GridProperties.FrozenRowCount = p.GridProperties.FrozenRowCount
			case "gridProperties.frozenColumnCount":
				s.props.GridProperties.FrozenColumnCount = p.GridProperties.FrozenColumnCount
			}
		}
	case q.InsertDimension != nil:
		rg := q.InsertDimension.Range
		f.shift(d.sheetByID(rg.SheetId), rg.Dimension, int(rg.StartIndex), int(rg.EndIndex-rg.StartIndex))
	case q.DeleteDimension != nil:
		rg := q.DeleteDimension.Range
		s := d.sheetByID(rg.SheetId)
		for c := range s.cells {
			pos := c.row
			if rg.Dimension == "COLUMNS" {
				pos = c.col
			}
			if pos > int(rg.StartIndex) && pos <= int(rg.EndIndex) {
				delete(s.cells, c)
			}
		}
		f.shift(s, rg.Dimension, int(rg.EndIndex), -int(rg.EndIndex-rg.StartIndex))
	case q.UpdateCells != nil:
		s := d.sheetByID(q.UpdateCells.Range.SheetId)
		if q.UpdateCells.Fields == "*" || strings.Contains(q.UpdateCells.Fields, "userEnteredValue") {
			s.cells = map[cell]any{}
		}
	}
	return &sheets.Response{}
}

// shift moves every cell positioned after 0-based index `after` by n.
func (f *fakeGoogle) shift(s *fakeSheet, dim string, after, n int) {
	moved := map[cell]any{}
	for c, v := range s.cells {
		if dim == "ROWS" && c.row > after {
			c.row += n
		}
		if dim == "COLUMNS" && c.col > after {
			c.col += n
		}
		moved[c] = v
	}
	s.cells = moved
}

func (f *fakeGoogle) serveDrive(w http.ResponseWriter, r *http.Request, rest string) {
	parts := strings.Split(strings.TrimPrefix(rest, "/"), "/")
	switch {
	case rest == "" && r.Method == http.MethodGet:
		writeJSONResponse(w, map[string]any{"files": []map[string]any{{"id": "folder-by-name"}}})
	case len(parts) == 2 && parts[1] == "permissions" && r.Method == http.MethodPost:
		var p drive.Permission
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			f.t.Fatalf("decode permission: %v", err)
		}
		f.permissions = append(f.permissions, p)
		f.emailMsgs = append(f.emailMsgs, r.URL.Query().Get("emailMessage"))
		writeJSONResponse(w, map[string]any{"id": fmt.Sprintf("perm-%d", len(f.permissions))})
	case len(parts) == 2 && parts[1] == "copy" && r.Method == http.MethodPost:
		var file drive.File
		if err := json.NewDecoder(r.Body).Decode(&file); err != nil {
			f.t.Fatalf("decode copy: %v", err)
		}
		f.copied = append(f.copied, parts[0])
		f.nextDoc++
		id := fmt.Sprintf("copy-%d", f.nextDoc)
		src := f.docs[parts[0]]
		d := f.addDoc(id, file.Name)
		for _, s := range src.sheets {
			f.cloneSheet(d, s, s.props.Title)
		}
		writeJSONResponse(w, map[string]any{"id": id})
	case len(parts) == 1 && r.Method == http.MethodDelete:
		f.deleted = append(f.deleted, parts[0])
		delete(f.docs, parts[0])
		w.WriteHeader(http.StatusNoContent)
	case len(parts) == 1 && r.Method == http.MethodGet:
		writeJSONResponse(w, map[string]any{"id": parts[0], "parents": []string{"root"}})
	case len(parts) == 1 && r.Method == http.MethodPatch:
		f.moved = append(f.moved, parts[0]+"->"+r.URL.Query().Get("addParents"))
		writeJSONResponse(w, map[string]any{"id": parts[0]})
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeGoogle) cellsOf(docID, title string) map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[string]any{}
	s := f.docs[docID].sheet(title)
	for c, v := range s.cells {
		out[cellName(c.col, c.row)] = v
	}
	return out
}

func (f *fakeGoogle) sheetTitles(docID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, s := range f.docs[docID].sheets {
		out = append(out, s.props.Title)
	}
	sort.Strings(out)
	return out
}

const fakeKeyPath = "/opt/gsheet/credentials/sa.json"

// newTestClient wires a Client to a fake backend seeded with doc.
func newTestClient(t *testing.T, fg *fakeGoogle, cfg config.Sheet) (*Client, error) {
	t.Helper()

	srv := httptest.NewServer(fg)
	t.Cleanup(srv.Close)

	sheetsSvc, err := sheets.NewService(context.Background(),
		option.WithoutAuthentication(),
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL+"/"),
	)
	if err != nil {
		t.Fatalf("sheets.NewService: %v", err)
	}
	driveSvc, err := drive.NewService(context.Background(),
		option.WithoutAuthentication(),
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL+"/"),
	)
	if err != nil {
		t.Fatalf("drive.NewService: %v", err)
	}

	origSheets, origDrive := newSheetsService, newDriveService
	t.Cleanup(func() {
		newSheetsService = origSheets
		newDriveService = origDrive
	})
	newSheetsService = func(context.Context, []byte) (*sheets.Service, error) { return sheetsSvc, nil }
	newDriveService = func(context.Context, []byte) (*drive.Service, error) { return driveSvc, nil }

	fsys := afero.NewMemMapFs()
	if err := afero.WriteFile(fsys, fakeKeyPath, []byte(`{"type":"service_account"}`), 0o600); err != nil {
		t.Fatalf("write key: %v", err)
	}
	if cfg.Credentials == "" {
		cfg.Credentials = "sa.json"
	}
	return New(context.Background(), cfg, Options{BaseDir: "/opt/gsheet", Fs: fsys})
}

func mustClient(t *testing.T, fg *fakeGoogle, cfg config.Sheet) *Client {
	t.Helper()
	c, err := newTestClient(t, fg, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

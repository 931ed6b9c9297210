package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/steipete/gsheet/internal/config"
	"github.com/steipete/gsheet/internal/sheetclient"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	return captureFile(t, &os.Stdout, fn)
}

func captureStderr(t *testing.T, fn func()) string {
	t.Helper()
	return captureFile(t, &os.Stderr, fn)
}

func captureFile(t *testing.T, target **os.File, fn func()) string {
	t.Helper()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	orig := *target
	*target = w

	var buf bytes.Buffer
	done := make(chan struct{})
	go func() {
		_, _ = io.Copy(&buf, r)
		close(done)
	}()

	defer func() {
		*target = orig
		_ = w.Close()
		<-done
		_ = r.Close()
	}()
	fn()
	_ = w.Close()
	<-done
	return buf.String()
}

// sheetsBackend fakes the handful of Sheets and Drive endpoints the
// commands reach through a bound client.
type sheetsBackend struct {
	mu sync.Mutex

	values [][]any
	sheets []map[string]any

	puts     []string
	inputs   []string
	requests []*sheets.Request
	perms    []drive.Permission
	deleted  []string
}

func newSheetsBackend() *sheetsBackend {
	return &sheetsBackend{
		sheets: []map[string]any{
			{"sheetId": 0, "title": "Sheet1", "index": 0, "gridProperties": map[string]any{"rowCount": 100, "columnCount": 26}},
			{"sheetId": 7, "title": "Orders", "index": 1, "gridProperties": map[string]any{"rowCount": 50, "columnCount": 4}},
		},
	}
}

func (b *sheetsBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	path := r.URL.Path
	for _, p := range []string{"/sheets/v4", "/v4", "/drive/v3"} {
		path = strings.TrimPrefix(path, p)
	}
	w.Header().Set("Content-Type", "application/json")

	switch {
	case path == "/spreadsheets/s1" && r.Method == http.MethodGet:
		sh := make([]map[string]any, 0, len(b.sheets))
		for _, p := range b.sheets {
			sh = append(sh, map[string]any{"properties": p})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"spreadsheetId":  "s1",
			"spreadsheetUrl": "https://docs.google.com/spreadsheets/d/s1",
			"properties":     map[string]any{"title": "Doc"},
			"sheets":         sh,
		})
	case path == "/spreadsheets/s1:batchUpdate" && r.Method == http.MethodPost:
		var req sheets.BatchUpdateSpreadsheetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		replies := make([]map[string]any, 0, len(req.Requests))
		for _, q := range req.Requests {
			b.requests = append(b.requests, q)
			reply := map[string]any{}
			if q.AddSheet != nil {
				reply["addSheet"] = map[string]any{"properties": map[string]any{
					"sheetId":        42,
					"title":          q.AddSheet.Properties.Title,
					"index":          len(b.sheets),
					"gridProperties": map[string]any{"rowCount": q.AddSheet.Properties.GridProperties.RowCount, "columnCount": q.AddSheet.Properties.GridProperties.ColumnCount},
				}}
			}
			replies = append(replies, reply)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"spreadsheetId": "s1", "replies": replies})
	case strings.HasPrefix(path, "/spreadsheets/s1/values/") && r.Method == http.MethodGet:
		_ = json.NewEncoder(w).Encode(map[string]any{"majorDimension": "ROWS", "values": b.values})
	case strings.HasPrefix(path, "/spreadsheets/s1/values/") && r.Method == http.MethodPut:
		var vr sheets.ValueRange
		if err := json.NewDecoder(r.Body).Decode(&vr); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		b.puts = append(b.puts, strings.TrimPrefix(path, "/spreadsheets/s1/values/"))
		b.inputs = append(b.inputs, r.URL.Query().Get("valueInputOption"))
		_ = json.NewEncoder(w).Encode(map[string]any{"updatedRange": vr.Range})
	case strings.HasPrefix(path, "/spreadsheets/s1/values/") && strings.HasSuffix(path, ":clear"):
		_ = json.NewEncoder(w).Encode(map[string]any{})
	case path == "/files/s1/permissions" && r.Method == http.MethodPost:
		var p drive.Permission
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		b.perms = append(b.perms, p)
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "perm-" + p.Type})
	case strings.HasPrefix(path, "/files/") && r.Method == http.MethodDelete:
		b.deleted = append(b.deleted, strings.TrimPrefix(path, "/files/"))
		w.WriteHeader(http.StatusNoContent)
	default:
		http.NotFound(w, r)
	}
}

// useBackend routes newClient to b and returns a pointer to the config the
// last command was bound with.
func useBackend(t *testing.T, b *sheetsBackend) *config.Sheet {
	t.Helper()

	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)

	sh, err := sheets.NewService(context.Background(),
		option.WithoutAuthentication(),
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL+"/"),
	)
	if err != nil {
		t.Fatalf("sheets.NewService: %v", err)
	}
	dr, err := drive.NewService(context.Background(),
		option.WithoutAuthentication(),
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL+"/"),
	)
	if err != nil {
		t.Fatalf("drive.NewService: %v", err)
	}

	origNew, origEnv := newClient, loadEnv
	t.Cleanup(func() {
		newClient = origNew
		loadEnv = origEnv
	})
	loadEnv = func() error { return nil }

	var got config.Sheet
	newClient = func(ctx context.Context, cfg config.Sheet, _ sheetclient.Options) (*sheetclient.Client, error) {
		got = cfg
		return sheetclient.NewFromServices(ctx, sh, dr, cfg, nil)
	}
	return &got
}

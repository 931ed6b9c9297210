package sheetclient

import (
	"google.golang.org/api/sheets/v4"
)

// Spreadsheet is a remote spreadsheet document.
type Spreadsheet struct {
	ID         string       `json:"id"`
	Title      string       `json:"title"`
	URL        string       `json:"url,omitempty"`
	Worksheets []*Worksheet `json:"worksheets,omitempty"`
}

// Worksheet is one tab of a spreadsheet.
type Worksheet struct {
	SpreadsheetID string `json:"spreadsheetId"`
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	Index         int64  `json:"index"`
	Rows          int64  `json:"rows"`
	Cols          int64  `json:"cols"`
	FrozenRows    int64  `json:"frozenRows,omitempty"`
	FrozenCols    int64  `json:"frozenCols,omitempty"`
}

func spreadsheetFromAPI(ss *sheets.Spreadsheet) *Spreadsheet {
	out := &Spreadsheet{
		ID:  ss.SpreadsheetId,
		URL: ss.SpreadsheetUrl,
	}
	if ss.Properties != nil {
		out.Title = ss.Properties.Title
	}
	for _, sh := range ss.Sheets {
		if sh == nil || sh.Properties == nil {
			continue
		}
		out.Worksheets = append(out.Worksheets, worksheetFromProperties(ss.SpreadsheetId, sh.Properties))
	}
	return out
}

func worksheetFromProperties(spreadsheetID string, p *sheets.SheetProperties) *Worksheet {
	ws := &Worksheet{
		SpreadsheetID: spreadsheetID,
		ID:            p.SheetId,
		Title:         p.Title,
		Index:         p.Index,
	}
	if g := p.GridProperties; g != nil {
		ws.Rows = g.RowCount
		ws.Cols = g.ColumnCount
		ws.FrozenRows = g.FrozenRowCount
		ws.FrozenCols = g.FrozenColumnCount
	}
	return ws
}

// Worksheet returns the worksheet titled title, or nil.
func (s *Spreadsheet) Worksheet(title string) *Worksheet {
	for _, ws := range s.Worksheets {
		if ws.Title == title {
			return ws
		}
	}
	return nil
}

// First returns the first worksheet by index, or nil for an empty document.
func (s *Spreadsheet) First() *Worksheet {
	var first *Worksheet
	for _, ws := range s.Worksheets {
		if first == nil || ws.Index < first.Index {
			first = ws
		}
	}
	return first
}

package sheetclient

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/sheets/v4"
)

const folderMimeType = "application/vnd.google-apps.folder"

// AddWorksheet creates a worksheet in the bound spreadsheet. With src set the
// new worksheet is a copy of src, which may live in another spreadsheet.
func (c *Client) AddWorksheet(ctx context.Context, title string, rows, cols int64, src *Worksheet) (*Worksheet, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("add worksheet: empty title")
	}
	if rows <= 0 {
		rows = defaultRows
	}
	if cols <= 0 {
		cols = defaultCols
	}

	var props *sheets.SheetProperties
	switch {
	case src == nil:
		resp, err := c.batchUpdate(ctx, c.spreadsheet.ID, &sheets.Request{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{
					Title: title,
					GridProperties: &sheets.GridProperties{
						RowCount:    rows,
						ColumnCount: cols,
					},
				},
			},
		})
		if err != nil {
			return nil, fmt.Errorf("add worksheet %q: %w", title, err)
		}
		if len(resp.Replies) > 0 && resp.Replies[0].AddSheet != nil {
			props = resp.Replies[0].AddSheet.Properties
		}
	case c.spreadsheetID(src) == c.spreadsheet.ID:
		resp, err := c.batchUpdate(ctx, c.spreadsheet.ID, &sheets.Request{
			DuplicateSheet: &sheets.DuplicateSheetRequest{
				SourceSheetId:   src.ID,
				NewSheetName:    title,
				ForceSendFields: []string{"SourceSheetId"},
			},
		})
		if err != nil {
			return nil, fmt.Errorf("duplicate worksheet %q: %w", src.Title, err)
		}
		if len(resp.Replies) > 0 && resp.Replies[0].DuplicateSheet != nil {
			props = resp.Replies[0].DuplicateSheet.Properties
		}
	default:
		copied, err := c.sheets.Spreadsheets.Sheets.CopyTo(src.SpreadsheetID, src.ID, &sheets.CopySheetToAnotherSpreadsheetRequest{
			DestinationSpreadsheetId: c.spreadsheet.ID,
		}).Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("copy worksheet %q: %w", src.Title, err)
		}
		ws := worksheetFromProperties(c.spreadsheet.ID, copied)
		if _, err := c.RenameWorksheet(ctx, ws, title); err != nil {
			return nil, err
		}
		c.spreadsheet.Worksheets = append(c.spreadsheet.Worksheets, ws)
		return ws, nil
	}
	if props == nil {
		return nil, fmt.Errorf("add worksheet %q: empty reply", title)
	}

	ws := worksheetFromProperties(c.spreadsheet.ID, props)
	c.spreadsheet.Worksheets = append(c.spreadsheet.Worksheets, ws)
	return ws, nil
}

// DeleteWorksheet removes ws, or the bound worksheet when ws is nil. Deleting
// the bound worksheet rebinds to the first remaining one.
func (c *Client) DeleteWorksheet(ctx context.Context, ws *Worksheet) error {
	ws = c.target(ws)
	_, err := c.batchUpdate(ctx, c.spreadsheetID(ws), &sheets.Request{
		DeleteSheet: &sheets.DeleteSheetRequest{
			SheetId:         ws.ID,
			ForceSendFields: []string{"SheetId"},
		},
	})
	if err != nil {
		return fmt.Errorf("delete worksheet %q: %w", ws.Title, err)
	}

	if c.spreadsheetID(ws) != c.spreadsheet.ID {
		return nil
	}
	kept := c.spreadsheet.Worksheets[:0]
	for _, w := range c.spreadsheet.Worksheets {
		if w.ID != ws.ID {
			kept = append(kept, w)
		}
	}
	c.spreadsheet.Worksheets = kept
	if c.worksheet.ID == ws.ID {
		if first := c.spreadsheet.First(); first != nil {
			c.worksheet = first
		}
	}
	return nil
}

// CreateOptions place a new spreadsheet.
type CreateOptions struct {
	// Template is copied instead of creating an empty document.
	Template *Spreadsheet
	// FolderID or FolderName select the Drive folder to create in.
	FolderID   string
	FolderName string
}

// CreateSpreadsheet creates a spreadsheet titled title.
func (c *Client) CreateSpreadsheet(ctx context.Context, title string, opts CreateOptions) (*Spreadsheet, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("create spreadsheet: empty title")
	}

	folderID := strings.TrimSpace(opts.FolderID)
	if folderID == "" && strings.TrimSpace(opts.FolderName) != "" {
		id, err := c.findFolder(ctx, opts.FolderName)
		if err != nil {
			return nil, err
		}
		folderID = id
	}

	if opts.Template != nil {
		f := &drive.File{Name: title}
		if folderID != "" {
			f.Parents = []string{folderID}
		}
		copied, err := c.drive.Files.Copy(opts.Template.ID, f).
			SupportsAllDrives(true).
			Fields("id").
			Context(ctx).
			Do()
		if err != nil {
			return nil, fmt.Errorf("copy template %s: %w", opts.Template.ID, err)
		}
		return c.getSpreadsheet(ctx, copied.Id)
	}

	created, err := c.sheets.Spreadsheets.Create(&sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{Title: title},
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("create spreadsheet %q: %w", title, err)
	}
	if folderID != "" {
		if err := c.moveToFolder(ctx, created.SpreadsheetId, folderID); err != nil {
			return nil, err
		}
	}
	return spreadsheetFromAPI(created), nil
}

func (c *Client) findFolder(ctx context.Context, name string) (string, error) {
	q := fmt.Sprintf("mimeType = '%s' and name = '%s' and trashed = false",
		folderMimeType, strings.ReplaceAll(strings.TrimSpace(name), "'", "\\'"))
	resp, err := c.drive.Files.List().
		Q(q).
		PageSize(1).
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Fields("files(id)").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("find folder %q: %w", name, err)
	}
	if len(resp.Files) == 0 {
		return "", fmt.Errorf("folder %q not found", name)
	}
	return resp.Files[0].Id, nil
}

func (c *Client) moveToFolder(ctx context.Context, fileID, folderID string) error {
	f, err := c.drive.Files.Get(fileID).
		SupportsAllDrives(true).
		Fields("parents").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("get parents of %s: %w", fileID, err)
	}
	_, err = c.drive.Files.Update(fileID, &drive.File{}).
		AddParents(folderID).
		RemoveParents(strings.Join(f.Parents, ",")).
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("move %s to folder %s: %w", fileID, folderID, err)
	}
	return nil
}

// DeleteSpreadsheet deletes ss. A nil ss is ignored.
func (c *Client) DeleteSpreadsheet(ctx context.Context, ss *Spreadsheet) error {
	if ss == nil {
		return nil
	}
	if err := c.drive.Files.Delete(ss.ID).SupportsAllDrives(true).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete spreadsheet %s: %w", ss.ID, err)
	}
	return nil
}

// ShareOptions describe who gets access.
type ShareOptions struct {
	// Email grants Role to one user and notifies them with Message.
	Email string
	// Role is reader, commenter or writer. Defaults to reader.
	Role string
	// Type "anyone" additionally grants Role to anyone with the link.
	Type    string
	Message string
}

const defaultShareMessage = "Sharing this spreadsheet with you."

// Share grants access to ss, or the bound spreadsheet when ss is nil, and
// returns the created permission IDs.
func (c *Client) Share(ctx context.Context, ss *Spreadsheet, opts ShareOptions) ([]string, error) {
	if ss == nil {
		ss = c.spreadsheet
	}
	role := strings.TrimSpace(opts.Role)
	if role == "" {
		role = "reader"
	}
	email := strings.TrimSpace(opts.Email)
	anyone := strings.EqualFold(strings.TrimSpace(opts.Type), "anyone")
	if email == "" && !anyone {
		return nil, fmt.Errorf("share: need an email or type anyone")
	}

	var ids []string
	if email != "" {
		msg := opts.Message
		if msg == "" {
			msg = defaultShareMessage
		}
		p, err := c.drive.Permissions.Create(ss.ID, &drive.Permission{
			Type:         "user",
			Role:         role,
			EmailAddress: email,
		}).EmailMessage(msg).SupportsAllDrives(true).Fields("id").Context(ctx).Do()
		if err != nil {
			return ids, fmt.Errorf("share %s with %s: %w", ss.ID, email, err)
		}
		ids = append(ids, p.Id)
	}
	if anyone {
		p, err := c.drive.Permissions.Create(ss.ID, &drive.Permission{
			Type: "anyone",
			Role: role,
		}).SupportsAllDrives(true).Fields("id").Context(ctx).Do()
		if err != nil {
			return ids, fmt.Errorf("share %s with anyone: %w", ss.ID, err)
		}
		ids = append(ids, p.Id)
	}
	return ids, nil
}

// RenameSpreadsheet sets the title of ss. Unlike most operations a nil handle
// is rejected rather than defaulted.
func (c *Client) RenameSpreadsheet(ctx context.Context, ss *Spreadsheet, title string) (*Spreadsheet, error) {
	if ss == nil {
		return nil, &ValidationError{Op: "rename spreadsheet", Msg: "not a valid spreadsheet"}
	}
	_, err := c.batchUpdate(ctx, ss.ID, &sheets.Request{
		UpdateSpreadsheetProperties: &sheets.UpdateSpreadsheetPropertiesRequest{
			Properties: &sheets.SpreadsheetProperties{Title: title},
			Fields:     "title",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("rename spreadsheet %s: %w", ss.ID, err)
	}
	ss.Title = title
	return ss, nil
}

// RenameWorksheet sets the title of ws. A nil handle is rejected.
func (c *Client) RenameWorksheet(ctx context.Context, ws *Worksheet, title string) (*Worksheet, error) {
	if ws == nil {
		return nil, &ValidationError{Op: "rename worksheet", Msg: "not a valid worksheet"}
	}
	err := c.updateSheetProperties(ctx, ws, &sheets.SheetProperties{Title: title}, "title")
	if err != nil {
		return nil, err
	}
	ws.Title = title
	return ws, nil
}

// ResizeWorksheet sets the grid size of ws.
func (c *Client) ResizeWorksheet(ctx context.Context, ws *Worksheet, rows, cols int64) error {
	ws = c.target(ws)
	if rows < 1 || cols < 1 {
		return fmt.Errorf("resize worksheet: invalid size %dx%d", rows, cols)
	}
	err := c.updateSheetProperties(ctx, ws, &sheets.SheetProperties{
		GridProperties: &sheets.GridProperties{RowCount: rows, ColumnCount: cols},
	}, "gridProperties.rowCount,gridProperties.columnCount")
	if err != nil {
		return err
	}
	ws.Rows, ws.Cols = rows, cols
	return nil
}

// SetFrozenRows freezes the top n rows of ws.
func (c *Client) SetFrozenRows(ctx context.Context, ws *Worksheet, n int64) error {
	ws = c.target(ws)
	err := c.updateSheetProperties(ctx, ws, &sheets.SheetProperties{
		GridProperties: &sheets.GridProperties{
			FrozenRowCount:  n,
			ForceSendFields: []string{"FrozenRowCount"},
		},
	}, "gridProperties.frozenRowCount")
	if err != nil {
		return err
	}
	ws.FrozenRows = n
	return nil
}

// SetFrozenColumns freezes the leftmost n columns of ws.
func (c *Client) SetFrozenColumns(ctx context.Context, ws *Worksheet, n int64) error {
	ws = c.target(ws)
	err := c.updateSheetProperties(ctx, ws, &sheets.SheetProperties{
		GridProperties: &sheets.GridProperties{
			FrozenColumnCount: n,
			ForceSendFields:   []string{"FrozenColumnCount"},
		},
	}, "gridProperties.frozenColumnCount")
	if err != nil {
		return err
	}
	ws.FrozenCols = n
	return nil
}

func (c *Client) updateSheetProperties(ctx context.Context, ws *Worksheet, props *sheets.SheetProperties, fields string) error {
	props.SheetId = ws.ID
	props.ForceSendFields = append(props.ForceSendFields, "SheetId")
	_, err := c.batchUpdate(ctx, c.spreadsheetID(ws), &sheets.Request{
		UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
			Properties: props,
			Fields:     fields,
		},
	})
	if err != nil {
		return fmt.Errorf("update worksheet %q (%s): %w", ws.Title, fields, err)
	}
	return nil
}

func dimensionRange(ws *Worksheet, dim string, start, end int) *sheets.DimensionRange {
	return &sheets.DimensionRange{
		SheetId:         ws.ID,
		Dimension:       dim,
		StartIndex:      int64(start),
		EndIndex:        int64(end),
		ForceSendFields: []string{"SheetId", "StartIndex"},
	}
}

package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/steipete/gsheet/internal/outfmt"
	"github.com/steipete/gsheet/internal/sheetclient"
	"github.com/steipete/gsheet/internal/ui"
)

func newWorksheetCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "worksheet",
		Aliases: []string{"ws"},
		Short:   "Manage worksheets of the bound spreadsheet",
	}
	cmd.AddCommand(newWorksheetListCmd(flags))
	cmd.AddCommand(newWorksheetAddCmd(flags))
	cmd.AddCommand(newWorksheetDeleteCmd(flags))
	cmd.AddCommand(newWorksheetRenameCmd(flags))
	cmd.AddCommand(newWorksheetResizeCmd(flags))
	cmd.AddCommand(newWorksheetFreezeCmd(flags))
	return cmd
}

func newWorksheetListCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List worksheets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := openClient(cmd.Context(), flags)
			if err != nil {
				return err
			}
			ss := c.Spreadsheet()
			if outfmt.IsJSON(cmd.Context()) {
				return outfmt.WriteJSON(os.Stdout, map[string]any{
					"spreadsheetId": ss.ID,
					"title":         ss.Title,
					"worksheets":    ss.Worksheets,
				})
			}

			w, flush := tableWriter(cmd)
			defer flush()
			fmt.Fprintln(w, "ID\tTITLE\tROWS\tCOLS\tBOUND")
			for _, ws := range ss.Worksheets {
				bound := ""
				if ws.ID == c.Worksheet().ID {
					bound = "*"
				}
				fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%s\n", ws.ID, ws.Title, ws.Rows, ws.Cols, bound)
			}
			return nil
		},
	}
}

func newWorksheetAddCmd(flags *rootFlags) *cobra.Command {
	var rows int64
	var cols int64
	var from string
	var fromSpreadsheet string
	var fromID int64

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a worksheet, optionally copying an existing one",
		Long:  "Add a worksheet. --from copies a worksheet of the bound spreadsheet;\n--from-spreadsheet with --from-id copies one from another spreadsheet.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openClient(cmd.Context(), flags)
			if err != nil {
				return err
			}

			var src *sheetclient.Worksheet
			switch {
			case strings.TrimSpace(fromSpreadsheet) != "":
				src = &sheetclient.Worksheet{SpreadsheetID: strings.TrimSpace(fromSpreadsheet), ID: fromID}
			case strings.TrimSpace(from) != "":
				src = c.Spreadsheet().Worksheet(strings.TrimSpace(from))
				if src == nil {
					return fmt.Errorf("worksheet %q not found in %s", from, c.Spreadsheet().ID)
				}
			}

			ws, err := c.AddWorksheet(cmd.Context(), args[0], rows, cols, src)
			if err != nil {
				return err
			}
			return writeWorksheet(cmd, ws)
		},
	}

	cmd.Flags().Int64Var(&rows, "rows", 100, "Row count")
	cmd.Flags().Int64Var(&cols, "cols", 26, "Column count")
	cmd.Flags().StringVar(&from, "from", "", "Copy the worksheet with this title")
	cmd.Flags().StringVar(&fromSpreadsheet, "from-spreadsheet", "", "Copy from this spreadsheet ID (with --from-id)")
	cmd.Flags().Int64Var(&fromID, "from-id", 0, "Sheet ID to copy from --from-spreadsheet")
	return cmd
}

func writeWorksheet(cmd *cobra.Command, ws *sheetclient.Worksheet) error {
	if outfmt.IsJSON(cmd.Context()) {
		return outfmt.WriteJSON(os.Stdout, map[string]any{"worksheet": ws})
	}
	u := ui.FromContext(cmd.Context())
	u.Out().Printf("id\t%d", ws.ID)
	u.Out().Printf("title\t%s", ws.Title)
	u.Out().Printf("size\t%dx%d", ws.Rows, ws.Cols)
	return nil
}

func newWorksheetDeleteCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [title]",
		Short: "Delete a worksheet (default: the bound one)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openClient(cmd.Context(), flags)
			if err != nil {
				return err
			}
			ws := c.Worksheet()
			if len(args) == 1 {
				ws = c.Spreadsheet().Worksheet(args[0])
				if ws == nil {
					return fmt.Errorf("worksheet %q not found in %s", args[0], c.Spreadsheet().ID)
				}
			}
			if err := confirmDestructive(flags, fmt.Sprintf("Delete worksheet %q?", ws.Title)); err != nil {
				return err
			}
			title := ws.Title
			if err := c.DeleteWorksheet(cmd.Context(), ws); err != nil {
				return err
			}
			if outfmt.IsJSON(cmd.Context()) {
				return outfmt.WriteJSON(os.Stdout, map[string]any{"deleted": true, "title": title})
			}
			ui.FromContext(cmd.Context()).Out().Successf("deleted\t%s", title)
			return nil
		},
	}
}

func newWorksheetRenameCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <new-title>",
		Short: "Rename the bound worksheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openClient(cmd.Context(), flags)
			if err != nil {
				return err
			}
			ws, err := c.RenameWorksheet(cmd.Context(), c.Worksheet(), strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}
			return writeWorksheet(cmd, ws)
		},
	}
}

func newWorksheetResizeCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "resize <rows> <cols>",
		Short: "Set the grid size of the bound worksheet",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return newUsageError(fmt.Errorf("invalid rows %q", args[0]))
			}
			cols, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return newUsageError(fmt.Errorf("invalid cols %q", args[1]))
			}
			c, err := openClient(cmd.Context(), flags)
			if err != nil {
				return err
			}
			if err := c.ResizeWorksheet(cmd.Context(), nil, rows, cols); err != nil {
				return err
			}
			return writeWorksheet(cmd, c.Worksheet())
		},
	}
}

func newWorksheetFreezeCmd(flags *rootFlags) *cobra.Command {
	var rows int64
	var cols int64

	cmd := &cobra.Command{
		Use:   "freeze",
		Short: "Freeze leading rows and/or columns of the bound worksheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("rows") && !cmd.Flags().Changed("cols") {
				return newUsageError(fmt.Errorf("pass --rows and/or --cols"))
			}
			c, err := openClient(cmd.Context(), flags)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("rows") {
				if err := c.SetFrozenRows(cmd.Context(), nil, rows); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("cols") {
				if err := c.SetFrozenColumns(cmd.Context(), nil, cols); err != nil {
					return err
				}
			}
			ws := c.Worksheet()
			if outfmt.IsJSON(cmd.Context()) {
				return outfmt.WriteJSON(os.Stdout, map[string]any{"worksheet": ws})
			}
			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "title\t%s\n", ws.Title)
			fmt.Fprintf(tw, "frozen rows\t%d\n", ws.FrozenRows)
			fmt.Fprintf(tw, "frozen cols\t%d\n", ws.FrozenCols)
			return tw.Flush()
		},
	}

	cmd.Flags().Int64Var(&rows, "rows", 0, "Rows to freeze (0 unfreezes)")
	cmd.Flags().Int64Var(&cols, "cols", 0, "Columns to freeze (0 unfreezes)")
	return cmd
}

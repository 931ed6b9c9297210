package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/steipete/gsheet/internal/outfmt"
	"github.com/steipete/gsheet/internal/sheetclient"
	"github.com/steipete/gsheet/internal/ui"
)

func newWriteCmd(flags *rootFlags) *cobra.Command {
	var from string
	var format string
	var index bool
	var noHead bool
	var extend bool
	var fit bool
	var escape bool

	cmd := &cobra.Command{
		Use:   "write <start>",
		Short: "Write a table with its top-left corner at <start>",
		Long:  "Write a CSV, JSON or Excel table into the bound worksheet.\nRead from stdin with --from - (CSV unless --format says otherwise).",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u := ui.FromContext(cmd.Context())
			t, err := readTableInput(from, format)
			if err != nil {
				return err
			}

			c, err := openClient(cmd.Context(), flags)
			if err != nil {
				return err
			}
			opts := sheetclient.WriteOptions{
				CopyIndex:      index,
				CopyHead:       !noHead,
				Extend:         extend,
				Fit:            fit,
				EscapeFormulae: escape,
			}
			if err := c.WriteTable(cmd.Context(), t, args[0], nil, opts); err != nil {
				return err
			}

			ws := c.Worksheet()
			if outfmt.IsJSON(cmd.Context()) {
				return outfmt.WriteJSON(os.Stdout, map[string]any{
					"worksheet": ws.Title,
					"start":     args[0],
					"rows":      len(t.Rows),
					"columns":   len(t.Columns),
				})
			}
			u.Out().Printf("worksheet\t%s", ws.Title)
			u.Out().Printf("rows\t%d", len(t.Rows))
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "-", "Input file, or - for stdin")
	cmd.Flags().StringVar(&format, "format", "", "Input format: csv|json|excel (default: from file extension)")
	cmd.Flags().BoolVar(&index, "index", false, "Write the row position as the first column")
	cmd.Flags().BoolVar(&noHead, "no-head", false, "Do not write the header row")
	cmd.Flags().BoolVar(&extend, "extend", false, "Grow the worksheet when the table does not fit")
	cmd.Flags().BoolVar(&fit, "fit", false, "Resize the worksheet to exactly the written extent")
	cmd.Flags().BoolVar(&escape, "escape-formulae", false, "Write values starting with = as text")
	return cmd
}

func readTableInput(from, format string) (*sheetclient.Table, error) {
	from = strings.TrimSpace(from)
	f, err := inputFormat(from, format)
	if err != nil {
		return nil, err
	}
	if from == "" || from == "-" {
		return sheetclient.DecodeTable(os.Stdin, f)
	}
	return sheetclient.ReadTableFile(nil, from, f)
}

func inputFormat(path, format string) (sheetclient.Format, error) {
	if strings.TrimSpace(format) != "" {
		f, err := sheetclient.ParseFormat(format)
		if err != nil {
			return "", newUsageError(err)
		}
		return f, nil
	}
	if path == "" || path == "-" {
		return sheetclient.FormatCSV, nil
	}
	return sheetclient.FormatFromPath(path), nil
}

func newCellCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "cell <A1> <value>",
		Short: "Set one cell (values are parsed like typed input)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			u := ui.FromContext(cmd.Context())
			c, err := openClient(cmd.Context(), flags)
			if err != nil {
				return err
			}
			if err := c.UpdateCell(cmd.Context(), nil, args[0], args[1]); err != nil {
				return err
			}
			if outfmt.IsJSON(cmd.Context()) {
				return outfmt.WriteJSON(os.Stdout, map[string]any{
					"worksheet": c.Worksheet().Title,
					"cell":      args[0],
					"value":     args[1],
				})
			}
			u.Out().Printf("updated\t%s!%s", c.Worksheet().Title, args[0])
			return nil
		},
	}
}

func writeUpdated(cmd *cobra.Command, ws *sheetclient.Worksheet, what string, extra map[string]any) error {
	if outfmt.IsJSON(cmd.Context()) {
		out := map[string]any{"worksheet": ws.Title, "updated": what}
		for k, v := range extra {
			out[k] = v
		}
		return outfmt.WriteJSON(os.Stdout, out)
	}
	ui.FromContext(cmd.Context()).Out().Printf("updated\t%s\t%s", ws.Title, what)
	return nil
}

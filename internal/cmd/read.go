package cmd

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/steipete/gsheet/internal/outfmt"
	"github.com/steipete/gsheet/internal/ui"
)

func newReadCmd(flags *rootFlags) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "read",
		Short: "Read the bound worksheet (first row is the header)",
		Long:  "Read the bound worksheet. The first row names the columns; rows with an empty cell are skipped.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			u := ui.FromContext(cmd.Context())
			format = strings.ToLower(strings.TrimSpace(format))
			switch format {
			case "table", "list", "map":
			default:
				return newUsageError(fmt.Errorf("invalid --format %q (expected table|list|map)", format))
			}

			c, err := openClient(cmd.Context(), flags)
			if err != nil {
				return err
			}
			t, err := c.ReadTable(cmd.Context())
			if err != nil {
				return err
			}

			if outfmt.IsJSON(cmd.Context()) {
				switch format {
				case "list":
					return outfmt.WriteJSON(os.Stdout, map[string]any{"rows": t.List()})
				case "map":
					return outfmt.WriteJSON(os.Stdout, map[string]any{"columns": t.Map()})
				default:
					return outfmt.WriteJSON(os.Stdout, map[string]any{
						"columns": t.Columns,
						"rows":    t.Rows,
					})
				}
			}

			if len(t.Rows) == 0 {
				u.Err().Println("No data found")
				return nil
			}

			w, flush := tableWriter(cmd)
			defer flush()
			switch format {
			case "list":
				for _, row := range t.List() {
					writeRow(w, row)
				}
			case "map":
				m := t.Map()
				cols := make([]string, 0, len(m))
				for col := range m {
					cols = append(cols, col)
				}
				sort.Strings(cols)
				for _, col := range cols {
					for i := 0; i < len(t.Rows); i++ {
						fmt.Fprintf(w, "%s\t%d\t%v\n", col, i, m[col][i])
					}
				}
			default:
				fmt.Fprintln(w, strings.Join(t.Columns, "\t"))
				for _, row := range t.Rows {
					writeRow(w, row)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", "Result shape: table|list|map")
	return cmd
}

// tableWriter aligns columns for humans and leaves raw TSV for --plain.
func tableWriter(cmd *cobra.Command) (io.Writer, func()) {
	if outfmt.IsPlain(cmd.Context()) {
		return os.Stdout, func() {}
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	return tw, func() { _ = tw.Flush() }
}

func writeRow(w io.Writer, row []any) {
	cells := make([]string, len(row))
	for i, cell := range row {
		if cell != nil {
			cells[i] = fmt.Sprintf("%v", cell)
		}
	}
	fmt.Fprintln(w, strings.Join(cells, "\t"))
}

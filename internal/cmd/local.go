package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/steipete/gsheet/internal/outfmt"
	"github.com/steipete/gsheet/internal/sheetclient"
	"github.com/steipete/gsheet/internal/ui"
)

func newExportCmd(flags *rootFlags) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export <path>",
		Short: "Save the bound worksheet as xlsx, csv or json",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := inputFormat(args[0], format)
			if err != nil {
				return err
			}
			c, err := openClient(cmd.Context(), flags)
			if err != nil {
				return err
			}
			if err := c.ExportLocal(cmd.Context(), args[0], f); err != nil {
				return err
			}
			if outfmt.IsJSON(cmd.Context()) {
				return outfmt.WriteJSON(os.Stdout, map[string]any{
					"path":      args[0],
					"format":    f,
					"worksheet": c.Worksheet().Title,
				})
			}
			ui.FromContext(cmd.Context()).Out().Printf("exported\t%s", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "excel|csv|json (default: from file extension)")
	return cmd
}

func newImportCmd(flags *rootFlags) *cobra.Command {
	var format string
	var start string
	var fit bool
	var extend bool

	cmd := &cobra.Command{
		Use:   "import <path>",
		Short: "Write a local xlsx, csv or json file into the bound worksheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := inputFormat(args[0], format)
			if err != nil {
				return err
			}
			c, err := openClient(cmd.Context(), flags)
			if err != nil {
				return err
			}
			t, err := c.ImportLocal(args[0], f)
			if err != nil {
				return err
			}
			opts := sheetclient.DefaultWriteOptions()
			opts.Fit = fit
			opts.Extend = extend
			if err := c.WriteTable(cmd.Context(), t, start, nil, opts); err != nil {
				return err
			}
			if outfmt.IsJSON(cmd.Context()) {
				return outfmt.WriteJSON(os.Stdout, map[string]any{
					"path":      args[0],
					"worksheet": c.Worksheet().Title,
					"rows":      len(t.Rows),
				})
			}
			u := ui.FromContext(cmd.Context())
			u.Out().Printf("imported\t%s", args[0])
			u.Out().Printf("rows\t%d", len(t.Rows))
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "excel|csv|json (default: from file extension)")
	cmd.Flags().StringVar(&start, "start", "A1", "Top-left cell to write to")
	cmd.Flags().BoolVar(&fit, "fit", false, "Resize the worksheet to exactly the written extent")
	cmd.Flags().BoolVar(&extend, "extend", true, "Grow the worksheet when the table does not fit")
	return cmd
}

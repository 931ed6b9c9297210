package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/steipete/gsheet/internal/sheetclient"
)

func newUpdateCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update a range, row, column or a set of cells",
	}
	cmd.AddCommand(newUpdateRangeCmd(flags))
	cmd.AddCommand(newUpdateLineCmd(flags, "row"))
	cmd.AddCommand(newUpdateLineCmd(flags, "col"))
	cmd.AddCommand(newUpdateCellsCmd(flags))
	return cmd
}

func newUpdateRangeCmd(flags *rootFlags) *cobra.Command {
	var valuesJSON string
	var raw bool
	var extend bool

	cmd := &cobra.Command{
		Use:   "range <range>",
		Short: "Write rows of values into <range>",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseGridJSON(valuesJSON)
			if err != nil {
				return err
			}
			if len(values) == 0 {
				return newUsageError(fmt.Errorf("missing --values-json"))
			}

			c, err := openClient(cmd.Context(), flags)
			if err != nil {
				return err
			}
			if err := c.UpdateRange(cmd.Context(), nil, args[0], values, extend, !raw); err != nil {
				return err
			}
			return writeUpdated(cmd, c.Worksheet(), args[0], map[string]any{"rows": len(values)})
		},
	}

	cmd.Flags().StringVar(&valuesJSON, "values-json", "", "Values as a JSON 2D array")
	cmd.Flags().BoolVar(&raw, "raw", false, "Store values as-is instead of parsing them like typed input")
	cmd.Flags().BoolVar(&extend, "extend", false, "Grow the worksheet when the values do not fit")
	return cmd
}

func newUpdateLineCmd(flags *rootFlags, dim string) *cobra.Command {
	var valuesJSON string
	var offset int

	unit := "row"
	skip := "columns"
	if dim == "col" {
		unit = "column"
		skip = "rows"
	}

	cmd := &cobra.Command{
		Use:   dim + " <index>",
		Short: fmt.Sprintf("Write values into %s <index> (1-based)", unit),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return newUsageError(fmt.Errorf("invalid %s %q", unit, args[0]))
			}
			values, err := parseRowJSON(valuesJSON)
			if err != nil {
				return err
			}

			c, err := openClient(cmd.Context(), flags)
			if err != nil {
				return err
			}
			if dim == "col" {
				err = c.UpdateColumn(cmd.Context(), nil, index, values, offset)
			} else {
				err = c.UpdateRow(cmd.Context(), nil, index, values, offset)
			}
			if err != nil {
				return err
			}
			return writeUpdated(cmd, c.Worksheet(), fmt.Sprintf("%s %d", unit, index), map[string]any{"count": len(values)})
		},
	}

	cmd.Flags().StringVar(&valuesJSON, "values-json", "", "Values as a JSON array")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of leading "+skip+" to skip")
	return cmd
}

func newUpdateCellsCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "cells <A1=value>...",
		Short: "Set several cells in one request",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cells := make([]sheetclient.CellValue, 0, len(args))
			for _, a := range args {
				cell, value, ok := strings.Cut(a, "=")
				if !ok || strings.TrimSpace(cell) == "" {
					return newUsageError(fmt.Errorf("invalid cell assignment %q (expected A1=value)", a))
				}
				cells = append(cells, sheetclient.CellValue{Cell: cell, Value: value})
			}

			c, err := openClient(cmd.Context(), flags)
			if err != nil {
				return err
			}
			if err := c.UpdateCells(cmd.Context(), nil, cells); err != nil {
				return err
			}
			return writeUpdated(cmd, c.Worksheet(), fmt.Sprintf("%d cell(s)", len(cells)), map[string]any{"count": len(cells)})
		},
	}
}

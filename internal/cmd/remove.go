package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newRemoveCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Delete rows or columns",
	}
	cmd.AddCommand(newRemoveDimensionCmd(flags, "rows"))
	cmd.AddCommand(newRemoveDimensionCmd(flags, "cols"))
	return cmd
}

func newRemoveDimensionCmd(flags *rootFlags, dim string) *cobra.Command {
	unit := "row"
	if dim == "cols" {
		unit = "column"
	}

	return &cobra.Command{
		Use:   dim + " <start> [end]",
		Short: fmt.Sprintf("Delete %ss start..end (1-based, inclusive)", unit),
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := strconv.Atoi(args[0])
			if err != nil {
				return newUsageError(fmt.Errorf("invalid start %q", args[0]))
			}
			end := start
			if len(args) == 2 {
				end, err = strconv.Atoi(args[1])
				if err != nil {
					return newUsageError(fmt.Errorf("invalid end %q", args[1]))
				}
			}

			c, err := openClient(cmd.Context(), flags)
			if err != nil {
				return err
			}
			if err := confirmDestructive(flags, fmt.Sprintf("Delete %ss %d..%d of %q?", unit, start, end, c.Worksheet().Title)); err != nil {
				return err
			}
			if dim == "cols" {
				err = c.RemoveColumns(cmd.Context(), nil, start, end)
			} else {
				err = c.RemoveRows(cmd.Context(), nil, start, end)
			}
			if err != nil {
				return err
			}
			return writeUpdated(cmd, c.Worksheet(), fmt.Sprintf("removed %ss %d..%d", unit, start, end), map[string]any{
				"start": start,
				"end":   end,
			})
		},
	}
}

func newClearCmd(flags *rootFlags) *cobra.Command {
	var rng string
	var field string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear values of the bound worksheet, a range, or reset cell fields",
		Long:  "Without flags every value is cleared.\n--range A1:C3 clears a range; --field userEnteredFormat (or *) resets those cell fields everywhere.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(rng) != "" && strings.TrimSpace(field) != "" {
				return newUsageError(fmt.Errorf("--range and --field are mutually exclusive"))
			}

			c, err := openClient(cmd.Context(), flags)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			switch {
			case strings.TrimSpace(rng) != "":
				start, end, _ := strings.Cut(rng, ":")
				if err := c.ClearRange(ctx, nil, start, end); err != nil {
					return err
				}
				return writeUpdated(cmd, c.Worksheet(), "cleared "+rng, map[string]any{"range": rng})
			case strings.TrimSpace(field) != "":
				if err := c.ClearByField(ctx, nil, field); err != nil {
					return err
				}
				return writeUpdated(cmd, c.Worksheet(), "cleared "+field, map[string]any{"field": field})
			default:
				if err := confirmDestructive(flags, fmt.Sprintf("Clear every value of %q?", c.Worksheet().Title)); err != nil {
					return err
				}
				if err := c.Clear(ctx, nil); err != nil {
					return err
				}
				return writeUpdated(cmd, c.Worksheet(), "cleared", nil)
			}
		},
	}

	cmd.Flags().StringVar(&rng, "range", "", "A1 range to clear, e.g. A1:C10")
	cmd.Flags().StringVar(&field, "field", "", "Cell field mask to reset, e.g. userEnteredFormat")
	return cmd
}

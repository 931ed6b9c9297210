package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newInsertCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "insert",
		Short: "Insert rows or columns",
	}
	cmd.AddCommand(newInsertDimensionCmd(flags, "rows"))
	cmd.AddCommand(newInsertDimensionCmd(flags, "cols"))
	return cmd
}

func newInsertDimensionCmd(flags *rootFlags, dim string) *cobra.Command {
	var count int
	var inherit bool
	var valuesJSON string

	unit := "row"
	if dim == "cols" {
		unit = "column"
	}

	cmd := &cobra.Command{
		Use:   dim + " <after>",
		Short: fmt.Sprintf("Insert %ss after %s <after> (0 inserts at the start)", unit, unit),
		Long: fmt.Sprintf("Insert --count %ss after %s <after>.\n--values-json fills them; for columns each inner list is one column.", unit, unit),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			after, err := strconv.Atoi(args[0])
			if err != nil {
				return newUsageError(fmt.Errorf("invalid position %q", args[0]))
			}
			values, err := parseGridJSON(valuesJSON)
			if err != nil {
				return err
			}

			c, err := openClient(cmd.Context(), flags)
			if err != nil {
				return err
			}
			if dim == "cols" {
				err = c.InsertColumns(cmd.Context(), nil, after, count, inherit, values)
			} else {
				err = c.InsertRows(cmd.Context(), nil, after, count, inherit, values)
			}
			if err != nil {
				return err
			}
			return writeUpdated(cmd, c.Worksheet(), fmt.Sprintf("inserted %d %s(s) after %d", count, unit, after), map[string]any{
				"after": after,
				"count": count,
			})
		},
	}

	cmd.Flags().IntVar(&count, "count", 1, "Number of "+unit+"s to insert")
	cmd.Flags().BoolVar(&inherit, "inherit", false, "Copy formatting from the preceding "+unit)
	cmd.Flags().StringVar(&valuesJSON, "values-json", "", "Values as a JSON 2D array")
	return cmd
}

package commands

import (
	"fmt"
	"os"

	"apartmentqueue/internal/utils"

	"github.com/spf13/cobra"
)

func CostIndexCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cost-index",
		Short: "Manage the cost index series",
	}
	cmd.AddCommand(costIndexImportCmd(app), costIndexListCmd(app))
	return cmd
}

func costIndexImportCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Import cost index points; identical existing points are skipped",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer file.Close()

			points, err := readCostIndices(file)
			if err != nil {
				return err
			}

			result, err := app.CostIndices.ImportCostIndices(app.Ctx, points)
			if err != nil {
				return fmt.Errorf("import failed: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d cost indices, skipped %d\n", result.Created, result.Skipped)
			return nil
		},
	}
}

func costIndexListCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the cost index series",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			indices, err := app.CostIndices.ListCostIndices(app.Ctx)
			if err != nil {
				return fmt.Errorf("failed to list cost indices: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\nFound %d cost indices:\n\n", len(indices))
			for _, index := range indices {
				fmt.Fprintf(out, "- %s  %s\n", utils.FormatDate(index.ValidFrom), index.Value.StringFixed(2))
			}
			return nil
		},
	}
}

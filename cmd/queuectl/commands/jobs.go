package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func JobsCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect and run scheduled jobs",
	}
	cmd.AddCommand(jobsListCmd(app), jobsRunCmd(app))
	return cmd
}

func jobsListCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			jobs := app.Jobs.Jobs()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\nFound %d jobs:\n\n", len(jobs))
			for _, job := range jobs {
				fmt.Fprintf(out, "- %s (%s)\n", job.Name(), job.Schedule())
			}
			return nil
		},
	}
}

func jobsRunCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run <name>",
		Short: "Run a job once, now, in this process",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Jobs.TriggerJobByName(app.Ctx, args[0]); err != nil {
				return fmt.Errorf("job %s failed: %w", args[0], err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Job %s completed\n", args[0])
			return nil
		},
	}
}

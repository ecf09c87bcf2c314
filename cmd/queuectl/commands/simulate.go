package commands

import (
	"cmp"
	"fmt"
	"os"
	"slices"

	"apartmentqueue/internal/queue"

	"github.com/spf13/cobra"
)

func SimulateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "simulate <scenario.yaml>",
		Short: "Resolve HASO first-place conflicts for a YAML scenario without touching the database",
		Args:  cobra.ExactArgs(1),
		Annotations: map[string]string{
			OfflineAnnotation: "true",
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer file.Close()

			scenario, err := readScenario(file)
			if err != nil {
				return err
			}

			resolution, err := queue.Resolve(scenario.priorities)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for pass, deactivated := range resolution.Deactivated {
				for _, p := range deactivated {
					fmt.Fprintf(out, "pass %d: %s loses %s (priority %d)\n",
						pass+1,
						scenario.names[p.ApplicationID],
						scenario.names[p.ApartmentID],
						p.PriorityNumber,
					)
				}
			}

			winners, err := queue.Winners(resolution.Final)
			if err != nil {
				return err
			}
			lines := make([]string, 0, len(winners))
			for apartmentID, winner := range winners {
				lines = append(lines, fmt.Sprintf("%s: %s",
					scenario.names[apartmentID],
					scenario.names[winner.ApplicationID],
				))
			}
			slices.SortFunc(lines, cmp.Compare[string])

			fmt.Fprintf(out, "fixed point after %d passes\n", resolution.Passes)
			for _, line := range lines {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
}

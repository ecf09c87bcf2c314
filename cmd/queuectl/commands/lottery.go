package commands

import (
	"fmt"

	"apartmentqueue/internal/services"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func LotteryCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lottery",
		Short: "Run apartment lotteries",
	}
	cmd.AddCommand(lotteryRunCmd(app))
	return cmd
}

func lotteryRunCmd(app *AppContext) *cobra.Command {
	var (
		projectID    string
		apartmentIDs []string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Resolve HASO conflicts and shuffle HITAS queues for a project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			request := services.LotteryRequest{}
			if projectID != "" {
				id, err := uuid.Parse(projectID)
				if err != nil {
					return fmt.Errorf("invalid project id %q: %w", projectID, err)
				}
				request.ProjectID = &id
			}
			ids, err := parseIDs(apartmentIDs)
			if err != nil {
				return err
			}
			request.ApartmentIDs = ids
			if (request.ProjectID == nil) == (len(ids) == 0) {
				return fmt.Errorf("exactly one of --project or --apartment is required")
			}

			result, err := app.Lottery.RunLotteryForProject(app.Ctx, request)
			if err != nil {
				return fmt.Errorf("lottery failed: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "HASO apartments:  %d\n", len(result.HasoApartments))
			fmt.Fprintf(out, "HITAS apartments: %d\n", len(result.HitasApartments))
			fmt.Fprintf(out, "Resolution: %d passes, %d priorities deactivated (batch %s)\n",
				result.Resolution.Passes,
				result.Resolution.Deactivated,
				result.Resolution.BatchID,
			)
			fmt.Fprintf(out, "Shuffle: %d entries across %d apartments (batch %s)\n",
				result.Shuffle.Entries,
				result.Shuffle.Apartments,
				result.Shuffle.BatchID,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&projectID, "project", "", "Project id")
	cmd.Flags().StringSliceVar(&apartmentIDs, "apartment", nil, "Apartment id, repeatable")
	return cmd
}

func ResolveCmd(app *AppContext) *cobra.Command {
	var applicationIDs, apartmentIDs []string

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Re-run HASO first-place conflict resolution",
		Long:  "Re-run HASO first-place conflict resolution. Without flags every apartment is covered.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			applications, err := parseIDs(applicationIDs)
			if err != nil {
				return err
			}
			apartments, err := parseIDs(apartmentIDs)
			if err != nil {
				return err
			}

			result, err := app.Lottery.ResolveFirstPlaceConflicts(app.Ctx, services.Scope{
				ApplicationIDs: applications,
				ApartmentIDs:   apartments,
			})
			if err != nil {
				return fmt.Errorf("resolution failed: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Resolved in %d passes, %d priorities deactivated (batch %s)\n",
				result.Passes,
				result.Deactivated,
				result.BatchID,
			)
			fmt.Fprintf(out, "Applications holding a first place: %d\n", result.FirstPlaceHolders)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&applicationIDs, "application", nil, "Application id, repeatable")
	cmd.Flags().StringSliceVar(&apartmentIDs, "apartment", nil, "Apartment id, repeatable")
	return cmd
}

func parseIDs(values []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(values))
	for _, value := range values {
		id, err := uuid.Parse(value)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: %w", value, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

package main

import (
	"fmt"

	"github.com/2beens/hyroxcoach/internal/readiness"

	"github.com/spf13/cobra"
)

var flagReadinessJSON bool

var readinessCmd = &cobra.Command{
	Use:   "readiness",
	Short: "Compute the race readiness score of an athlete",
	Long: `Compute the 0-100 race readiness score from the last 7 and 30 days of training
and the active plan, with every component score and the weakest component.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		return withCoach(ctx, func(d *coachDeps) error {
			binding, err := resolveBinding(ctx, d.athletes)
			if err != nil {
				return err
			}

			result, err := d.scorer.Compute(ctx, binding.AthleteID)
			if err != nil {
				return fmt.Errorf("compute readiness: %w", err)
			}

			out := cmd.OutOrStdout()
			if flagReadinessJSON {
				return printJSON(out, result)
			}

			fmt.Fprintf(out, "readiness: %d/100\n", result.Score)
			for _, c := range readiness.Components {
				marker := ""
				if c == result.Weakest {
					marker = "  <- weakest"
				}
				fmt.Fprintf(out, "  %-15s %5.1f%s\n", c, result.Components[c], marker)
			}
			return nil
		})
	},
}

func init() {
	readinessCmd.Flags().BoolVar(&flagReadinessJSON, "json", false, "print the result as JSON")
	rootCmd.AddCommand(readinessCmd)
}

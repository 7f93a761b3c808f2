package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/2beens/hyroxcoach/internal/hyrox/races"

	"github.com/spf13/cobra"
)

var flagFitness string

var pacingCmd = &cobra.Command{
	Use:   "pacing TARGET_MINUTES",
	Short: "Split a target finish time into run and station paces",
	Example: `  coachctl pacing 90
  coachctl pacing 75 --fitness advanced`,
	Args: cobra.ExactArgs(1),
	Annotations: map[string]string{
		"config": "none",
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid target minutes [%s]: %w", args[0], err)
		}

		pacing, err := races.CalculatePacing(target, flagFitness)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "target %s (%s)\n", races.FormatMinutes(pacing.TargetMinutes), pacing.FitnessLevel)
		fmt.Fprintf(out, "run pace %s /km, runs %.1f min, stations %.1f min, transitions %.1f min\n",
			pacing.RunPerKm, pacing.RunTotalMinutes, pacing.StationTotalMinutes, pacing.TransitionMinutes)
		for i := range pacing.RunSplits {
			fmt.Fprintf(out, "  %-20s %s\n", pacing.RunSplits[i].Name, pacing.RunSplits[i].Formatted)
			if i < len(pacing.StationSplits) {
				fmt.Fprintf(out, "  %-20s %s\n", pacing.StationSplits[i].Name, pacing.StationSplits[i].Formatted)
			}
		}
		return nil
	},
}

func init() {
	pacingCmd.Flags().StringVar(
		&flagFitness,
		"fitness",
		races.FitnessIntermediate,
		"fitness level ["+strings.Join(races.FitnessLevels, " | ")+"]",
	)
	rootCmd.AddCommand(pacingCmd)
}

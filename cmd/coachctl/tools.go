package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/2beens/hyroxcoach/internal/coach"

	"github.com/spf13/cobra"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List and call coaching tools",
}

var toolsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List the coaching tools",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCoach(cmd.Context(), func(d *coachDeps) error {
			// listing does not touch athlete data
			registry, err := d.toolset.Bind(coach.Binding{})
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, t := range registry.Tools() {
				kind := "read"
				if t.Mutation {
					kind = "write"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", t.Name, kind, t.Description)
			}
			return w.Flush()
		})
	},
}

var toolsCallCmd = &cobra.Command{
	Use:   "call TOOL [JSON_INPUT]",
	Short: "Call a coaching tool for an athlete",
	Long: `Call a coaching tool with a JSON object input and print the structured result.
The input is validated against the tool schema before the tool runs.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		input := "{}"
		if len(args) == 2 {
			input = args[1]
		}

		return withCoach(ctx, func(d *coachDeps) error {
			binding, err := resolveBinding(ctx, d.athletes)
			if err != nil {
				return err
			}
			registry, err := d.toolset.Bind(binding)
			if err != nil {
				return err
			}

			result, err := registry.Invoke(ctx, args[0], []byte(input))
			var verr *coach.ValidationError
			if errors.As(err, &verr) {
				for _, p := range verr.Problems {
					fmt.Fprintf(cmd.ErrOrStderr(), "  - %s\n", p)
				}
				return err
			}
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		})
	},
}

func init() {
	toolsCmd.AddCommand(toolsListCmd, toolsCallCmd)
	rootCmd.AddCommand(toolsCmd)
}

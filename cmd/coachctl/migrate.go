package main

import (
	"github.com/2beens/hyroxcoach/internal/db"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the coaching database schema",
	Long: `Apply the coaching schema (tables, pgvector and full text indexes, the hybrid
search function). Every statement is idempotent; running it twice is safe.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return db.Migrate(cmd.Context(), dbPoolParams())
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

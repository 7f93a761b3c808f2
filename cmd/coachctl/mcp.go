package main

import (
	"os/signal"
	"syscall"

	coachmcp "github.com/2beens/hyroxcoach/internal/coach/mcp"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the coaching tools of one athlete over MCP stdio",
	Long: `Start a Model Context Protocol server on stdin/stdout exposing every coaching tool,
bound to the athlete given by --user (and optionally --athlete).

CLIENT CONFIGURATION:

  {
    "mcpServers": {
      "hyrox-coach": {
        "command": "coachctl",
        "args": ["mcp", "--user", "<user id>", "--config", "/path/to/config.toml"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		return withCoach(ctx, func(d *coachDeps) error {
			binding, err := resolveBinding(ctx, d.athletes)
			if err != nil {
				return err
			}
			registry, err := d.toolset.Bind(binding)
			if err != nil {
				return err
			}

			log.WithField("athlete_id", binding.AthleteID).Info("serving coaching tools over stdio")
			err = coachmcp.NewServer(registry).Run(ctx, &mcp.StdioTransport{})
			if err != nil && ctx.Err() != nil {
				return nil
			}
			return err
		})
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

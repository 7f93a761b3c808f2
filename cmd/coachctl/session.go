package main

import (
	"fmt"
	"time"

	"github.com/2beens/hyroxcoach/internal/auth"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage athlete session tokens",
	Long: `Session tokens bind HTTP and MCP-over-HTTP callers to one athlete. Send the token
in the X-COACH-TOKEN header or as a bearer token.`,
}

var sessionCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a session token for an athlete",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		return withCoach(ctx, func(d *coachDeps) error {
			binding, err := resolveBinding(ctx, d.athletes)
			if err != nil {
				return err
			}

			rdb := openRedis()
			defer func() {
				if err := rdb.Close(); err != nil {
					log.Warnf("close redis client: %s", err)
				}
			}()

			sessions := auth.NewSessionStore(time.Duration(cfg.SessionTTLHours)*time.Hour, rdb)
			token, err := sessions.Create(ctx, binding.AthleteID, binding.UserID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		})
	},
}

var sessionRevokeCmd = &cobra.Command{
	Use:   "revoke TOKEN",
	Short: "Revoke a session token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rdb := openRedis()
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Warnf("close redis client: %s", err)
			}
		}()

		revoked, err := auth.NewSessionStore(0, rdb).Revoke(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !revoked {
			return auth.ErrSessionNotFound
		}
		fmt.Fprintln(cmd.OutOrStdout(), "revoked")
		return nil
	},
}

func init() {
	sessionCmd.AddCommand(sessionCreateCmd, sessionRevokeCmd)
	rootCmd.AddCommand(sessionCmd)
}

// Command coachctl is the operator CLI of the coaching service: readiness for an athlete,
// race pacing, listing and calling coaching tools, a stdio MCP server and migrations.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

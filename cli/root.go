package cli

import (
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "mdp-backend",
	Short: "Obstacle visit planner for the grid camera robot",
	Long: `Plans the shortest tour that photographs every marked obstacle on the
arena grid and turns it into the robot's firmware command list.

Run "serve" for the HTTP/WebSocket backend or "plan" for a one-off plan.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("mdp-backend version {{.Version}}\n")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

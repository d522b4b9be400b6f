// dodge is a terminal meteor-dodging trainer with adaptive difficulty and
// per-session telemetry.
//
// Usage:
//
//	dodge list               - List available game modes
//	dodge play [mode]        - Run a training session
//	dodge sessions           - List recorded sessions
//	dodge report <session>   - Show a session report with per-block metrics
//	dodge export             - Export sessions, blocks and events to CSV
//	dodge serve              - Start SSH server for remote sessions
//
// Global flags:
//
//	--fps <rate>        - Set tick rate (default: 60)
//	--seed <value>      - Set RNG seed for reproducible runs
//	--db <path>         - Set database path (default: ~/.dodge/telemetry.db)
//	--subject <id>      - Subject identifier attached to sessions
//	--protocol <tag>    - Protocol tag attached to sessions
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// Import games to register them
	_ "github.com/vovakirdan/space-dodge/internal/games/dodge"
)

var (
	// Global flags
	flagFPS      int
	flagSeed     int64
	flagDBPath   string
	flagSubject  string
	flagProtocol string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "dodge",
	Short: "Space Dodge - adaptive meteor-dodging trainer for the terminal",
	Long: `Space Dodge is a terminal-based motor training game. The player steers a
ship left and right to avoid falling meteors while the difficulty adapts to
their performance. Every session is recorded: summary, per-minute metric
blocks, and discrete events such as hits and near misses.

Available commands:
  list      - Show available game modes
  play      - Run a training session
  sessions  - List recorded sessions
  report    - Show a detailed session report
  export    - Export telemetry to CSV files
  serve     - Start SSH server for remote sessions

Examples:
  dodge play --subject P01
  dodge play dodge_practice --difficulty easy
  dodge sessions --subject P01
  dodge report P01-1724577600000000000
  dodge export --out ./telemetry
  dodge serve --ssh :2222`,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.dodge/telemetry.db", "Path to telemetry database")
	rootCmd.PersistentFlags().StringVar(&flagSubject, "subject", "anon001", "Subject identifier")
	rootCmd.PersistentFlags().StringVar(&flagProtocol, "protocol", "v0.3-rehab", "Protocol tag")

	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(serveCmd)
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/space-dodge/internal/storage"
)

var reportCmd = &cobra.Command{
	Use:   "report <session>",
	Short: "Show a detailed session report",
	Long: `Display the summary, per-block metrics, and subject aggregates for a
recorded session.

Examples:
  dodge report P01-1724577600000000000`,
	Args: cobra.ExactArgs(1),
	Run:  runReport,
}

func runReport(cmd *cobra.Command, args []string) {
	sessionID := args[0]

	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening telemetry database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	session, err := store.SessionByID(sessionID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving session: %v\n", err)
		os.Exit(1)
	}
	if session == nil {
		fmt.Fprintf(os.Stderr, "Error: session %q not found\n", sessionID)
		fmt.Fprintln(os.Stderr, "Run 'dodge sessions' to list recorded sessions.")
		os.Exit(1)
	}

	fmt.Printf("Session %s\n", session.SessionID)
	fmt.Printf("  Subject:   %s\n", session.SubjectID)
	fmt.Printf("  Protocol:  %s\n", session.Protocol)
	if session.Notes != "" {
		fmt.Printf("  Notes:     %s\n", session.Notes)
	}
	fmt.Printf("  Started:   %s\n", session.StartedAt.Local().Format("2006-01-02 15:04:05"))
	if !session.Ended {
		fmt.Println("  Status:    still open (no end record)")
		return
	}
	fmt.Printf("  Ended:     %s\n", session.EndedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Printf("  Duration:  %.1fs\n", session.DurationSec)
	fmt.Printf("  Final difficulty: %.2f\n", session.FinalDifficulty)
	fmt.Printf("  Lives remaining:  %d\n", session.LivesRemaining)
	fmt.Printf("  Meteors: %d spawned, %d avoided\n", session.MeteorsSpawned, session.MeteorsAvoided)
	fmt.Printf("  Near misses: %d   Shields: %d\n", session.NearMisses, session.ShieldsCollected)

	blocks, err := store.BlocksForSession(sessionID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving blocks: %v\n", err)
		os.Exit(1)
	}

	if len(blocks) > 0 {
		fmt.Println()
		fmt.Printf("  %-5s  %8s  %6s  %6s  %7s  %7s  %4s  %5s  %7s\n",
			"Block", "Duration", "Diff", "Speed", "Spawned", "Avoided", "Hits", "Near", "Success")
		fmt.Printf("  %-5s  %8s  %6s  %6s  %7s  %7s  %4s  %5s  %7s\n",
			"-----", "--------", "----", "-----", "-------", "-------", "----", "----", "-------")
		for _, b := range blocks {
			success := "-"
			if b.SuccessRate != nil {
				success = fmt.Sprintf("%.0f%%", *b.SuccessRate*100)
			}
			fmt.Printf("  %-5d  %7.1fs  %6.2f  %6.2f  %7d  %7d  %4d  %5d  %7s\n",
				b.BlockIndex, b.DurationSec, b.DifficultyAvg, b.SpeedScaleAvg,
				b.Spawned, b.Avoided, b.Hits, b.NearMisses, success)
		}
	}

	stats, err := store.StatsForSubject(session.SubjectID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving subject stats: %v\n", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Printf("Subject %s overall: %d sessions, %.0fs played, best %.0fs, avg difficulty %.2f\n",
		stats.SubjectID, stats.SessionCount, stats.TotalPlaySec,
		stats.BestSurvival, stats.AvgDifficulty)
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/space-dodge/internal/platform/tui"
	"github.com/vovakirdan/space-dodge/internal/storage"
)

var (
	flagSessionsLimit  int
	flagSessionsBrowse bool
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List recorded sessions",
	Long: `Display recent sessions, newest first. Filter by subject with the
global --subject flag; pass --subject "" to see everyone. With --browse, open
an interactive browser instead: scroll the list and press enter on a session
to see its metric blocks.

Examples:
  dodge sessions
  dodge sessions --subject P01
  dodge sessions --limit 50
  dodge sessions --browse`,
	Run: runSessions,
}

func init() {
	sessionsCmd.Flags().IntVar(&flagSessionsLimit, "limit", 20, "Maximum number of sessions to show")
	sessionsCmd.Flags().BoolVar(&flagSessionsBrowse, "browse", false, "Open the interactive session browser")
}

func runSessions(cmd *cobra.Command, args []string) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening telemetry database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	// The --subject default targets play; an unset flag here means everyone.
	subject := flagSubject
	if !cmd.Flags().Changed("subject") {
		subject = ""
	}

	if flagSessionsBrowse {
		width, height := 80, 24
		if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
			width = w
			height = h
		}
		if err := tui.RunSessionBrowser(store, subject, width, height); err != nil {
			fmt.Fprintf(os.Stderr, "Error running browser: %v\n", err)
			os.Exit(1)
		}
		return
	}

	sessions, err := store.ListSessions(subject, flagSessionsLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving sessions: %v\n", err)
		os.Exit(1)
	}

	if len(sessions) == 0 {
		fmt.Println("No sessions recorded yet.")
		fmt.Println()
		fmt.Println("Run 'dodge play' to record the first one.")
		return
	}

	fmt.Printf("  %-32s  %-10s  %-16s  %8s  %6s  %5s\n",
		"Session", "Subject", "Started", "Duration", "Diff", "Lives")
	fmt.Printf("  %-32s  %-10s  %-16s  %8s  %6s  %5s\n",
		"-------", "-------", "-------", "--------", "----", "-----")

	for _, s := range sessions {
		dur := "open"
		diff := "-"
		lives := "-"
		if s.Ended {
			dur = fmt.Sprintf("%.0fs", s.DurationSec)
			diff = fmt.Sprintf("%.2f", s.FinalDifficulty)
			lives = fmt.Sprintf("%d", s.LivesRemaining)
		}
		fmt.Printf("  %-32s  %-10s  %-16s  %8s  %6s  %5s\n",
			s.SessionID, s.SubjectID, s.StartedAt.Local().Format("2006-01-02 15:04"),
			dur, diff, lives)
	}

	fmt.Println()
	fmt.Println("Run 'dodge report <session>' for per-block metrics.")
}

package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/space-dodge/internal/storage"
)

var (
	flagExportOut   string
	flagExportLimit int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export telemetry to CSV files",
	Long: `Write sessions.csv, blocks.csv and events.csv into the output
directory. Filter by subject with the global --subject flag; by default all
subjects are exported.

Examples:
  dodge export --out ./telemetry
  dodge export --subject P01 --out ./p01`,
	Run: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&flagExportOut, "out", ".", "Output directory for CSV files")
	exportCmd.Flags().IntVar(&flagExportLimit, "limit", 1000, "Maximum number of sessions to export")
}

func runExport(cmd *cobra.Command, args []string) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening telemetry database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	subject := flagSubject
	if !cmd.Flags().Changed("subject") {
		subject = ""
	}

	sessions, err := store.ListSessions(subject, flagExportLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving sessions: %v\n", err)
		os.Exit(1)
	}
	if len(sessions) == 0 {
		fmt.Println("No sessions to export.")
		return
	}

	if err := os.MkdirAll(flagExportOut, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	if err := exportSessions(sessions); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing sessions.csv: %v\n", err)
		os.Exit(1)
	}
	blockCount, err := exportBlocks(store, sessions)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error writing blocks.csv: %v\n", err)
		os.Exit(1)
	}
	eventCount, err := exportEvents(store, sessions)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error writing events.csv: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Exported %d sessions, %d blocks, %d events to %s\n",
		len(sessions), blockCount, eventCount, flagExportOut)
}

func openCSV(name string) (*csv.Writer, *os.File, error) {
	f, err := os.Create(filepath.Join(flagExportOut, name))
	if err != nil {
		return nil, nil, err
	}
	return csv.NewWriter(f), f, nil
}

func exportSessions(sessions []storage.SessionRow) error {
	w, f, err := openCSV("sessions.csv")
	if err != nil {
		return err
	}
	defer f.Close()

	header := []string{
		"session_id", "subject_id", "protocol", "notes",
		"started_at", "ended_at", "duration_sec", "final_difficulty",
		"lives_remaining", "shields_collected", "near_misses",
		"meteors_spawned", "meteors_avoided", "config_json",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, s := range sessions {
		endedAt := ""
		if s.Ended {
			endedAt = s.EndedAt.Format(time.RFC3339Nano)
		}
		row := []string{
			s.SessionID, s.SubjectID, s.Protocol, s.Notes,
			s.StartedAt.Format(time.RFC3339Nano), endedAt,
			strconv.FormatFloat(s.DurationSec, 'f', 3, 64),
			strconv.FormatFloat(s.FinalDifficulty, 'f', 4, 64),
			strconv.Itoa(s.LivesRemaining),
			strconv.Itoa(s.ShieldsCollected),
			strconv.Itoa(s.NearMisses),
			strconv.Itoa(s.MeteorsSpawned),
			strconv.Itoa(s.MeteorsAvoided),
			s.ConfigJSON,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func exportBlocks(store *storage.Store, sessions []storage.SessionRow) (int, error) {
	w, f, err := openCSV("blocks.csv")
	if err != nil {
		return 0, err
	}
	defer f.Close()

	header := []string{
		"session_id", "block_index", "started_at", "ended_at", "duration_sec",
		"difficulty_avg", "speed_scale_avg", "spawned", "avoided", "hits",
		"near_misses", "movement_units", "success_rate",
	}
	if err := w.Write(header); err != nil {
		return 0, err
	}

	count := 0
	for _, s := range sessions {
		blocks, err := store.BlocksForSession(s.SessionID)
		if err != nil {
			return count, err
		}
		for _, b := range blocks {
			rate := ""
			if b.SuccessRate != nil {
				rate = strconv.FormatFloat(*b.SuccessRate, 'f', 4, 64)
			}
			row := []string{
				b.SessionID,
				strconv.Itoa(b.BlockIndex),
				b.StartedAt.Format(time.RFC3339Nano),
				b.EndedAt.Format(time.RFC3339Nano),
				strconv.FormatFloat(b.DurationSec, 'f', 3, 64),
				strconv.FormatFloat(b.DifficultyAvg, 'f', 4, 64),
				strconv.FormatFloat(b.SpeedScaleAvg, 'f', 4, 64),
				strconv.Itoa(b.Spawned),
				strconv.Itoa(b.Avoided),
				strconv.Itoa(b.Hits),
				strconv.Itoa(b.NearMisses),
				strconv.Itoa(b.MovementUnits),
				rate,
			}
			if err := w.Write(row); err != nil {
				return count, err
			}
			count++
		}
	}
	w.Flush()
	return count, w.Error()
}

func exportEvents(store *storage.Store, sessions []storage.SessionRow) (int, error) {
	w, f, err := openCSV("events.csv")
	if err != nil {
		return 0, err
	}
	defer f.Close()

	header := []string{"session_id", "at", "event_kind", "detail_json"}
	if err := w.Write(header); err != nil {
		return 0, err
	}

	count := 0
	for _, s := range sessions {
		events, err := store.EventsForSession(s.SessionID)
		if err != nil {
			return count, err
		}
		for _, e := range events {
			row := []string{
				e.SessionID,
				e.At.Format(time.RFC3339Nano),
				e.EventKind,
				e.DetailJSON,
			}
			if err := w.Write(row); err != nil {
				return count, err
			}
			count++
		}
	}
	w.Flush()
	return count, w.Error()
}

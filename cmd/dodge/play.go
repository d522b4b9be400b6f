package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/space-dodge/internal/config"
	"github.com/vovakirdan/space-dodge/internal/core"
	"github.com/vovakirdan/space-dodge/internal/games/dodge"
	"github.com/vovakirdan/space-dodge/internal/platform/audio"
	"github.com/vovakirdan/space-dodge/internal/platform/tui"
	"github.com/vovakirdan/space-dodge/internal/registry"
	"github.com/vovakirdan/space-dodge/internal/storage"
	"github.com/vovakirdan/space-dodge/internal/telemetry"
)

var (
	flagConfig     string
	flagDifficulty string
	flagNotes      string
	flagNoSound    bool
)

var playCmd = &cobra.Command{
	Use:   "play [mode]",
	Short: "Run a training session",
	Long: `Start a training session. The default mode is "dodge"; pass
"dodge_practice" for a fixed-difficulty practice run.

Controls:
  A/Left     - Move left
  D/Right    - Move right
  P/Esc      - Pause
  R          - Restart (after game over)
  Q/Ctrl+C   - Quit

Difficulty options:
  easy   - Start at minimum difficulty, extra lives
  hard   - Start high, ramp fast, fewer lives
  fixed  - No ramp-up; difficulty only reacts to hits

Examples:
  dodge play --subject P01
  dodge play dodge_practice
  dodge play --difficulty easy --notes "week 2, left hand"
  dodge play --config ./my-dodge.yaml`,
	Args: cobra.MaximumNArgs(1),
	Run:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagConfig, "config", "", "Path to custom game config YAML")
	playCmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, hard, fixed")
	playCmd.Flags().StringVar(&flagNotes, "notes", "", "Free-form notes stored with the session")
	playCmd.Flags().BoolVar(&flagNoSound, "no-sound", false, "Disable audio cues")
}

func runPlay(cmd *cobra.Command, args []string) {
	gameID := "dodge"
	if len(args) == 1 {
		gameID = args[0]
	}

	if !registry.Exists(gameID) {
		fmt.Fprintf(os.Stderr, "Error: unknown mode %q\n", gameID)
		fmt.Fprintln(os.Stderr, "Run 'dodge list' to see available modes.")
		os.Exit(1)
	}

	// Get terminal size
	width, height := 80, 24 // Defaults
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}

	cfg := core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: flagFPS,
		Seed:     flagSeed,
	}

	// Config path and preset apply at the next Reset, so set them before
	// game creation.
	dodge.SetConfigPath(flagConfig)
	if flagDifficulty != "" {
		dodge.SetDifficultyPreset(config.DifficultyPreset(flagDifficulty))
	}

	game, err := registry.Create(gameID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating game: %v\n", err)
		os.Exit(1)
	}
	sessionGame, ok := game.(tui.SessionGame)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: mode %q does not support session recording\n", gameID)
		os.Exit(1)
	}

	logger := newSessionLogger()

	// Open telemetry storage
	var recorder telemetry.Recorder = telemetry.Nop{}
	var store *storage.Store
	store, err = storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open telemetry database: %v\n", err)
		// Continue without storage - the session still runs, unrecorded
	} else {
		recorder = store
	}

	var notifier *audio.Notifier
	if !flagNoSound {
		notifier = audio.NewNotifier()
		if audioErr := notifier.Init(); audioErr != nil {
			logger.Warn("audio unavailable", "error", audioErr)
			notifier = nil
		}
	}

	info := tui.SessionInfo{
		SubjectID: flagSubject,
		Protocol:  flagProtocol,
		Notes:     flagNotes,
	}

	runErr := tui.Run(sessionGame, recorder, notifier, logger, cfg, info)

	if notifier != nil {
		notifier.Close()
	}
	if store != nil {
		store.Close()
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running session: %v\n", runErr)
		os.Exit(1)
	}
}

// newSessionLogger writes to ~/.dodge/dodge.log so log lines don't tear the
// alt-screen during play.
func newSessionLogger() *log.Logger {
	var w io.Writer = io.Discard
	if home, err := os.UserHomeDir(); err == nil {
		dir := filepath.Join(home, ".dodge")
		if err := os.MkdirAll(dir, 0o755); err == nil {
			f, openErr := os.OpenFile(filepath.Join(dir, "dodge.log"),
				os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
			if openErr == nil {
				w = f
			}
		}
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "dodge",
	})
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/voice-snake/internal/games/snake"
	"github.com/vovakirdan/voice-snake/internal/platform/tui"
	"github.com/vovakirdan/voice-snake/internal/storage"
)

var (
	flagBoard bool
	flagLimit int
	flagClear bool
	flagAll   bool
	flagRunID string
)

var scoresCmd = &cobra.Command{
	Use:   "scores [mode]",
	Short: "Show high scores",
	Long: `Display the best runs for a mode (keyboard or voice). Without a mode,
a summary of every mode is shown.

Examples:
  snake scores
  snake scores keyboard
  snake scores voice --limit 20
  snake scores --board
  snake scores voice --all
  snake scores --run 3f1c...
  snake scores voice --clear`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScores,
}

func init() {
	scoresCmd.Flags().BoolVar(&flagBoard, "board", false, "Open the interactive scoreboard")
	scoresCmd.Flags().IntVar(&flagLimit, "limit", 10, "Number of runs to show")
	scoresCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete all runs of the mode")
	scoresCmd.Flags().BoolVar(&flagAll, "all", false, "List every run of the mode, best first")
	scoresCmd.Flags().StringVar(&flagRunID, "run", "", "Show one run by its id")
}

func runScores(_ *cobra.Command, args []string) error {
	mode := snake.ModeKeyboard
	if len(args) == 1 {
		m, err := parseMode(args[0])
		if err != nil {
			return err
		}
		mode = m
	}

	store, err := storage.Open(appCfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("opening scores database: %w", err)
	}
	defer store.Close()

	switch {
	case flagRunID != "":
		return printRun(store, flagRunID)

	case flagAll:
		return printAllRuns(store, mode)

	case flagClear:
		if len(args) == 0 {
			return fmt.Errorf("--clear needs a mode")
		}
		if err := store.ClearRuns(string(mode)); err != nil {
			return err
		}
		fmt.Printf("Cleared all %s runs.\n", mode.Title())
		return nil

	case flagBoard:
		width, height := 80, 24
		if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
			width = w
			height = h
		}
		_, err := tui.RunScoreboard(store, mode, width, height)
		return err

	case len(args) == 0:
		return printSummary(store)
	}

	return printTopRuns(store, mode)
}

// printTopRuns prints the best runs of one mode.
func printTopRuns(store *storage.Store, mode snake.Mode) error {
	runs, err := store.TopRuns(string(mode), flagLimit)
	if err != nil {
		return err
	}

	fmt.Printf("High Scores - %s\n", mode.Title())
	fmt.Println()

	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		fmt.Println()
		fmt.Println("Play 'snake play' to set the first high score!")
		return nil
	}

	fmt.Printf("  %-4s  %-6s  %-6s  %-12s  %-9s  %s\n", "Rank", "Score", "Length", "Player", "Outcome", "Date")
	fmt.Printf("  %-4s  %-6s  %-6s  %-12s  %-9s  %s\n", "----", "-----", "------", "------", "-------", "----")

	for i, r := range runs {
		fmt.Printf("  %-4d  %-6d  %-6d  %-12s  %-9s  %s\n",
			i+1, r.Score, r.Length, r.Player, r.Outcome, r.CreatedAt.Format("2006-01-02 15:04"))
	}

	fmt.Println()
	fmt.Printf("Best: %d\n", runs[0].Score)
	return nil
}

// printSummary prints aggregated statistics for every mode.
func printSummary(store *storage.Store) error {
	stats, err := store.GetAllModesStats()
	if err != nil {
		return err
	}

	fmt.Println("Snake statistics")
	fmt.Println()
	fmt.Printf("  %-14s  %-5s  %-5s  %-7s  %-7s  %s\n", "Mode", "Runs", "Best", "Average", "Longest", "Last played")

	for _, mode := range snake.Modes {
		s, ok := stats[string(mode)]
		if !ok {
			fmt.Printf("  %-14s  %-5d  %-5s  %-7s  %-7s  %s\n", mode.Title(), 0, "-", "-", "-", "never")
			continue
		}
		fmt.Printf("  %-14s  %-5d  %-5d  %-7.1f  %-7d  %s\n",
			mode.Title(), s.Runs, s.HighScore, s.AvgScore, s.MaxLength, s.LastPlayed.Format("2006-01-02 15:04"))
	}

	recent, err := store.RecentRuns(5)
	if err != nil || len(recent) == 0 {
		return err
	}
	fmt.Println()
	fmt.Println("Recent runs")
	for _, r := range recent {
		fmt.Printf("  %s  %-14s  score %-4d  %s\n",
			r.CreatedAt.Format("2006-01-02 15:04"), snake.Mode(r.Mode).Title(), r.Score, r.Outcome)
	}
	return nil
}

// printRun prints the details of one stored run.
func printRun(store *storage.Store, runID string) error {
	r, err := store.RunByID(runID)
	if err != nil {
		return err
	}
	if r == nil {
		return fmt.Errorf("no run with id %q", runID)
	}

	fmt.Printf("Run %s\n", r.RunID)
	fmt.Printf("  Mode:    %s\n", snake.Mode(r.Mode).Title())
	fmt.Printf("  Player:  %s\n", r.Player)
	fmt.Printf("  Score:   %d\n", r.Score)
	fmt.Printf("  Length:  %d\n", r.Length)
	fmt.Printf("  Ticks:   %d\n", r.Ticks)
	fmt.Printf("  Outcome: %s\n", r.Outcome)
	fmt.Printf("  Date:    %s\n", r.CreatedAt.Format("2006-01-02 15:04:05"))
	return nil
}

// printAllRuns lists every run of a mode with its id.
func printAllRuns(store *storage.Store, mode snake.Mode) error {
	runs, err := store.AllRuns(string(mode))
	if err != nil {
		return err
	}

	fmt.Printf("All runs - %s (%d)\n", mode.Title(), len(runs))
	fmt.Println()
	for _, r := range runs {
		fmt.Printf("  %s  %s  score %-4d  length %-4d  %s\n",
			r.RunID, r.CreatedAt.Format("2006-01-02 15:04"), r.Score, r.Length, r.Outcome)
	}
	return nil
}

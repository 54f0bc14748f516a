package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/voice-snake/internal/registry"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List voice input sources",
	Long:  `Shows every voice source that can feed predictions to the game.`,
	Args:  cobra.NoArgs,
	Run:   runSources,
}

func runSources(_ *cobra.Command, _ []string) {
	sources := registry.List()

	if len(sources) == 0 {
		fmt.Println("No voice sources available.")
		return
	}

	fmt.Println("Available voice sources:")
	fmt.Println()

	// Calculate column widths
	maxName := 0
	for _, s := range sources {
		maxName = max(maxName, len(s.Name))
	}

	for _, s := range sources {
		marker := " "
		if s.Name == appCfg.Voice.Source {
			marker = "*"
		}
		fmt.Printf(" %s %-*s  %s\n", marker, maxName, s.Name, s.Description)
	}

	fmt.Println()
	fmt.Println("Use with: snake play --mode voice --voice <source>")
}

package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/topshelf/internal/tui"
	"github.com/ShayCichocki/topshelf/internal/watch"
)

var rootResume bool
var rootNoPersist bool

var rootCmd = &cobra.Command{
	Use:   "topshelf",
	Short: "Conversational storefront synthesizer",
	Long: `TopShelf turns a product CSV into a themed, deployable storefront
through a chat conversation.

With no arguments, launches the interactive chat interface. Attach a
catalog with /attach, describe your brand in plain language, and say
"launch" when you're ready.

Core capabilities:
- Parses and validates product catalog CSVs
- Builds brand identity from conversation
- Generates product photography in rate-limited batches
- Assembles a complete storefront payload
- Deploys the result with one command`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&rootResume, "resume", false, "Resume the most recent session")
	rootCmd.Flags().BoolVar(&rootNoPersist, "no-persist", false, "Skip session persistence")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(deployCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// runChat starts the interactive chat session.
func runChat() error {
	orch, cleanup, err := buildOrchestrator(rootResume, !rootNoPersist, "")
	if err != nil {
		return err
	}
	defer cleanup()

	// Re-parse the catalog whenever the attached CSV changes on disk.
	var watcher *watch.Watcher
	if path := orch.Session().CSVPath(); path != "" {
		watcher, err = watch.New(path, func() {
			if err := orch.RefreshCatalog(); err != nil {
				log.Printf("[topshelf] %v", err)
			}
		})
		if err != nil {
			log.Printf("[topshelf] catalog watcher unavailable: %v", err)
		}
	}
	if watcher != nil {
		defer watcher.Close()
	}

	if err := tui.Run(orch); err != nil {
		return fmt.Errorf("running chat interface: %w", err)
	}
	return nil
}

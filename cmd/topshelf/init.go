package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init [directory]",
	Short: "Set up a TopShelf project",
	Long: `Create a starter .topshelf.yaml and .env template in a directory.

The directory argument is optional and defaults to the current directory.

Examples:
  topshelf init              # Initialize current directory
  topshelf init ./mystore    # Initialize specific directory
  topshelf init --force      # Overwrite existing files`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing files")
}

// projectConfig is the starter .topshelf.yaml shape.
type projectConfig struct {
	Anthropic struct {
		Model string `yaml:"model"`
	} `yaml:"anthropic"`
	Hydration struct {
		BatchSize  int    `yaml:"batch_size"`
		BatchDelay string `yaml:"batch_delay"`
	} `yaml:"hydration"`
	Output struct {
		Dir string `yaml:"dir"`
	} `yaml:"output"`
}

const envTemplate = `# TopShelf API credentials. Keys left unset disable that collaborator.
ANTHROPIC_API_KEY=
WAVESPEED_API_KEY=
ZEABUR_API_KEY=
FIRECRAWL_API_KEY=
`

func runInit(cmd *cobra.Command, args []string) error {
	targetDir := "."
	if len(args) > 0 {
		targetDir = args[0]
	}

	absPath, err := filepath.Abs(targetDir)
	if err != nil {
		return fmt.Errorf("resolving absolute path: %w", err)
	}
	if err := os.MkdirAll(absPath, 0755); err != nil {
		return fmt.Errorf("creating directory %s: %w", absPath, err)
	}

	fmt.Printf("Initializing TopShelf in %s...\n\n", absPath)

	var cfg projectConfig
	cfg.Anthropic.Model = "claude-sonnet-4-20250514"
	cfg.Hydration.BatchSize = 5
	cfg.Hydration.BatchDelay = "10s"
	cfg.Output.Dir = "./storefront"

	cfgBytes, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("encoding starter config: %w", err)
	}

	files := map[string][]byte{
		".topshelf.yaml": cfgBytes,
		".env":           []byte(envTemplate),
	}

	for name, content := range files {
		dest := filepath.Join(absPath, name)
		if _, err := os.Stat(dest); err == nil && !initForce {
			color.Yellow("  skipped %s (already exists, use --force)", name)
			continue
		}
		if err := os.WriteFile(dest, content, 0644); err != nil {
			return fmt.Errorf("writing %s: %w", dest, err)
		}
		color.Green("  created %s", name)
	}

	fmt.Println("\nNext steps:")
	fmt.Println("  1. Add your API keys to .env")
	fmt.Println("  2. Run 'topshelf' to start the chat, or 'topshelf generate --csv products.csv --name \"Your Brand\"'")
	return nil
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/topshelf/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the resolved configuration",
	Long: `Display the current configuration with credentials masked.

Configuration is stored at ~/.config/topshelf/config.yaml
Project-specific overrides can be placed in .topshelf.yaml
API keys can also be set in a .env file or the environment.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		displayConfig(cfg)
	},
}

func displayConfig(cfg *config.Config) {
	fmt.Printf("anthropic.api_key: %s\n", config.MaskAPIKey(cfg.Anthropic.APIKey))
	fmt.Printf("anthropic.model: %s\n", cfg.Anthropic.Model)
	fmt.Printf("anthropic.use_aws_bedrock: %t\n", cfg.Anthropic.UseAWSBedrock)
	fmt.Printf("wavespeed.api_key: %s\n", config.MaskAPIKey(cfg.Wavespeed.APIKey))
	fmt.Printf("wavespeed.base_url: %s\n", cfg.Wavespeed.BaseURL)
	fmt.Printf("zeabur.api_key: %s\n", config.MaskAPIKey(cfg.Zeabur.APIKey))
	fmt.Printf("firecrawl.api_key: %s\n", config.MaskAPIKey(cfg.Firecrawl.APIKey))
	fmt.Printf("hydration.batch_size: %d\n", cfg.Hydration.BatchSize)
	fmt.Printf("hydration.batch_delay: %s\n", cfg.Hydration.BatchDelay)
	fmt.Printf("hydration.request_timeout: %s\n", cfg.Hydration.RequestTimeout)
	fmt.Printf("output.dir: %s\n", cfg.Output.Dir)
	fmt.Printf("tui.refresh_rate: %s\n", cfg.TUI.RefreshRate)
}

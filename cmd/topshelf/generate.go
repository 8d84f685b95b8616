package main

import (
	"fmt"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/topshelf/internal/deploy"
	"github.com/ShayCichocki/topshelf/pkg/models"
)

var (
	generateCSV       string
	generateName      string
	generateOut       string
	generatePrimary   string
	generateSecondary string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Build a storefront in one shot, without the chat interface",
	Long: `Run the full synthesis pipeline non-interactively: parse the catalog,
synthesize the brand files, hydrate product images, and write the
storefront payload to the output directory.

Examples:
  topshelf generate --csv products.csv --name "Maison Vert"
  topshelf generate --csv products.csv --name Lumen --out ./store --primary "#ff00aa"`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&generateCSV, "csv", "", "Path to the product catalog CSV (required)")
	generateCmd.Flags().StringVar(&generateName, "name", "", "Company name (required)")
	generateCmd.Flags().StringVar(&generateOut, "out", "", "Output directory (default from config)")
	generateCmd.Flags().StringVar(&generatePrimary, "primary", "", "Primary brand color")
	generateCmd.Flags().StringVar(&generateSecondary, "secondary", "", "Secondary brand color")
	generateCmd.MarkFlagRequired("csv")
	generateCmd.MarkFlagRequired("name")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	outDir := generateOut
	if outDir == "" {
		outDir = defaultOutputDir(generateName)
	}

	orch, cleanup, err := buildOrchestrator(false, false, outDir)
	if err != nil {
		return err
	}
	defer cleanup()

	// Drain events so pipeline emits never block.
	go func() {
		for range orch.Events() {
		}
	}()

	orch.Session().ApplyBranding(models.BrandContext{
		CompanyName:    generateName,
		PrimaryColor:   generatePrimary,
		SecondaryColor: generateSecondary,
	})

	if err := orch.AttachCatalog(generateCSV); err != nil {
		return err
	}

	products := orch.Session().Products()
	fmt.Printf("Building storefront for %s (%d products)...\n", generateName, len(products))

	if err := orch.Launch(cmd.Context()); err != nil {
		return fmt.Errorf("synthesis failed: %w", err)
	}

	color.Green("✓ Storefront written to %s", outDir)
	if tr := orch.Usage(); tr != nil && tr.Calls() > 0 {
		in, out := tr.Total()
		fmt.Printf("Token usage: %d in / %d out over %d API calls\n", in, out, tr.Calls())
	}
	return nil
}

func defaultOutputDir(name string) string {
	slug := deploy.Slug(name)
	if slug == "" {
		slug = "store"
	}
	return filepath.Join(".", "topshelf-"+slug)
}

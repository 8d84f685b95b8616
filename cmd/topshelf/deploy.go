package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Deploy the last generated storefront",
	Long: `Deploy the storefront from the most recent session.

The session must have a successful launch on record; run the chat
interface or 'topshelf generate' first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		orch, cleanup, err := buildOrchestrator(true, true, "")
		if err != nil {
			return err
		}
		defer cleanup()

		go func() {
			for range orch.Events() {
			}
		}()

		snap := orch.Session().Snapshot()
		if snap.Brand.CompanyName == "" {
			return fmt.Errorf("no company name on record; launch a store first")
		}

		fmt.Printf("Deploying %s...\n", snap.Brand.CompanyName)
		if err := orch.Deploy(cmd.Context()); err != nil {
			return err
		}

		color.Green("✓ Live at %s", orch.Session().Snapshot().DeployURL)
		return nil
	},
}

package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ecommercejockey/jockey/internal/messages"
	"github.com/ecommercejockey/jockey/internal/orchestrator"
)

var (
	calcDryRun bool
	calcSKUs   []string
)

var calcCmd = &cobra.Command{
	Use:   "calc",
	Short: "Recalculate derived storefront fields",
	Long: `Re-derive titles, descriptions, tags, pricing, and images for linked
storefront products and collections from their Premier and SEMA sources.`,
	RunE: runCalc,
}

func init() {
	calcCmd.Flags().BoolVar(&calcDryRun, "dry-run", false, "Preview without persisting changes")
	calcCmd.Flags().StringSliceVar(&calcSKUs, "sku", nil, "Only calculate these SKUs")
}

func runCalc(cmd *cobra.Command, args []string) error {
	header := color.New(color.FgCyan, color.Bold)

	header.Println("\n  CALCULATING STOREFRONT FIELDS")
	fmt.Println("  " + strings.Repeat("─", 40))
	fmt.Println()

	if calcDryRun {
		color.Yellow("  Mode: DRY RUN (no changes will be made)\n")
		fmt.Println()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	orch, err := getOrchestrator(ctx)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}
	defer orch.Close()

	msgs, err := orch.Calculate(ctx, orchestrator.CalcOptions{
		DryRun: calcDryRun,
		SKUs:   calcSKUs,
	})
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	messages.Display(msgs)
	fmt.Println()

	return nil
}

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
	syncSkipRefresh bool
	syncSkipSema    bool
	syncSkipLink    bool
	syncSkipCalc    bool
	syncSkipPush    bool
	syncVehicles    bool
	syncHTML        bool
	syncDryRun      bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run the full sync pipeline",
	Long: `Refresh Premier data, import the SEMA catalog, link records,
recalculate storefront fields, and push to Shopify in one run.`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&syncSkipRefresh, "skip-refresh", false, "Skip the Premier refresh stage")
	syncCmd.Flags().BoolVar(&syncSkipSema, "skip-sema", false, "Skip the SEMA import stage")
	syncCmd.Flags().BoolVar(&syncSkipLink, "skip-link", false, "Skip the link stage")
	syncCmd.Flags().BoolVar(&syncSkipCalc, "skip-calc", false, "Skip the calculate stage")
	syncCmd.Flags().BoolVar(&syncSkipPush, "skip-push", false, "Skip the Shopify push stage")
	syncCmd.Flags().BoolVar(&syncVehicles, "vehicles", false, "Include vehicle fitment in the SEMA import")
	syncCmd.Flags().BoolVar(&syncHTML, "html", false, "Include product HTML in the SEMA import")
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Preview link, calc, and push without changes")
}

func runSync(cmd *cobra.Command, args []string) error {
	header := color.New(color.FgCyan, color.Bold)
	success := color.New(color.FgGreen)

	header.Println("\n  RUNNING FULL SYNC")
	fmt.Println("  " + strings.Repeat("─", 40))
	fmt.Println()

	if syncDryRun {
		color.Yellow("  Mode: DRY RUN\n")
		fmt.Println()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Hour)
	defer cancel()

	orch, err := getOrchestrator(ctx)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}
	defer orch.Close()

	result, err := orch.RunPipeline(ctx, orchestrator.PipelineOptions{
		RefreshPremier:  !syncSkipRefresh,
		ImportSema:      !syncSkipSema,
		IncludeVehicles: syncVehicles,
		IncludeHTML:     syncHTML,
		Link:            !syncSkipLink,
		Calculate:       !syncSkipCalc,
		Push:            !syncSkipPush,
		DryRun:          syncDryRun,
	})
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	if result.Refresh != nil {
		fmt.Printf("  Premier refresh: %d parts, %d inventory, %d pricing\n",
			result.Refresh.PartsProcessed, result.Refresh.InventoryUpdated, result.Refresh.PricingUpdated)
	}
	if result.SemaImport != nil {
		fmt.Printf("  SEMA import: %d brands, %d datasets, %d products\n",
			result.SemaImport.Brands, result.SemaImport.Datasets, result.SemaImport.Products)
	}
	if len(result.LinkMsgs) > 0 {
		header.Println("\n  LINK")
		messages.Display(result.LinkMsgs)
	}
	if len(result.CalcMsgs) > 0 {
		header.Println("\n  CALCULATE")
		messages.Display(result.CalcMsgs)
	}
	if result.Push != nil {
		header.Println("\n  PUSH")
		printExportResult("Products", result.Push.Products)
		printExportResult("Collections", result.Push.Collections)
		if result.Push.Skipped > 0 {
			color.Yellow("  Skipped %d unchanged records", result.Push.Skipped)
		}
	}

	success.Printf("\n  ✓ Sync complete in %s\n\n", result.CompletedAt.Sub(result.StartedAt).Round(time.Second))
	return nil
}

package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/ecommercejockey/jockey/internal/orchestrator"
)

var (
	premierImportFile   string
	refreshInventory    bool
	refreshPricing      bool
	refreshPartNumbers  []string
	refreshObservations bool
)

var premierCmd = &cobra.Command{
	Use:   "premier",
	Short: "Premier distributor commands",
	Long:  `Import the Premier product feed and refresh inventory and pricing from the Premier API.`,
}

var premierImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import the Premier product feed",
	Long:  `Parse a Premier feed CSV and upsert its manufacturers and products into the catalog.`,
	RunE:  runPremierImport,
}

var premierRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Refresh inventory and pricing",
	Long:  `Fetch current inventory and pricing from the Premier API and apply them to stored products.`,
	RunE:  runPremierRefresh,
}

func init() {
	premierImportCmd.Flags().StringVarP(&premierImportFile, "file", "f", "", "Path to the Premier feed CSV (required)")
	premierImportCmd.MarkFlagRequired("file")

	premierRefreshCmd.Flags().BoolVar(&refreshInventory, "inventory", false, "Refresh warehouse inventory")
	premierRefreshCmd.Flags().BoolVar(&refreshPricing, "pricing", false, "Refresh pricing fields")
	premierRefreshCmd.Flags().StringSliceVar(&refreshPartNumbers, "part", nil, "Only refresh these part numbers")
	premierRefreshCmd.Flags().BoolVar(&refreshObservations, "observations", false, "Record fetched values in the observation history")

	premierCmd.AddCommand(premierImportCmd)
	premierCmd.AddCommand(premierRefreshCmd)
}

func runPremierImport(cmd *cobra.Command, args []string) error {
	header := color.New(color.FgCyan, color.Bold)
	success := color.New(color.FgGreen)

	header.Println("\n  IMPORTING PREMIER FEED")
	fmt.Println("  " + strings.Repeat("─", 40))
	fmt.Println()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	orch, err := getOrchestrator(ctx)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}
	defer orch.Close()

	color.Yellow("  Feed: %s\n", premierImportFile)
	fmt.Println()

	result, err := orch.ImportPremierFeed(ctx, premierImportFile)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	success.Printf("  ✓ Imported %d manufacturers, %d products\n", result.Manufacturers, result.Products)
	if len(result.Errors) > 0 {
		color.Yellow("  %d rows skipped:", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Printf("    • %s\n", e)
		}
	}
	fmt.Printf("\n  Completed in %s\n\n", result.CompletedAt.Sub(result.StartedAt).Round(time.Millisecond))

	return nil
}

func runPremierRefresh(cmd *cobra.Command, args []string) error {
	header := color.New(color.FgCyan, color.Bold)
	success := color.New(color.FgGreen)

	header.Println("\n  REFRESHING FROM PREMIER API")
	fmt.Println("  " + strings.Repeat("─", 40))
	fmt.Println()

	// Default to both when neither flag is given
	if !refreshInventory && !refreshPricing {
		refreshInventory = true
		refreshPricing = true
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	orch, err := getOrchestrator(ctx)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}
	defer orch.Close()

	if refreshObservations {
		if err := orch.InitObservations(ctx); err != nil {
			color.Yellow("  Warning: observation history unavailable: %v", err)
		}
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("  Refreshing parts"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        color.GreenString("█"),
			SaucerHead:    color.GreenString("█"),
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionShowCount(),
		progressbar.OptionSpinnerType(14),
	)

	result, err := orch.RefreshPremier(ctx, orchestrator.RefreshOptions{
		PartNumbers: refreshPartNumbers,
		Inventory:   refreshInventory,
		Pricing:     refreshPricing,
		Progress: func(partNumber string) {
			bar.Add(1)
		},
	})
	bar.Finish()
	fmt.Println()
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	success.Printf("  ✓ Processed %d parts\n", result.PartsProcessed)
	if refreshInventory {
		fmt.Printf("    Inventory updated: %d\n", result.InventoryUpdated)
	}
	if refreshPricing {
		fmt.Printf("    Pricing updated:   %d\n", result.PricingUpdated)
	}
	if result.Observations > 0 {
		fmt.Printf("    Observations:      %d\n", result.Observations)
	}
	if len(result.Errors) > 0 {
		color.Yellow("\n  %d parts failed:", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Printf("    • %s\n", e)
		}
	}
	fmt.Printf("\n  Completed in %s\n\n", result.CompletedAt.Sub(result.StartedAt).Round(time.Second))

	return nil
}

package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ecommercejockey/jockey/internal/orchestrator"
	"github.com/ecommercejockey/jockey/internal/output"
)

var (
	pushProducts    bool
	pushCollections bool
	pushSKUs        []string
	pushForce       bool
	pushDryRun      bool
)

var shopifyCmd = &cobra.Command{
	Use:   "shopify",
	Short: "Shopify storefront commands",
	Long:  `Push calculated products and collections to the Shopify admin API.`,
}

var shopifyPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Push products and collections to Shopify",
	Long: `Send relevant storefront products and collections to Shopify,
skipping records unchanged since the last push.`,
	RunE: runShopifyPush,
}

var shopifyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the storefront catalog to files",
	Long:  `Write the calculated products and collections to JSON or CSV files for review.`,
	RunE:  runShopifyExport,
}

var (
	exportFormat string
	exportAll    bool
)

func init() {
	shopifyPushCmd.Flags().BoolVar(&pushProducts, "products", false, "Push products only")
	shopifyPushCmd.Flags().BoolVar(&pushCollections, "collections", false, "Push collections only")
	shopifyPushCmd.Flags().StringSliceVar(&pushSKUs, "sku", nil, "Only push these SKUs")
	shopifyPushCmd.Flags().BoolVar(&pushForce, "force", false, "Push even when unchanged since the last push")
	shopifyPushCmd.Flags().BoolVar(&pushDryRun, "dry-run", false, "Preview without calling the Shopify API")

	shopifyExportCmd.Flags().StringVar(&exportFormat, "format", "json", "Export format (json, csv)")
	shopifyExportCmd.Flags().BoolVar(&exportAll, "all", false, "Include irrelevant records")

	shopifyCmd.AddCommand(shopifyPushCmd)
	shopifyCmd.AddCommand(shopifyExportCmd)
}

func runShopifyExport(cmd *cobra.Command, args []string) error {
	header := color.New(color.FgCyan, color.Bold)
	success := color.New(color.FgGreen)

	header.Println("\n  EXPORTING CATALOG")
	fmt.Println("  " + strings.Repeat("─", 40))
	fmt.Println()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	orch, err := getOrchestrator(ctx)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}
	defer orch.Close()

	productResult, collectionResult, err := orch.Export(ctx, exportFormat, output.ExportOptions{
		OnlyRelevant: !exportAll,
	})
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	if productResult != nil {
		fmt.Printf("  Products:    %s\n", productResult.Details)
	}
	if collectionResult != nil {
		fmt.Printf("  Collections: %s\n", collectionResult.Details)
	}
	success.Println("\n  ✓ Export complete")
	fmt.Println()

	return nil
}

func runShopifyPush(cmd *cobra.Command, args []string) error {
	header := color.New(color.FgCyan, color.Bold)
	success := color.New(color.FgGreen)

	header.Println("\n  PUSHING TO SHOPIFY")
	fmt.Println("  " + strings.Repeat("─", 40))
	fmt.Println()

	// Default to both when neither flag is given
	if !pushProducts && !pushCollections {
		pushProducts = true
		pushCollections = true
	}
	if pushDryRun {
		color.Yellow("  Mode: DRY RUN (nothing will be sent)\n")
		fmt.Println()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	orch, err := getOrchestrator(ctx)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}
	defer orch.Close()

	result, err := orch.Push(ctx, orchestrator.PushOptions{
		Products:    pushProducts,
		Collections: pushCollections,
		SKUs:        pushSKUs,
		Force:       pushForce,
		DryRun:      pushDryRun,
	})
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	printExportResult("Products", result.Products)
	printExportResult("Collections", result.Collections)
	if result.Skipped > 0 {
		color.Yellow("  Skipped %d unchanged records", result.Skipped)
	}
	success.Printf("\n  ✓ Push complete in %s\n\n", result.CompletedAt.Sub(result.StartedAt).Round(time.Second))

	return nil
}

func printExportResult(label string, result *output.ExportResult) {
	if result == nil {
		return
	}
	if !result.Success {
		color.Red("  ✗ %s failed: %v", label, result.Error)
		return
	}
	count := result.ProductsExported
	if label == "Collections" {
		count = result.CollectionsExported
	}
	fmt.Printf("  %s: %d pushed to %s\n", label, count, result.Destination)
	if result.Details != "" {
		fmt.Printf("    %s\n", result.Details)
	}
}

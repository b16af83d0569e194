package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ecommercejockey/jockey/internal/orchestrator"
)

var (
	semaBrandIDs    []string
	semaVehicles    bool
	semaHTML        bool
)

var semaCmd = &cobra.Command{
	Use:   "sema",
	Short: "SEMA Data Co-op commands",
	Long:  `Import brands, datasets, categories, products, and vehicle fitment from the SEMA Data Co-op API.`,
}

var semaImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import SEMA catalog data",
	Long:  `Fetch authorized brand datasets and import their categories and products.`,
	RunE:  runSemaImport,
}

func init() {
	semaImportCmd.Flags().StringSliceVar(&semaBrandIDs, "brand", nil, "Only import these AAIA brand IDs")
	semaImportCmd.Flags().BoolVar(&semaVehicles, "vehicles", false, "Include vehicle fitment data")
	semaImportCmd.Flags().BoolVar(&semaHTML, "html", false, "Include product HTML snippets")

	semaCmd.AddCommand(semaImportCmd)
}

func runSemaImport(cmd *cobra.Command, args []string) error {
	header := color.New(color.FgCyan, color.Bold)
	success := color.New(color.FgGreen)

	header.Println("\n  IMPORTING SEMA CATALOG")
	fmt.Println("  " + strings.Repeat("─", 40))
	fmt.Println()

	if len(semaBrandIDs) > 0 {
		color.Yellow("  Brands: %s\n", strings.Join(semaBrandIDs, ", "))
	} else {
		color.Yellow("  Brands: all authorized\n")
	}
	fmt.Println()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Minute)
	defer cancel()

	orch, err := getOrchestrator(ctx)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}
	defer orch.Close()

	lastStage := ""
	result, err := orch.ImportSema(ctx, orchestrator.SemaImportOptions{
		BrandIDs:        semaBrandIDs,
		IncludeVehicles: semaVehicles,
		IncludeHTML:     semaHTML,
		Progress: func(stage string, done, total int) {
			if stage != lastStage {
				lastStage = stage
				fmt.Printf("  %s...\n", stage)
			}
		},
	})
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	fmt.Println()
	success.Println("  ✓ Import complete")
	fmt.Printf("    Brands:     %d\n", result.Brands)
	fmt.Printf("    Datasets:   %d\n", result.Datasets)
	fmt.Printf("    Categories: %d\n", result.Categories)
	fmt.Printf("    Products:   %d\n", result.Products)
	if semaVehicles {
		fmt.Printf("    Vehicles:   %d\n", result.Vehicles)
	}
	if semaHTML {
		fmt.Printf("    HTML:       %d\n", result.HTMLFetched)
	}
	if len(result.Errors) > 0 {
		color.Yellow("\n  %d errors:", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Printf("    • %s\n", e)
		}
	}
	fmt.Printf("\n  Completed in %s\n\n", result.CompletedAt.Sub(result.StartedAt).Round(time.Second))

	return nil
}

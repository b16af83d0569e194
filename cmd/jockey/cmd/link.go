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
	linkVendors bool
	linkItems   bool
	linkPaths   bool
	linkDryRun  bool
)

var linkCmd = &cobra.Command{
	Use:   "link",
	Short: "Link Premier, SEMA, and Shopify records",
	Long: `Match Premier manufacturers and products against SEMA brands and
datasets, create missing storefront records, and maintain the vendor,
item, and category path links between them.`,
	RunE: runLink,
}

func init() {
	linkCmd.Flags().BoolVar(&linkVendors, "vendors", false, "Link vendors only")
	linkCmd.Flags().BoolVar(&linkItems, "items", false, "Link items only")
	linkCmd.Flags().BoolVar(&linkPaths, "paths", false, "Link category paths only")
	linkCmd.Flags().BoolVar(&linkDryRun, "dry-run", false, "Preview without persisting changes")
}

func runLink(cmd *cobra.Command, args []string) error {
	header := color.New(color.FgCyan, color.Bold)

	header.Println("\n  LINKING CATALOG")
	fmt.Println("  " + strings.Repeat("─", 40))
	fmt.Println()

	// Default to all passes when no flag is given
	if !linkVendors && !linkItems && !linkPaths {
		linkVendors = true
		linkItems = true
		linkPaths = true
	}
	if linkDryRun {
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

	msgs, err := orch.Link(ctx, orchestrator.LinkOptions{
		Vendors: linkVendors,
		Items:   linkItems,
		Paths:   linkPaths,
		DryRun:  linkDryRun,
	})
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	messages.Display(msgs)
	fmt.Println()

	return nil
}

package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ecommercejockey/jockey/internal/messages"
)

var (
	markRelevant   bool
	markIrrelevant bool
)

var relevancyCmd = &cobra.Command{
	Use:   "relevancy",
	Short: "Check and mark catalog relevancy",
	Long: `Inspect which catalog records look relevant for the storefront and
flag records in or out by hand.`,
}

var relevancyCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Report relevancy warnings and errors",
	Long:  `Scan every record class and report relevancy mismatches, warnings, and errors.`,
	RunE:  runRelevancyCheck,
}

var relevancyMarkCmd = &cobra.Command{
	Use:   "mark [kind] [ids...]",
	Short: "Mark records relevant or irrelevant",
	Long: `Flag records of a kind (vendors, items, paths, manufacturers,
premier-products, brands, datasets, categories, sema-products,
shopify-products, collections) as relevant or irrelevant. With no IDs
every record of the kind is marked.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRelevancyMark,
}

func init() {
	relevancyMarkCmd.Flags().BoolVar(&markRelevant, "relevant", false, "Mark records as relevant")
	relevancyMarkCmd.Flags().BoolVar(&markIrrelevant, "irrelevant", false, "Mark records as irrelevant")

	relevancyCmd.AddCommand(relevancyCheckCmd)
	relevancyCmd.AddCommand(relevancyMarkCmd)
}

func runRelevancyCheck(cmd *cobra.Command, args []string) error {
	header := color.New(color.FgCyan, color.Bold)

	header.Println("\n  CHECKING RELEVANCY")
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

	msgs, err := orch.CheckRelevancy(ctx)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	messages.Display(msgs)
	fmt.Println()

	return nil
}

func runRelevancyMark(cmd *cobra.Command, args []string) error {
	if markRelevant == markIrrelevant {
		return fmt.Errorf("specify exactly one of --relevant or --irrelevant")
	}

	kind := args[0]
	ids := args[1:]

	header := color.New(color.FgCyan, color.Bold)
	header.Println("\n  MARKING RELEVANCY")
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

	msgs, err := orch.MarkRelevancy(ctx, kind, ids, markRelevant)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	messages.Display(msgs)
	fmt.Println()

	return nil
}

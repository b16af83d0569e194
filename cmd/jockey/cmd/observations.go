package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var observationDays int

var observationsCmd = &cobra.Command{
	Use:   "observations",
	Short: "Inspect price and inventory history",
	Long:  `Query the ClickHouse observation history recorded during Premier refreshes.`,
}

var observationsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show observation store status",
	Long:  `Shows connection status, row counts, and table sizes for the observation store.`,
	RunE:  runObservationsStatus,
}

var observationsPricesCmd = &cobra.Command{
	Use:   "prices [part-number]",
	Short: "Show price history for a part",
	Long:  `Shows daily price aggregates and the latest observed prices for a part number.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runObservationsPrices,
}

var observationsInventoryCmd = &cobra.Command{
	Use:   "inventory [part-number]",
	Short: "Show inventory history for a part",
	Long:  `Shows daily warehouse inventory aggregates for a part number.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runObservationsInventory,
}

func init() {
	observationsPricesCmd.Flags().IntVar(&observationDays, "days", 30, "Number of days of history")
	observationsInventoryCmd.Flags().IntVar(&observationDays, "days", 30, "Number of days of history")

	observationsCmd.AddCommand(observationsStatusCmd)
	observationsCmd.AddCommand(observationsPricesCmd)
	observationsCmd.AddCommand(observationsInventoryCmd)
}

func runObservationsStatus(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	orch, err := getOrchestrator(ctx)
	if err != nil {
		return err
	}
	defer orch.Close()

	fmt.Println("Connecting to ClickHouse...")
	if err := orch.InitObservations(ctx); err != nil {
		color.Red("✗ Connection failed: %v", err)
		return nil
	}
	ch := orch.Observations()

	color.Green("✓ Connected")

	prices, inventories, err := ch.GetObservationCounts(ctx)
	if err != nil {
		return fmt.Errorf("failed to get observation counts: %w", err)
	}

	fmt.Println("\n" + color.CyanString("Observations"))
	fmt.Printf("  Prices:      %d\n", prices)
	fmt.Printf("  Inventories: %d\n", inventories)

	tables, err := ch.GetTableInfo(ctx)
	if err != nil {
		return fmt.Errorf("failed to get table info: %w", err)
	}

	if len(tables) > 0 {
		fmt.Println("\n" + color.CyanString("Tables"))

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Table", "Rows", "Size"})
		table.SetBorder(false)
		table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
		table.SetAlignment(tablewriter.ALIGN_LEFT)

		for _, t := range tables {
			table.Append([]string{t.Name, fmt.Sprintf("%d", t.Rows), fmt.Sprintf("%d", t.BytesSize)})
		}
		table.Render()
	}

	return nil
}

func runObservationsPrices(cmd *cobra.Command, args []string) error {
	partNumber := args[0]

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	orch, err := getOrchestrator(ctx)
	if err != nil {
		return err
	}
	defer orch.Close()

	if err := orch.InitObservations(ctx); err != nil {
		color.Red("✗ Connection failed: %v", err)
		return nil
	}
	ch := orch.Observations()

	latest, err := ch.GetLatestPrices(ctx, partNumber)
	if err != nil {
		return fmt.Errorf("failed to get latest prices: %w", err)
	}

	header := color.New(color.FgCyan, color.Bold)
	header.Printf("\n  PRICES FOR %s\n", strings.ToUpper(partNumber))
	fmt.Println("  " + strings.Repeat("─", 40))

	if len(latest) > 0 {
		fmt.Println("\n" + color.CyanString("  Latest"))
		for key, price := range latest {
			fmt.Printf("    %-14s %.2f\n", key, price)
		}
	}

	trends, err := ch.GetPriceTrends(ctx, partNumber, observationDays)
	if err != nil {
		return fmt.Errorf("failed to get price trends: %w", err)
	}

	if len(trends) == 0 {
		color.Yellow("\n  No price history in the last %d days", observationDays)
		fmt.Println()
		return nil
	}

	fmt.Println("\n" + color.CyanString("  History"))
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Date", "Field", "Currency", "Min", "Max", "Avg"})
	table.SetBorder(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for _, t := range trends {
		table.Append([]string{
			t.Date.Format("2006-01-02"),
			t.Field,
			t.Currency,
			fmt.Sprintf("%.2f", t.MinPrice),
			fmt.Sprintf("%.2f", t.MaxPrice),
			fmt.Sprintf("%.2f", t.AvgPrice),
		})
	}
	table.Render()
	fmt.Println()

	return nil
}

func runObservationsInventory(cmd *cobra.Command, args []string) error {
	partNumber := args[0]

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	orch, err := getOrchestrator(ctx)
	if err != nil {
		return err
	}
	defer orch.Close()

	if err := orch.InitObservations(ctx); err != nil {
		color.Red("✗ Connection failed: %v", err)
		return nil
	}
	ch := orch.Observations()

	trends, err := ch.GetInventoryTrends(ctx, partNumber, observationDays)
	if err != nil {
		return fmt.Errorf("failed to get inventory trends: %w", err)
	}

	header := color.New(color.FgCyan, color.Bold)
	header.Printf("\n  INVENTORY FOR %s\n", strings.ToUpper(partNumber))
	fmt.Println("  " + strings.Repeat("─", 40))

	if len(trends) == 0 {
		color.Yellow("\n  No inventory history in the last %d days", observationDays)
		fmt.Println()
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Date", "Warehouse", "Min", "Max"})
	table.SetBorder(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for _, t := range trends {
		table.Append([]string{
			t.Date.Format("2006-01-02"),
			t.Warehouse,
			fmt.Sprintf("%d", t.MinQuantity),
			fmt.Sprintf("%d", t.MaxQuantity),
		})
	}
	table.Render()
	fmt.Println()

	return nil
}

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

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Manage vendor API connectors",
	Long:  `List and test the Premier and SEMA Data Co-op API connectors.`,
}

var sourcesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered connectors",
	Long:  `Shows every registered vendor connector and its capabilities.`,
	RunE:  runSourcesList,
}

var sourcesTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Test connector credentials",
	Long:  `Authenticates against every registered vendor API and reports the result.`,
	RunE:  runSourcesTest,
}

func init() {
	sourcesCmd.AddCommand(sourcesListCmd)
	sourcesCmd.AddCommand(sourcesTestCmd)
}

func runSourcesList(cmd *cobra.Command, args []string) error {
	header := color.New(color.FgCyan, color.Bold)

	header.Println("\n  VENDOR CONNECTORS")
	fmt.Println("  " + strings.Repeat("─", 40))
	fmt.Println()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	orch, err := getOrchestrator(ctx)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}
	defer orch.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Connector", "Capabilities"})
	table.SetBorder(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for _, c := range orch.Sources().List() {
		caps := make([]string, 0, len(c.Capabilities()))
		for _, capability := range c.Capabilities() {
			caps = append(caps, string(capability))
		}
		table.Append([]string{c.Name(), strings.Join(caps, ", ")})
	}
	table.Render()
	fmt.Println()

	return nil
}

func runSourcesTest(cmd *cobra.Command, args []string) error {
	header := color.New(color.FgCyan, color.Bold)

	header.Println("\n  TESTING CONNECTORS")
	fmt.Println("  " + strings.Repeat("─", 40))
	fmt.Println()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	orch, err := getOrchestrator(ctx)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}
	defer orch.Close()

	failed := 0
	for name, testErr := range orch.Sources().TestAll(ctx) {
		if testErr != nil {
			color.Red("  ✗ %s: %v", name, testErr)
			failed++
			continue
		}
		color.Green("  ✓ %s", name)
	}
	fmt.Println()

	if failed > 0 {
		return fmt.Errorf("%d connectors failed", failed)
	}
	return nil
}

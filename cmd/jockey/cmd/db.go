package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ecommercejockey/jockey/internal/config"
	"github.com/ecommercejockey/jockey/internal/database/postgres"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Database management commands",
	Long:  "Commands for managing the PostgreSQL database backend",
}

var dbInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the database schema",
	Long:  "Creates all required tables and indexes in the PostgreSQL database",
	RunE:  runDBInit,
}

var dbStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database status",
	Long:  "Shows connection status, table counts, and database health information",
	RunE:  runDBStatus,
}

var dbRollbackCmd = &cobra.Command{
	Use:   "rollback",
	Short: "Roll back the last migration",
	Long:  "Reverts the most recently applied schema migration",
	RunE:  runDBRollback,
}

var dbHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent pipeline runs",
	Long:  "Lists the most recent import, link, calculate, and push runs",
	RunE:  runDBHistory,
}

var historyLimit int

func init() {
	dbHistoryCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "Number of runs to show")

	dbCmd.AddCommand(dbInitCmd)
	dbCmd.AddCommand(dbStatusCmd)
	dbCmd.AddCommand(dbRollbackCmd)
	dbCmd.AddCommand(dbHistoryCmd)
}

// getDBClient creates a PostgreSQL client from configuration
func getDBClient() (*postgres.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	pgConfig := &postgres.Config{
		Host:     cfg.Database.Postgres.Host,
		Port:     cfg.Database.Postgres.Port,
		Database: cfg.Database.Postgres.Database,
		Username: os.Getenv(cfg.Database.Postgres.UsernameEnv),
		Password: os.Getenv(cfg.Database.Postgres.PasswordEnv),
		SSLMode:  cfg.Database.Postgres.SSLMode,
	}

	if pgConfig.Username == "" {
		return nil, fmt.Errorf("PostgreSQL username not set. Set the %s environment variable", cfg.Database.Postgres.UsernameEnv)
	}

	return postgres.NewClient(pgConfig), nil
}

func runDBInit(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	client, err := getDBClient()
	if err != nil {
		return err
	}

	fmt.Println("Connecting to PostgreSQL...")
	if err := client.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer client.Close()

	color.Green("✓ Connected to database")

	fmt.Println("Running migrations...")
	if err := client.RunMigrations(); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	color.Green("✓ Database schema initialized")

	// Show migration version
	version, dirty, err := client.MigrationVersion()
	if err != nil {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	fmt.Printf("\nMigration version: %d", version)
	if dirty {
		color.Yellow(" (dirty)")
	}
	fmt.Println()

	// Show table summary
	stats, err := client.GetTableStats(ctx)
	if err != nil {
		return fmt.Errorf("failed to get table stats: %w", err)
	}

	fmt.Println("\nCreated tables:")
	for _, s := range stats {
		fmt.Printf("  • %s\n", s.TableName)
	}

	color.Green("\n✓ Database initialization complete")
	return nil
}

func runDBStatus(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := getDBClient()
	if err != nil {
		return err
	}

	fmt.Println("Checking database connection...")
	if err := client.Connect(ctx); err != nil {
		color.Red("✗ Connection failed: %v", err)
		return nil
	}
	defer client.Close()

	color.Green("✓ Connected")

	// Get database info
	info, err := client.GetDatabaseInfo(ctx)
	if err != nil {
		return fmt.Errorf("failed to get database info: %w", err)
	}

	fmt.Println("\n" + color.CyanString("Database Information"))
	fmt.Printf("  Database:    %s\n", info.DatabaseName)
	fmt.Printf("  Size:        %s\n", info.DatabaseSize)
	fmt.Printf("  Connections: %d/%d\n", info.ConnectionsNow, info.ConnectionsMax)

	// Get migration version
	version, dirty, err := client.MigrationVersion()
	if err != nil {
		fmt.Printf("  Migration:   %s\n", color.YellowString("not initialized"))
	} else {
		status := fmt.Sprintf("v%d", version)
		if dirty {
			status += color.YellowString(" (dirty)")
		}
		fmt.Printf("  Migration:   %s\n", status)
	}

	// Get table statistics
	stats, err := client.GetTableStats(ctx)
	if err != nil {
		return fmt.Errorf("failed to get table stats: %w", err)
	}

	if len(stats) > 0 {
		fmt.Println("\n" + color.CyanString("Table Statistics"))

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Table", "Rows", "Size"})
		table.SetBorder(false)
		table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
		table.SetAlignment(tablewriter.ALIGN_LEFT)

		for _, s := range stats {
			table.Append([]string{s.TableName, fmt.Sprintf("%d", s.RowCount), s.Size})
		}
		table.Render()
	}

	// Show pool stats
	poolStats := client.Stats()
	if poolStats != nil {
		fmt.Println("\n" + color.CyanString("Connection Pool"))
		fmt.Printf("  Total conns:      %d\n", poolStats.TotalConns())
		fmt.Printf("  Idle conns:       %d\n", poolStats.IdleConns())
		fmt.Printf("  Acquired conns:   %d\n", poolStats.AcquiredConns())
	}

	return nil
}

func runDBHistory(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	orch, err := getOrchestrator(ctx)
	if err != nil {
		return err
	}
	defer orch.Close()

	runs, err := orch.SyncRuns().GetRecent(ctx, historyLimit)
	if err != nil {
		return fmt.Errorf("failed to get sync runs: %w", err)
	}

	if len(runs) == 0 {
		color.Yellow("No pipeline runs recorded yet")
		return nil
	}

	fmt.Println("\n" + color.CyanString("Recent Pipeline Runs"))

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Started", "Action", "Source", "Count", "Details"})
	table.SetBorder(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for _, r := range runs {
		table.Append([]string{
			r.StartedAt.Format("2006-01-02 15:04"),
			r.Action,
			r.Source,
			fmt.Sprintf("%d", r.Count),
			r.Details,
		})
	}
	table.Render()
	fmt.Println()

	return nil
}

func runDBRollback(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	client, err := getDBClient()
	if err != nil {
		return err
	}

	fmt.Println("Connecting to PostgreSQL...")
	if err := client.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer client.Close()

	version, dirty, err := client.MigrationVersion()
	if err != nil {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	fmt.Printf("Current version: %d", version)
	if dirty {
		color.Yellow(" (dirty)")
	}
	fmt.Println()

	fmt.Println("Rolling back one migration...")
	if err := client.RollbackMigration(); err != nil {
		return fmt.Errorf("rollback failed: %w", err)
	}

	color.Green("✓ Rollback complete")
	return nil
}

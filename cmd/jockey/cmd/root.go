package cmd

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "jockey",
	Short: "Ecommerce Jockey Operations Terminal",
	Long: color.New(color.FgCyan, color.Bold).Sprint(`
    _            _
   (_) ___   ___| | _____ _   _
   | |/ _ \ / __| |/ / _ \ | | |
   | | (_) | (__|   <  __/ |_| |
  _/ |\___/ \___|_|\_\___|\__, |
 |__/                     |___/
`) + `
Ecommerce Jockey Operations Terminal - Parts catalog sync toolkit

Sync distributor inventory and pricing from Premier, catalog data
from the SEMA Data Co-op, link them into a unified storefront
catalog, and push the results to Shopify.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(dbCmd)
	rootCmd.AddCommand(premierCmd)
	rootCmd.AddCommand(semaCmd)
	rootCmd.AddCommand(linkCmd)
	rootCmd.AddCommand(relevancyCmd)
	rootCmd.AddCommand(calcCmd)
	rootCmd.AddCommand(shopifyCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(observationsCmd)
	rootCmd.AddCommand(imagesCmd)
	rootCmd.AddCommand(sourcesCmd)
}

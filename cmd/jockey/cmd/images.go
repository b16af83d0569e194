package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/ecommercejockey/jockey/internal/images"
)

var (
	fetchLimit int
	resizeSize int
)

var imagesCmd = &cobra.Command{
	Use:   "images",
	Short: "Manage product images",
	Long:  `Fetch and resize primary product images from the Premier feed.`,
}

var imagesFetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch primary product images",
	Long:  `Download the primary image for every Premier product that has one.`,
	RunE:  runImagesFetch,
}

var imagesResizeCmd = &cobra.Command{
	Use:   "resize",
	Short: "Resize images to square format",
	Long:  `Center-crop and resize downloaded images to square format (default 100x100 thumbnails).`,
	RunE:  runImagesResize,
}

func init() {
	imagesFetchCmd.Flags().IntVarP(&fetchLimit, "limit", "l", 0, "Limit number of images to fetch (0 = all)")
	imagesResizeCmd.Flags().IntVarP(&resizeSize, "size", "s", images.ThumbnailSize, "Target size for square images")

	imagesCmd.AddCommand(imagesFetchCmd)
	imagesCmd.AddCommand(imagesResizeCmd)
}

func runImagesFetch(cmd *cobra.Command, args []string) error {
	header := color.New(color.FgCyan, color.Bold)
	success := color.New(color.FgGreen)

	header.Println("\n  FETCHING PRODUCT IMAGES")
	fmt.Println("  " + strings.Repeat("─", 40))
	fmt.Println()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	orch, err := getOrchestrator(ctx)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}
	defer orch.Close()

	products, err := orch.PremierRepo().GetProducts(ctx)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	type target struct {
		partNumber string
		url        string
	}
	targets := make([]target, 0, len(products))
	for _, p := range products {
		if p.PrimaryImage == "" {
			continue
		}
		targets = append(targets, target{p.PremierPartNumber, p.PrimaryImage})
	}

	if len(targets) == 0 {
		color.Yellow("  No products with images found. Run 'jockey premier import' first.")
		return nil
	}
	if fetchLimit > 0 && fetchLimit < len(targets) {
		targets = targets[:fetchLimit]
	}

	color.Yellow("  Found %d images to fetch\n", len(targets))
	fmt.Println()

	bar := progressbar.NewOptions(len(targets),
		progressbar.OptionSetDescription("  Downloading"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        color.GreenString("█"),
			SaucerHead:    color.GreenString("█"),
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionShowCount(),
	)

	fetcher := images.NewFetcher()
	downloaded := 0
	failed := 0
	for _, t := range targets {
		bar.Add(1)
		if _, _, err := fetcher.Download(ctx, t.url, t.partNumber); err != nil {
			failed++
			continue
		}
		downloaded++
	}
	bar.Finish()
	fmt.Println()

	success.Printf("\n  ✓ Downloaded %d images\n", downloaded)
	if failed > 0 {
		color.Yellow("  %d downloads failed", failed)
	}
	fmt.Println()

	return nil
}

func runImagesResize(cmd *cobra.Command, args []string) error {
	header := color.New(color.FgCyan, color.Bold)
	success := color.New(color.FgGreen)

	header.Println("\n  RESIZING IMAGES")
	fmt.Println("  " + strings.Repeat("─", 40))
	fmt.Println()

	resizer := images.NewResizer()
	originals, err := resizer.FindOriginals()
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	if len(originals) == 0 {
		color.Yellow("  No images found. Run 'jockey images fetch' first.")
		return nil
	}

	color.Yellow("  Found %d images to resize (target %dx%d)\n", len(originals), resizeSize, resizeSize)
	fmt.Println()

	bar := progressbar.NewOptions(len(originals),
		progressbar.OptionSetDescription("  Resizing"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        color.GreenString("█"),
			SaucerHead:    color.GreenString("█"),
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionShowCount(),
	)

	resized := 0
	failed := 0
	for _, src := range originals {
		bar.Add(1)
		if _, err := resizer.ResizeSquare(src, resizeSize); err != nil {
			failed++
			continue
		}
		resized++
	}
	bar.Finish()
	fmt.Println()

	success.Printf("\n  ✓ Resized %d images\n", resized)
	if failed > 0 {
		color.Yellow("  %d resizes failed", failed)
	}
	fmt.Println()

	return nil
}

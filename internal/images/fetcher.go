package images

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Fetcher downloads Premier primary images for local processing
type Fetcher struct {
	client    *http.Client
	outputDir string
}

// NewFetcher creates a new image fetcher
func NewFetcher() *Fetcher {
	return &Fetcher{
		client:    &http.Client{},
		outputDir: "output/originals",
	}
}

// NewFetcherWithDir creates a fetcher writing to a specific directory
func NewFetcherWithDir(outputDir string) *Fetcher {
	f := NewFetcher()
	if outputDir != "" {
		f.outputDir = outputDir
	}
	return f
}

// Download fetches an image and saves it locally, named by part number
func (f *Fetcher) Download(ctx context.Context, url, partNumber string) (string, string, error) {
	if err := os.MkdirAll(f.outputDir, 0755); err != nil {
		return "", "", err
	}

	ext := ".jpg"
	if strings.Contains(url, ".png") {
		ext = ".png"
	} else if strings.Contains(url, ".webp") {
		ext = ".webp"
	}

	filename := fmt.Sprintf("%s%s", sanitizeName(partNumber), ext)
	destPath := filepath.Join(f.outputDir, filename)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", "", err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("failed to download: HTTP %d", resp.StatusCode)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return "", "", err
	}
	defer out.Close()

	n, err := io.Copy(out, resp.Body)
	if err != nil {
		return "", "", err
	}

	return destPath, formatSize(n), nil
}

// ValidateURL checks if a URL is accessible (returns HTTP 200)
func (f *Fetcher) ValidateURL(ctx context.Context, url string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK, nil
}

// DownloadWithValidation downloads an image only if it passes validation
func (f *Fetcher) DownloadWithValidation(ctx context.Context, url, partNumber string) (string, string, error) {
	valid, err := f.ValidateURL(ctx, url)
	if err != nil {
		return "", "", fmt.Errorf("validation failed: %w", err)
	}
	if !valid {
		return "", "", fmt.Errorf("URL returned non-200 status")
	}

	return f.Download(ctx, url, partNumber)
}

// Part numbers can contain slashes, which would break file paths
func sanitizeName(name string) string {
	replacer := strings.NewReplacer("/", "-", "\\", "-", " ", "_")
	return replacer.Replace(name)
}

func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

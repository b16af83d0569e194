package images

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

const (
	// ThumbnailSize is the edge length of admin preview thumbnails
	ThumbnailSize = 100
	// ThumbnailQuality keeps previews small; they are never shown full size
	ThumbnailQuality = 50
)

// Resizer produces square preview thumbnails from downloaded originals
type Resizer struct {
	inputDir  string
	outputDir string
}

// NewResizer creates a new image resizer
func NewResizer() *Resizer {
	return &Resizer{
		inputDir:  "output/originals",
		outputDir: "output/thumbnails",
	}
}

// FindOriginals returns paths to all original images
func (r *Resizer) FindOriginals() ([]string, error) {
	var images []string

	err := filepath.Walk(r.inputDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if ext == ".jpg" || ext == ".jpeg" || ext == ".png" || ext == ".webp" {
			images = append(images, path)
		}
		return nil
	})

	return images, err
}

// Thumbnail produces a center-cropped square preview of an image
func (r *Resizer) Thumbnail(srcPath string) (string, error) {
	return r.ResizeSquare(srcPath, ThumbnailSize)
}

// ResizeSquare resizes an image to a square with center-crop fill
func (r *Resizer) ResizeSquare(srcPath string, size int) (string, error) {
	src, err := imaging.Open(srcPath)
	if err != nil {
		return "", err
	}

	resized := imaging.Fill(src, size, size, imaging.Center, imaging.Lanczos)

	sizeDir := filepath.Join(r.outputDir, fmt.Sprintf("%d", size))
	if err := os.MkdirAll(sizeDir, 0755); err != nil {
		return "", err
	}

	// Previews are always JPEG regardless of the source format
	base := filepath.Base(srcPath)
	filename := strings.TrimSuffix(base, filepath.Ext(base)) + ".jpg"
	destPath := filepath.Join(sizeDir, filename)

	if err := imaging.Save(resized, destPath, imaging.JPEGQuality(ThumbnailQuality)); err != nil {
		return "", err
	}

	return destPath, nil
}

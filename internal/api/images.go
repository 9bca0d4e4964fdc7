package api

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	apierrors "github.com/diogo/geminiwin95/internal/errors"
	"github.com/diogo/geminiwin95/internal/models"
)

// ImageSaveOptions configures where generated images are written
type ImageSaveOptions struct {
	// Directory is the destination directory (default: ~/.geminiwin95/images)
	Directory string
	// Filename is the output filename (generated from the prompt if empty)
	Filename string
	// Prompt is used to name the file
	Prompt string
}

// DefaultImageDir returns the default directory for generated images
func DefaultImageDir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".geminiwin95", "images")
}

var invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

// SaveImage decodes an image result and writes it to disk.
// Returns the absolute path of the written file.
func SaveImage(result *models.Result, opts ImageSaveOptions) (string, error) {
	if !result.IsImage() {
		return "", fmt.Errorf("result does not contain an image")
	}

	data, err := base64.StdEncoding.DecodeString(result.ImageBase64())
	if err != nil {
		return "", apierrors.NewParseError("invalid image data: "+err.Error(), PathPredictionBytes)
	}

	dir := opts.Directory
	if dir == "" {
		dir = DefaultImageDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	filename := opts.Filename
	if filename == "" {
		filename = generateFilename(opts.Prompt, time.Now())
	}
	destPath := filepath.Join(dir, sanitizeFilename(filename))

	if err := os.WriteFile(destPath, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to save image: %w", err)
	}

	absPath, err := filepath.Abs(destPath)
	if err != nil {
		return destPath, nil
	}
	return absPath, nil
}

// generateFilename creates a png filename from the prompt and a timestamp
func generateFilename(prompt string, now time.Time) string {
	stamp := now.Format("20060102_150405")

	safe := strings.Join(strings.Fields(sanitizeFilename(prompt)), "_")
	if r := []rune(safe); len(r) > 40 {
		safe = strings.TrimRight(string(r[:40]), "_.")
	}
	if safe == "" {
		return fmt.Sprintf("image_%s.png", stamp)
	}
	return fmt.Sprintf("%s_%s.png", safe, stamp)
}

// sanitizeFilename removes invalid characters from filenames
func sanitizeFilename(name string) string {
	return strings.TrimSpace(invalidFilenameChars.ReplaceAllString(name, "_"))
}

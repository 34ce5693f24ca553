package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/menta2k/image-selector/pkg/types"
)

// EnsureDir creates a directory if it doesn't exist
func EnsureDir(dir string) error {
	if dir == "" {
		return nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}

// GetFileExtension returns the file extension without the dot
func GetFileExtension(filename string) string {
	ext := filepath.Ext(filename)
	if len(ext) > 0 {
		return strings.ToLower(ext[1:])
	}
	return ""
}

// IsImageFile checks if a file has an image extension
func IsImageFile(filename string) bool {
	switch GetFileExtension(filename) {
	case "jpg", "jpeg", "png", "gif", "bmp", "tiff", "webp":
		return true
	}
	return false
}

// OutputPath joins dir with a file named after the input's base name
func OutputPath(inputFile, outputDir, suffix, format string) string {
	base := filepath.Base(inputFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if name == "" || strings.Contains(inputFile, "://") {
		name = "remote"
	}
	if format == "" {
		format = "png"
	}
	return filepath.Join(outputDir, SanitizeFilename(fmt.Sprintf("%s%s.%s", name, suffix, format)))
}

// FileExists checks if a file exists and is not a directory
func FileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// SanitizeFilename removes or replaces invalid characters in filenames
func SanitizeFilename(filename string) string {
	invalid := []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|"}
	result := filename
	for _, char := range invalid {
		result = strings.ReplaceAll(result, char, "_")
	}
	return strings.Trim(result, " .")
}

// ParseFloats parses exactly n comma separated numbers
func ParseFloats(s string, n int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("%q: expected %d comma separated numbers", s, n)
	}

	v := make([]float64, n)
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", s, err)
		}
		v[i] = f
	}
	return v, nil
}

// ParseRect parses "x,y,width,height"
func ParseRect(s string) (types.Rect, error) {
	v, err := ParseFloats(s, 4)
	if err != nil {
		return types.Rect{}, fmt.Errorf("rectangle %w", err)
	}
	if v[2] < 0 || v[3] < 0 {
		return types.Rect{}, fmt.Errorf("rectangle %q: negative size", s)
	}
	return types.Rect{X: v[0], Y: v[1], Width: v[2], Height: v[3]}, nil
}

package assets

import (
	"bytes"
	"embed"
	"fmt"
	"image"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
)

//go:embed costumes/*.png
var costumesFS embed.FS

// LoadImage decodes a costume image. The path is tried as given, then
// under assets/, then in the embedded costumes.
func LoadImage(path string) (image.Image, error) {
	if path == "" {
		return nil, fmt.Errorf("assets: empty image path")
	}
	b, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("assets: decode %s: %w", path, err)
	}
	return img, nil
}

// LoadFile returns the raw bytes of an asset.
func LoadFile(path string) ([]byte, error) {
	clean := cleanAssetPath(path)
	tried := []string{path, filepath.Join("assets", filepath.FromSlash(clean))}
	for _, p := range tried {
		if b, err := os.ReadFile(p); err == nil {
			return b, nil
		}
	}
	b, err := costumesFS.ReadFile(embeddedPath(clean))
	if err != nil {
		return nil, fmt.Errorf("assets: load %s: %w", path, err)
	}
	return b, nil
}

// Costumes lists the embedded costume file names.
func Costumes() []string {
	entries, err := costumesFS.ReadDir("costumes")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func embeddedPath(clean string) string {
	if strings.HasPrefix(clean, "costumes/") {
		return clean
	}
	return "costumes/" + clean
}

func cleanAssetPath(path string) string {
	if path == "" {
		return ""
	}
	if filepath.IsAbs(path) {
		s := filepath.ToSlash(path)
		if idx := strings.LastIndex(s, "/assets/"); idx >= 0 {
			return s[idx+len("/assets/"):]
		}
		return filepath.Base(path)
	}
	s := filepath.ToSlash(path)
	if strings.HasPrefix(s, "assets/") {
		return strings.TrimPrefix(s, "assets/")
	}
	return s
}

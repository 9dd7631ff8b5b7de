package display

import (
	"fmt"
	"image"
	_ "image/png"
	"os"
)

// LoadSplash decodes a splash image from path. An empty path returns nil,
// which selects the built-in splash.
func LoadSplash(path string) (image.Image, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open splash: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode splash %s: %w", path, err)
	}
	return img, nil
}

package render

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

func loadBackground(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open background: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode background: %w", err)
	}
	return img, nil
}

func loadFace(path string, points float64) (font.Face, error) {
	face, err := gg.LoadFontFace(path, points)
	if err != nil {
		return nil, fmt.Errorf("load font face: %w", err)
	}
	return face, nil
}

// fallbackFace keeps the renderer functional when no usable font file is
// configured, at the cost of tiny glyphs.
func fallbackFace() font.Face { return basicfont.Face7x13 }

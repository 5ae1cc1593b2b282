// Package render composites the emoji label onto the meme card PNG.
package render

import (
	"bytes"
	"fmt"
	"image"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/fogleman/gg"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/image/font"

	"github.com/memecard-ai/memecard/internal/core/observability"
)

// card geometry: fixed canvas, label anchored at a fixed offset from the
// top-left corner
const (
	canvasW = 1120
	canvasH = 1240

	labelLeftFrac = 0.23
	labelTopFrac  = 0.46
	labelPoints   = 200
)

const fallbackBgHex = "#F5F0E6"

type Config struct {
	BackgroundFile  string
	FontFile        string
	PlaceholderFile string
	MemoSize        int
}

type Renderer struct {
	logger      *slog.Logger
	bg          image.Image
	face        font.Face
	placeholder []byte
	memo        *lru.Cache[string, []byte]

	// truetype faces are not safe for concurrent glyph drawing
	mu sync.Mutex
}

// New loads the card assets and prepares the renderer. Missing or unreadable
// assets degrade to a flat background and a built-in face rather than failing
// startup.
func New(logger *slog.Logger, cfg Config) (*Renderer, error) {
	size := cfg.MemoSize
	if size <= 0 {
		size = 256
	}
	memo, _ := lru.New[string, []byte](size)

	r := &Renderer{logger: logger, memo: memo}

	if cfg.BackgroundFile != "" {
		bg, err := loadBackground(cfg.BackgroundFile)
		if err != nil {
			logger.Warn("background asset unavailable, using flat fill",
				"path", cfg.BackgroundFile, "err", err)
		} else {
			r.bg = bg
		}
	}

	r.face = fallbackFace()
	if cfg.FontFile != "" {
		face, err := loadFace(cfg.FontFile, labelPoints)
		if err != nil {
			logger.Warn("font asset unavailable, using built-in face",
				"path", cfg.FontFile, "err", err)
		} else {
			r.face = face
		}
	}

	if cfg.PlaceholderFile != "" {
		b, err := os.ReadFile(cfg.PlaceholderFile)
		if err != nil {
			logger.Warn("placeholder asset unavailable, composing one",
				"path", cfg.PlaceholderFile, "err", err)
		} else {
			r.placeholder = b
		}
	}
	if r.placeholder == nil {
		b, err := r.Compose("?")
		if err != nil {
			return nil, fmt.Errorf("render: compose fallback placeholder: %w", err)
		}
		r.placeholder = b
	}

	return r, nil
}

// Compose renders the card PNG for output. Cards are memoized per label; the
// label space is tiny and rasterization dominates the hot path.
func (r *Renderer) Compose(output string) ([]byte, error) {
	start := time.Now()
	if b, ok := r.memo.Get(output); ok {
		observability.ObserveRender("memo", time.Since(start).Seconds())
		return b, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.memo.Get(output); ok {
		observability.ObserveRender("memo", time.Since(start).Seconds())
		return b, nil
	}

	dc := gg.NewContext(canvasW, canvasH)
	r.drawBackground(dc)

	dc.SetFontFace(r.face)
	dc.SetRGB(0, 0, 0)
	dc.DrawStringAnchored(output, canvasW*labelLeftFrac, canvasH*labelTopFrac, 0, 1)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("render: encode png: %w", err)
	}
	out := buf.Bytes()
	r.memo.Add(output, out)
	observability.ObserveRender("render", time.Since(start).Seconds())
	return out, nil
}

// Placeholder returns the card served when the request carries no query.
func (r *Renderer) Placeholder() []byte { return r.placeholder }

func (r *Renderer) drawBackground(dc *gg.Context) {
	if r.bg == nil {
		dc.SetHexColor(fallbackBgHex)
		dc.Clear()
		return
	}
	b := r.bg.Bounds()
	dc.Push()
	dc.Scale(float64(canvasW)/float64(b.Dx()), float64(canvasH)/float64(b.Dy()))
	dc.DrawImage(r.bg, 0, 0)
	dc.Pop()
}

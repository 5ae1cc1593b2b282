// Renders a meme card PNG offline, without a server or model call. Useful
// for checking assets and for generating the static placeholder image the
// server ships with.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/memecard-ai/memecard/internal/core/config"
	"github.com/memecard-ai/memecard/internal/logger"
	"github.com/memecard-ai/memecard/internal/render"
)

func main() {
	output := flag.String("output", "🙂", "Emoji (or text) to place on the card")
	outFile := flag.String("out", "card.png", "Output PNG path")
	placeholder := flag.Bool("placeholder", false, "Render the placeholder card instead")
	flag.Parse()

	cfg := config.FromEnv()

	zl := logger.Build(logger.Config{
		Level:     cfg.LogLevel,
		Console:   true,
		Component: "cardgen",
	}, os.Stderr)
	appLog := logger.NewSlog(&zl)

	r, err := render.New(appLog, render.Config{
		BackgroundFile:  cfg.BackgroundFile,
		FontFile:        cfg.FontFile,
		PlaceholderFile: cfg.PlaceholderFile,
		MemoSize:        1,
	})
	if err != nil {
		appLog.Error("renderer setup failed", "err", err)
		os.Exit(1)
	}

	var png []byte
	if *placeholder {
		png = r.Placeholder()
	} else {
		png, err = r.Compose(*output)
		if err != nil {
			appLog.Error("render failed", "output", *output, "err", err)
			os.Exit(1)
		}
	}

	if err := os.WriteFile(filepath.Clean(*outFile), png, 0o644); err != nil {
		appLog.Error("write failed", "path", *outFile, "err", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s (%d bytes)\n", *outFile, len(png))
}

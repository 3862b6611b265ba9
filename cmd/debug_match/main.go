package main

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/ConserveLee/battle-idle/internal/config"
	"github.com/ConserveLee/battle-idle/internal/engine/screen"
)

// Offline matching diagnostics. Point it at a screenshot dumped by the bot
// (debug_screen.png by default) and it reports the best match score for
// every template on disk at a few confidence levels.
func main() {
	screenPath := "debug_screen.png"
	if len(os.Args) > 1 {
		screenPath = os.Args[1]
	}

	cfg, err := config.Load("config.yaml")
	if err != nil {
		fmt.Printf("Using default configuration: %v\n", err)
	}

	screenImg, err := loadGray(screenPath)
	if err != nil {
		fmt.Printf("Failed to load screen %s: %v\n", screenPath, err)
		return
	}
	fmt.Printf("Screen size: %dx%d\n", screenImg.Bounds().Dx(), screenImg.Bounds().Dy())

	templates, err := filepath.Glob(filepath.Join(cfg.TemplatesDir, "*.png"))
	if err != nil || len(templates) == 0 {
		fmt.Printf("No templates found in %s\n", cfg.TemplatesDir)
		return
	}

	for _, tplPath := range templates {
		tplName := filepath.Base(tplPath)
		tplImg, err := loadGray(tplPath)
		if err != nil {
			fmt.Printf("Failed to load template %s: %v\n", tplName, err)
			continue
		}

		fmt.Printf("\n=== Testing %s (%dx%d, configured threshold %.2f) ===\n",
			tplName, tplImg.Bounds().Dx(), tplImg.Bounds().Dy(), cfg.ConfidenceFor(tplName))

		for _, confidence := range []float64{0.4, 0.6, 0.8, 0.9} {
			pos, score, found := screen.FindBestMatch(screenImg, tplImg, confidence)
			if found {
				fmt.Printf("  Confidence %.2f: MATCH at %v (score %.4f)\n", confidence, pos, score)
			} else {
				fmt.Printf("  Confidence %.2f: no match (best score %.4f)\n", confidence, score)
			}
		}
	}
}

func loadGray(path string) (*image.Gray, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, err
	}
	return screen.ToGray(img), nil
}

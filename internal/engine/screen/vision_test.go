package screen

import (
	"image"
	"image/color"
	"testing"
)

// grayCanvas builds a raster filled with a uniform background value.
func grayCanvas(w, h int, bg uint8) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, w, h))
	for i := range g.Pix {
		g.Pix[i] = bg
	}
	return g
}

// stamp draws a checker-ish block at (x, y) so the region has structure.
func stamp(dst *image.Gray, x, y, w, h int) {
	for dy := 0; dy < h; dy++ {
		for dx := 0; dx < w; dx++ {
			v := uint8(200)
			if (dx+dy)%2 == 0 {
				v = 40
			}
			dst.SetGray(x+dx, y+dy, color.Gray{Y: v})
		}
	}
}

// tmplLike extracts a standalone copy of a region, optionally perturbed.
func tmplLike(src *image.Gray, x, y, w, h int, noise uint8) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, w, h))
	for dy := 0; dy < h; dy++ {
		for dx := 0; dx < w; dx++ {
			v := src.GrayAt(x+dx, y+dy).Y
			if noise > 0 && (dx+dy)%3 == 0 {
				v += noise
			}
			g.SetGray(dx, dy, color.Gray{Y: v})
		}
	}
	return g
}

func TestFindBestMatchExact(t *testing.T) {
	scr := grayCanvas(120, 90, 128)
	stamp(scr, 37, 22, 12, 12)
	tmpl := tmplLike(scr, 37, 22, 12, 12, 0)

	pos, score, ok := FindBestMatch(scr, tmpl, 0.95)
	if !ok {
		t.Fatalf("exact template not found, best score %.3f", score)
	}
	if pos.X != 37 || pos.Y != 22 {
		t.Errorf("match at (%d, %d), want (37, 22)", pos.X, pos.Y)
	}
	if score < 0.999 {
		t.Errorf("exact match score = %.3f, want ~1.0", score)
	}
}

func TestFindBestMatchTolerantOfSmallNoise(t *testing.T) {
	scr := grayCanvas(120, 90, 128)
	stamp(scr, 60, 40, 10, 10)
	tmpl := tmplLike(scr, 60, 40, 10, 10, 6)

	pos, score, ok := FindBestMatch(scr, tmpl, 0.9)
	if !ok {
		t.Fatalf("noisy template not found, best score %.3f", score)
	}
	if pos.X != 60 || pos.Y != 40 {
		t.Errorf("match at (%d, %d), want (60, 40)", pos.X, pos.Y)
	}
}

func TestFindBestMatchAbsent(t *testing.T) {
	scr := grayCanvas(120, 90, 128)
	tmpl := grayCanvas(10, 10, 0)
	stamp(tmpl, 0, 0, 10, 10)

	if _, _, ok := FindBestMatch(scr, tmpl, 0.9); ok {
		t.Error("found a template that is not on screen")
	}
}

func TestFindBestMatchRejectsOversizedTemplate(t *testing.T) {
	scr := grayCanvas(20, 20, 128)
	tmpl := grayCanvas(40, 40, 128)

	if _, _, ok := FindBestMatch(scr, tmpl, 0.5); ok {
		t.Error("template larger than screen must not match")
	}
}

func TestToGrayPreservesBounds(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 8, 6))
	g := ToGray(src)
	if g.Bounds() != src.Bounds() {
		t.Errorf("bounds %v, want %v", g.Bounds(), src.Bounds())
	}
}

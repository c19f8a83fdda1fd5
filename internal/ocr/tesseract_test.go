//go:build cgo

package ocr

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"testing"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// skipIfUnavailable skips the test when Tesseract or its data is missing.
func skipIfUnavailable(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		return
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "tesseract") ||
		strings.Contains(msg, "library") ||
		strings.Contains(msg, "language") ||
		strings.Contains(msg, "tessdata") {
		t.Skipf("Tesseract not available: %v", err)
	}
}

// drawText draws text on an image using basicfont
func drawText(img *image.RGBA, x, y int, text string, col color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}

// createImageWithText renders text with basicfont and scales it up so
// Tesseract has enough pixels per glyph.
func createImageWithText(text string, scale int) *image.RGBA {
	width := len(text)*7 + 40
	height := 40

	small := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(small, small.Bounds(), image.White, image.Point{}, draw.Src)
	drawText(small, 20, 25, text, color.Black)

	img := image.NewRGBA(image.Rect(0, 0, width*scale, height*scale))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := small.At(x, y)
			for dy := 0; dy < scale; dy++ {
				for dx := 0; dx < scale; dx++ {
					img.Set(x*scale+dx, y*scale+dy, c)
				}
			}
		}
	}
	return img
}

func TestRecognizer_RecognizeText(t *testing.T) {
	r := NewRecognizer(DefaultOptions())

	candidates, err := r.RecognizeText(context.Background(), createImageWithText("ABC1234", 4))
	skipIfUnavailable(t, err)
	if err != nil {
		t.Fatalf("RecognizeText failed: %v", err)
	}

	// Recognition quality depends on the installed model; only check shape.
	for i, c := range candidates {
		if c.Text == "" {
			t.Errorf("candidate %d has empty text", i)
		}
		if c.Confidence < 0 || c.Confidence > 1 {
			t.Errorf("candidate %d confidence out of range: %f", i, c.Confidence)
		}
		if i > 0 && c.Confidence > candidates[i-1].Confidence {
			t.Errorf("candidates not ranked at %d", i)
		}
	}
	t.Logf("candidates: %+v", candidates)
}

func TestRecognizer_RegionScan(t *testing.T) {
	opts := DefaultOptions()
	opts.RegionScan = true
	r := NewRecognizer(opts)

	_, err := r.RecognizeText(context.Background(), createImageWithText("XYZ789", 3))
	skipIfUnavailable(t, err)
	if err != nil {
		t.Fatalf("RecognizeText failed: %v", err)
	}
}

func TestRecognizer_InvalidLanguage(t *testing.T) {
	r := NewRecognizer(Options{Language: "invalid_language_code_xyz"})

	if _, err := r.RecognizeText(context.Background(), createImageWithText("HELLO", 2)); err == nil {
		// Some Tesseract installations are lenient with language codes
		t.Log("RecognizeText did not fail for invalid language")
	}
}

func TestRecognizer_ExtractText(t *testing.T) {
	r := NewRecognizer(DefaultOptions())

	result, err := r.ExtractText(createImageWithText("HELLO WORLD", 4))
	skipIfUnavailable(t, err)
	if err != nil {
		t.Fatalf("ExtractText failed: %v", err)
	}
	if result == nil {
		t.Fatal("ExtractText returned nil result")
	}
	t.Logf("Extracted text: %q, regions: %d", result.FullText, len(result.Regions))
}

func TestRecognizer_ExtractText_SubImageOffset(t *testing.T) {
	full := image.NewRGBA(image.Rect(0, 0, 600, 300))
	draw.Draw(full, full.Bounds(), image.White, image.Point{}, draw.Src)
	text := createImageWithText("OFFSET", 3)
	draw.Draw(full, text.Bounds().Add(image.Pt(150, 100)), text, image.Point{}, draw.Src)

	offsetX, offsetY := 100, 50
	sub := full.SubImage(image.Rect(offsetX, offsetY, 600, 300))

	r := NewRecognizer(DefaultOptions())
	result, err := r.ExtractText(sub)
	skipIfUnavailable(t, err)
	if err != nil {
		t.Fatalf("ExtractText failed: %v", err)
	}

	// Any regions returned should be in the source image's coordinates
	for _, region := range result.Regions {
		if region.Bounds.X1 < offsetX || region.Bounds.Y1 < offsetY {
			t.Errorf("Region bounds %+v should be offset by (%d, %d)", region.Bounds, offsetX, offsetY)
		}
	}
}

func TestInfo(t *testing.T) {
	info := Info()
	if !info.Available {
		t.Errorf("cgo build should report OCR available: %+v", info)
	}
	if info.Backend != "gosseract" {
		t.Errorf("Backend: got %q", info.Backend)
	}
}

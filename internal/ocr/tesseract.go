//go:build cgo

package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/otiai10/gosseract/v2"

	"github.com/ironsheep/car-spotter/internal/detection"
)

// newClient returns a Tesseract client configured from r's options. The
// caller must Close it.
func (r *Recognizer) newClient() (*gosseract.Client, error) {
	client := gosseract.NewClient()

	if r.opts.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(r.opts.TessdataPrefix); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to set tessdata path: %w", err)
		}
	}
	if err := client.SetLanguage(r.opts.Language); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	if r.opts.Whitelist != "" {
		if err := client.SetWhitelist(r.opts.Whitelist); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to set whitelist: %w", err)
		}
	}

	return client, nil
}

// setImage hands img to Tesseract as PNG bytes, avoiding a temp file.
func setImage(client *gosseract.Client, img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to set image: %w", err)
	}
	return nil
}

// readLines runs Tesseract over img at text-line granularity.
func (r *Recognizer) readLines(img image.Image) ([]Line, error) {
	client, err := r.newClient()
	if err != nil {
		return nil, err
	}
	defer client.Close()

	if err := setImage(client, img); err != nil {
		return nil, err
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	lines := make([]Line, 0, len(boxes))
	for _, box := range boxes {
		lines = append(lines, Line{
			Text:       box.Word,
			Confidence: box.Confidence / 100.0,
			Bounds:     box.Box,
		})
	}
	return lines, nil
}

// ExtractText performs OCR on img and returns the full text plus word-level
// regions with confidence scores.
//
// If word-level bounding box extraction fails, the full text is still
// returned with an empty Regions slice.
func (r *Recognizer) ExtractText(img image.Image) (*OCRResult, error) {
	client, err := r.newClient()
	if err != nil {
		return nil, err
	}
	defer client.Close()

	if err := setImage(client, img); err != nil {
		return nil, err
	}

	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return &OCRResult{FullText: text, Regions: []TextRegion{}}, nil
	}

	offset := img.Bounds().Min
	regions := make([]TextRegion, 0, len(boxes))
	for _, box := range boxes {
		if box.Word == "" {
			continue
		}
		regions = append(regions, TextRegion{
			Text:       box.Word,
			Confidence: box.Confidence / 100.0,
			Bounds: detection.Bounds{
				X1: box.Box.Min.X + offset.X,
				Y1: box.Box.Min.Y + offset.Y,
				X2: box.Box.Max.X + offset.X,
				Y2: box.Box.Max.Y + offset.Y,
			},
		})
	}

	return &OCRResult{FullText: text, Regions: regions}, nil
}

// Info reports whether Tesseract is usable and which version is linked.
func Info() OCRInfo {
	client := gosseract.NewClient()
	defer client.Close()

	return OCRInfo{
		Available: true,
		Version:   client.Version(),
		Backend:   "gosseract",
	}
}

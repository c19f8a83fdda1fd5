// Package vision defines the collaborator ports consumed by the detection
// pipeline: a rectangle detector and a text recognizer.
//
// Both ports are satisfied by the concrete adapters in the detection and ocr
// packages, and by any fake used in tests. Nothing in this package depends on
// how the boxes or text were produced.
//
// # Coordinate System
//
// Rectangles are normalized to the source image: X, Y, Width and Height are
// fractions in [0, 1] with the origin at the top-left corner.
package vision

import (
	"context"
	"image"
)

// Rect is a normalized bounding box.
type Rect struct {
	X      float64 `json:"x"`      // Left edge as a fraction of image width
	Y      float64 `json:"y"`      // Top edge as a fraction of image height
	Width  float64 `json:"width"`  // Horizontal extent as a fraction of image width
	Height float64 `json:"height"` // Vertical extent as a fraction of image height
}

// Area returns the normalized area (Width × Height).
func (r Rect) Area() float64 {
	return r.Width * r.Height
}

// Box is a rectangle candidate produced by a RectangleDetector.
type Box struct {
	// BoundingBox is the normalized bounding box of the candidate.
	BoundingBox Rect `json:"bounding_box"`

	// Confidence is the detector's score for this candidate (0.0 to 1.0).
	Confidence float32 `json:"confidence"`
}

// TextCandidate is a piece of recognized text with the recognizer's score.
type TextCandidate struct {
	Text       string  `json:"text"`
	Confidence float32 `json:"confidence"`
}

// RectangleDetector finds rectangle-like shapes in an image.
type RectangleDetector interface {
	// DetectRectangles returns every candidate found in img, in the
	// detector's own order.
	DetectRectangles(ctx context.Context, img image.Image) ([]Box, error)
}

// TextRecognizer extracts text from an image.
type TextRecognizer interface {
	// RecognizeText returns candidates ordered by the recognizer's ranking,
	// best first.
	RecognizeText(ctx context.Context, img image.Image) ([]TextCandidate, error)
}

// RectangleDetectorFunc adapts a plain function to RectangleDetector.
type RectangleDetectorFunc func(ctx context.Context, img image.Image) ([]Box, error)

// DetectRectangles calls f(ctx, img).
func (f RectangleDetectorFunc) DetectRectangles(ctx context.Context, img image.Image) ([]Box, error) {
	return f(ctx, img)
}

// TextRecognizerFunc adapts a plain function to TextRecognizer.
type TextRecognizerFunc func(ctx context.Context, img image.Image) ([]TextCandidate, error)

// RecognizeText calls f(ctx, img).
func (f TextRecognizerFunc) RecognizeText(ctx context.Context, img image.Image) ([]TextCandidate, error) {
	return f(ctx, img)
}

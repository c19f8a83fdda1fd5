// Package vehicle derives coarse visual features from a photo and maps them
// to a best-guess make and model.
//
// Neither step is a trained model. Features are counts and ratios taken from
// rectangle candidates, and the prediction is a fixed decision table tuned
// against exactly these feature definitions. Changing how a feature is
// computed changes which row of the table fires.
package vehicle

import (
	"context"
	"fmt"
	"image"

	"github.com/ironsheep/car-spotter/internal/vision"
)

// placeholderColors is returned for every image. No pixel analysis backs it.
var placeholderColors = []string{"Silver", "Black", "White"}

// CarFeatures holds the features of one photo.
type CarFeatures struct {
	// GrilleArea is the normalized width of the first detected rectangle,
	// or 0 when none was found.
	GrilleArea float64 `json:"grille_area"`

	// HeadlightCount is the raw number of detected rectangles. No area or
	// confidence filtering is applied.
	HeadlightCount int `json:"headlight_count"`

	// BodyProportions is image width divided by image height, in pixels.
	BodyProportions float32 `json:"body_proportions"`

	// DominantColors is a constant placeholder list.
	DominantColors []string `json:"dominant_colors"`
}

// Extractor computes CarFeatures with a rectangle detector.
type Extractor struct {
	detector vision.RectangleDetector
}

// NewExtractor returns an Extractor backed by detector.
func NewExtractor(detector vision.RectangleDetector) *Extractor {
	return &Extractor{detector: detector}
}

// Extract runs the detector over img and derives its features.
//
// img must have a positive height; a zero-height image panics. Callers are
// expected to reject such images before reaching this stage.
func (e *Extractor) Extract(ctx context.Context, img image.Image) (CarFeatures, error) {
	b := img.Bounds()
	if b.Dy() <= 0 {
		panic(fmt.Sprintf("vehicle: cannot extract features from image with height %d", b.Dy()))
	}

	boxes, err := e.detector.DetectRectangles(ctx, img)
	if err != nil {
		return CarFeatures{}, fmt.Errorf("rectangle detection failed: %w", err)
	}

	var grille float64
	if len(boxes) > 0 {
		grille = boxes[0].BoundingBox.Width
	}

	colors := make([]string, len(placeholderColors))
	copy(colors, placeholderColors)

	return CarFeatures{
		GrilleArea:      grille,
		HeadlightCount:  len(boxes),
		BodyProportions: float32(b.Dx()) / float32(b.Dy()),
		DominantColors:  colors,
	}, nil
}

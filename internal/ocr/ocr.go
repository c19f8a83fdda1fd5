package ocr

import (
	"context"
	"errors"
	"image"
	"sort"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/car-spotter/internal/detection"
	"github.com/ironsheep/car-spotter/internal/vision"
)

// ErrUnavailable is returned by every OCR entry point when the binary was
// built without Tesseract support.
var ErrUnavailable = errors.New("ocr: tesseract support not built into this binary")

// Options configures a Recognizer.
type Options struct {
	// Language is the Tesseract language code, e.g. "eng".
	Language string

	// TessdataPrefix overrides the directory holding *.traineddata files.
	// Empty uses the Tesseract default (TESSDATA_PREFIX or the system path).
	TessdataPrefix string

	// Whitelist restricts recognized characters. Empty allows everything.
	Whitelist string

	// RegionScan also reads each plate-shaped text region found by
	// detection.DetectTextRegions, cropped from the source image.
	RegionScan bool

	// RegionMinConfidence is the minimum text-region score considered by
	// the region scan.
	RegionMinConfidence float64
}

// DefaultOptions returns English recognition without region scanning.
func DefaultOptions() Options {
	return Options{
		Language:            "eng",
		RegionMinConfidence: 0.3,
	}
}

// Line is one line of text read by Tesseract.
type Line struct {
	Text       string
	Confidence float64 // 0.0 to 1.0
	Bounds     image.Rectangle
}

// TextRegion is a word with its location and OCR confidence.
type TextRegion struct {
	Text       string           `json:"text"`
	Confidence float64          `json:"confidence"`
	Bounds     detection.Bounds `json:"bounds"`
}

// OCRResult contains the complete results of text extraction from an image.
type OCRResult struct {
	// FullText is all recognized text with original spacing and newlines.
	FullText string `json:"full_text"`

	// Regions contains individual words. May be empty if bounding box
	// extraction fails; the text is still in FullText.
	Regions []TextRegion `json:"regions"`
}

// OCRInfo describes the OCR backend compiled into the binary.
type OCRInfo struct {
	Available bool   `json:"available"`
	Version   string `json:"version,omitempty"`
	Error     string `json:"error,omitempty"`
	Backend   string `json:"backend"`
}

// Recognizer implements vision.TextRecognizer on top of Tesseract.
//
// A new Tesseract client is created for each read, so a Recognizer is safe
// for concurrent use.
type Recognizer struct {
	opts Options
	read func(img image.Image) ([]Line, error)
}

var _ vision.TextRecognizer = (*Recognizer)(nil)

// NewRecognizer returns a Recognizer using opts. An empty Language defaults
// to English.
func NewRecognizer(opts Options) *Recognizer {
	if opts.Language == "" {
		opts.Language = "eng"
	}
	r := &Recognizer{opts: opts}
	r.read = r.readLines
	return r
}

// RecognizeText reads text lines from img and returns them as candidates,
// highest confidence first. With RegionScan enabled, lines read from each
// cropped text region are ranked together with the whole-image lines.
//
// The context is checked before each Tesseract pass.
func (r *Recognizer) RecognizeText(ctx context.Context, img image.Image) ([]vision.TextCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lines, err := r.read(img)
	if err != nil {
		return nil, err
	}

	if r.opts.RegionScan {
		for _, region := range detection.DetectTextRegions(img, r.opts.RegionMinConfidence).Regions {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			more, err := r.read(imaging.Crop(img, region.Bounds.Rect()))
			if err != nil {
				return nil, err
			}
			lines = append(lines, more...)
		}
	}

	return rankCandidates(lines), nil
}

// rankCandidates trims each line, drops empty ones, keeps the best score for
// repeated text and orders the result by confidence, highest first. Ties keep
// reading order.
func rankCandidates(lines []Line) []vision.TextCandidate {
	best := make(map[string]int, len(lines))
	candidates := make([]vision.TextCandidate, 0, len(lines))

	for _, line := range lines {
		text := strings.TrimSpace(line.Text)
		if text == "" {
			continue
		}
		confidence := float32(line.Confidence)
		if i, seen := best[text]; seen {
			if confidence > candidates[i].Confidence {
				candidates[i].Confidence = confidence
			}
			continue
		}
		best[text] = len(candidates)
		candidates = append(candidates, vision.TextCandidate{Text: text, Confidence: confidence})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})
	return candidates
}

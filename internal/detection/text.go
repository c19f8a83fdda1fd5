package detection

import (
	"image"
	"math"
	"sort"
)

// TextRegion is an area likely to hold a line of text such as a plate.
type TextRegion struct {
	Bounds     Bounds  `json:"bounds"`
	Confidence float64 `json:"confidence"`
	Area       int     `json:"area"`
}

// TextRegionsResult contains detected text regions
type TextRegionsResult struct {
	Regions []TextRegion `json:"regions"`
	Count   int          `json:"count"`
}

// plateWindows are sliding-window sizes shaped like plates seen at typical
// photo distances, roughly 4:1.
var plateWindows = []struct{ w, h int }{
	{80, 20},
	{120, 30},
	{160, 40},
	{200, 50},
}

// DetectTextRegions finds regions likely to contain a line of text.
//
// It slides plate-shaped windows over the edge map and keeps windows with a
// medium edge density and predominantly horizontal structure. Overlapping
// hits are merged and the result is sorted by confidence, highest first.
func DetectTextRegions(img image.Image, minConfidence float64) *TextRegionsResult {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	edges := detectEdges(grayscale(img, 0), width, height)
	candidates := make([]TextRegion, 0)

	for _, ws := range plateWindows {
		for y := 0; y <= height-ws.h; y += ws.h / 2 {
			for x := 0; x <= width-ws.w; x += ws.w / 2 {
				confidence, ok := scoreWindow(edges, x, y, ws.w, ws.h)
				if !ok || confidence < minConfidence {
					continue
				}
				candidates = append(candidates, TextRegion{
					Bounds: Bounds{
						X1: x + bounds.Min.X,
						Y1: y + bounds.Min.Y,
						X2: x + ws.w + bounds.Min.X,
						Y2: y + ws.h + bounds.Min.Y,
					},
					Confidence: math.Round(confidence*1000) / 1000,
					Area:       ws.w * ws.h,
				})
			}
		}
	}

	// Merge overlapping regions
	merged := mergeOverlappingRegions(candidates)

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Confidence > merged[j].Confidence
	})

	return &TextRegionsResult{
		Regions: merged,
		Count:   len(merged),
	}
}

// Rect converts b to an image.Rectangle.
func (b Bounds) Rect() image.Rectangle {
	return image.Rect(b.X1, b.Y1, b.X2, b.Y2)
}

// scoreWindow rates a window of the edge map as text. Text has a medium
// edge density (between 5% and 40%, ideally 20%) and more horizontal than
// vertical edge runs. ok is false when the density is out of range.
func scoreWindow(edges [][]bool, x, y, w, h int) (confidence float64, ok bool) {
	edgeCount := 0
	for wy := 0; wy < h; wy++ {
		for wx := 0; wx < w; wx++ {
			if edges[y+wy][x+wx] {
				edgeCount++
			}
		}
	}

	density := float64(edgeCount) / float64(w*h)
	if density < 0.05 || density > 0.4 {
		return 0, false
	}

	return calculateHorizontalScore(edges, x, y, w, h) * (1.0 - math.Abs(density-0.2)/0.2), true
}

// calculateHorizontalScore calculates how "horizontal" the edge distribution is
func calculateHorizontalScore(edges [][]bool, x, y, w, h int) float64 {
	horizontalRuns := 0
	verticalRuns := 0

	// Count horizontal edge runs
	for row := y; row < y+h; row++ {
		inRun := false
		for col := x; col < x+w; col++ {
			if edges[row][col] {
				if !inRun {
					horizontalRuns++
					inRun = true
				}
			} else {
				inRun = false
			}
		}
	}

	// Count vertical edge runs
	for col := x; col < x+w; col++ {
		inRun := false
		for row := y; row < y+h; row++ {
			if edges[row][col] {
				if !inRun {
					verticalRuns++
					inRun = true
				}
			} else {
				inRun = false
			}
		}
	}

	// Text typically has more horizontal structure
	if horizontalRuns+verticalRuns == 0 {
		return 0
	}
	return float64(horizontalRuns) / float64(horizontalRuns+verticalRuns)
}

// mergeOverlappingRegions combines overlapping text regions
func mergeOverlappingRegions(regions []TextRegion) []TextRegion {
	if len(regions) == 0 {
		return regions
	}

	merged := make([]TextRegion, 0)

	for _, r := range regions {
		foundMerge := false
		for i := range merged {
			if regionsOverlap(r.Bounds, merged[i].Bounds) {
				// Merge into existing region
				merged[i].Bounds = mergeBounds(r.Bounds, merged[i].Bounds)
				merged[i].Confidence = math.Max(r.Confidence, merged[i].Confidence)
				merged[i].Area = (merged[i].Bounds.X2 - merged[i].Bounds.X1) *
					(merged[i].Bounds.Y2 - merged[i].Bounds.Y1)
				foundMerge = true
				break
			}
		}
		if !foundMerge {
			merged = append(merged, r)
		}
	}

	return merged
}

// regionsOverlap checks if two bounds overlap
func regionsOverlap(a, b Bounds) bool {
	return a.X1 < b.X2 && a.X2 > b.X1 && a.Y1 < b.Y2 && a.Y2 > b.Y1
}

// mergeBounds combines two bounds into their union
func mergeBounds(a, b Bounds) Bounds {
	return Bounds{
		X1: min(a.X1, b.X1),
		Y1: min(a.Y1, b.Y1),
		X2: max(a.X2, b.X2),
		Y2: max(a.Y2, b.Y2),
	}
}

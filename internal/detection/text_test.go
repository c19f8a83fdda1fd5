package detection

import (
	"image"
	"image/color"
	"testing"
)

// createPlateLikeImage draws rows of short vertical strokes, the edge
// signature of a line of characters.
func createPlateLikeImage(width, height int) *image.RGBA {
	img := createTestImage(width, height, color.White)

	for y := 40; y < 60; y++ {
		for x := 40; x < width-40; x++ {
			if x%8 < 2 {
				img.Set(x, y, color.Black)
			}
		}
	}

	return img
}

func TestDetectTextRegions(t *testing.T) {
	img := createPlateLikeImage(240, 120)

	result := DetectTextRegions(img, 0.1)
	if result.Count != len(result.Regions) {
		t.Errorf("Count %d does not match %d regions", result.Count, len(result.Regions))
	}

	for _, r := range result.Regions {
		if r.Confidence < 0.1 {
			t.Errorf("region below minConfidence: %+v", r)
		}
		if r.Bounds.X2 > 240 || r.Bounds.Y2 > 120 || r.Bounds.X1 < 0 || r.Bounds.Y1 < 0 {
			t.Errorf("region outside image: %+v", r.Bounds)
		}
	}
}

func TestDetectTextRegions_MinConfidence(t *testing.T) {
	img := createPlateLikeImage(240, 120)

	low := DetectTextRegions(img, 0.05)
	high := DetectTextRegions(img, 0.9)

	if high.Count > low.Count {
		t.Errorf("Higher minConfidence should give fewer results: low=%d, high=%d", low.Count, high.Count)
	}
}

func TestDetectTextRegions_EmptyImage(t *testing.T) {
	img := createTestImage(200, 150, color.White)

	if result := DetectTextRegions(img, 0.0); result.Count != 0 {
		t.Errorf("Expected 0 text regions in empty image, got %d", result.Count)
	}
}

func TestDetectTextRegions_SmallerThanWindow(t *testing.T) {
	img := createTestImage(40, 10, color.White)

	if result := DetectTextRegions(img, 0.0); result.Count != 0 {
		t.Errorf("Expected 0 text regions, got %d", result.Count)
	}
}

func TestDetectTextRegions_SortedByConfidence(t *testing.T) {
	img := createPlateLikeImage(400, 200)

	result := DetectTextRegions(img, 0.0)
	for i := 1; i < len(result.Regions); i++ {
		if result.Regions[i].Confidence > result.Regions[i-1].Confidence {
			t.Errorf("regions not sorted at %d: %f > %f", i, result.Regions[i].Confidence, result.Regions[i-1].Confidence)
		}
	}
}

func TestScoreWindow_Density(t *testing.T) {
	edges := make([][]bool, 10)
	for y := range edges {
		edges[y] = make([]bool, 10)
	}

	if _, ok := scoreWindow(edges, 0, 0, 10, 10); ok {
		t.Error("empty window should be out of density range")
	}

	for y := range edges {
		for x := range edges[y] {
			edges[y][x] = true
		}
	}
	if _, ok := scoreWindow(edges, 0, 0, 10, 10); ok {
		t.Error("saturated window should be out of density range")
	}

	// Two full rows: 20% density, purely horizontal runs
	for y := range edges {
		for x := range edges[y] {
			edges[y][x] = y == 2 || y == 6
		}
	}
	confidence, ok := scoreWindow(edges, 0, 0, 10, 10)
	if !ok {
		t.Fatal("20% density should be in range")
	}
	if confidence <= 0 {
		t.Errorf("expected positive confidence, got %f", confidence)
	}
}

func TestCalculateHorizontalScore(t *testing.T) {
	edges := make([][]bool, 10)
	for y := range edges {
		edges[y] = make([]bool, 10)
	}
	if score := calculateHorizontalScore(edges, 0, 0, 10, 10); score != 0 {
		t.Errorf("empty edges should score 0, got %f", score)
	}

	// One vertical line: 10 single-pixel horizontal runs, 1 vertical run
	for y := 0; y < 10; y++ {
		edges[y][5] = true
	}
	want := 10.0 / 11.0
	if score := calculateHorizontalScore(edges, 0, 0, 10, 10); score != want {
		t.Errorf("vertical line: got %f, want %f", score, want)
	}
}

func TestMergeOverlappingRegions(t *testing.T) {
	regions := []TextRegion{
		{Bounds: Bounds{X1: 0, Y1: 0, X2: 50, Y2: 20}, Confidence: 0.4},
		{Bounds: Bounds{X1: 40, Y1: 10, X2: 90, Y2: 30}, Confidence: 0.7},
		{Bounds: Bounds{X1: 200, Y1: 200, X2: 220, Y2: 210}, Confidence: 0.5},
	}

	merged := mergeOverlappingRegions(regions)
	if len(merged) != 2 {
		t.Fatalf("Expected 2 regions after merge, got %d", len(merged))
	}

	first := merged[0]
	if first.Bounds != (Bounds{X1: 0, Y1: 0, X2: 90, Y2: 30}) {
		t.Errorf("merged bounds: got %+v", first.Bounds)
	}
	if first.Confidence != 0.7 {
		t.Errorf("merged confidence: got %f, want 0.7", first.Confidence)
	}
	if first.Area != 90*30 {
		t.Errorf("merged area: got %d, want %d", first.Area, 90*30)
	}
}

func TestMergeOverlappingRegions_Empty(t *testing.T) {
	if merged := mergeOverlappingRegions(nil); len(merged) != 0 {
		t.Errorf("Expected no regions, got %d", len(merged))
	}
}

func TestRegionsOverlap(t *testing.T) {
	tests := []struct {
		name string
		a, b Bounds
		want bool
	}{
		{"overlapping", Bounds{0, 0, 10, 10}, Bounds{5, 5, 15, 15}, true},
		{"touching edges", Bounds{0, 0, 10, 10}, Bounds{10, 0, 20, 10}, false},
		{"contained", Bounds{0, 0, 100, 100}, Bounds{10, 10, 20, 20}, true},
		{"disjoint", Bounds{0, 0, 10, 10}, Bounds{50, 50, 60, 60}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := regionsOverlap(tt.a, tt.b); got != tt.want {
				t.Errorf("regionsOverlap(%+v, %+v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestBoundsRect(t *testing.T) {
	r := Bounds{X1: 1, Y1: 2, X2: 11, Y2: 22}.Rect()
	if r != image.Rect(1, 2, 11, 22) {
		t.Errorf("Rect: got %v", r)
	}
}

package ocr

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/ironsheep/car-spotter/internal/vision"
)

// createPlateImage draws a row of character-like strokes on white.
func createPlateImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.White)
		}
	}
	for y := 40; y < 60; y++ {
		for x := 40; x < width-40; x++ {
			if x%8 < 2 {
				img.Set(x, y, color.Black)
			}
		}
	}
	return img
}

func TestRankCandidates(t *testing.T) {
	lines := []Line{
		{Text: "  SPEED LIMIT ", Confidence: 0.5},
		{Text: "", Confidence: 0.875},
		{Text: "ABC123\n", Confidence: 0.875},
		{Text: "   ", Confidence: 0.75},
		{Text: "DEALER", Confidence: 0.5},
		{Text: "ABC123", Confidence: 0.625},
	}

	got := rankCandidates(lines)
	want := []vision.TextCandidate{
		{Text: "ABC123", Confidence: 0.875},
		{Text: "SPEED LIMIT", Confidence: 0.5},
		{Text: "DEALER", Confidence: 0.5},
	}

	if len(got) != len(want) {
		t.Fatalf("got %d candidates, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("candidate %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestRankCandidates_Empty(t *testing.T) {
	if got := rankCandidates(nil); len(got) != 0 {
		t.Errorf("Expected no candidates, got %+v", got)
	}
}

func TestRankCandidates_DuplicateKeepsBest(t *testing.T) {
	got := rankCandidates([]Line{
		{Text: "XYZ789", Confidence: 0.25},
		{Text: "OTHER", Confidence: 0.5},
		{Text: "XYZ789", Confidence: 0.75},
	})

	if len(got) != 2 {
		t.Fatalf("Expected 2 candidates, got %d", len(got))
	}
	if got[0].Text != "XYZ789" || got[0].Confidence != 0.75 {
		t.Errorf("first candidate: got %+v", got[0])
	}
}

func TestNewRecognizer_DefaultLanguage(t *testing.T) {
	r := NewRecognizer(Options{})
	if r.opts.Language != "eng" {
		t.Errorf("Language: got %q, want eng", r.opts.Language)
	}
	if r.read == nil {
		t.Error("NewRecognizer did not set a reader")
	}
}

func TestRecognizeText_WholeImageOnly(t *testing.T) {
	calls := 0
	r := &Recognizer{
		opts: DefaultOptions(),
		read: func(image.Image) ([]Line, error) {
			calls++
			return []Line{{Text: "7ABC123", Confidence: 0.8}}, nil
		},
	}

	got, err := r.RecognizeText(context.Background(), createPlateImage(240, 120))
	if err != nil {
		t.Fatalf("RecognizeText failed: %v", err)
	}
	if calls != 1 {
		t.Errorf("read called %d times, want 1", calls)
	}
	if len(got) != 1 || got[0].Text != "7ABC123" {
		t.Errorf("candidates: got %+v", got)
	}
}

func TestRecognizeText_RegionScan(t *testing.T) {
	src := createPlateImage(240, 120)
	crops := 0

	opts := DefaultOptions()
	opts.RegionScan = true
	r := &Recognizer{
		opts: opts,
		read: func(img image.Image) ([]Line, error) {
			if img.Bounds() == src.Bounds() {
				return []Line{{Text: "BRAND", Confidence: 0.5}}, nil
			}
			crops++
			return []Line{{Text: "ABC1234", Confidence: 0.9}}, nil
		},
	}

	got, err := r.RecognizeText(context.Background(), src)
	if err != nil {
		t.Fatalf("RecognizeText failed: %v", err)
	}
	if crops == 0 {
		t.Fatal("region scan did not read any cropped region")
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 candidates, got %+v", got)
	}
	if got[0].Text != "ABC1234" || got[1].Text != "BRAND" {
		t.Errorf("candidates not ranked by confidence: %+v", got)
	}
}

func TestRecognizeText_ReadError(t *testing.T) {
	boom := errors.New("boom")
	r := &Recognizer{
		opts: DefaultOptions(),
		read: func(image.Image) ([]Line, error) { return nil, boom },
	}

	if _, err := r.RecognizeText(context.Background(), createPlateImage(100, 100)); !errors.Is(err, boom) {
		t.Errorf("got %v, want %v", err, boom)
	}
}

func TestRecognizeText_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	r := &Recognizer{
		opts: DefaultOptions(),
		read: func(image.Image) ([]Line, error) {
			called = true
			return nil, nil
		},
	}

	if _, err := r.RecognizeText(ctx, createPlateImage(100, 100)); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
	if called {
		t.Error("read should not run after cancellation")
	}
}

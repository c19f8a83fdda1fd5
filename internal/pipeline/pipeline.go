// Package pipeline turns a still photo into a vehicle Result.
//
// A run moves through a small state machine:
//
//	Start → RectangleCheck → NoCar
//	                       → TextAndIdentify → Done
//
// Start validates the image and captures the timestamp. RectangleCheck calls
// the rectangle detector once and keeps boxes whose normalized area lies in
// (0.1, 0.8) with confidence above 0.5. With no qualifying box the run ends
// with a "no car" result and the text recognizer is never called.
// TextAndIdentify runs text recognition and make/model identification
// concurrently and waits for both.
//
// # Failure Semantics
//
// Detector and recognizer failures fail the whole run and no Result is
// produced. Identification failures do not, panics included: they are logged
// and the Result simply carries no make or model.
//
// # Concurrency
//
// A Pipeline holds no per-run state and is safe for concurrent use. The
// context is handed to the collaborators; the pipeline itself does not stop
// a run once started, and defines no retries or timeouts.
package pipeline

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/car-spotter/internal/imaging"
	"github.com/ironsheep/car-spotter/internal/plate"
	"github.com/ironsheep/car-spotter/internal/vehicle"
	"github.com/ironsheep/car-spotter/internal/vision"
)

// Thresholds a rectangle must pass to count as a car. All bounds are
// exclusive.
const (
	MinCarArea       = 0.1
	MaxCarArea       = 0.8
	MinCarConfidence = 0.5
)

// Pipeline runs vehicle detection against a pair of collaborators.
type Pipeline struct {
	detector   vision.RectangleDetector
	recognizer vision.TextRecognizer
	extractor  *vehicle.Extractor
	log        zerolog.Logger
	now        func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger used for stage transitions.
func WithLogger(log zerolog.Logger) Option {
	return func(p *Pipeline) {
		p.log = log
	}
}

// WithClock replaces time.Now as the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
	}
}

// WithFeatureDetector makes feature extraction use d instead of the
// pipeline's car detector.
func WithFeatureDetector(d vision.RectangleDetector) Option {
	return func(p *Pipeline) {
		p.extractor = vehicle.NewExtractor(d)
	}
}

// New creates a Pipeline. Feature extraction shares detector unless
// WithFeatureDetector says otherwise.
func New(detector vision.RectangleDetector, recognizer vision.TextRecognizer, opts ...Option) *Pipeline {
	p := &Pipeline{
		detector:   detector,
		recognizer: recognizer,
		extractor:  vehicle.NewExtractor(detector),
		log:        zerolog.Nop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Detect runs the pipeline on img. loc is passed through to the Result as
// given and may be nil.
//
// Returned errors wrap ErrInvalidImage, ErrDetectorFailure or
// ErrRecognizerFailure. "No car found" is not an error.
func (p *Pipeline) Detect(ctx context.Context, img image.Image, loc *Location) (Result, error) {
	return p.run(ctx, p.now(), img, loc)
}

// DetectBytes decodes data and runs the pipeline on the decoded image.
// Undecodable data fails with ErrInvalidImage.
func (p *Pipeline) DetectBytes(ctx context.Context, data []byte, loc *Location) (Result, error) {
	ts := p.now()
	img, err := imaging.DecodeBytes(data)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrInvalidImage, err)
	}
	return p.run(ctx, ts, img, loc)
}

// Outcome is the single value published by DetectAsync.
type Outcome struct {
	Result Result
	Err    error
}

// DetectAsync runs Detect on a new goroutine. The returned channel receives
// exactly one Outcome and is then closed.
func (p *Pipeline) DetectAsync(ctx context.Context, img image.Image, loc *Location) <-chan Outcome {
	out := make(chan Outcome, 1)
	go func() {
		defer close(out)
		res, err := p.Detect(ctx, img, loc)
		out <- Outcome{Result: res, Err: err}
	}()
	return out
}

func (p *Pipeline) run(ctx context.Context, ts time.Time, img image.Image, loc *Location) (Result, error) {
	log := p.log.With().Str("run_id", uuid.NewString()).Logger()

	if err := imaging.Validate(img); err != nil {
		log.Debug().Err(err).Msg("rejected image")
		return Result{}, fmt.Errorf("%w: %w", ErrInvalidImage, err)
	}
	loc = Result{}.WithLocation(loc).Location

	boxes, err := p.detector.DetectRectangles(ctx, img)
	if err != nil {
		log.Error().Err(err).Str("stage", "rectangle_check").Msg("rectangle detection failed")
		return Result{}, fmt.Errorf("%w: %w", ErrDetectorFailure, err)
	}

	qualifying := QualifyingBoxes(boxes)
	if len(qualifying) == 0 {
		log.Debug().
			Str("stage", "no_car").
			Int("candidates", len(boxes)).
			Float32("confidence", ConfidenceNoCar).
			Msg("no qualifying rectangle")
		return noCarResult(ts, loc), nil
	}

	log.Debug().
		Str("stage", "text_and_identify").
		Int("candidates", len(boxes)).
		Int("qualifying", len(qualifying)).
		Float32("confidence", ConfidenceCarDetected).
		Msg("car detected")

	var (
		licensePlate *string
		ident        *vehicle.Identification
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		candidates, err := p.recognizer.RecognizeText(gctx, img)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrRecognizerFailure, err)
		}
		if text, ok := firstPlate(candidates); ok {
			licensePlate = stringPtr(text)
		}
		return nil
	})
	g.Go(func() error {
		id, err := p.identify(gctx, img)
		if err != nil {
			log.Warn().Err(err).Str("stage", "text_and_identify").Msg("identification skipped")
			return nil
		}
		ident = &id
		return nil
	})
	if err := g.Wait(); err != nil {
		log.Error().Err(err).Str("stage", "text_and_identify").Msg("text recognition failed")
		return Result{}, err
	}

	res := Result{
		CarDetected:  true,
		LicensePlate: licensePlate,
		Location:     loc,
		Timestamp:    ts,
		Confidence:   ConfidenceIdentified,
	}
	if ident != nil {
		res.Make = stringPtr(ident.Make)
		res.Model = stringPtr(ident.Model)
	}

	ev := log.Debug().Str("stage", "done").Float32("confidence", res.Confidence)
	if res.LicensePlate != nil {
		ev = ev.Str("plate", *res.LicensePlate)
	}
	if res.Make != nil {
		ev = ev.Str("make", *res.Make).Str("model", *res.Model)
	}
	ev.Msg("detection complete")

	return res, nil
}

// identify extracts features and predicts a make and model. A panic in
// feature extraction is reported as ErrIdentificationFailure.
func (p *Pipeline) identify(ctx context.Context, img image.Image) (id vehicle.Identification, err error) {
	defer func() {
		if r := recover(); r != nil {
			id, err = vehicle.Identification{}, fmt.Errorf("%w: panic: %v", ErrIdentificationFailure, r)
		}
	}()

	features, err := p.extractor.Extract(ctx, img)
	if err != nil {
		return vehicle.Identification{}, fmt.Errorf("%w: %w", ErrIdentificationFailure, err)
	}
	return vehicle.Predict(features), nil
}

// QualifyingBoxes returns the boxes that count as evidence of a car, in
// their original order.
func QualifyingBoxes(boxes []vision.Box) []vision.Box {
	out := make([]vision.Box, 0, len(boxes))
	for _, b := range boxes {
		area := b.BoundingBox.Area()
		if area > MinCarArea && area < MaxCarArea && b.Confidence > MinCarConfidence {
			out = append(out, b)
		}
	}
	return out
}

func firstPlate(candidates []vision.TextCandidate) (string, bool) {
	for _, c := range candidates {
		if plate.IsLicensePlateLike(c.Text) {
			return c.Text, true
		}
	}
	return "", false
}

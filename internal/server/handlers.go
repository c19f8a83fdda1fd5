package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/car-spotter/internal/detection"
	"github.com/ironsheep/car-spotter/internal/imaging"
	"github.com/ironsheep/car-spotter/internal/pipeline"
	"github.com/ironsheep/car-spotter/internal/plate"
	"github.com/ironsheep/car-spotter/internal/vehicle"
	"github.com/ironsheep/car-spotter/internal/vision"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "vehicle_detect").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// paramsError marks a tool failure caused by bad arguments.
type paramsError struct {
	err error
}

func (e *paramsError) Error() string { return e.err.Error() }
func (e *paramsError) Unwrap() error { return e.err }

func invalidParams(format string, args ...interface{}) error {
	return &paramsError{err: fmt.Errorf(format, args...)}
}

// decodeArgs unmarshals tool arguments. Missing arguments decode as an
// empty object.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 || string(args) == "null" {
		args = json.RawMessage("{}")
	}
	if err := json.Unmarshal(args, v); err != nil {
		return &paramsError{err: fmt.Errorf("invalid arguments: %w", err)}
	}
	return nil
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Bad arguments return JSON-RPC error -32602; any other tool failure
// returns -32000 with the error string as data.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	log := s.log.With().Str("tool", params.Name).Logger()

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		var pe *paramsError
		if errors.As(err, &pe) {
			log.Debug().Err(err).Msg("invalid tool arguments")
			return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
		}
		log.Warn().Err(err).Msg("tool execution failed")
		return s.errorResponse(req.ID, codeToolFailed, "Tool execution failed", err.Error())
	}

	log.Debug().Msg("tool executed")
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Image Information
	case "image_load":
		return s.handleImageLoad(args)

	// Vehicle Operations
	case "vehicle_detect":
		return s.handleVehicleDetect(ctx, args)
	case "vehicle_features":
		return s.handleVehicleFeatures(ctx, args)
	case "vehicle_predict":
		return s.handleVehiclePredict(args)
	case "plate_check":
		return s.handlePlateCheck(args)

	// Detection Operations
	case "image_detect_rectangles":
		return s.handleImageDetectRectangles(args)
	case "image_detect_text_regions":
		return s.handleImageDetectTextRegions(args)

	// OCR Operations
	case "image_ocr_text":
		return s.handleImageOCRText(args)

	// Color Operations
	case "image_dominant_colors":
		return s.handleImageDominantColors(args)

	default:
		return nil, invalidParams("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
// An empty data string is omitted.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	mcpErr := &MCPError{
		Code:    code,
		Message: message,
	}
	if data != "" {
		mcpErr.Data = data
	}
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   mcpErr,
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

type pathArgs struct {
	Path string `json:"path"`
}

// loadImage returns the cached image at path.
func (s *Server) loadImage(path string) (image.Image, error) {
	if path == "" {
		return nil, invalidParams("path is required")
	}
	return s.cache.Load(path)
}

type regionArgs struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

func (r *regionArgs) rect() image.Rectangle {
	return image.Rectangle{Min: image.Pt(r.X1, r.Y1), Max: image.Pt(r.X2, r.Y2)}
}

// === Image Information Handlers ===

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, invalidParams("path is required")
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

// === Vehicle Operation Handlers ===

type vehicleDetectArgs struct {
	Path      string   `json:"path"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func (s *Server) handleVehicleDetect(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a vehicleDetectArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	var loc *pipeline.Location
	switch {
	case a.Latitude != nil && a.Longitude != nil:
		loc = &pipeline.Location{Latitude: *a.Latitude, Longitude: *a.Longitude}
	case a.Latitude != nil || a.Longitude != nil:
		return nil, invalidParams("latitude and longitude must be given together")
	}

	if a.Path == "" {
		return nil, invalidParams("path is required")
	}
	return s.DetectFile(ctx, a.Path, loc)
}

func (s *Server) handleVehicleFeatures(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	img, err := s.loadImage(a.Path)
	if err != nil {
		return nil, err
	}
	return vehicle.NewExtractor(s.detector).Extract(ctx, img)
}

type vehiclePredictArgs struct {
	BodyProportions *float32 `json:"body_proportions"`
	HeadlightCount  *int     `json:"headlight_count"`
	GrilleArea      float64  `json:"grille_area"`
}

func (s *Server) handleVehiclePredict(args json.RawMessage) (interface{}, error) {
	var a vehiclePredictArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.BodyProportions == nil || a.HeadlightCount == nil {
		return nil, invalidParams("body_proportions and headlight_count are required")
	}
	if *a.HeadlightCount < 0 {
		return nil, invalidParams("headlight_count must be >= 0, got %d", *a.HeadlightCount)
	}

	return vehicle.Predict(vehicle.CarFeatures{
		GrilleArea:      a.GrilleArea,
		HeadlightCount:  *a.HeadlightCount,
		BodyProportions: *a.BodyProportions,
	}), nil
}

type plateCheckArgs struct {
	Text *string `json:"text"`
}

// PlateCheckResult reports whether a string looks like a license plate.
type PlateCheckResult struct {
	Text       string `json:"text"`
	Normalized string `json:"normalized"`
	PlateLike  bool   `json:"plate_like"`
}

func (s *Server) handlePlateCheck(args json.RawMessage) (interface{}, error) {
	var a plateCheckArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Text == nil {
		return nil, invalidParams("text is required")
	}
	return &PlateCheckResult{
		Text:       *a.Text,
		Normalized: plate.Normalize(*a.Text),
		PlateLike:  plate.IsLicensePlateLike(*a.Text),
	}, nil
}

// === Detection Operation Handlers ===

type imageDetectRectanglesArgs struct {
	Path       string   `json:"path"`
	MinArea    *int     `json:"min_area"`
	Tolerance  *float64 `json:"tolerance"`
	BlurRadius *float64 `json:"blur_radius"`
}

// RectanglesResponse adds normalized boxes and the car candidate count to
// the pixel detection result. Pixel coordinates refer to the scanned frame,
// which is the photo downscaled to the configured maximum side.
type RectanglesResponse struct {
	*detection.RectanglesResult
	FrameWidth    int          `json:"frame_width"`
	FrameHeight   int          `json:"frame_height"`
	Boxes         []vision.Box `json:"boxes"`
	CarCandidates int          `json:"car_candidates"`
}

func (s *Server) handleImageDetectRectangles(args json.RawMessage) (interface{}, error) {
	var a imageDetectRectanglesArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	opts := s.rectOpts
	if a.MinArea != nil {
		opts.MinArea = *a.MinArea
	}
	if a.Tolerance != nil {
		if *a.Tolerance < 0 || *a.Tolerance > 1 {
			return nil, invalidParams("tolerance must be in [0, 1], got %g", *a.Tolerance)
		}
		opts.Tolerance = *a.Tolerance
	}
	if a.BlurRadius != nil {
		if *a.BlurRadius < 0 {
			return nil, invalidParams("blur_radius must be >= 0, got %g", *a.BlurRadius)
		}
		opts.BlurRadius = *a.BlurRadius
	}

	img, err := s.loadImage(a.Path)
	if err != nil {
		return nil, err
	}

	img = imaging.Downscale(img, s.maxSide)
	result := detection.DetectRectangles(img, opts)
	boxes := detection.Normalize(result.Rectangles, img.Bounds())
	return &RectanglesResponse{
		RectanglesResult: result,
		FrameWidth:       img.Bounds().Dx(),
		FrameHeight:      img.Bounds().Dy(),
		Boxes:            boxes,
		CarCandidates:    len(pipeline.QualifyingBoxes(boxes)),
	}, nil
}

type imageDetectTextRegionsArgs struct {
	Path          string   `json:"path"`
	MinConfidence *float64 `json:"min_confidence"`
}

func (s *Server) handleImageDetectTextRegions(args json.RawMessage) (interface{}, error) {
	var a imageDetectTextRegionsArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	minConfidence := 0.3
	if a.MinConfidence != nil {
		minConfidence = *a.MinConfidence
	}
	img, err := s.loadImage(a.Path)
	if err != nil {
		return nil, err
	}
	return detection.DetectTextRegions(img, minConfidence), nil
}

// === OCR Operation Handlers ===

type imageOCRTextArgs struct {
	Path   string      `json:"path"`
	Region *regionArgs `json:"region,omitempty"`
}

func (s *Server) handleImageOCRText(args json.RawMessage) (interface{}, error) {
	var a imageOCRTextArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	img, err := s.loadImage(a.Path)
	if err != nil {
		return nil, err
	}
	if a.Region == nil {
		return s.extractor.ExtractText(img)
	}

	r := a.Region.rect()
	cropped, err := imaging.CropRegion(img, r)
	if err != nil {
		return nil, &paramsError{err: err}
	}
	result, err := s.extractor.ExtractText(cropped)
	if err != nil {
		return nil, err
	}

	// Report bounds in full-image coordinates
	for i := range result.Regions {
		result.Regions[i].Bounds.X1 += r.Min.X
		result.Regions[i].Bounds.Y1 += r.Min.Y
		result.Regions[i].Bounds.X2 += r.Min.X
		result.Regions[i].Bounds.Y2 += r.Min.Y
	}
	return result, nil
}

// === Color Operation Handlers ===

type imageDominantColorsArgs struct {
	Path   string      `json:"path"`
	Count  int         `json:"count"`
	Region *regionArgs `json:"region,omitempty"`
}

func (s *Server) handleImageDominantColors(args json.RawMessage) (interface{}, error) {
	var a imageDominantColorsArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Count == 0 {
		a.Count = 5
	}
	if a.Count < 0 {
		return nil, invalidParams("count must be positive, got %d", a.Count)
	}
	img, err := s.loadImage(a.Path)
	if err != nil {
		return nil, err
	}

	var region *image.Rectangle
	if a.Region != nil {
		r := a.Region.rect()
		region = &r
	}
	return imaging.DominantColors(img, a.Count, region), nil
}

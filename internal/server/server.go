package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/ironsheep/car-spotter/internal/config"
	"github.com/ironsheep/car-spotter/internal/detection"
	"github.com/ironsheep/car-spotter/internal/imaging"
	"github.com/ironsheep/car-spotter/internal/ocr"
	"github.com/ironsheep/car-spotter/internal/pipeline"
	"github.com/ironsheep/car-spotter/internal/vision"
)

// textExtractor returns full OCR output for the image_ocr_text tool.
type textExtractor interface {
	ExtractText(img image.Image) (*ocr.OCRResult, error)
}

// Server handles MCP protocol communication
type Server struct {
	cache      *imaging.ImageCache
	detector   vision.RectangleDetector
	recognizer vision.TextRecognizer
	extractor  textExtractor
	pipeline   *pipeline.Pipeline
	rectOpts   detection.Options
	maxSide    int
	log        zerolog.Logger
	version    string
}

// Option configures a Server.
type Option func(*Server)

// WithDetector replaces the contour rectangle detector.
func WithDetector(d vision.RectangleDetector) Option {
	return func(s *Server) { s.detector = d }
}

// WithRecognizer replaces the Tesseract text recognizer used by the pipeline.
func WithRecognizer(r vision.TextRecognizer) Option {
	return func(s *Server) { s.recognizer = r }
}

// WithVersion sets the version reported in serverInfo.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// JSON-RPC error codes used by the server.
const (
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeToolFailed     = -32000
)

// New creates a server from cfg. The rectangle detector and text recognizer
// default to the contour detector and Tesseract; options can replace them.
func New(cfg *config.Config, log zerolog.Logger, opts ...Option) *Server {
	rectOpts := detection.Options{
		MinArea:    cfg.RectMinArea,
		Tolerance:  cfg.RectTolerance,
		BlurRadius: cfg.BlurRadius,
	}
	recognizer := ocr.NewRecognizer(ocr.Options{
		Language:            cfg.OCRLanguage,
		TessdataPrefix:      cfg.TessdataPrefix,
		RegionScan:          cfg.OCRRegionScan,
		RegionMinConfidence: ocr.DefaultOptions().RegionMinConfidence,
	})

	s := &Server{
		cache:      imaging.NewImageCache(),
		detector:   detection.NewShapeDetector(rectOpts, cfg.MaxImageSide),
		recognizer: recognizer,
		extractor:  recognizer,
		rectOpts:   rectOpts,
		maxSide:    cfg.MaxImageSide,
		log:        log,
		version:    "0.1.0",
	}
	for _, opt := range opts {
		opt(s)
	}

	s.pipeline = pipeline.New(s.detector, s.recognizer, pipeline.WithLogger(log))
	return s
}

// DetectFile runs the detection pipeline on the photo at path. Contents
// that cannot be decoded fail with pipeline.ErrInvalidImage.
func (s *Server) DetectFile(ctx context.Context, path string, loc *pipeline.Location) (pipeline.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return pipeline.Result{}, fmt.Errorf("failed to open image: %w", err)
	}
	return s.pipeline.DetectBytes(ctx, data, loc)
}

// Run reads one JSON-RPC request per line from in and writes responses to
// out until in is exhausted or ctx is done.
func (s *Server) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	// Increase buffer size for large requests
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	encoder := json.NewEncoder(out)

	s.log.Info().Str("version", s.version).Msg("mcp server started")

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.log.Warn().Err(err).Msg("failed to parse request")
			continue
		}

		resp := s.handleRequest(ctx, &req)
		if resp != nil {
			if err := encoder.Encode(resp); err != nil {
				s.log.Error().Err(err).Str("method", req.Method).Msg("failed to encode response")
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	s.log.Info().Msg("mcp server input closed")
	return nil
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(ctx context.Context, req *MCPRequest) *MCPResponse {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		s.log.Debug().Str("method", req.Method).Msg("unknown method")
		return s.errorResponse(req.ID, codeMethodNotFound, fmt.Sprintf("Method not found: %s", req.Method), "")
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "car-spotter",
				"version": s.version,
			},
		},
	}
}

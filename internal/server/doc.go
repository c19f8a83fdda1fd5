// Package server implements the MCP (Model Context Protocol) server for
// car-spotter.
//
// The server speaks JSON-RPC 2.0 over a line-oriented stream, normally stdio:
//   - Input: one JSON-RPC request per line
//   - Output: one JSON-RPC response per line
//
// Logs never go to stdout; they go to the zerolog logger passed to New.
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Vehicle:
//   - vehicle_detect: Full pipeline (car check, plate, make/model, location)
//   - vehicle_features: Features used by identification
//   - vehicle_predict: Identification from explicit feature values
//   - plate_check: Plate pattern check for a string
//
// Image:
//   - image_load: Load a photo and get metadata
//   - image_detect_rectangles: Rectangles, normalized boxes, car candidates
//   - image_detect_text_regions: Plate-shaped text regions
//   - image_ocr_text: Full OCR, optionally on a region
//   - image_dominant_colors: Experimental palette naming
//
// # Image Caching
//
// Images are decoded once per path, upright per EXIF orientation at their
// source size, then reused by every tool. Rectangle scans run on a copy
// downscaled to the configured maximum side. vehicle_detect reads the file
// itself so decode failures surface as pipeline.ErrInvalidImage.
//
// # Error Handling
//
// Tool errors are returned as JSON-RPC error responses:
//   - -32602: invalid params (bad JSON, missing or out-of-range arguments, unknown tool)
//   - -32000: tool execution failure, with the Go error string as data
//   - -32601: unknown method
package server

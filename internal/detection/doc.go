// Package detection finds rectangular shapes and text-like regions in
// photos using edge and contour heuristics.
//
// It is the default rectangle detector for the car pipeline: ShapeDetector
// implements vision.RectangleDetector and reports boxes normalized to the
// image size. DetectTextRegions locates plate-shaped areas of horizontal
// edge structure, which the OCR package can crop and read individually.
//
// # Algorithm Overview
//
//  1. Preprocessing: Convert to grayscale, optionally after a Gaussian blur
//  2. Edge Detection: Threshold the gradient to the right and lower neighbors
//  3. Feature Extraction: Flood-fill contours, or slide windows over the edge map
//  4. Filtering: Drop shapes below the size or confidence thresholds
//
// # Coordinate System
//
// Pixel results use the standard image convention with the origin at the
// top-left corner, X increasing rightward and Y increasing downward. Bounds
// are reported in the source image's coordinate space, so sub-images keep
// their offsets.
//
// # Confidence Scores
//
//   - Rectangles: rectangularity, comparing contour length to the expected perimeter
//   - Text regions: edge density weighted by horizontal structure
//
// # Limitations
//
// These heuristics work best on high-contrast, axis-aligned shapes. Busy
// photographs produce many small contours and heavy JPEG artifacts add
// spurious edges, so callers should filter boxes by relative area.
package detection

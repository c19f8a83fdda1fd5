// Package imaging loads and prepares photos for vehicle detection.
//
// Photos are decoded with their EXIF orientation applied, validated for
// positive dimensions and cached at their source size. Downscale shrinks a
// photo for scanning; feature ratios are always taken from the source size.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based with the origin at the
// top-left corner; X increases rightward and Y increases downward.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. The other functions are
// stateless and may be called concurrently on different images.
//
// # Color Analysis
//
// DominantColors names the most common colors of a region after paint
// families. It is an experimental helper and is not wired into make/model
// identification, whose color feature stays a fixed placeholder.
//
// # Error Handling
//
// Functions return errors for:
//   - File I/O errors during image loading
//   - Data that does not decode as a supported image format
//   - Images with zero width or height
package imaging

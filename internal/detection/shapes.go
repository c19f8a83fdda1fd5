package detection

import (
	"context"
	"image"
	"math"
	"sort"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"

	"github.com/ironsheep/car-spotter/internal/imaging"
	"github.com/ironsheep/car-spotter/internal/vision"
)

// Bounds represents a rectangular bounding box in pixel coordinates.
//
// The coordinate convention follows standard image bounds:
//   - (X1, Y1) is the top-left corner (inclusive)
//   - (X2, Y2) is the bottom-right corner
type Bounds struct {
	X1 int `json:"x1"` // Left edge (inclusive)
	Y1 int `json:"y1"` // Top edge (inclusive)
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// Point represents a 2D coordinate in pixel space.
type Point struct {
	X int `json:"x"` // Horizontal position (0 = leftmost)
	Y int `json:"y"` // Vertical position (0 = topmost)
}

// Rectangle represents a detected rectangular shape with metadata.
type Rectangle struct {
	// Bounds is the bounding box enclosing the rectangle.
	Bounds Bounds `json:"bounds"`

	// Width is the horizontal extent in pixels (X2 - X1).
	Width int `json:"width"`

	// Height is the vertical extent in pixels (Y2 - Y1).
	Height int `json:"height"`

	// Area is the rectangle's area in square pixels (Width × Height).
	Area int `json:"area"`

	// Confidence indicates how rectangular the shape is (0.0 to 1.0).
	// Based on comparing contour length to expected rectangle perimeter.
	Confidence float64 `json:"confidence"`
}

// RectanglesResult contains all rectangles detected in an image.
type RectanglesResult struct {
	// Rectangles is the list of detected rectangles, sorted by area (largest first).
	Rectangles []Rectangle `json:"rectangles"`

	// Count is the number of rectangles detected.
	Count int `json:"count"`
}

// Options tunes rectangle detection.
type Options struct {
	// MinArea is the minimum area in square pixels for a rectangle to be
	// included. Typical: 100-1000.
	MinArea int

	// Tolerance is the rectangularity threshold (0.0 to 1.0). Higher values
	// require shapes to be more perfectly rectangular. Typical: 0.8-0.95.
	Tolerance float64

	// BlurRadius is the Gaussian blur radius applied to the grayscale image
	// before edge detection. 0 disables blurring.
	BlurRadius float64
}

// DefaultOptions returns the settings used when none are configured.
func DefaultOptions() Options {
	return Options{
		MinArea:   100,
		Tolerance: 0.8,
	}
}

// DetectRectangles finds rectangular shapes in an image using edge and contour analysis.
//
// # Algorithm
//
//  1. Preprocessing: Convert to grayscale and optionally blur
//  2. Edge Detection: Threshold horizontal and vertical gradients
//  3. Contour Finding: Use flood-fill to group connected edge pixels
//  4. Bounding Box: Calculate the bounding rectangle of each contour
//  5. Rectangularity Check: Compare contour length to expected rectangle
//     perimeter. Score = 1 - |contour_length - expected_perimeter| / expected_perimeter
//  6. Filtering: Remove shapes below MinArea or with score < Tolerance
//
// A filled rectangle produces a one-pixel outline whose length matches its
// perimeter, scoring close to 1.0. Outlines drawn with thin strokes produce
// a double edge and score poorly.
//
// # Limitations
//
//   - Only detects axis-aligned rectangles (not rotated)
//   - May detect nested rectangles separately
//   - Rounded corners reduce rectangularity score
func DetectRectangles(img image.Image, opts Options) *RectanglesResult {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	edges := detectEdges(grayscale(img, opts.BlurRadius), width, height)
	contours := findContours(edges, width, height)

	rectangles := make([]Rectangle, 0)

	for _, contour := range contours {
		if len(contour) < 4 {
			continue
		}

		minX, minY := width, height
		maxX, maxY := 0, 0
		for _, p := range contour {
			if p.X < minX {
				minX = p.X
			}
			if p.X > maxX {
				maxX = p.X
			}
			if p.Y < minY {
				minY = p.Y
			}
			if p.Y > maxY {
				maxY = p.Y
			}
		}

		rectWidth := maxX - minX
		rectHeight := maxY - minY
		area := rectWidth * rectHeight

		if area == 0 || area < opts.MinArea {
			continue
		}

		expectedPerimeter := 2 * (rectWidth + rectHeight)
		rectangularity := 1.0 - math.Abs(float64(len(contour)-expectedPerimeter))/float64(expectedPerimeter)

		if rectangularity < opts.Tolerance {
			continue
		}

		rectangles = append(rectangles, Rectangle{
			Bounds: Bounds{
				X1: minX + bounds.Min.X,
				Y1: minY + bounds.Min.Y,
				X2: maxX + bounds.Min.X,
				Y2: maxY + bounds.Min.Y,
			},
			Width:      rectWidth,
			Height:     rectHeight,
			Area:       area,
			Confidence: rectangularity,
		})
	}

	// Sort by area descending
	sort.SliceStable(rectangles, func(i, j int) bool {
		return rectangles[i].Area > rectangles[j].Area
	})

	return &RectanglesResult{
		Rectangles: rectangles,
		Count:      len(rectangles),
	}
}

// ShapeDetector adapts DetectRectangles to vision.RectangleDetector,
// normalizing pixel boxes by the image size.
type ShapeDetector struct {
	opts    Options
	maxSide int
}

// NewShapeDetector returns a detector using opts. Images larger than maxSide
// on either side are scanned at a reduced size; 0 scans at full size.
// Normalized boxes do not depend on the scan size.
func NewShapeDetector(opts Options, maxSide int) *ShapeDetector {
	return &ShapeDetector{opts: opts, maxSide: maxSide}
}

// DetectRectangles implements vision.RectangleDetector. Boxes are ordered
// largest first. The context is checked once before the scan starts.
func (d *ShapeDetector) DetectRectangles(ctx context.Context, img image.Image) ([]vision.Box, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img = imaging.Downscale(img, d.maxSide)
	result := DetectRectangles(img, d.opts)
	return Normalize(result.Rectangles, img.Bounds()), nil
}

// Normalize converts pixel rectangles into boxes relative to frame.
func Normalize(rects []Rectangle, frame image.Rectangle) []vision.Box {
	w := float64(frame.Dx())
	h := float64(frame.Dy())

	boxes := make([]vision.Box, 0, len(rects))
	if w <= 0 || h <= 0 {
		return boxes
	}
	for _, r := range rects {
		boxes = append(boxes, vision.Box{
			BoundingBox: vision.Rect{
				X:      float64(r.Bounds.X1-frame.Min.X) / w,
				Y:      float64(r.Bounds.Y1-frame.Min.Y) / h,
				Width:  float64(r.Width) / w,
				Height: float64(r.Height) / h,
			},
			Confidence: float32(r.Confidence),
		})
	}
	return boxes
}

// grayscale converts img to an 8-bit luminance image with its origin at
// (0, 0), blurring it first when radius is positive.
func grayscale(img image.Image, radius float64) *image.Gray {
	if g, ok := img.(*image.Gray); ok && radius <= 0 && g.Rect.Min == (image.Point{}) {
		return g
	}

	var src image.Image = img
	if radius > 0 {
		src = blur.Gaussian(img, radius)
	}
	// bild writes the luminance into every color channel of an RGBA image
	lum := effect.Grayscale(src)

	b := lum.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		row := lum.PixOffset(b.Min.X, b.Min.Y+y)
		dst := gray.Pix[y*gray.Stride : y*gray.Stride+b.Dx()]
		for x := range dst {
			dst[x] = lum.Pix[row+x*4]
		}
	}
	return gray
}

// detectEdges performs simple gradient-based edge detection.
//
// Pixels where |current - neighbor| > 30 (in grayscale) are marked as edges,
// checking the right and lower neighbors.
//
// Returns a 2D boolean array where true indicates an edge pixel.
// Border pixels (x=0, y=0, x=width-1, y=height-1) are never edges.
func detectEdges(gray *image.Gray, width, height int) [][]bool {
	edges := make([][]bool, height)
	threshold := 30.0

	for y := 0; y < height; y++ {
		edges[y] = make([]bool, width)
		for x := 0; x < width; x++ {
			if x == 0 || y == 0 || x == width-1 || y == height-1 {
				continue
			}

			c := float64(gray.GrayAt(x, y).Y)
			cx := float64(gray.GrayAt(x+1, y).Y)
			cy := float64(gray.GrayAt(x, y+1).Y)

			if math.Abs(c-cx) > threshold || math.Abs(c-cy) > threshold {
				edges[y][x] = true
			}
		}
	}

	return edges
}

// findContours finds connected components (contours) in a binary edge image.
//
// Connectivity is 8-connected (includes diagonals). Contours smaller than 10
// pixels are discarded as noise.
func findContours(edges [][]bool, width, height int) [][]Point {
	visited := make([][]bool, height)
	for y := 0; y < height; y++ {
		visited[y] = make([]bool, width)
	}

	contours := make([][]Point, 0)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if edges[y][x] && !visited[y][x] {
				contour := make([]Point, 0)
				floodFill(edges, visited, x, y, width, height, &contour)
				if len(contour) >= 10 {
					contours = append(contours, contour)
				}
			}
		}
	}

	return contours
}

// floodFill performs iterative flood-fill from a starting point.
//
// Uses a stack rather than recursion so large contours cannot overflow the
// goroutine stack.
func floodFill(edges, visited [][]bool, startX, startY, width, height int, contour *[]Point) {
	stack := []Point{{X: startX, Y: startY}}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.X < 0 || p.X >= width || p.Y < 0 || p.Y >= height {
			continue
		}
		if visited[p.Y][p.X] || !edges[p.Y][p.X] {
			continue
		}

		visited[p.Y][p.X] = true
		*contour = append(*contour, p)

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				stack = append(stack, Point{X: p.X + dx, Y: p.Y + dy})
			}
		}
	}
}

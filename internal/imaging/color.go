package imaging

import (
	"image"
	"sort"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// RGBColor represents an RGB color with 8-bit components.
type RGBColor struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

// paintColor is a named reference color for body paint.
type paintColor struct {
	name  string
	color colorful.Color
}

// paintPalette covers the common factory paint families.
var paintPalette = []paintColor{
	{"White", rgb8(245, 245, 245)},
	{"Black", rgb8(20, 20, 20)},
	{"Silver", rgb8(192, 192, 192)},
	{"Gray", rgb8(128, 128, 128)},
	{"Red", rgb8(180, 20, 30)},
	{"Blue", rgb8(30, 60, 150)},
	{"Green", rgb8(30, 110, 50)},
	{"Yellow", rgb8(240, 200, 40)},
	{"Orange", rgb8(230, 110, 30)},
	{"Brown", rgb8(110, 70, 40)},
	{"Beige", rgb8(215, 195, 160)},
	{"Gold", rgb8(190, 160, 90)},
}

func rgb8(r, g, b uint8) colorful.Color {
	return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
}

// NearestPaintName returns the palette name perceptually closest to c,
// using the CIEDE2000 distance.
func NearestPaintName(c colorful.Color) string {
	best := paintPalette[0].name
	bestDist := c.DistanceCIEDE2000(paintPalette[0].color)
	for _, p := range paintPalette[1:] {
		if d := c.DistanceCIEDE2000(p.color); d < bestDist {
			best, bestDist = p.name, d
		}
	}
	return best
}

// ColorFrequency represents a color and its occurrence frequency in an image.
type ColorFrequency struct {
	Hex        string   `json:"hex"`        // Hex color "#rrggbb" (quantized)
	Name       string   `json:"name"`       // Closest paint family
	Percentage float64  `json:"percentage"` // Percentage of pixels with this color (0-100)
	RGB        RGBColor `json:"rgb"`        // RGB components (quantized)
}

// DominantColorsResult contains the most frequently occurring colors in an image.
//
// Colors are sorted by frequency in descending order (most common first).
type DominantColorsResult struct {
	Colors []ColorFrequency `json:"colors"`
}

// DominantColors extracts the N most common colors from an image or region
// and names each after the nearest paint family.
//
// This analysis is experimental and is not an input to make/model
// identification.
//
// Parameters:
//   - img: The source image to analyze.
//   - count: Maximum number of colors to return.
//   - region: Optional region to analyze, clipped to the image. If nil, the
//     entire image is analyzed.
//
// # Color Quantization
//
// RGB components are quantized by dividing by 16 and rounding down, so
// colors within 16 units of each other (per component) are grouped together.
// Fully transparent pixels are skipped.
func DominantColors(img image.Image, count int, region *image.Rectangle) *DominantColorsResult {
	bounds := img.Bounds()
	if region != nil {
		bounds = region.Intersect(bounds)
	}

	counts := make(map[RGBColor]int)
	total := 0

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c, ok := colorful.MakeColor(img.At(x, y))
			if !ok {
				continue
			}
			r, g, b := c.RGB255()
			counts[RGBColor{R: r / 16 * 16, G: g / 16 * 16, B: b / 16 * 16}]++
			total++
		}
	}

	colors := make([]ColorFrequency, 0, len(counts))
	for rgb, n := range counts {
		c := rgb8(rgb.R, rgb.G, rgb.B)
		colors = append(colors, ColorFrequency{
			Hex:        c.Hex(),
			Name:       NearestPaintName(c),
			Percentage: float64(n) / float64(total) * 100,
			RGB:        rgb,
		})
	}

	sort.Slice(colors, func(i, j int) bool {
		if colors[i].Percentage != colors[j].Percentage {
			return colors[i].Percentage > colors[j].Percentage
		}
		return colors[i].Hex < colors[j].Hex
	})

	if count >= 0 && len(colors) > count {
		colors = colors[:count]
	}

	return &DominantColorsResult{Colors: colors}
}

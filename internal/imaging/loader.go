package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"os"
	"sync"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// ErrEmptyImage is returned when image data or an image value is missing.
var ErrEmptyImage = errors.New("image is empty")

// DecodeBytes decodes an encoded photo and applies its EXIF orientation.
//
// Camera photos are commonly stored rotated with an orientation tag; the
// returned image is upright, so width and height match what the viewer sees.
// PNG, JPEG, GIF, BMP, TIFF and WebP are supported.
//
// The decoded image is validated; see Validate.
func DecodeBytes(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	if err := Validate(img); err != nil {
		return nil, err
	}
	return img, nil
}

// Validate reports whether img is usable for detection: it must be non-nil
// and have a positive width and height.
func Validate(img image.Image) error {
	if img == nil {
		return ErrEmptyImage
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return fmt.Errorf("image has non-positive dimensions %dx%d", b.Dx(), b.Dy())
	}
	return nil
}

// Downscale shrinks img so neither side exceeds maxSide, preserving the
// aspect ratio. Images that already fit, or a maxSide <= 0, are returned
// unchanged.
func Downscale(img image.Image, maxSide int) image.Image {
	b := img.Bounds()
	if maxSide <= 0 || (b.Dx() <= maxSide && b.Dy() <= maxSide) {
		return img
	}
	return imaging.Fit(img, maxSide, maxSide, imaging.Lanczos)
}

// ImageCache provides thread-safe caching of decoded photos keyed by path.
//
// Cached images are oriented but kept at their source resolution, so
// repeated tool calls against one photo see identical pixels and the same
// dimensions. Cached images remain in memory until removed via Evict() or
// Clear().
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

// NewImageCache creates an empty cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]image.Image),
	}
}

// Load retrieves an image from the cache or reads and decodes it from disk.
//
// The image is cached using the exact path string provided. Different paths
// to the same file result in separate cache entries.
func (c *ImageCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}

	img, err := DecodeBytes(data)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// Clear removes all images from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.mu.Unlock()
}

// Evict removes a specific image from the cache by its path.
// If the path is not in the cache, this method does nothing.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// ImageInfo contains metadata about a loaded photo.
type ImageInfo struct {
	// Width and Height are the upright dimensions, after EXIF orientation.
	Width  int `json:"width"`
	Height int `json:"height"`

	// AspectRatio is Width / Height.
	AspectRatio float64 `json:"aspect_ratio"`

	// Format is derived from the file extension: "jpeg", "png", "gif",
	// "tiff", "bmp" or "unknown".
	Format string `json:"format"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads an image into the cache and describes it.
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	format := "unknown"
	if f, err := imaging.FormatFromFilename(path); err == nil {
		format = formatName(f)
	}

	b := img.Bounds()
	return &ImageInfo{
		Width:         b.Dx(),
		Height:        b.Dy(),
		AspectRatio:   float64(b.Dx()) / float64(b.Dy()),
		Format:        format,
		FileSizeBytes: stat.Size(),
	}, nil
}

func formatName(f imaging.Format) string {
	switch f {
	case imaging.JPEG:
		return "jpeg"
	case imaging.PNG:
		return "png"
	case imaging.GIF:
		return "gif"
	case imaging.TIFF:
		return "tiff"
	case imaging.BMP:
		return "bmp"
	default:
		return "unknown"
	}
}

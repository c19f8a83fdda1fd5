//go:build !cgo

package ocr

import "image"

func (r *Recognizer) readLines(image.Image) ([]Line, error) {
	return nil, ErrUnavailable
}

// ExtractText always fails with ErrUnavailable in builds without cgo.
func (r *Recognizer) ExtractText(image.Image) (*OCRResult, error) {
	return nil, ErrUnavailable
}

// Info reports that no OCR backend is available.
func Info() OCRInfo {
	return OCRInfo{
		Available: false,
		Error:     ErrUnavailable.Error(),
		Backend:   "none",
	}
}

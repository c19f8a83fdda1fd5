// Package ocr reads text from images using Tesseract via gosseract/v2.
//
// Recognizer implements vision.TextRecognizer for the car pipeline. It reads
// the whole image at text-line granularity and, when region scanning is
// enabled, also reads each plate-shaped text region found by the detection
// package. Lines are trimmed, deduplicated and ranked by confidence.
//
// # Prerequisites
//
// Tesseract and its language data must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// The gosseract bindings need cgo. Binaries built with CGO_ENABLED=0 still
// compile, but every read fails with ErrUnavailable.
//
// # Languages
//
// The default language is English ("eng"). Other Tesseract language codes
// such as "deu" or "fra" work when their traineddata files are installed.
// Options.TessdataPrefix points Tesseract at a non-standard data directory.
package ocr

package pipeline

import "errors"

// Errors returned by Detect. They wrap the underlying cause, so errors.Is
// matches both the kind and the cause.
var (
	// ErrInvalidImage means the image could not be decoded or has
	// non-positive dimensions.
	ErrInvalidImage = errors.New("invalid image")

	// ErrDetectorFailure means the rectangle detector failed.
	ErrDetectorFailure = errors.New("rectangle detector failed")

	// ErrRecognizerFailure means the text recognizer failed.
	ErrRecognizerFailure = errors.New("text recognizer failed")

	// ErrIdentificationFailure marks a failed make/model identification.
	// It is logged and never returned: the result just carries no make or
	// model.
	ErrIdentificationFailure = errors.New("identification failed")
)

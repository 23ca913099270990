package imageprocessor

import "errors"

// Error kinds the pipeline reports. Callers match them with errors.Is.
var (
	// ErrDecode marks a source file that cannot be parsed as an image.
	ErrDecode = errors.New("image decode failed")

	// ErrRender marks a failed resize/encode/write of a single variant.
	ErrRender = errors.New("variant render failed")

	// ErrIO marks a filesystem failure while placing, moving or removing
	// an item's files.
	ErrIO = errors.New("storage io failed")
)

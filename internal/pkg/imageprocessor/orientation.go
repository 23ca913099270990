package imageprocessor

import (
	"fmt"
	"image"
	"os"

	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp"
)

// Dimensions are the pixel dimensions of an image after applying its embedded
// orientation, matching what a viewer renders rather than the raw pixel grid.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// EXIF orientation values, named by the transform that restores an upright
// image. Values 5-8 carry a 90-degree rotation and therefore swap the axes.
const (
	orientationUpright    = 1
	orientationFlipH      = 2
	orientationRotate180  = 3
	orientationFlipV      = 4
	orientationTranspose  = 5
	orientationRotate270  = 6
	orientationTransverse = 7
	orientationRotate90   = 8
)

// ReadOrientedDimensions returns the orientation-corrected dimensions of the
// image at path. Files without usable EXIF data report their raw dimensions.
func ReadOrientedDimensions(path string) (Dimensions, error) {
	file, err := os.Open(path)
	if err != nil {
		return Dimensions{}, fmt.Errorf("%w: open %s: %w", ErrIO, path, err)
	}
	defer file.Close()

	cfg, _, err := image.DecodeConfig(file)
	if err != nil {
		return Dimensions{}, fmt.Errorf("%w: %s: %w", ErrDecode, path, err)
	}

	if orientationSwapsAxes(readOrientation(file)) {
		return Dimensions{Width: cfg.Height, Height: cfg.Width}, nil
	}
	return Dimensions{Width: cfg.Width, Height: cfg.Height}, nil
}

// readOrientation extracts the EXIF orientation tag, defaulting to upright
// when the file carries no usable metadata.
func readOrientation(file *os.File) int {
	if _, err := file.Seek(0, 0); err != nil {
		return orientationUpright
	}

	x, err := exif.Decode(file)
	if err != nil {
		return orientationUpright
	}

	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return orientationUpright
	}

	value, err := tag.Int(0)
	if err != nil || value < orientationUpright || value > orientationRotate90 {
		return orientationUpright
	}
	return value
}

func readOrientationFromPath(path string) int {
	file, err := os.Open(path)
	if err != nil {
		return orientationUpright
	}
	defer file.Close()
	return readOrientation(file)
}

// orientationSwapsAxes reports whether the orientation carries a 90-degree
// rotation component.
func orientationSwapsAxes(orientation int) bool {
	return orientation >= orientationTranspose && orientation <= orientationRotate90
}

// applyOrientation rotates/flips img so its pixel grid matches what viewers
// display for the given EXIF orientation.
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case orientationFlipH:
		return imaging.FlipH(img)
	case orientationRotate180:
		return imaging.Rotate180(img)
	case orientationFlipV:
		return imaging.FlipV(img)
	case orientationTranspose:
		return imaging.Transpose(img)
	case orientationRotate270:
		return imaging.Rotate270(img)
	case orientationTransverse:
		return imaging.Transverse(img)
	case orientationRotate90:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

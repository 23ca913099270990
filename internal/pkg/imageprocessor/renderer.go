package imageprocessor

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"
)

// RenderVariant produces one variant of the source image: decode, auto-rotate
// per the embedded orientation, scale down per spec, re-encode as lossy WebP
// at destPath. The source is never modified and never upscaled.
func RenderVariant(sourcePath string, spec SizeSpec, destPath string) error {
	if spec.Height <= 0 && spec.Width <= 0 && spec.LongEdge <= 0 {
		return fmt.Errorf("%w: size spec %q has no size constraint", ErrRender, spec.Name)
	}

	img, err := imaging.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("%w: decode %s: %w", ErrRender, sourcePath, err)
	}

	// Bake the rotation into the pixels so the output needs no metadata
	img = applyOrientation(img, readOrientationFromPath(sourcePath))

	if err := saveWebP(resizeForSpec(img, spec), spec.Quality, destPath); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrRender, spec.Name, err)
	}
	return nil
}

// resizeForSpec scales img down to the spec's constraint, preserving aspect
// ratio. Images already within the constraint pass through unresized.
func resizeForSpec(img image.Image, spec SizeSpec) image.Image {
	width := img.Bounds().Dx()
	height := img.Bounds().Dy()

	switch {
	case spec.Height > 0:
		if height <= spec.Height {
			return img
		}
		return imaging.Resize(img, 0, spec.Height, imaging.Lanczos)

	case spec.Width > 0:
		if width <= spec.Width {
			return img
		}
		return imaging.Resize(img, spec.Width, 0, imaging.Lanczos)

	case spec.LongEdge > 0:
		// The longer axis takes the constraint, so either a landscape's
		// width or a portrait's height lands exactly on LongEdge
		if width >= height {
			if width <= spec.LongEdge {
				return img
			}
			return imaging.Resize(img, spec.LongEdge, 0, imaging.Lanczos)
		}
		if height <= spec.LongEdge {
			return img
		}
		return imaging.Resize(img, 0, spec.LongEdge, imaging.Lanczos)
	}

	return img
}

// saveWebP encodes the image as lossy WebP at outputPath
func saveWebP(img image.Image, quality int, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("error creating directory for WebP: %w", err)
	}

	output, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("error creating WebP file: %w", err)
	}
	defer output.Close()

	options, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, float32(quality))
	if err != nil {
		return fmt.Errorf("error creating WebP encoder options: %w", err)
	}

	if err := webp.Encode(output, img, options); err != nil {
		return fmt.Errorf("error encoding WebP: %w", err)
	}

	return nil
}

package imageprocessor_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/PixelDen/internal/pkg/imageprocessor"
)

// renderedDims decodes the produced WebP variant and returns its dimensions.
func renderedDims(t *testing.T, path string) imageprocessor.Dimensions {
	t.Helper()
	dims, err := imageprocessor.ReadOrientedDimensions(path)
	require.NoError(t, err)
	return dims
}

func TestRenderVariantResizePolicy(t *testing.T) {
	dir := t.TempDir()

	landscape := filepath.Join(dir, "landscape.jpg")
	writeImage(t, landscape, 400, 300)
	portrait := filepath.Join(dir, "portrait.jpg")
	writeImage(t, portrait, 300, 400)

	tests := []struct {
		name   string
		source string
		spec   imageprocessor.SizeSpec
		want   imageprocessor.Dimensions
	}{
		{
			name:   "height constraint scales width to aspect",
			source: landscape,
			spec:   imageprocessor.SizeSpec{Name: "thumb", Height: 150, Quality: 80},
			want:   imageprocessor.Dimensions{Width: 200, Height: 150},
		},
		{
			name:   "width constraint scales height to aspect",
			source: landscape,
			spec:   imageprocessor.SizeSpec{Name: "card", Width: 100, Quality: 80},
			want:   imageprocessor.Dimensions{Width: 100, Height: 75},
		},
		{
			name:   "long edge on landscape binds the width",
			source: landscape,
			spec:   imageprocessor.SizeSpec{Name: "display", LongEdge: 200, Quality: 85},
			want:   imageprocessor.Dimensions{Width: 200, Height: 150},
		},
		{
			name:   "long edge on portrait binds the height",
			source: portrait,
			spec:   imageprocessor.SizeSpec{Name: "display", LongEdge: 200, Quality: 85},
			want:   imageprocessor.Dimensions{Width: 150, Height: 200},
		},
		{
			name:   "height constraint never upscales",
			source: landscape,
			spec:   imageprocessor.SizeSpec{Name: "big", Height: 900, Quality: 80},
			want:   imageprocessor.Dimensions{Width: 400, Height: 300},
		},
		{
			name:   "long edge never upscales",
			source: landscape,
			spec:   imageprocessor.SizeSpec{Name: "huge", LongEdge: 1000, Quality: 80},
			want:   imageprocessor.Dimensions{Width: 400, Height: 300},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dest := filepath.Join(t.TempDir(), tt.spec.Name+".webp")

			require.NoError(t, imageprocessor.RenderVariant(tt.source, tt.spec, dest))

			assert.FileExists(t, dest)
			assert.Equal(t, tt.want, renderedDims(t, dest))
		})
	}
}

func TestRenderVariantAppliesOrientation(t *testing.T) {
	dir := t.TempDir()

	// Raw 40x30 stored with a 90-degree rotation: viewers show 30x40, so the
	// long edge is the displayed height
	source := filepath.Join(dir, "rotated.jpg")
	writeJPEGWithEXIF(t, source, 40, 30, orientationEntry(6))

	dest := filepath.Join(dir, "display.webp")
	spec := imageprocessor.SizeSpec{Name: "display", LongEdge: 20, Quality: 85}
	require.NoError(t, imageprocessor.RenderVariant(source, spec, dest))

	assert.Equal(t, imageprocessor.Dimensions{Width: 15, Height: 20}, renderedDims(t, dest))
}

func TestRenderVariantInvalidSpec(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "source.jpg")
	writeImage(t, source, 40, 30)

	dest := filepath.Join(dir, "broken.webp")
	err := imageprocessor.RenderVariant(source, imageprocessor.SizeSpec{Name: "broken", Quality: 80}, dest)

	require.Error(t, err)
	assert.ErrorIs(t, err, imageprocessor.ErrRender)
	assert.NoFileExists(t, dest)
}

func TestRenderVariantCorruptSource(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "corrupt.jpg")
	require.NoError(t, os.WriteFile(source, []byte("garbage"), 0644))

	err := imageprocessor.RenderVariant(source, imageprocessor.SizeSpec{Name: "thumb", Height: 100, Quality: 80}, filepath.Join(dir, "thumb.webp"))

	require.Error(t, err)
	assert.ErrorIs(t, err, imageprocessor.ErrRender)
}

func TestRenderVariantWebPSource(t *testing.T) {
	dir := t.TempDir()

	// Produce a WebP first, then use it as the input codec
	jpegSource := filepath.Join(dir, "source.jpg")
	writeImage(t, jpegSource, 400, 300)
	webpSource := filepath.Join(dir, "source.webp")
	require.NoError(t, imageprocessor.RenderVariant(jpegSource, imageprocessor.SizeSpec{Name: "full", LongEdge: 400, Quality: 90}, webpSource))

	dest := filepath.Join(dir, "thumb.webp")
	require.NoError(t, imageprocessor.RenderVariant(webpSource, imageprocessor.SizeSpec{Name: "thumb", Height: 150, Quality: 80}, dest))

	assert.Equal(t, imageprocessor.Dimensions{Width: 200, Height: 150}, renderedDims(t, dest))
}

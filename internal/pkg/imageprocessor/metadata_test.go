package imageprocessor_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/PixelDen/internal/pkg/imageprocessor"
)

// cameraModelEntry builds the EXIF camera model tag (ASCII, NUL terminated).
func cameraModelEntry(model string) exifEntry {
	value := append([]byte(model), 0x00)
	return exifEntry{tag: 0x0110, typ: 2, count: uint32(len(value)), value: value}
}

func TestExtractMetadata(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photo.jpg")
	writeJPEGWithEXIF(t, path, 40, 30,
		cameraModelEntry("PixelCam X100"),
		orientationEntry(6),
		dateTimeEntry("2019:04:08 17:12:37"),
	)

	meta, err := imageprocessor.ExtractMetadata(path)

	require.NoError(t, err)
	require.NotNil(t, meta)
	assert.Equal(t, "PixelCam X100", meta.CameraModel)
	require.NotNil(t, meta.TakenAt)
	assert.Equal(t, "2019-04-08 17:12:37", meta.TakenAt.Format("2006-01-02 15:04:05"))
	assert.Contains(t, meta.Tags, "Model")
	assert.Contains(t, meta.Tags, "Orientation")
}

func TestExtractMetadataNoEXIF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.jpg")
	writeImage(t, path, 40, 30)

	meta, err := imageprocessor.ExtractMetadata(path)

	require.NoError(t, err)
	assert.Nil(t, meta)
}

func TestExtractMetadataMissingFile(t *testing.T) {
	_, err := imageprocessor.ExtractMetadata(filepath.Join(t.TempDir(), "missing.jpg"))
	assert.Error(t, err)
}

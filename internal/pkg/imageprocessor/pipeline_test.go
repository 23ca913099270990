package imageprocessor_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/PixelDen/internal/pkg/imageprocessor"
	"github.com/ManuelReschke/PixelDen/internal/pkg/storagepath"
)

func newTestPipeline(t *testing.T, sizes []imageprocessor.SizeSpec) (*imageprocessor.Pipeline, string) {
	t.Helper()

	root := t.TempDir()
	pipeline, err := imageprocessor.NewPipeline(imageprocessor.Config{
		StorageRoot: root,
		Sizes:       sizes,
		MaxWorkers:  2,
	})
	require.NoError(t, err)
	require.NoError(t, pipeline.Init())
	return pipeline, root
}

// stageTemp writes a fresh upload fixture the way the upload layer stages one.
func stageTemp(t *testing.T, width, height int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "upload.jpg")
	writeImage(t, path, width, height)
	return path
}

func TestInitCreatesBaseDirs(t *testing.T) {
	_, root := newTestPipeline(t, imageprocessor.DefaultSizeSpecs())

	assert.DirExists(t, root)
	assert.DirExists(t, filepath.Join(root, storagepath.UncategorizedSegment))
}

func TestIngestEndToEnd(t *testing.T) {
	pipeline, root := newTestPipeline(t, imageprocessor.DefaultSizeSpecs())

	temp := stageTemp(t, 4000, 3000)
	dims, err := pipeline.Ingest(temp, "", "abc123")

	require.NoError(t, err)
	assert.Equal(t, imageprocessor.Dimensions{Width: 4000, Height: 3000}, dims)
	assert.NoFileExists(t, temp, "temp upload must be consumed")

	itemDir := filepath.Join(root, storagepath.UncategorizedSegment, "abc123")
	assert.FileExists(t, filepath.Join(itemDir, "original.jpg"))

	variants := map[string]imageprocessor.Dimensions{
		"thumb.webp":    {Width: 400, Height: 300},
		"featured.webp": {Width: 800, Height: 600},
		"display.webp":  {Width: 1600, Height: 1200},
	}
	for name, want := range variants {
		path := filepath.Join(itemDir, name)
		require.FileExists(t, path)
		assert.Equal(t, want, renderedDims(t, path), name)
	}
}

func TestIngestRotatedSource(t *testing.T) {
	sizes := []imageprocessor.SizeSpec{
		{Name: "thumb", Height: 30, Quality: 80},
		{Name: "display", LongEdge: 100, Quality: 85},
	}
	pipeline, root := newTestPipeline(t, sizes)

	// Raw 300x400 pixels carrying a 90-degree rotation: the logical image is
	// a 400x300 landscape
	temp := filepath.Join(t.TempDir(), "upload.jpg")
	writeJPEGWithEXIF(t, temp, 300, 400, orientationEntry(6))

	dims, err := pipeline.Ingest(temp, "trips", "item-1")

	require.NoError(t, err)
	assert.Equal(t, imageprocessor.Dimensions{Width: 400, Height: 300}, dims)

	itemDir := filepath.Join(root, "trips", "item-1")
	assert.Equal(t, imageprocessor.Dimensions{Width: 40, Height: 30}, renderedDims(t, filepath.Join(itemDir, "thumb.webp")))
	assert.Equal(t, imageprocessor.Dimensions{Width: 100, Height: 75}, renderedDims(t, filepath.Join(itemDir, "display.webp")))
}

func TestIngestContinuesAfterVariantFailure(t *testing.T) {
	sizes := []imageprocessor.SizeSpec{
		{Name: "thumb", Height: 50, Quality: 80},
		{Name: "blocked", Height: 60, Quality: 80},
		{Name: "display", LongEdge: 100, Quality: 85},
	}
	pipeline, root := newTestPipeline(t, sizes)

	var failed []string
	imageprocessor.VariantFailureHook = func(specName string) { failed = append(failed, specName) }
	t.Cleanup(func() { imageprocessor.VariantFailureHook = nil })

	// Occupy the blocked variant's path with a directory so its write fails
	itemDir := filepath.Join(root, "g1", "item-1")
	require.NoError(t, os.MkdirAll(filepath.Join(itemDir, "blocked.webp"), 0755))

	temp := stageTemp(t, 400, 300)
	dims, err := pipeline.Ingest(temp, "g1", "item-1")

	require.NoError(t, err, "one failed variant must not fail the ingest")
	assert.Equal(t, imageprocessor.Dimensions{Width: 400, Height: 300}, dims)

	assert.FileExists(t, filepath.Join(itemDir, "thumb.webp"))
	assert.FileExists(t, filepath.Join(itemDir, "display.webp"))
	assert.Equal(t, []string{"blocked"}, failed)
}

func TestIngestMissingTemp(t *testing.T) {
	pipeline, _ := newTestPipeline(t, imageprocessor.DefaultSizeSpecs())

	_, err := pipeline.Ingest(filepath.Join(t.TempDir(), "missing.jpg"), "", "item-2")

	require.Error(t, err)
	assert.ErrorIs(t, err, imageprocessor.ErrIO)
}

func TestIngestCorruptUpload(t *testing.T) {
	pipeline, _ := newTestPipeline(t, imageprocessor.DefaultSizeSpecs())

	temp := filepath.Join(t.TempDir(), "corrupt.jpg")
	require.NoError(t, os.WriteFile(temp, []byte("not an image"), 0644))

	_, err := pipeline.Ingest(temp, "", "item-3")

	require.Error(t, err)
	assert.ErrorIs(t, err, imageprocessor.ErrDecode)
}

func TestIngestAsync(t *testing.T) {
	sizes := []imageprocessor.SizeSpec{{Name: "thumb", Height: 50, Quality: 80}}
	pipeline, root := newTestPipeline(t, sizes)

	temp := stageTemp(t, 200, 150)
	task := pipeline.IngestAsync(temp, "", "async-1")

	dims, err := task.Wait()

	require.NoError(t, err)
	assert.Equal(t, imageprocessor.Dimensions{Width: 200, Height: 150}, dims)
	assert.FileExists(t, filepath.Join(root, storagepath.UncategorizedSegment, "async-1", "thumb.webp"))

	select {
	case <-task.Done():
	default:
		t.Fatal("done channel must be closed after Wait returns")
	}
}

func TestRelocateRoundTrip(t *testing.T) {
	sizes := []imageprocessor.SizeSpec{{Name: "thumb", Height: 50, Quality: 80}}
	pipeline, root := newTestPipeline(t, sizes)

	temp := stageTemp(t, 200, 150)
	_, err := pipeline.Ingest(temp, "", "item-1")
	require.NoError(t, err)

	require.NoError(t, pipeline.Relocate("", "album", "item-1"))

	newDir := filepath.Join(root, "album", "item-1")
	assert.FileExists(t, filepath.Join(newDir, "original.jpg"))
	assert.FileExists(t, filepath.Join(newDir, "thumb.webp"))
	assert.NoDirExists(t, filepath.Join(root, storagepath.UncategorizedSegment, "item-1"))

	// Moving back restores the original location with the full file set
	require.NoError(t, pipeline.Relocate("album", "", "item-1"))

	oldDir := filepath.Join(root, storagepath.UncategorizedSegment, "item-1")
	assert.FileExists(t, filepath.Join(oldDir, "original.jpg"))
	assert.FileExists(t, filepath.Join(oldDir, "thumb.webp"))
	assert.NoDirExists(t, newDir)
}

func TestRelocateNoOps(t *testing.T) {
	pipeline, root := newTestPipeline(t, imageprocessor.DefaultSizeSpecs())

	// Identical groups resolve to the same path
	require.NoError(t, pipeline.Relocate("a", "a", "item-1"))

	// Speculative call for an item that was never ingested
	require.NoError(t, pipeline.Relocate("a", "b", "missing-item"))
	assert.NoDirExists(t, filepath.Join(root, "b", "missing-item"))
}

func TestDeleteAllIdempotent(t *testing.T) {
	sizes := []imageprocessor.SizeSpec{{Name: "thumb", Height: 50, Quality: 80}}
	pipeline, root := newTestPipeline(t, sizes)

	temp := stageTemp(t, 200, 150)
	_, err := pipeline.Ingest(temp, "g1", "item-1")
	require.NoError(t, err)

	require.NoError(t, pipeline.DeleteAll("g1", "item-1"))
	assert.NoDirExists(t, filepath.Join(root, "g1", "item-1"))

	// Deleting again is not an error
	require.NoError(t, pipeline.DeleteAll("g1", "item-1"))
}

func TestResolvePath(t *testing.T) {
	sizes := []imageprocessor.SizeSpec{{Name: "thumb", Height: 50, Quality: 80}}
	pipeline, root := newTestPipeline(t, sizes)

	temp := stageTemp(t, 200, 150)
	_, err := pipeline.Ingest(temp, "g1", "item-1")
	require.NoError(t, err)

	itemDir := filepath.Join(root, "g1", "item-1")

	t.Run("exact variant", func(t *testing.T) {
		assert.Equal(t, filepath.Join(itemDir, "thumb.webp"), pipeline.ResolvePath("g1", "item-1", "thumb"))
	})

	t.Run("original by name", func(t *testing.T) {
		assert.Equal(t, filepath.Join(itemDir, "original.jpg"), pipeline.ResolvePath("g1", "item-1", "original"))
	})

	t.Run("unknown size falls back to original", func(t *testing.T) {
		assert.Equal(t, filepath.Join(itemDir, "original.jpg"), pipeline.ResolvePath("g1", "item-1", "huge"))
	})

	t.Run("missing item yields empty path", func(t *testing.T) {
		assert.Equal(t, "", pipeline.ResolvePath("g1", "never-ingested", "thumb"))
	})
}

func TestResolvePathFallsBackWhenVariantMissing(t *testing.T) {
	sizes := []imageprocessor.SizeSpec{{Name: "thumb", Height: 50, Quality: 80}}
	pipeline, root := newTestPipeline(t, sizes)

	temp := stageTemp(t, 200, 150)
	_, err := pipeline.Ingest(temp, "g1", "item-1")
	require.NoError(t, err)

	// Simulate a variant that was never rendered
	itemDir := filepath.Join(root, "g1", "item-1")
	require.NoError(t, os.Remove(filepath.Join(itemDir, "thumb.webp")))

	got := pipeline.ResolvePath("g1", "item-1", "thumb")
	assert.Equal(t, filepath.Join(itemDir, "original.jpg"), got)
}

package imageprocessor

import (
	"fmt"
	"os"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/PixelDen/internal/pkg/storage"
	"github.com/ManuelReschke/PixelDen/internal/pkg/storagepath"
)

// VariantFailureHook, when set, is invoked with the spec name for every
// variant render that fails during ingestion. The job queue wires this to
// its counters; tests use it to observe partial failures.
var VariantFailureHook func(specName string)

// Pipeline ingests originals, renders variants, and keeps the storage tree in
// sync with each item's logical group. One Pipeline serves one storage root
// and is safe for concurrent use across distinct item IDs; concurrent calls
// for the same item ID are not supported.
type Pipeline struct {
	resolver *storagepath.Resolver
	sizes    []SizeSpec
	throttle chan struct{}
}

// NewPipeline validates cfg and builds a pipeline for its storage root.
// MaxWorkers of zero selects the default.
func NewPipeline(cfg Config) (*Pipeline, error) {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = DefaultMaxWorkers
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Pipeline{
		resolver: storagepath.NewResolver(cfg.StorageRoot),
		sizes:    append([]SizeSpec(nil), cfg.Sizes...),
		throttle: make(chan struct{}, cfg.MaxWorkers),
	}, nil
}

// Init creates the base storage directories. Call it once at startup, before
// any other pipeline operation.
func (p *Pipeline) Init() error {
	dirs := []string{
		p.resolver.Root(),
		p.resolver.GroupDir(""),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("%w: create %s: %w", ErrIO, dir, err)
		}
	}
	return nil
}

// Resolver exposes the pipeline's path resolver.
func (p *Pipeline) Resolver() *storagepath.Resolver {
	return p.resolver
}

// Sizes returns the configured size specs in render order.
func (p *Pipeline) Sizes() []SizeSpec {
	return append([]SizeSpec(nil), p.sizes...)
}

// Ingest places the uploaded temp file as the item's original, computes the
// orientation-corrected dimensions, and renders all configured variants in
// order. A single variant failure is logged and skipped; the caller still
// receives the dimensions and persists them externally. The temp file is
// consumed.
func (p *Pipeline) Ingest(tempPath, groupID, itemID string) (Dimensions, error) {
	itemDir := p.resolver.ItemDir(groupID, itemID)
	if err := os.MkdirAll(itemDir, 0755); err != nil {
		return Dimensions{}, fmt.Errorf("%w: create %s: %w", ErrIO, itemDir, err)
	}

	originalPath := p.resolver.OriginalPath(groupID, itemID)
	if _, err := storage.PlaceFile(tempPath, originalPath); err != nil {
		return Dimensions{}, fmt.Errorf("%w: place original for item %s: %w", ErrIO, itemID, err)
	}

	dims, err := ReadOrientedDimensions(originalPath)
	if err != nil {
		return Dimensions{}, err
	}

	rendered := 0
	for _, spec := range p.sizes {
		destPath := p.resolver.VariantPath(groupID, itemID, spec.Name)
		if err := RenderVariant(originalPath, spec, destPath); err != nil {
			log.Errorf("[ImageProcessor] variant %s for item %s failed: %v", spec.Name, itemID, err)
			if VariantFailureHook != nil {
				VariantFailureHook(spec.Name)
			}
			continue
		}
		rendered++
	}

	log.Infof("[ImageProcessor] ingested item %s (%dx%d, %d/%d variants)",
		itemID, dims.Width, dims.Height, rendered, len(p.sizes))

	return dims, nil
}

// Relocate moves the item's whole directory when its group changes. An
// identical resolved path or a missing source directory is a no-op, so
// speculative calls are safe.
func (p *Pipeline) Relocate(oldGroupID, newGroupID, itemID string) error {
	oldDir := p.resolver.ItemDir(oldGroupID, itemID)
	newDir := p.resolver.ItemDir(newGroupID, itemID)
	if oldDir == newDir {
		return nil
	}

	if _, err := os.Stat(oldDir); os.IsNotExist(err) {
		log.Debugf("[ImageProcessor] relocate item %s: nothing at %s", itemID, oldDir)
		return nil
	}

	if err := storage.MoveTree(oldDir, newDir); err != nil {
		return fmt.Errorf("%w: relocate item %s: %w", ErrIO, itemID, err)
	}

	log.Infof("[ImageProcessor] relocated item %s to %s", itemID, newDir)
	return nil
}

// DeleteAll removes the item directory with the original and every variant.
// Deleting an item that is already gone succeeds.
func (p *Pipeline) DeleteAll(groupID, itemID string) error {
	itemDir := p.resolver.ItemDir(groupID, itemID)
	if _, err := os.Stat(itemDir); os.IsNotExist(err) {
		log.Debugf("[ImageProcessor] item %s already deleted", itemID)
		return nil
	}

	if err := storage.RemoveTree(itemDir); err != nil {
		return fmt.Errorf("%w: delete item %s: %w", ErrIO, itemID, err)
	}

	log.Infof("[ImageProcessor] deleted item %s (%s)", itemID, itemDir)
	return nil
}

// ResolvePath returns the best available file for the requested size: the
// exact variant when present, otherwise the original, otherwise the empty
// string. Absence is never an error.
func (p *Pipeline) ResolvePath(groupID, itemID, sizeName string) string {
	if sizeName != storagepath.OriginalSizeName {
		variantPath := p.resolver.VariantPath(groupID, itemID, sizeName)
		if fileExists(variantPath) {
			return variantPath
		}
		// Fall through to the original so a pending or failed variant
		// render never serves a broken image
	}

	originalPath := p.resolver.OriginalPath(groupID, itemID)
	if fileExists(originalPath) {
		return originalPath
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

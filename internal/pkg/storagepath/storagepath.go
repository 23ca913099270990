package storagepath

import "path/filepath"

const (
	// UncategorizedSegment is the reserved group directory for items that
	// do not belong to any gallery.
	UncategorizedSegment = "_uncategorized"

	// OriginalFileName is the fixed file name of the ingested source image.
	OriginalFileName = "original.jpg"

	// OriginalSizeName addresses the original file in read lookups.
	OriginalSizeName = "original"

	// VariantExt is the file extension shared by all rendered variants.
	VariantExt = ".webp"
)

// Resolver maps item identities to their location under the storage root.
// Group and item IDs are treated as opaque tokens (UUIDs in practice); the
// caller guarantees they are safe path segments.
type Resolver struct {
	root string
}

func NewResolver(root string) *Resolver {
	return &Resolver{root: root}
}

// Root returns the configured storage root.
func (r *Resolver) Root() string {
	return r.root
}

// GroupDir returns the directory holding all items of one group. An empty
// groupID maps to the reserved uncategorized segment.
func (r *Resolver) GroupDir(groupID string) string {
	if groupID == "" {
		groupID = UncategorizedSegment
	}
	return filepath.Join(r.root, groupID)
}

// ItemDir returns the directory holding one item's original and variants.
func (r *Resolver) ItemDir(groupID, itemID string) string {
	return filepath.Join(r.GroupDir(groupID), itemID)
}

// OriginalPath returns the path of the item's original file.
func (r *Resolver) OriginalPath(groupID, itemID string) string {
	return filepath.Join(r.ItemDir(groupID, itemID), OriginalFileName)
}

// VariantPath returns the path of the named variant of the item.
func (r *Resolver) VariantPath(groupID, itemID, sizeName string) string {
	return filepath.Join(r.ItemDir(groupID, itemID), sizeName+VariantExt)
}

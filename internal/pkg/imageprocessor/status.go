package imageprocessor

import (
	"fmt"
	"time"

	"github.com/ManuelReschke/PixelDen/internal/pkg/cache"
)

// Cache key formats for per-item processing state
const (
	ImageStatusKeyFormat          = "image:status:%s"           // image:status:<itemID>
	ImageStatusTimestampKeyFormat = "image:status:timestamp:%s" // image:status:timestamp:<itemID>
	ImageDimensionsKeyFormat      = "image:dims:%s"             // image:dims:<itemID>
)

// Status constants for image processing
const (
	STATUS_PENDING    = "pending"    // queued for processing
	STATUS_PROCESSING = "processing" // currently being processed
	STATUS_COMPLETED  = "completed"  // processing finished
	STATUS_FAILED     = "failed"     // processing failed
)

// statusTTL bounds how long per-item state survives in the cache.
const statusTTL = 24 * time.Hour

// Cache accessors, replaceable in tests so status logic runs without Redis.
var (
	SetCacheImplementation    = cache.Set
	GetCacheImplementation    = cache.Get
	DeleteCacheImplementation = cache.Delete
)

// SetImageStatus sets the processing status of an item in the cache
func SetImageStatus(itemID string, status string) error {
	SetImageStatusTimestamp(itemID, time.Now())
	key := fmt.Sprintf(ImageStatusKeyFormat, itemID)
	return SetCacheImplementation(key, status, statusTTL)
}

// SetImageStatusTimestamp records when the status last changed
func SetImageStatusTimestamp(itemID string, timestamp time.Time) error {
	key := fmt.Sprintf(ImageStatusTimestampKeyFormat, itemID)
	return SetCacheImplementation(key, timestamp.Format(time.RFC3339), statusTTL)
}

// GetImageStatus retrieves the processing status of an item from the cache
func GetImageStatus(itemID string) (string, error) {
	return GetCacheImplementation(fmt.Sprintf(ImageStatusKeyFormat, itemID))
}

// GetImageStatusTimestamp gets the timestamp when the status was set
func GetImageStatusTimestamp(itemID string) (time.Time, error) {
	raw, err := GetCacheImplementation(fmt.Sprintf(ImageStatusTimestampKeyFormat, itemID))
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, raw)
}

// SetImageDimensions caches the final dimensions for polling collaborators
func SetImageDimensions(itemID string, dims Dimensions) error {
	key := fmt.Sprintf(ImageDimensionsKeyFormat, itemID)
	return SetCacheImplementation(key, fmt.Sprintf("%dx%d", dims.Width, dims.Height), statusTTL)
}

// GetImageDimensions returns the cached dimensions recorded on completion
func GetImageDimensions(itemID string) (Dimensions, error) {
	raw, err := GetCacheImplementation(fmt.Sprintf(ImageDimensionsKeyFormat, itemID))
	if err != nil {
		return Dimensions{}, err
	}

	var dims Dimensions
	if _, err := fmt.Sscanf(raw, "%dx%d", &dims.Width, &dims.Height); err != nil {
		return Dimensions{}, fmt.Errorf("invalid cached dimensions %q: %w", raw, err)
	}
	return dims, nil
}

// ClearImageStatus drops all cached state of an item, used after deletion
func ClearImageStatus(itemID string) {
	DeleteCacheImplementation(fmt.Sprintf(ImageStatusKeyFormat, itemID))
	DeleteCacheImplementation(fmt.Sprintf(ImageStatusTimestampKeyFormat, itemID))
	DeleteCacheImplementation(fmt.Sprintf(ImageDimensionsKeyFormat, itemID))
}

// IsImageProcessingComplete checks whether an item's processing is finished.
// A pending/processing status older than 60 seconds counts as complete so
// readers switch to the original through the fallback path instead of
// polling forever.
func IsImageProcessingComplete(itemID string) bool {
	status, err := GetImageStatus(itemID)
	if err != nil || status == "" {
		return false
	}

	switch status {
	case STATUS_COMPLETED:
		return true
	case STATUS_PENDING, STATUS_PROCESSING:
		timestamp, err := GetImageStatusTimestamp(itemID)
		if err == nil && time.Since(timestamp) > 60*time.Second {
			SetImageStatus(itemID, STATUS_COMPLETED)
			return true
		}
	}

	return false
}

// IsImageProcessingFailed reports whether processing ended in failure
func IsImageProcessingFailed(itemID string) bool {
	if itemID == "" {
		return false
	}

	status, err := GetImageStatus(itemID)
	if err != nil {
		return false
	}
	return status == STATUS_FAILED
}

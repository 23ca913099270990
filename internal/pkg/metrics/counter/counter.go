package counter

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ManuelReschke/PixelDen/internal/pkg/cache"
)

const countersKey = "pixelden:counters"

// Hash fields tracked per pipeline operation
const (
	FieldIngestCompleted   = "ingest_completed"
	FieldIngestFailed      = "ingest_failed"
	FieldRelocateCompleted = "relocate_completed"
	FieldRelocateFailed    = "relocate_failed"
	FieldDeleteCompleted   = "delete_completed"
	FieldDeleteFailed      = "delete_failed"
)

// AddIngestCompleted increments the completed-ingest counter in Redis
func AddIngestCompleted() error {
	return incr(FieldIngestCompleted)
}

// AddIngestFailed increments the failed-ingest counter in Redis
func AddIngestFailed() error {
	return incr(FieldIngestFailed)
}

// AddRelocateCompleted increments the completed-relocation counter in Redis
func AddRelocateCompleted() error {
	return incr(FieldRelocateCompleted)
}

// AddRelocateFailed increments the failed-relocation counter in Redis
func AddRelocateFailed() error {
	return incr(FieldRelocateFailed)
}

// AddDeleteCompleted increments the completed-deletion counter in Redis
func AddDeleteCompleted() error {
	return incr(FieldDeleteCompleted)
}

// AddDeleteFailed increments the failed-deletion counter in Redis
func AddDeleteFailed() error {
	return incr(FieldDeleteFailed)
}

// AddVariantFailure increments the failure counter of a single size so
// systematically broken specs stand out in the stats
func AddVariantFailure(sizeName string) error {
	return incr(fmt.Sprintf("variants_failed:%s", sizeName))
}

func incr(field string) error {
	ctx := context.Background()
	return cache.GetClient().HIncrBy(ctx, countersKey, field, 1).Err()
}

// Snapshot returns the current value of every counter field
func Snapshot() (map[string]int64, error) {
	ctx := context.Background()
	data, err := cache.GetClient().HGetAll(ctx, countersKey).Result()
	if err != nil {
		return nil, err
	}

	snapshot := make(map[string]int64, len(data))
	for field, raw := range data {
		value, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		snapshot[field] = value
	}
	return snapshot, nil
}

// Reset drops all counters
func Reset() error {
	ctx := context.Background()
	return cache.GetClient().Del(ctx, countersKey).Err()
}

package jobqueue

import (
	"fmt"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/PixelDen/internal/pkg/imageprocessor"
)

// EnqueueDeleteJob enqueues an asynchronous delete of an item's directory
func (q *Queue) EnqueueDeleteJob(itemID, groupID string) (*Job, error) {
	payload := DeleteJobPayload{
		ItemID:  itemID,
		GroupID: groupID,
	}
	return q.EnqueueJob(JobTypeDeleteImage, payload.ToMap())
}

// processDeleteJob removes the item directory and its cached state.
// Deleting an already-deleted item is a no-op and does not retry.
func (q *Queue) processDeleteJob(job *Job) error {
	payload, perr := DeleteJobPayloadFromMap(job.Payload)
	if perr != nil {
		return fmt.Errorf("failed to parse delete payload: %w", perr)
	}

	if err := q.pipeline.DeleteAll(payload.GroupID, payload.ItemID); err != nil {
		return fmt.Errorf("delete failed for %s: %w", payload.ItemID, err)
	}

	// Drop cached status so a reused ID starts clean
	imageprocessor.ClearImageStatus(payload.ItemID)

	log.Infof("[DeleteJob] Completed delete for item %s", payload.ItemID)
	return nil
}

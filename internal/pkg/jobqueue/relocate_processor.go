package jobqueue

import (
	"fmt"

	"github.com/gofiber/fiber/v2/log"
)

// EnqueueRelocateJob enqueues moving an item's directory between groups
func (q *Queue) EnqueueRelocateJob(itemID, oldGroupID, newGroupID string) (*Job, error) {
	payload := RelocateJobPayload{
		ItemID:     itemID,
		OldGroupID: oldGroupID,
		NewGroupID: newGroupID,
	}
	return q.EnqueueJob(JobTypeRelocateImage, payload.ToMap())
}

// processRelocateJob moves the whole item directory to its new group.
// A missing source is a no-op so replayed or raced jobs do not fail.
func (q *Queue) processRelocateJob(job *Job) error {
	payload, err := RelocateJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("failed to parse relocate payload: %w", err)
	}

	if err := q.pipeline.Relocate(payload.OldGroupID, payload.NewGroupID, payload.ItemID); err != nil {
		return fmt.Errorf("relocate failed for %s: %w", payload.ItemID, err)
	}

	log.Infof("[RelocateJob] Moved item %s from group %q to %q", payload.ItemID, payload.OldGroupID, payload.NewGroupID)
	return nil
}

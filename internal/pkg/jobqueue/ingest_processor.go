package jobqueue

import (
	"fmt"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/PixelDen/internal/pkg/imageprocessor"
	"github.com/ManuelReschke/PixelDen/internal/pkg/upload"
)

// EnqueueIngestJob enqueues a staged upload for background ingestion and
// marks the item pending so collaborators can poll its progress
func (q *Queue) EnqueueIngestJob(itemID, groupID, tempPath string) (*Job, error) {
	payload := IngestJobPayload{
		ItemID:   itemID,
		GroupID:  groupID,
		TempPath: tempPath,
	}

	job, err := q.EnqueueJob(JobTypeImageIngest, payload.ToMap())
	if err != nil {
		return nil, err
	}

	if serr := imageprocessor.SetImageStatus(itemID, imageprocessor.STATUS_PENDING); serr != nil {
		log.Errorf("[IngestJob] Failed to set pending status for %s: %v", itemID, serr)
	}
	return job, nil
}

// processIngestJob validates the staged file and runs the full ingest
func (q *Queue) processIngestJob(job *Job) error {
	payload, err := IngestJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("failed to parse ingest payload: %w", err)
	}

	if _, err := upload.ValidateSourceFile(payload.TempPath); err != nil {
		q.markIngestFailed(payload.ItemID)
		return fmt.Errorf("upload validation failed for %s: %w", payload.ItemID, err)
	}

	if err := imageprocessor.SetImageStatus(payload.ItemID, imageprocessor.STATUS_PROCESSING); err != nil {
		log.Errorf("[IngestJob] Failed to set processing status for %s: %v", payload.ItemID, err)
	}

	dims, err := q.pipeline.Ingest(payload.TempPath, payload.GroupID, payload.ItemID)
	if err != nil {
		q.markIngestFailed(payload.ItemID)
		return fmt.Errorf("ingest failed for %s: %w", payload.ItemID, err)
	}

	if err := imageprocessor.SetImageDimensions(payload.ItemID, dims); err != nil {
		log.Errorf("[IngestJob] Failed to cache dimensions for %s: %v", payload.ItemID, err)
	}
	if err := imageprocessor.SetImageStatus(payload.ItemID, imageprocessor.STATUS_COMPLETED); err != nil {
		log.Errorf("[IngestJob] Failed to set completed status for %s: %v", payload.ItemID, err)
	}

	log.Infof("[IngestJob] Ingest completed for %s (%dx%d)", payload.ItemID, dims.Width, dims.Height)
	return nil
}

func (q *Queue) markIngestFailed(itemID string) {
	if err := imageprocessor.SetImageStatus(itemID, imageprocessor.STATUS_FAILED); err != nil {
		log.Errorf("[IngestJob] Failed to set failed status for %s: %v", itemID, err)
	}
}

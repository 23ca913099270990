package imageprocessor

import (
	"github.com/gofiber/fiber/v2/log"
)

// IngestTask is the handle for one background ingestion. Callers may await
// the result; failures of unawaited tasks are still logged.
type IngestTask struct {
	done chan struct{}
	dims Dimensions
	err  error
}

// Done returns a channel that is closed when the ingestion finishes.
func (t *IngestTask) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the ingestion finishes and returns its result.
func (t *IngestTask) Wait() (Dimensions, error) {
	<-t.done
	return t.dims, t.err
}

// IngestAsync runs Ingest on a bounded worker slot and returns an awaitable
// handle. The slot limit keeps concurrent decodes from exhausting memory.
func (p *Pipeline) IngestAsync(tempPath, groupID, itemID string) *IngestTask {
	task := &IngestTask{done: make(chan struct{})}

	go func() {
		defer close(task.done)

		p.throttle <- struct{}{}
		defer func() { <-p.throttle }()

		task.dims, task.err = p.Ingest(tempPath, groupID, itemID)
		if task.err != nil {
			log.Errorf("[ImageProcessor] background ingest of item %s failed: %v", itemID, task.err)
		}
	}()

	return task
}

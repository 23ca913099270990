package jobqueue

import (
	"encoding/json"
	"time"
)

// JobType defines the type of job
type JobType string

const (
	JobTypeImageIngest   JobType = "image_ingest"
	JobTypeRelocateImage JobType = "relocate_image"
	JobTypeDeleteImage   JobType = "delete_image"
)

// JobStatus defines the status of a job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusRetrying   JobStatus = "retrying"
)

// Job represents a background job
type Job struct {
	ID          string                 `json:"id"`
	Type        JobType                `json:"type"`
	Status      JobStatus              `json:"status"`
	Payload     map[string]interface{} `json:"payload"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	ProcessedAt *time.Time             `json:"processed_at,omitempty"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
	ErrorMsg    string                 `json:"error_msg,omitempty"`
	RetryCount  int                    `json:"retry_count"`
	MaxRetries  int                    `json:"max_retries"`
}

// IngestJobPayload contains the payload for image ingest jobs
type IngestJobPayload struct {
	ItemID   string `json:"item_id"`
	GroupID  string `json:"group_id"`  // empty = uncategorized
	TempPath string `json:"temp_path"` // staged upload, consumed by the ingest
}

// ToMap converts the payload to a map for storage
func (p IngestJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"item_id":   p.ItemID,
		"group_id":  p.GroupID,
		"temp_path": p.TempPath,
	}
}

// IngestJobPayloadFromMap creates a payload from a map
func IngestJobPayloadFromMap(data map[string]interface{}) (*IngestJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var payload IngestJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// RelocateJobPayload contains the payload for moving an item between groups
type RelocateJobPayload struct {
	ItemID     string `json:"item_id"`
	OldGroupID string `json:"old_group_id"`
	NewGroupID string `json:"new_group_id"`
}

// ToMap converts the payload to a map for storage
func (p RelocateJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"item_id":      p.ItemID,
		"old_group_id": p.OldGroupID,
		"new_group_id": p.NewGroupID,
	}
}

// RelocateJobPayloadFromMap creates a payload from a map
func RelocateJobPayloadFromMap(data map[string]interface{}) (*RelocateJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var payload RelocateJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// DeleteJobPayload contains the payload for deleting an item and its variants
type DeleteJobPayload struct {
	ItemID  string `json:"item_id"`
	GroupID string `json:"group_id"`
}

// ToMap converts the payload to a map for storage
func (p DeleteJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"item_id":  p.ItemID,
		"group_id": p.GroupID,
	}
}

// DeleteJobPayloadFromMap creates a payload from a map
func DeleteJobPayloadFromMap(data map[string]interface{}) (*DeleteJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var payload DeleteJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// IsRetryable checks if the job can be retried
func (j *Job) IsRetryable() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

// MarkAsProcessing updates the job status to processing
func (j *Job) MarkAsProcessing() {
	now := time.Now()
	j.Status = JobStatusProcessing
	j.UpdatedAt = now
	j.ProcessedAt = &now
}

// MarkAsCompleted updates the job status to completed
func (j *Job) MarkAsCompleted() {
	now := time.Now()
	j.Status = JobStatusCompleted
	j.UpdatedAt = now
	j.CompletedAt = &now
	j.ErrorMsg = ""
}

// MarkAsFailed updates the job status to failed
func (j *Job) MarkAsFailed(errorMsg string) {
	j.Status = JobStatusFailed
	j.UpdatedAt = time.Now()
	j.ErrorMsg = errorMsg
	j.RetryCount++
}

// MarkAsRetrying updates the job status to retrying
func (j *Job) MarkAsRetrying() {
	j.Status = JobStatusRetrying
	j.UpdatedAt = time.Now()
}

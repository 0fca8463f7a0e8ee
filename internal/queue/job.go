package queue

import (
	"time"

	"github.com/google/uuid"
)

// JobType represents the type of job
type JobType string

const (
	// JobTypeProcessBrainDump turns a classified brain dump into quests or journal entries
	JobTypeProcessBrainDump JobType = "process_brain_dump"
	// JobTypeCompanionNote asks the configured LLM for a short companion note
	JobTypeCompanionNote JobType = "companion_note"
)

// DefaultMaxRetries is how many times a failed job is retried before it is dead-lettered
const DefaultMaxRetries = 3

// Job represents a job in the queue
type Job struct {
	ID          uuid.UUID      `json:"id"`
	Type        JobType        `json:"type"`
	UserID      uuid.UUID      `json:"user_id"`
	BrainDumpID *uuid.UUID     `json:"brain_dump_id,omitempty"`
	NotBefore   *time.Time     `json:"not_before,omitempty"` // nil = immediate
	NotAfter    *time.Time     `json:"not_after,omitempty"`  // nil = no expiration
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	RetryCount  int            `json:"retry_count"`
	MaxRetries  int            `json:"max_retries"`
}

// NewJob creates a new job for a brain dump
func NewJob(jobType JobType, userID uuid.UUID, brainDumpID *uuid.UUID) *Job {
	return &Job{
		ID:          uuid.New(),
		Type:        jobType,
		UserID:      userID,
		BrainDumpID: brainDumpID,
		Metadata:    make(map[string]any),
		CreatedAt:   time.Now(),
		MaxRetries:  DefaultMaxRetries,
	}
}

// ShouldProcess checks if the job should be processed now
func (j *Job) ShouldProcess() bool {
	now := time.Now()
	if j.NotBefore != nil && now.Before(*j.NotBefore) {
		return false
	}
	if j.NotAfter != nil && now.After(*j.NotAfter) {
		return false
	}
	return true
}

// IsExpired checks if the job has expired
func (j *Job) IsExpired() bool {
	if j.NotAfter == nil {
		return false
	}
	return time.Now().After(*j.NotAfter)
}

// CanRetry checks if the job can be retried
func (j *Job) CanRetry() bool {
	return j.RetryCount < j.MaxRetries
}

// IncrementRetry increments the retry count
func (j *Job) IncrementRetry() {
	j.RetryCount++
}

// RetryAfter returns a copy of the job scheduled to run after delay with its
// retry count incremented. The copy keeps the job ID so retries can be traced.
func (j *Job) RetryAfter(delay time.Duration) *Job {
	retry := *j
	retry.IncrementRetry()
	notBefore := time.Now().Add(delay)
	retry.NotBefore = &notBefore
	return &retry
}

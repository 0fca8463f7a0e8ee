package models

import (
	"time"

	"github.com/google/uuid"
)

// BrainDumpStatus represents where a brain dump is in its processing lifecycle
type BrainDumpStatus string

const (
	BrainDumpStatusPending    BrainDumpStatus = "pending"
	BrainDumpStatusClassified BrainDumpStatus = "classified"
	BrainDumpStatusProcessed  BrainDumpStatus = "processed"
	BrainDumpStatusFailed     BrainDumpStatus = "failed"
)

// BrainDump is a free-text capture submitted by a user together with its classification
type BrainDump struct {
	ID             uuid.UUID             `json:"id"`
	UserID         uuid.UUID             `json:"user_id"`
	RawText        string                `json:"raw_text"`
	Status         BrainDumpStatus       `json:"status"`
	Classification *ClassificationResult `json:"classification,omitempty"`
	CompanionNote  *string               `json:"companion_note,omitempty"`
	Error          *string               `json:"error,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
	ProcessedAt    *time.Time            `json:"processed_at,omitempty"`
}

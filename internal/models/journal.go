package models

import (
	"time"

	"github.com/google/uuid"
)

// JournalKind is the kind of journal entry a brain dump became
type JournalKind string

const (
	JournalKindNote       JournalKind = "note"
	JournalKindReminder   JournalKind = "reminder"
	JournalKindReflection JournalKind = "reflection"
)

// JournalEntry is a note, reminder, or reflection derived from a brain dump
type JournalEntry struct {
	ID          uuid.UUID   `json:"id"`
	UserID      uuid.UUID   `json:"user_id"`
	BrainDumpID *uuid.UUID  `json:"brain_dump_id,omitempty"`
	Kind        JournalKind `json:"kind"`
	Body        string      `json:"body"`
	Mood        Mood        `json:"mood,omitempty"`
	Tags        []string    `json:"tags"`
	EntryDate   time.Time   `json:"entry_date"`
	CreatedAt   time.Time   `json:"created_at"`
}

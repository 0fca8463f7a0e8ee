package models

import (
	"time"

	"github.com/google/uuid"
)

// QuestKind distinguishes multi-step quests from single tasks
type QuestKind string

const (
	QuestKindQuest QuestKind = "quest"
	QuestKindTask  QuestKind = "task"
)

// QuestStatus represents the status of a quest
type QuestStatus string

const (
	QuestStatusActive    QuestStatus = "active"
	QuestStatusCompleted QuestStatus = "completed"
	QuestStatusAbandoned QuestStatus = "abandoned"
)

// QuestStep is one step of a quest, usually an extracted task
type QuestStep struct {
	Text     string  `json:"text"`
	Urgency  Urgency `json:"urgency,omitempty"`
	Category string  `json:"category,omitempty"`
	Done     bool    `json:"done"`
}

// Quest represents a quest or task on a user's board
type Quest struct {
	ID          uuid.UUID     `json:"id"`
	UserID      uuid.UUID     `json:"user_id"`
	BrainDumpID *uuid.UUID    `json:"brain_dump_id,omitempty"`
	Kind        QuestKind     `json:"kind"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	QuestType   QuestType     `json:"quest_type"`
	Priority    Priority      `json:"priority"`
	Status      QuestStatus   `json:"status"`
	Steps       []QuestStep   `json:"steps"`
	Metadata    QuestMetadata `json:"metadata"`
	XPReward    int           `json:"xp_reward"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
}

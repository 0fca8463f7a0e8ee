package models

import (
	"time"

	"github.com/google/uuid"
)

// Character holds a user's RPG progression
type Character struct {
	UserID          uuid.UUID      `json:"user_id"`
	Level           int            `json:"level"`
	TotalXP         int            `json:"total_xp"`
	SkillXP         map[string]int `json:"skill_xp"`
	CurrentStreak   int            `json:"current_streak"`
	LongestStreak   int            `json:"longest_streak"`
	LastActiveOn    *time.Time     `json:"last_active_on,omitempty"`
	QuestsCompleted int            `json:"quests_completed"`
	BrainDumpsCount int            `json:"brain_dumps_count"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// Achievement is an entry in the fixed achievement catalog
type Achievement struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
	XPBonus     int    `json:"xp_bonus"`
}

// UnlockedAchievement records when a user unlocked an achievement
type UnlockedAchievement struct {
	UserID     uuid.UUID `json:"user_id"`
	Key        string    `json:"key"`
	UnlockedAt time.Time `json:"unlocked_at"`
}

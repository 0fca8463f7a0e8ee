package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/benvon/life-rpg/internal/models"
)

// CharacterRepository handles character progression storage
type CharacterRepository struct {
	db *DB
}

// NewCharacterRepository creates a new character repository
func NewCharacterRepository(db *DB) *CharacterRepository {
	return &CharacterRepository{db: db}
}

const characterColumns = `user_id, level, total_xp, skill_xp, current_streak, longest_streak, last_active_on,
	quests_completed, brain_dumps_count, created_at, updated_at`

// ProgressFunc changes a locked character. unlocked holds the achievement keys
// the user already has; the keys it returns are recorded as newly unlocked.
type ProgressFunc func(c *models.Character, unlocked map[string]bool) ([]string, error)

// GetOrCreate returns the user's character, creating a level 1 character if none exists
func (r *CharacterRepository) GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.Character, error) {
	query := `
		INSERT INTO characters (user_id, level, total_xp, skill_xp, created_at, updated_at)
		VALUES ($1, 1, 0, '{}'::jsonb, $2, $2)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING ` + characterColumns

	c, err := scanCharacter(r.db.QueryRowContext(ctx, query, userID, time.Now()))
	if err != nil {
		return nil, fmt.Errorf("failed to get or create character: %w", err)
	}
	return c, nil
}

// Progress runs fn on the user's character while holding its row lock, then
// stores the character and the achievements fn unlocked in the same
// transaction. Progress calls for one user never interleave.
func (r *CharacterRepository) Progress(ctx context.Context, userID uuid.UUID, at time.Time, fn ProgressFunc) (*models.Character, error) {
	var c *models.Character
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO characters (user_id, level, total_xp, skill_xp, created_at, updated_at)
			VALUES ($1, 1, 0, '{}'::jsonb, $2, $2)
			ON CONFLICT (user_id) DO NOTHING
		`, userID, at)
		if err != nil {
			return fmt.Errorf("failed to create character: %w", err)
		}

		locked, err := scanCharacter(tx.QueryRowContext(ctx,
			`SELECT `+characterColumns+` FROM characters WHERE user_id = $1 FOR UPDATE`, userID))
		if err != nil {
			return fmt.Errorf("failed to lock character: %w", err)
		}

		unlocked, err := unlockedKeys(ctx, tx, userID)
		if err != nil {
			return err
		}

		keys, err := fn(locked, unlocked)
		if err != nil {
			return err
		}

		if err := updateCharacter(ctx, tx, locked); err != nil {
			return err
		}
		for _, key := range keys {
			if err := unlockAchievement(ctx, tx, userID, key, at); err != nil {
				return err
			}
		}
		c = locked
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func updateCharacter(ctx context.Context, q querier, c *models.Character) error {
	query := `
		UPDATE characters
		SET level = $2, total_xp = $3, skill_xp = $4, current_streak = $5, longest_streak = $6,
			last_active_on = $7, quests_completed = $8, brain_dumps_count = $9, updated_at = $10
		WHERE user_id = $1
		RETURNING updated_at
	`

	skillXP := c.SkillXP
	if skillXP == nil {
		skillXP = map[string]int{}
	}
	skillXPJSON, err := json.Marshal(skillXP)
	if err != nil {
		return fmt.Errorf("failed to marshal skill xp: %w", err)
	}

	err = q.QueryRowContext(ctx, query,
		c.UserID,
		c.Level,
		c.TotalXP,
		skillXPJSON,
		c.CurrentStreak,
		c.LongestStreak,
		toNullTime(c.LastActiveOn),
		c.QuestsCompleted,
		c.BrainDumpsCount,
		time.Now(),
	).Scan(&c.UpdatedAt)
	if err == sql.ErrNoRows {
		return fmt.Errorf("character %w", ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to update character: %w", err)
	}

	return nil
}

func scanCharacter(row rowScanner) (*models.Character, error) {
	c := &models.Character{}
	var skillXPJSON []byte
	var lastActive sql.NullTime

	err := row.Scan(
		&c.UserID,
		&c.Level,
		&c.TotalXP,
		&skillXPJSON,
		&c.CurrentStreak,
		&c.LongestStreak,
		&lastActive,
		&c.QuestsCompleted,
		&c.BrainDumpsCount,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.SkillXP = map[string]int{}
	if len(skillXPJSON) > 0 {
		if err := json.Unmarshal(skillXPJSON, &c.SkillXP); err != nil {
			return nil, fmt.Errorf("failed to unmarshal skill xp: %w", err)
		}
	}
	c.LastActiveOn = nullTimePtr(lastActive)

	return c, nil
}

// ResetStaleStreaks zeroes the current streak of every character whose last
// activity day is before cutoff and returns how many were reset
func (r *CharacterRepository) ResetStaleStreaks(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE characters
		SET current_streak = 0, updated_at = $2
		WHERE current_streak > 0 AND last_active_on < $1
	`, cutoff, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to reset stale streaks: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

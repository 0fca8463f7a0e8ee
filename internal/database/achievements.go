package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/benvon/life-rpg/internal/models"
)

// AchievementRepository stores which achievements each user has unlocked
type AchievementRepository struct {
	db *DB
}

// NewAchievementRepository creates a new achievement repository
func NewAchievementRepository(db *DB) *AchievementRepository {
	return &AchievementRepository{db: db}
}

// ListByUserID returns the user's unlocked achievements, oldest first
func (r *AchievementRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.UnlockedAchievement, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id, achievement_key, unlocked_at
		FROM user_achievements
		WHERE user_id = $1
		ORDER BY unlocked_at ASC, achievement_key ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query achievements: %w", err)
	}
	defer rows.Close()

	out := []*models.UnlockedAchievement{}
	for rows.Next() {
		u := &models.UnlockedAchievement{}
		if err := rows.Scan(&u.UserID, &u.Key, &u.UnlockedAt); err != nil {
			return nil, fmt.Errorf("failed to scan achievement: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating achievements: %w", err)
	}

	return out, nil
}

func unlockedKeys(ctx context.Context, q querier, userID uuid.UUID) (map[string]bool, error) {
	rows, err := q.QueryContext(ctx, `SELECT achievement_key FROM user_achievements WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query achievements: %w", err)
	}
	defer rows.Close()

	keys := map[string]bool{}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan achievement: %w", err)
		}
		keys[key] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating achievements: %w", err)
	}
	return keys, nil
}

// unlockAchievement records an achievement. Unlocking twice keeps the first timestamp.
func unlockAchievement(ctx context.Context, q querier, userID uuid.UUID, key string, at time.Time) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO user_achievements (user_id, achievement_key, unlocked_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, achievement_key) DO NOTHING
	`, userID, key, at)
	if err != nil {
		return fmt.Errorf("failed to unlock achievement %s: %w", key, err)
	}
	return nil
}

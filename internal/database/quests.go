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

const questColumns = `id, user_id, brain_dump_id, kind, title, description, quest_type, priority, status, steps, metadata, xp_reward, created_at, updated_at, completed_at`

// QuestRepository handles quest database operations
type QuestRepository struct {
	db *DB
}

// NewQuestRepository creates a new quest repository
func NewQuestRepository(db *DB) *QuestRepository {
	return &QuestRepository{db: db}
}

// Create creates a new quest. It returns ErrAlreadyExists when a quest with
// the same ID is already stored.
func (r *QuestRepository) Create(ctx context.Context, quest *models.Quest) error {
	query := `
		INSERT INTO quests (id, user_id, brain_dump_id, kind, title, description, quest_type, priority, status, steps, metadata, xp_reward, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13)
		ON CONFLICT (id) DO NOTHING
		RETURNING created_at, updated_at
	`

	stepsJSON, metadataJSON, err := marshalQuestJSON(quest)
	if err != nil {
		return err
	}

	err = r.db.QueryRowContext(ctx, query,
		quest.ID,
		quest.UserID,
		quest.BrainDumpID,
		quest.Kind,
		quest.Title,
		quest.Description,
		quest.QuestType,
		quest.Priority,
		quest.Status,
		stepsJSON,
		metadataJSON,
		quest.XPReward,
		time.Now(),
	).Scan(&quest.CreatedAt, &quest.UpdatedAt)
	if err == sql.ErrNoRows {
		return fmt.Errorf("quest %w", ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("failed to create quest: %w", err)
	}

	return nil
}

// GetByID retrieves a quest by ID
func (r *QuestRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Quest, error) {
	query := `SELECT ` + questColumns + ` FROM quests WHERE id = $1`

	quest, err := scanQuest(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("quest %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quest: %w", err)
	}
	return quest, nil
}

// GetByUserIDPaginated retrieves a page of a user's quests, optionally filtered by status
func (r *QuestRepository) GetByUserIDPaginated(ctx context.Context, userID uuid.UUID, status *models.QuestStatus, page, pageSize int) ([]*models.Quest, int, error) {
	_, pageSize, offset := NormalizePage(page, pageSize)

	where := ` WHERE user_id = $1`
	args := []any{userID}
	argIndex := 2

	if status != nil {
		where += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, string(*status))
		argIndex++
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM quests`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count quests: %w", err)
	}

	query := `SELECT ` + questColumns + ` FROM quests` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query quests: %w", err)
	}
	defer rows.Close()

	quests := []*models.Quest{}
	for rows.Next() {
		quest, err := scanQuest(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan quest: %w", err)
		}
		quests = append(quests, quest)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating quests: %w", err)
	}

	return quests, total, nil
}

// Update edits a quest that is not completed. Completed quests are frozen and
// return ErrConflict.
func (r *QuestRepository) Update(ctx context.Context, quest *models.Quest) error {
	query := `
		UPDATE quests
		SET title = $2, description = $3, quest_type = $4, priority = $5, status = $6, steps = $7, metadata = $8, xp_reward = $9, updated_at = $10, completed_at = $11
		WHERE id = $1 AND status <> 'completed'
		RETURNING updated_at
	`

	stepsJSON, metadataJSON, err := marshalQuestJSON(quest)
	if err != nil {
		return err
	}

	err = r.db.QueryRowContext(ctx, query,
		quest.ID,
		quest.Title,
		quest.Description,
		quest.QuestType,
		quest.Priority,
		quest.Status,
		stepsJSON,
		metadataJSON,
		quest.XPReward,
		time.Now(),
		toNullTime(quest.CompletedAt),
	).Scan(&quest.UpdatedAt)
	if err == sql.ErrNoRows {
		return r.db.missOrConflict(ctx, "quests", "quest", quest.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to update quest: %w", err)
	}

	return nil
}

// Complete marks a quest completed and stores its steps. Only one caller can
// complete a quest; the rest get ErrConflict.
func (r *QuestRepository) Complete(ctx context.Context, quest *models.Quest, at time.Time) error {
	query := `
		UPDATE quests
		SET status = 'completed', steps = $2, completed_at = $3, updated_at = $3
		WHERE id = $1 AND status <> 'completed'
		RETURNING updated_at
	`

	stepsJSON, _, err := marshalQuestJSON(quest)
	if err != nil {
		return err
	}

	err = r.db.QueryRowContext(ctx, query, quest.ID, stepsJSON, at).Scan(&quest.UpdatedAt)
	if err == sql.ErrNoRows {
		return r.db.missOrConflict(ctx, "quests", "quest", quest.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to complete quest: %w", err)
	}

	quest.Status = models.QuestStatusCompleted
	quest.CompletedAt = &at
	return nil
}

// Delete deletes a quest by ID
func (r *QuestRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM quests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete quest: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("quest %w", ErrNotFound)
	}

	return nil
}

func scanQuest(row rowScanner) (*models.Quest, error) {
	quest := &models.Quest{}
	var brainDumpID uuid.NullUUID
	var stepsJSON, metadataJSON []byte
	var completedAt sql.NullTime

	err := row.Scan(
		&quest.ID,
		&quest.UserID,
		&brainDumpID,
		&quest.Kind,
		&quest.Title,
		&quest.Description,
		&quest.QuestType,
		&quest.Priority,
		&quest.Status,
		&stepsJSON,
		&metadataJSON,
		&quest.XPReward,
		&quest.CreatedAt,
		&quest.UpdatedAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}

	if brainDumpID.Valid {
		id := brainDumpID.UUID
		quest.BrainDumpID = &id
	}
	quest.Steps = []models.QuestStep{}
	if len(stepsJSON) > 0 {
		if err := json.Unmarshal(stepsJSON, &quest.Steps); err != nil {
			return nil, fmt.Errorf("failed to unmarshal steps: %w", err)
		}
	}
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &quest.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}
	quest.CompletedAt = nullTimePtr(completedAt)

	return quest, nil
}

func marshalQuestJSON(quest *models.Quest) ([]byte, []byte, error) {
	steps := quest.Steps
	if steps == nil {
		steps = []models.QuestStep{}
	}
	stepsJSON, err := json.Marshal(steps)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal steps: %w", err)
	}
	metadataJSON, err := json.Marshal(quest.Metadata)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal metadata: %w", err)
	}
	return stepsJSON, metadataJSON, nil
}

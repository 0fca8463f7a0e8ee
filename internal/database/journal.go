package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/benvon/life-rpg/internal/models"
)

// JournalRepository handles journal entry database operations
type JournalRepository struct {
	db *DB
}

// NewJournalRepository creates a new journal repository
func NewJournalRepository(db *DB) *JournalRepository {
	return &JournalRepository{db: db}
}

// Create stores a journal entry. It returns ErrAlreadyExists when an entry
// with the same ID is already stored.
func (r *JournalRepository) Create(ctx context.Context, entry *models.JournalEntry) error {
	query := `
		INSERT INTO journal_entries (id, user_id, brain_dump_id, kind, body, mood, tags, entry_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
		RETURNING created_at
	`

	tags := entry.Tags
	if tags == nil {
		tags = []string{}
	}

	err := r.db.QueryRowContext(ctx, query,
		entry.ID,
		entry.UserID,
		entry.BrainDumpID,
		entry.Kind,
		entry.Body,
		string(entry.Mood),
		pq.Array(tags),
		entry.EntryDate,
		time.Now(),
	).Scan(&entry.CreatedAt)
	if err == sql.ErrNoRows {
		return fmt.Errorf("journal entry %w", ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("failed to create journal entry: %w", err)
	}

	return nil
}

// GetByUserIDPaginated returns a page of a user's journal, newest entry date first
func (r *JournalRepository) GetByUserIDPaginated(ctx context.Context, userID uuid.UUID, kind *models.JournalKind, page, pageSize int) ([]*models.JournalEntry, int, error) {
	_, pageSize, offset := NormalizePage(page, pageSize)

	where := ` WHERE user_id = $1`
	args := []any{userID}
	if kind != nil {
		where += ` AND kind = $2`
		args = append(args, string(*kind))
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM journal_entries`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count journal entries: %w", err)
	}

	query := `SELECT id, user_id, brain_dump_id, kind, body, mood, tags, entry_date, created_at FROM journal_entries` + where +
		fmt.Sprintf(` ORDER BY entry_date DESC, created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query journal entries: %w", err)
	}
	defer rows.Close()

	entries := []*models.JournalEntry{}
	for rows.Next() {
		e := &models.JournalEntry{}
		var brainDumpID uuid.NullUUID
		var mood string
		var tags pq.StringArray
		if err := rows.Scan(&e.ID, &e.UserID, &brainDumpID, &e.Kind, &e.Body, &mood, &tags, &e.EntryDate, &e.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		if brainDumpID.Valid {
			id := brainDumpID.UUID
			e.BrainDumpID = &id
		}
		e.Mood = models.Mood(mood)
		e.Tags = []string(tags)
		if e.Tags == nil {
			e.Tags = []string{}
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating journal entries: %w", err)
	}

	return entries, total, nil
}

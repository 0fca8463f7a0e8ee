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

const brainDumpColumns = `id, user_id, raw_text, status, classification, companion_note, error, created_at, updated_at, processed_at`

// BrainDumpRepository handles brain dump database operations
type BrainDumpRepository struct {
	db *DB
}

// NewBrainDumpRepository creates a new brain dump repository
func NewBrainDumpRepository(db *DB) *BrainDumpRepository {
	return &BrainDumpRepository{db: db}
}

// Create stores a new brain dump
func (r *BrainDumpRepository) Create(ctx context.Context, dump *models.BrainDump) error {
	query := `
		INSERT INTO brain_dumps (id, user_id, raw_text, status, classification, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING created_at, updated_at
	`

	classificationJSON, err := marshalClassification(dump.Classification)
	if err != nil {
		return err
	}

	err = r.db.QueryRowContext(ctx, query,
		dump.ID,
		dump.UserID,
		dump.RawText,
		dump.Status,
		classificationJSON,
		time.Now(),
	).Scan(&dump.CreatedAt, &dump.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create brain dump: %w", err)
	}

	return nil
}

// GetByID retrieves a brain dump by ID
func (r *BrainDumpRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.BrainDump, error) {
	query := `SELECT ` + brainDumpColumns + ` FROM brain_dumps WHERE id = $1`

	dump, err := scanBrainDump(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("brain dump %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get brain dump: %w", err)
	}
	return dump, nil
}

// Update persists status, classification and processing results. A processed
// dump never moves back to another status; such updates return ErrConflict.
func (r *BrainDumpRepository) Update(ctx context.Context, dump *models.BrainDump) error {
	query := `
		UPDATE brain_dumps
		SET status = $2, classification = $3, companion_note = $4, error = $5, processed_at = $6, updated_at = $7
		WHERE id = $1 AND (status <> 'processed' OR $2::text = 'processed')
		RETURNING updated_at
	`

	classificationJSON, err := marshalClassification(dump.Classification)
	if err != nil {
		return err
	}

	err = r.db.QueryRowContext(ctx, query,
		dump.ID,
		dump.Status,
		classificationJSON,
		dump.CompanionNote,
		dump.Error,
		toNullTime(dump.ProcessedAt),
		time.Now(),
	).Scan(&dump.UpdatedAt)
	if err == sql.ErrNoRows {
		return r.db.missOrConflict(ctx, "brain_dumps", "brain dump", dump.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to update brain dump: %w", err)
	}

	return nil
}

// ListByUserIDPaginated returns a page of a user's brain dumps, newest first,
// and the total count
func (r *BrainDumpRepository) ListByUserIDPaginated(ctx context.Context, userID uuid.UUID, status *models.BrainDumpStatus, page, pageSize int) ([]*models.BrainDump, int, error) {
	_, pageSize, offset := NormalizePage(page, pageSize)

	where := ` WHERE user_id = $1`
	args := []any{userID}
	if status != nil {
		where += ` AND status = $2`
		args = append(args, string(*status))
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM brain_dumps`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count brain dumps: %w", err)
	}

	query := `SELECT ` + brainDumpColumns + ` FROM brain_dumps` + where +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query brain dumps: %w", err)
	}
	defer rows.Close()

	dumps := []*models.BrainDump{}
	for rows.Next() {
		dump, err := scanBrainDump(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan brain dump: %w", err)
		}
		dumps = append(dumps, dump)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating brain dumps: %w", err)
	}

	return dumps, total, nil
}

func scanBrainDump(row rowScanner) (*models.BrainDump, error) {
	dump := &models.BrainDump{}
	var classificationJSON []byte
	var companionNote, errMsg sql.NullString
	var processedAt sql.NullTime

	err := row.Scan(
		&dump.ID,
		&dump.UserID,
		&dump.RawText,
		&dump.Status,
		&classificationJSON,
		&companionNote,
		&errMsg,
		&dump.CreatedAt,
		&dump.UpdatedAt,
		&processedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(classificationJSON) > 0 && string(classificationJSON) != "null" {
		dump.Classification = &models.ClassificationResult{}
		if err := json.Unmarshal(classificationJSON, dump.Classification); err != nil {
			return nil, fmt.Errorf("failed to unmarshal classification: %w", err)
		}
	}
	if companionNote.Valid {
		dump.CompanionNote = &companionNote.String
	}
	if errMsg.Valid {
		dump.Error = &errMsg.String
	}
	dump.ProcessedAt = nullTimePtr(processedAt)

	return dump, nil
}

func marshalClassification(c *models.ClassificationResult) ([]byte, error) {
	if c == nil {
		return nil, nil
	}
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal classification: %w", err)
	}
	return data, nil
}

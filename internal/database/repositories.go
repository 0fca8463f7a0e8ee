package database

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/benvon/life-rpg/internal/models"
)

// UserRepositoryInterface defines the interface for user repository operations
type UserRepositoryInterface interface {
	GetOrCreateByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// BrainDumpRepositoryInterface defines the interface for brain dump repository operations
type BrainDumpRepositoryInterface interface {
	Create(ctx context.Context, dump *models.BrainDump) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.BrainDump, error)
	Update(ctx context.Context, dump *models.BrainDump) error
	ListByUserIDPaginated(ctx context.Context, userID uuid.UUID, status *models.BrainDumpStatus, page, pageSize int) ([]*models.BrainDump, int, error)
}

// QuestRepositoryInterface defines the interface for quest repository operations
// This interface enables better testability by allowing mock implementations
type QuestRepositoryInterface interface {
	Create(ctx context.Context, quest *models.Quest) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Quest, error)
	Update(ctx context.Context, quest *models.Quest) error
	Complete(ctx context.Context, quest *models.Quest, at time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByUserIDPaginated(ctx context.Context, userID uuid.UUID, status *models.QuestStatus, page, pageSize int) ([]*models.Quest, int, error)
}

// JournalRepositoryInterface defines the interface for journal repository operations
type JournalRepositoryInterface interface {
	Create(ctx context.Context, entry *models.JournalEntry) error
	GetByUserIDPaginated(ctx context.Context, userID uuid.UUID, kind *models.JournalKind, page, pageSize int) ([]*models.JournalEntry, int, error)
}

// CharacterRepositoryInterface defines the interface for character repository operations
type CharacterRepositoryInterface interface {
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.Character, error)
	Progress(ctx context.Context, userID uuid.UUID, at time.Time, fn ProgressFunc) (*models.Character, error)
	ResetStaleStreaks(ctx context.Context, cutoff time.Time) (int64, error)
}

// AchievementRepositoryInterface defines the interface for unlocked achievement operations
type AchievementRepositoryInterface interface {
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.UnlockedAchievement, error)
}

// Ensure concrete types implement the interfaces
var (
	_ UserRepositoryInterface        = (*UserRepository)(nil)
	_ BrainDumpRepositoryInterface   = (*BrainDumpRepository)(nil)
	_ QuestRepositoryInterface       = (*QuestRepository)(nil)
	_ JournalRepositoryInterface     = (*JournalRepository)(nil)
	_ CharacterRepositoryInterface   = (*CharacterRepository)(nil)
	_ AchievementRepositoryInterface = (*AchievementRepository)(nil)
)

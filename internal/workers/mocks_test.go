package workers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/benvon/life-rpg/internal/database"
	"github.com/benvon/life-rpg/internal/models"
	"github.com/benvon/life-rpg/internal/queue"
	"github.com/benvon/life-rpg/internal/services/ai"
	"github.com/benvon/life-rpg/internal/services/quests"
)

// mockMessage records how the processor settled a job
type mockMessage struct {
	job     *queue.Job
	acked   bool
	nacked  bool
	requeue bool
}

func (m *mockMessage) Ack() error {
	m.acked = true
	return nil
}

func (m *mockMessage) Nack(requeue bool) error {
	m.nacked = true
	m.requeue = requeue
	return nil
}

func (m *mockMessage) GetJob() *queue.Job {
	return m.job
}

var _ queue.MessageInterface = (*mockMessage)(nil)

type mockBrainDumpRepo struct {
	mu         sync.Mutex
	dumps      map[uuid.UUID]*models.BrainDump
	getErr     error
	updateFunc func(ctx context.Context, dump *models.BrainDump) error
	updates    int
}

func newMockBrainDumpRepo(dumps ...*models.BrainDump) *mockBrainDumpRepo {
	m := &mockBrainDumpRepo{dumps: make(map[uuid.UUID]*models.BrainDump)}
	for _, d := range dumps {
		out := *d
		m.dumps[d.ID] = &out
	}
	return m
}

func (m *mockBrainDumpRepo) Create(ctx context.Context, dump *models.BrainDump) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := *dump
	m.dumps[dump.ID] = &out
	return nil
}

// GetByID returns a copy, so changes only stick through Update
func (m *mockBrainDumpRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.BrainDump, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	d, ok := m.dumps[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	out := *d
	return &out, nil
}

// Update stores a copy and refuses to move a processed dump back, like the
// guarded UPDATE does
func (m *mockBrainDumpRepo) Update(ctx context.Context, dump *models.BrainDump) error {
	m.mu.Lock()
	m.updates++
	m.mu.Unlock()
	if m.updateFunc != nil {
		if err := m.updateFunc(ctx, dump); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.dumps[dump.ID]
	if !ok {
		return fmt.Errorf("brain dump %w", database.ErrNotFound)
	}
	if stored.Status == models.BrainDumpStatusProcessed && dump.Status != models.BrainDumpStatusProcessed {
		return fmt.Errorf("brain dump %w", database.ErrConflict)
	}
	out := *dump
	m.dumps[dump.ID] = &out
	return nil
}

func (m *mockBrainDumpRepo) get(id uuid.UUID) *models.BrainDump {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := *m.dumps[id]
	return &out
}

func (m *mockBrainDumpRepo) ListByUserIDPaginated(ctx context.Context, userID uuid.UUID, status *models.BrainDumpStatus, page, pageSize int) ([]*models.BrainDump, int, error) {
	return nil, 0, nil
}

var _ database.BrainDumpRepositoryInterface = (*mockBrainDumpRepo)(nil)

type mockMaterializer struct {
	applyFunc func(ctx context.Context, dump *models.BrainDump) (*quests.Result, error)
	calls     int
}

func (m *mockMaterializer) Apply(ctx context.Context, dump *models.BrainDump) (*quests.Result, error) {
	m.calls++
	if m.applyFunc != nil {
		return m.applyFunc(ctx, dump)
	}
	return &quests.Result{Action: dump.Classification.SuggestedAction}, nil
}

var _ Materializer = (*mockMaterializer)(nil)

type mockEnqueuer struct {
	mu   sync.Mutex
	jobs []*queue.Job
	err  error
}

func (m *mockEnqueuer) Enqueue(ctx context.Context, job *queue.Job) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs = append(m.jobs, job)
	return nil
}

// mockQuestStore stores quests by ID and rejects a taken ID the way the
// primary key does
type mockQuestStore struct {
	mu     sync.Mutex
	quests map[uuid.UUID]*models.Quest
}

func newMockQuestStore() *mockQuestStore {
	return &mockQuestStore{quests: make(map[uuid.UUID]*models.Quest)}
}

func (m *mockQuestStore) Create(ctx context.Context, q *models.Quest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.quests[q.ID]; ok {
		return fmt.Errorf("quest %w", database.ErrAlreadyExists)
	}
	m.quests[q.ID] = q
	return nil
}

func (m *mockQuestStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Quest, error) {
	return nil, database.ErrNotFound
}

func (m *mockQuestStore) Update(ctx context.Context, q *models.Quest) error { return nil }

func (m *mockQuestStore) Complete(ctx context.Context, q *models.Quest, at time.Time) error {
	return nil
}

func (m *mockQuestStore) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (m *mockQuestStore) GetByUserIDPaginated(ctx context.Context, userID uuid.UUID, status *models.QuestStatus, page, pageSize int) ([]*models.Quest, int, error) {
	return nil, 0, nil
}

func (m *mockQuestStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.quests)
}

type mockJournalStore struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*models.JournalEntry
}

func newMockJournalStore() *mockJournalStore {
	return &mockJournalStore{entries: make(map[uuid.UUID]*models.JournalEntry)}
}

func (m *mockJournalStore) Create(ctx context.Context, e *models.JournalEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[e.ID]; ok {
		return fmt.Errorf("journal entry %w", database.ErrAlreadyExists)
	}
	m.entries[e.ID] = e
	return nil
}

func (m *mockJournalStore) GetByUserIDPaginated(ctx context.Context, userID uuid.UUID, kind *models.JournalKind, page, pageSize int) ([]*models.JournalEntry, int, error) {
	return nil, 0, nil
}

func (m *mockJournalStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

var (
	_ database.QuestRepositoryInterface   = (*mockQuestStore)(nil)
	_ database.JournalRepositoryInterface = (*mockJournalStore)(nil)
)

var _ queue.Enqueuer = (*mockEnqueuer)(nil)

type mockCompanion struct {
	note string
	err  error
}

func (m *mockCompanion) CompanionNote(ctx context.Context, text string, result *models.ClassificationResult) (string, error) {
	return m.note, m.err
}

var _ ai.CompanionProvider = (*mockCompanion)(nil)

type mockStreakResetter struct {
	cutoffs []time.Time
	count   int64
	err     error
}

func (m *mockStreakResetter) ResetStaleStreaks(ctx context.Context, cutoff time.Time) (int64, error) {
	m.cutoffs = append(m.cutoffs, cutoff)
	return m.count, m.err
}

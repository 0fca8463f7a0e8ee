package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/benvon/life-rpg/internal/database"
	"github.com/benvon/life-rpg/internal/models"
	"github.com/benvon/life-rpg/internal/queue"
	"github.com/benvon/life-rpg/internal/request"
	"github.com/benvon/life-rpg/internal/services/progression"
)

type mockBrainDumpRepo struct {
	mu        sync.Mutex
	dumps     map[uuid.UUID]*models.BrainDump
	createErr error
	updateErr error
	listFunc  func(ctx context.Context, userID uuid.UUID, status *models.BrainDumpStatus, page, pageSize int) ([]*models.BrainDump, int, error)
}

func newMockBrainDumpRepo(dumps ...*models.BrainDump) *mockBrainDumpRepo {
	m := &mockBrainDumpRepo{dumps: make(map[uuid.UUID]*models.BrainDump)}
	for _, d := range dumps {
		m.dumps[d.ID] = d
	}
	return m
}

func (m *mockBrainDumpRepo) Create(ctx context.Context, dump *models.BrainDump) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dumps[dump.ID] = dump
	return nil
}

func (m *mockBrainDumpRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.BrainDump, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.dumps[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return d, nil
}

func (m *mockBrainDumpRepo) Update(ctx context.Context, dump *models.BrainDump) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dumps[dump.ID] = dump
	return nil
}

func (m *mockBrainDumpRepo) ListByUserIDPaginated(ctx context.Context, userID uuid.UUID, status *models.BrainDumpStatus, page, pageSize int) ([]*models.BrainDump, int, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, userID, status, page, pageSize)
	}
	return nil, 0, nil
}

type mockQuestRepo struct {
	mu        sync.Mutex
	quests    map[uuid.UUID]*models.Quest
	updateErr error
	deleted   []uuid.UUID
	listFunc  func(ctx context.Context, userID uuid.UUID, status *models.QuestStatus, page, pageSize int) ([]*models.Quest, int, error)
}

func newMockQuestRepo(quests ...*models.Quest) *mockQuestRepo {
	m := &mockQuestRepo{quests: make(map[uuid.UUID]*models.Quest)}
	for _, q := range quests {
		m.quests[q.ID] = q
	}
	return m
}

func (m *mockQuestRepo) Create(ctx context.Context, quest *models.Quest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quests[quest.ID] = quest
	return nil
}

func cloneQuest(q *models.Quest) *models.Quest {
	out := *q
	out.Steps = append([]models.QuestStep(nil), q.Steps...)
	return &out
}

// GetByID returns a copy, as a database read would
func (m *mockQuestRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Quest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.quests[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return cloneQuest(q), nil
}

func (m *mockQuestRepo) Update(ctx context.Context, quest *models.Quest) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if stored, ok := m.quests[quest.ID]; ok && stored.Status == models.QuestStatusCompleted {
		return fmt.Errorf("quest %w", database.ErrConflict)
	}
	m.quests[quest.ID] = cloneQuest(quest)
	return nil
}

func (m *mockQuestRepo) Complete(ctx context.Context, quest *models.Quest, at time.Time) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.quests[quest.ID]
	if !ok {
		return fmt.Errorf("quest %w", database.ErrNotFound)
	}
	if stored.Status == models.QuestStatusCompleted {
		return fmt.Errorf("quest %w", database.ErrConflict)
	}
	quest.Status = models.QuestStatusCompleted
	quest.CompletedAt = &at
	m.quests[quest.ID] = cloneQuest(quest)
	return nil
}

func (m *mockQuestRepo) get(id uuid.UUID) *models.Quest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneQuest(m.quests[id])
}

func (m *mockQuestRepo) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.quests, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockQuestRepo) GetByUserIDPaginated(ctx context.Context, userID uuid.UUID, status *models.QuestStatus, page, pageSize int) ([]*models.Quest, int, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, userID, status, page, pageSize)
	}
	return nil, 0, nil
}

type mockJournalRepo struct {
	listFunc func(ctx context.Context, userID uuid.UUID, kind *models.JournalKind, page, pageSize int) ([]*models.JournalEntry, int, error)
}

func (m *mockJournalRepo) Create(ctx context.Context, entry *models.JournalEntry) error { return nil }

func (m *mockJournalRepo) GetByUserIDPaginated(ctx context.Context, userID uuid.UUID, kind *models.JournalKind, page, pageSize int) ([]*models.JournalEntry, int, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, userID, kind, page, pageSize)
	}
	return nil, 0, nil
}

type mockCharacterRepo struct {
	character *models.Character
	err       error
}

func (m *mockCharacterRepo) GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.Character, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.character == nil {
		return &models.Character{UserID: userID, Level: 1, SkillXP: map[string]int{}}, nil
	}
	return m.character, nil
}

func (m *mockCharacterRepo) Progress(ctx context.Context, userID uuid.UUID, at time.Time, fn database.ProgressFunc) (*models.Character, error) {
	c, err := m.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err := fn(c, map[string]bool{}); err != nil {
		return nil, err
	}
	return c, nil
}

func (m *mockCharacterRepo) ResetStaleStreaks(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

type mockAchievementRepo struct {
	unlocked []*models.UnlockedAchievement
}

func (m *mockAchievementRepo) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.UnlockedAchievement, error) {
	return m.unlocked, nil
}

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

type mockActivity struct {
	calls   int
	outcome *progression.Outcome
	err     error
}

func (m *mockActivity) RecordBrainDump(ctx context.Context, userID uuid.UUID) (*progression.Outcome, error) {
	m.calls++
	return m.outcome, m.err
}

type mockCompleter struct {
	mu        sync.Mutex
	completed []*models.Quest
	err       error
}

func (m *mockCompleter) CompleteQuest(ctx context.Context, quest *models.Quest) (*progression.Outcome, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completed = append(m.completed, quest)
	return &progression.Outcome{XPAwarded: quest.XPReward}, nil
}

var (
	_ database.BrainDumpRepositoryInterface   = (*mockBrainDumpRepo)(nil)
	_ database.QuestRepositoryInterface       = (*mockQuestRepo)(nil)
	_ database.JournalRepositoryInterface     = (*mockJournalRepo)(nil)
	_ database.CharacterRepositoryInterface   = (*mockCharacterRepo)(nil)
	_ database.AchievementRepositoryInterface = (*mockAchievementRepo)(nil)
	_ queue.Enqueuer                          = (*mockEnqueuer)(nil)
	_ ActivityRecorder                        = (*mockActivity)(nil)
	_ QuestCompleter                          = (*mockCompleter)(nil)
)

// serveAs routes req through a router built by register, with user in context.
func serveAs(user *models.User, register func(r *mux.Router), req *http.Request) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	register(r)
	if user != nil {
		req = req.WithContext(request.WithUser(req.Context(), user))
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// envelope is the success/error wrapper every API response uses
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder, data any) envelope {
	t.Helper()
	var env envelope
	if err := json.NewDecoder(w.Body).Decode(&env); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if data != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, data); err != nil {
			t.Fatalf("Failed to decode data: %v", err)
		}
	}
	return env
}

func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Failed to marshal body: %v", err)
	}
	return bytes.NewReader(b)
}

package quests

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/benvon/life-rpg/internal/database"
	"github.com/benvon/life-rpg/internal/models"
	"github.com/benvon/life-rpg/internal/services/braindump"
)

type mockQuestRepo struct {
	created    []*models.Quest
	createFunc func(ctx context.Context, q *models.Quest) error
}

// Create rejects a taken ID the way the primary key does
func (m *mockQuestRepo) Create(ctx context.Context, q *models.Quest) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, q)
	}
	for _, existing := range m.created {
		if existing.ID == q.ID {
			return database.ErrAlreadyExists
		}
	}
	m.created = append(m.created, q)
	return nil
}

func (m *mockQuestRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Quest, error) {
	return nil, database.ErrNotFound
}

func (m *mockQuestRepo) Update(ctx context.Context, q *models.Quest) error { return nil }

func (m *mockQuestRepo) Complete(ctx context.Context, q *models.Quest, at time.Time) error { return nil }

func (m *mockQuestRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (m *mockQuestRepo) GetByUserIDPaginated(ctx context.Context, userID uuid.UUID, status *models.QuestStatus, page, pageSize int) ([]*models.Quest, int, error) {
	return nil, 0, nil
}

var _ database.QuestRepositoryInterface = (*mockQuestRepo)(nil)

type mockJournalRepo struct {
	created []*models.JournalEntry
}

func (m *mockJournalRepo) Create(ctx context.Context, e *models.JournalEntry) error {
	for _, existing := range m.created {
		if existing.ID == e.ID {
			return database.ErrAlreadyExists
		}
	}
	m.created = append(m.created, e)
	return nil
}

func (m *mockJournalRepo) GetByUserIDPaginated(ctx context.Context, userID uuid.UUID, kind *models.JournalKind, page, pageSize int) ([]*models.JournalEntry, int, error) {
	return nil, 0, nil
}

var _ database.JournalRepositoryInterface = (*mockJournalRepo)(nil)

func classifiedDump(text string) *models.BrainDump {
	return &models.BrainDump{
		ID:             uuid.New(),
		UserID:         uuid.New(),
		RawText:        text,
		Status:         models.BrainDumpStatusClassified,
		Classification: braindump.Classify(text),
	}
}

func newTestMaterializer() (*Materializer, *mockQuestRepo, *mockJournalRepo) {
	q := &mockQuestRepo{}
	j := &mockJournalRepo{}
	m := NewMaterializer(q, j)
	m.now = func() time.Time { return time.Date(2026, time.June, 3, 15, 4, 5, 0, time.UTC) }
	return m, q, j
}

func TestMaterializer_Apply(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		text        string
		wantAction  models.SuggestedAction
		wantQuests  int
		wantJournal int
		validate    func(*testing.T, *Result)
	}{
		{
			name:        "create quest with steps",
			text:        "I need to file taxes. I must call mom today",
			wantAction:  models.ActionCreateQuest,
			wantQuests:  1,
			wantJournal: 0,
			validate: func(t *testing.T, r *Result) {
				q := r.Quests[0]
				if q.Kind != models.QuestKindQuest {
					t.Errorf("Expected quest kind, got %s", q.Kind)
				}
				if len(q.Steps) != 2 {
					t.Fatalf("Expected 2 steps, got %d", len(q.Steps))
				}
				if q.Steps[0].Text != "file taxes" {
					t.Errorf("Expected first step 'file taxes', got %q", q.Steps[0].Text)
				}
				if q.XPReward <= 0 {
					t.Errorf("Expected positive XP reward, got %d", q.XPReward)
				}
				if q.Status != models.QuestStatusActive {
					t.Errorf("Expected active status, got %s", q.Status)
				}
			},
		},
		{
			name:        "create task per extracted task",
			text:        "I should water plants",
			wantAction:  models.ActionCreateTask,
			wantQuests:  1,
			wantJournal: 0,
			validate: func(t *testing.T, r *Result) {
				q := r.Quests[0]
				if q.Kind != models.QuestKindTask || q.Title != "water plants" {
					t.Errorf("Expected task 'water plants', got %s %q", q.Kind, q.Title)
				}
				if q.XPReward != 15 {
					t.Errorf("Expected 15 XP for a low priority task, got %d", q.XPReward)
				}
				if q.Metadata.TagSources["general"] != models.TagSourceClassifier {
					t.Errorf("Expected classifier tag source, got %v", q.Metadata.TagSources)
				}
			},
		},
		{
			name:        "reminder journal entry",
			text:        "remember the library books",
			wantAction:  models.ActionCreateReminder,
			wantJournal: 1,
			validate: func(t *testing.T, r *Result) {
				if r.Journal[0].Kind != models.JournalKindReminder {
					t.Errorf("Expected reminder, got %s", r.Journal[0].Kind)
				}
			},
		},
		{
			name:        "reflection keeps mood",
			text:        "feeling sad and lonely tonight",
			wantAction:  models.ActionAddToReflection,
			wantJournal: 1,
			validate: func(t *testing.T, r *Result) {
				e := r.Journal[0]
				if e.Kind != models.JournalKindReflection || e.Mood != models.MoodBad {
					t.Errorf("Expected reflection with bad mood, got %s %s", e.Kind, e.Mood)
				}
				if !e.EntryDate.Equal(time.Date(2026, time.June, 3, 0, 0, 0, 0, time.UTC)) {
					t.Errorf("Expected entry date truncated to the day, got %v", e.EntryDate)
				}
			},
		},
		{
			name:        "note",
			text:        "xyz abc qqq",
			wantAction:  models.ActionAddNote,
			wantJournal: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m, questRepo, journalRepo := newTestMaterializer()
			dump := classifiedDump(tt.text)

			result, err := m.Apply(context.Background(), dump)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if result.Action != tt.wantAction {
				t.Fatalf("Expected action %s, got %s", tt.wantAction, result.Action)
			}
			if len(result.Quests) != tt.wantQuests || len(questRepo.created) != tt.wantQuests {
				t.Errorf("Expected %d quests, got %d (stored %d)", tt.wantQuests, len(result.Quests), len(questRepo.created))
			}
			if len(result.Journal) != tt.wantJournal || len(journalRepo.created) != tt.wantJournal {
				t.Errorf("Expected %d journal entries, got %d (stored %d)", tt.wantJournal, len(result.Journal), len(journalRepo.created))
			}
			for _, q := range result.Quests {
				if q.BrainDumpID == nil || *q.BrainDumpID != dump.ID || q.UserID != dump.UserID {
					t.Error("Expected quest linked to the brain dump and its user")
				}
			}
			if tt.validate != nil {
				tt.validate(t, result)
			}
		})
	}
}

func TestMaterializer_Ignore(t *testing.T) {
	t.Parallel()

	m, questRepo, journalRepo := newTestMaterializer()
	dump := classifiedDump("anything")
	dump.Classification.SuggestedAction = models.ActionIgnore

	result, err := m.Apply(context.Background(), dump)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(result.Quests)+len(result.Journal)+len(questRepo.created)+len(journalRepo.created) != 0 {
		t.Error("Expected nothing to be created for ignore")
	}
}

func TestMaterializer_Errors(t *testing.T) {
	t.Parallel()

	m, questRepo, _ := newTestMaterializer()

	if _, err := m.Apply(context.Background(), &models.BrainDump{RawText: "x"}); !errors.Is(err, ErrNotClassified) {
		t.Errorf("Expected ErrNotClassified, got %v", err)
	}

	questRepo.createFunc = func(ctx context.Context, q *models.Quest) error {
		return errors.New("insert failed")
	}
	if _, err := m.Apply(context.Background(), classifiedDump("I should water plants")); err == nil {
		t.Error("Expected error when quest creation fails")
	}
}

func TestTitle(t *testing.T) {
	t.Parallel()

	if got := Title("  first line\nsecond line"); got != "first line" {
		t.Errorf("Expected 'first line', got %q", got)
	}

	long := strings.Repeat("é", 120)
	got := Title(long)
	if len([]rune(got)) != MaxTitleLength || !strings.HasSuffix(got, "...") {
		t.Errorf("Expected %d-character title ending in ..., got %d characters", MaxTitleLength, len([]rune(got)))
	}
}

func TestMaterializer_PlanDoesNotStore(t *testing.T) {
	t.Parallel()

	m, questRepo, journalRepo := newTestMaterializer()
	dump := classifiedDump("I need to email the landlord, then call the bank and then pay rent")

	result, err := m.Plan(dump)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(result.Quests)+len(result.Journal) == 0 {
		t.Fatal("Expected the plan to contain at least one record")
	}
	if len(questRepo.created)+len(journalRepo.created) != 0 {
		t.Error("Expected Plan not to touch the repositories")
	}

	unknown := classifiedDump("x")
	unknown.Classification.SuggestedAction = "shout"
	if _, err := m.Plan(unknown); err == nil {
		t.Error("Expected error for unknown suggested action")
	}
}

func TestMaterializer_ApplyIsIdempotent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
	}{
		{"quest", "I need to file taxes. I must call mom today"},
		{"task", "I should water plants"},
		{"journal entry", "remember the library books"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m, questRepo, journalRepo := newTestMaterializer()
			dump := classifiedDump(tt.text)

			first, err := m.Apply(context.Background(), dump)
			if err != nil {
				t.Fatalf("Apply: %v", err)
			}
			stored := len(questRepo.created) + len(journalRepo.created)
			if stored == 0 || first.Existing != 0 {
				t.Fatalf("Expected fresh records on first apply, got %d stored and %d existing", stored, first.Existing)
			}

			again, err := m.Apply(context.Background(), dump)
			if err != nil {
				t.Fatalf("Apply again: %v", err)
			}
			if got := len(questRepo.created) + len(journalRepo.created); got != stored {
				t.Errorf("Expected %d stored records after a second apply, got %d", stored, got)
			}
			if again.Existing != stored {
				t.Errorf("Expected %d existing records, got %d", stored, again.Existing)
			}
		})
	}
}

func TestRecordID(t *testing.T) {
	t.Parallel()

	a, b := uuid.New(), uuid.New()
	if RecordID(a, "task", 0) != RecordID(a, "task", 0) {
		t.Error("Expected the same ID for the same dump, kind and index")
	}
	if RecordID(a, "task", 0) == RecordID(a, "task", 1) {
		t.Error("Expected different IDs for different indexes")
	}
	if RecordID(a, "task", 0) == RecordID(b, "task", 0) {
		t.Error("Expected different IDs for different dumps")
	}
	if RecordID(a, "task", 0) == RecordID(a, "quest", 0) {
		t.Error("Expected different IDs for different kinds")
	}
}

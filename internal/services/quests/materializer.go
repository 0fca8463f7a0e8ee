// Package quests turns classified brain dumps into quests, tasks and journal
// entries.
package quests

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/benvon/life-rpg/internal/database"
	"github.com/benvon/life-rpg/internal/models"
	"github.com/benvon/life-rpg/internal/services/progression"
)

// MaxTitleLength is the longest title derived from free text, in characters
const MaxTitleLength = 80

// ErrNotClassified is returned when a brain dump has no classification yet
var ErrNotClassified = errors.New("brain dump has not been classified")

// Result lists the records created for one brain dump. Existing counts the
// records an earlier attempt had already stored.
type Result struct {
	Action   models.SuggestedAction `json:"action"`
	Quests   []*models.Quest        `json:"quests"`
	Journal  []*models.JournalEntry `json:"journal"`
	Existing int                    `json:"existing,omitempty"`
}

// Materializer creates quest and journal records from a classification
type Materializer struct {
	quests  database.QuestRepositoryInterface
	journal database.JournalRepositoryInterface
	now     func() time.Time
}

// NewMaterializer creates a new materializer
func NewMaterializer(quests database.QuestRepositoryInterface, journal database.JournalRepositoryInterface) *Materializer {
	return &Materializer{
		quests:  quests,
		journal: journal,
		now:     time.Now,
	}
}

// Plan builds the records the classification's suggested action would
// create for dump without storing them.
func (m *Materializer) Plan(dump *models.BrainDump) (*Result, error) {
	c := dump.Classification
	if c == nil {
		return nil, ErrNotClassified
	}

	result := &Result{
		Action:  c.SuggestedAction,
		Quests:  []*models.Quest{},
		Journal: []*models.JournalEntry{},
	}

	switch c.SuggestedAction {
	case models.ActionCreateQuest:
		result.Quests = append(result.Quests, m.buildQuest(dump))
	case models.ActionCreateTask:
		result.Quests = append(result.Quests, m.buildTasks(dump)...)
	case models.ActionCreateReminder:
		result.Journal = append(result.Journal, m.buildEntry(dump, models.JournalKindReminder))
	case models.ActionAddToReflection:
		result.Journal = append(result.Journal, m.buildEntry(dump, models.JournalKindReflection))
	case models.ActionAddNote:
		result.Journal = append(result.Journal, m.buildEntry(dump, models.JournalKindNote))
	case models.ActionIgnore:
	default:
		return nil, fmt.Errorf("unknown suggested action: %s", c.SuggestedAction)
	}

	return result, nil
}

// Apply performs the classification's suggested action for dump. Record IDs
// derive from the dump, so applying the same dump again stores nothing new.
func (m *Materializer) Apply(ctx context.Context, dump *models.BrainDump) (*Result, error) {
	result, err := m.Plan(dump)
	if err != nil {
		return nil, err
	}

	for _, q := range result.Quests {
		err := m.quests.Create(ctx, q)
		if errors.Is(err, database.ErrAlreadyExists) {
			result.Existing++
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", q.Kind, err)
		}
	}
	for _, e := range result.Journal {
		err := m.journal.Create(ctx, e)
		if errors.Is(err, database.ErrAlreadyExists) {
			result.Existing++
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create %s journal entry: %w", e.Kind, err)
		}
	}

	return result, nil
}

// RecordID is the ID of the n-th record of kind created from dumpID
func RecordID(dumpID uuid.UUID, kind string, n int) uuid.UUID {
	return uuid.NewSHA1(dumpID, []byte(fmt.Sprintf("%s/%d", kind, n)))
}

func (m *Materializer) newQuest(dump *models.BrainDump, kind models.QuestKind, n int, title string) *models.Quest {
	c := dump.Classification
	now := m.now()
	dumpID := dump.ID

	q := &models.Quest{
		ID:          RecordID(dump.ID, string(kind), n),
		UserID:      dump.UserID,
		BrainDumpID: &dumpID,
		Kind:        kind,
		Title:       title,
		QuestType:   c.SuggestedQuestType,
		Priority:    c.Priority,
		Status:      models.QuestStatusActive,
		Steps:       []models.QuestStep{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	q.Metadata.MergeTags(c.Tags, nil)
	q.Metadata.SkillTrees = append([]string(nil), c.SuggestedSkillTrees...)
	return q
}

func (m *Materializer) buildQuest(dump *models.BrainDump) *models.Quest {
	c := dump.Classification
	q := m.newQuest(dump, models.QuestKindQuest, 0, Title(dump.RawText))
	q.Description = c.Interpretation
	for _, t := range c.ExtractedTasks {
		q.Steps = append(q.Steps, models.QuestStep{
			Text:     t.Text,
			Urgency:  t.Urgency,
			Category: t.Category,
		})
	}
	q.XPReward = progression.QuestXP(q.Kind, q.QuestType, q.Priority, len(q.Steps))
	return q
}

func (m *Materializer) buildTasks(dump *models.BrainDump) []*models.Quest {
	c := dump.Classification
	tasks := c.ExtractedTasks
	if len(tasks) == 0 {
		tasks = []models.ExtractedTask{{Text: dump.RawText, Urgency: c.DetectedUrgency}}
	}

	out := make([]*models.Quest, 0, len(tasks))
	for i, t := range tasks {
		q := m.newQuest(dump, models.QuestKindTask, i, Title(t.Text))
		if t.Category != "" {
			q.Metadata.MergeTags([]string{t.Category}, nil)
		}
		q.XPReward = progression.QuestXP(q.Kind, q.QuestType, q.Priority, 0)
		out = append(out, q)
	}
	return out
}

func (m *Materializer) buildEntry(dump *models.BrainDump, kind models.JournalKind) *models.JournalEntry {
	c := dump.Classification
	now := m.now()
	dumpID := dump.ID

	e := &models.JournalEntry{
		ID:          RecordID(dump.ID, "journal/"+string(kind), 0),
		UserID:      dump.UserID,
		BrainDumpID: &dumpID,
		Kind:        kind,
		Body:        dump.RawText,
		Tags:        append([]string{}, c.Tags...),
		EntryDate:   now.UTC().Truncate(24 * time.Hour),
		CreatedAt:   now,
	}
	if kind == models.JournalKindReflection {
		e.Mood = c.DetectedMood
	}
	return e
}

// Title derives a short single-line title from free text
func Title(text string) string {
	line := strings.TrimSpace(text)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}
	if utf8.RuneCountInString(line) <= MaxTitleLength {
		return line
	}
	r := []rune(line)
	return strings.TrimSpace(string(r[:MaxTitleLength-3])) + "..."
}

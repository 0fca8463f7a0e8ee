// Package braindump turns free-text brain dumps into structured classifications
// using fixed keyword tables and regular expressions. Everything here is pure:
// no I/O, no shared mutable state, identical input gives identical output.
package braindump

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/benvon/life-rpg/internal/models"
)

const (
	minReviewWords = 3
	maxReviewWords = 200
	briefNoteChars = 20
)

// Classifier is an injectable handle on Classify. It carries no state.
type Classifier struct{}

// NewClassifier returns a Classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify runs the pipeline on raw.
func (c *Classifier) Classify(raw string) *models.ClassificationResult {
	return Classify(raw)
}

// Classify maps raw text to a ClassificationResult. It is total: every string,
// including the empty string, produces a fully populated result.
func Classify(raw string) *models.ClassificationResult {
	lower := strings.ToLower(raw)

	entities := extractEntities(raw)
	urgency := detectUrgency(lower)
	emotions := detectEmotions(lower)
	mood := detectMood(lower, emotions)
	categories := detectCategories(lower)
	tasks := extractTasks(raw)
	priority := determinePriority(urgency, emotions, entities)

	return &models.ClassificationResult{
		Interpretation:      interpret(raw, categories, emotions, len(tasks), urgency),
		SuggestedAction:     suggestAction(lower, tasks, urgency),
		DetectedUrgency:     urgency,
		DetectedEmotions:    emotions,
		DetectedMood:        mood,
		Categories:          categories,
		ExtractedTasks:      tasks,
		Patterns:            detectPatterns(lower),
		Tags:                generateTags(lower, categories, emotions),
		SuggestedSkillTrees: suggestSkillTrees(categories),
		SuggestedQuestType:  suggestQuestType(urgency, priority, len(tasks)),
		ExtractedEntities:   entities,
		ConfidenceScore:     confidence(entities.WordCount, categories, len(tasks)),
		RequiresHumanReview: requiresReview(lower, emotions, priority, entities.WordCount),
		Priority:            priority,
	}
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func hasString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func extractEntities(raw string) models.ExtractedEntities {
	return models.ExtractedEntities{
		WordCount:       len(strings.Fields(raw)),
		HasExclamation:  strings.Contains(raw, "!"),
		HasQuestion:     strings.Contains(raw, "?"),
		HasCapitalWords: capitalRun.MatchString(raw),
		TextLength:      utf8.RuneCountInString(raw),
	}
}

func detectUrgency(lower string) models.Urgency {
	for _, t := range urgencyTables {
		if containsAny(lower, t.keywords) {
			return t.urgency
		}
	}
	return models.UrgencyUnknown
}

func detectEmotions(lower string) []string {
	emotions := []string{}
	for _, t := range emotionTables {
		if containsAny(lower, t.keywords) {
			emotions = append(emotions, t.name)
		}
	}
	return emotions
}

func detectMood(lower string, emotions []string) models.Mood {
	for _, t := range moodTables {
		if containsAny(lower, t.keywords) {
			return t.mood
		}
	}

	mood := models.MoodOkay
	if hasString(emotions, emotionExcitement) || hasString(emotions, emotionMotivation) {
		mood = models.MoodGood
	}
	if hasString(emotions, emotionAnxiety) || hasString(emotions, emotionSadness) {
		mood = models.MoodBad
	}
	if hasString(emotions, emotionFrustration) && hasString(emotions, emotionFatigue) {
		mood = models.MoodTerrible
	}
	return mood
}

func detectCategories(lower string) []string {
	categories := []string{}
	for _, t := range categoryTables {
		if containsAny(lower, t.keywords) {
			categories = append(categories, t.name)
		}
	}
	if len(categories) == 0 {
		categories = append(categories, models.CategoryGeneral)
	}
	return categories
}

func detectPatterns(lower string) []models.DetectedPattern {
	patterns := []models.DetectedPattern{}
	for _, rule := range patternRules {
		if containsAny(lower, rule.triggers) {
			patterns = append(patterns, models.DetectedPattern{
				Pattern:    rule.name,
				Confidence: rule.confidence,
				Frequency:  patternFrequency,
				Suggestion: rule.suggestion,
			})
		}
	}
	return patterns
}

func generateTags(lower string, categories, emotions []string) []string {
	tags := []string{}
	add := func(tag string) {
		if !hasString(tags, tag) {
			tags = append(tags, tag)
		}
	}
	for _, c := range categories {
		add(c)
	}
	for _, e := range emotions {
		add(e)
	}
	for _, st := range specialTags {
		if containsAny(lower, st.triggers) {
			add(st.tag)
		}
	}
	return tags
}

func suggestAction(lower string, tasks []models.ExtractedTask, urgency models.Urgency) models.SuggestedAction {
	switch {
	case len(tasks) > 0 && urgency != models.UrgencyUnknown:
		if len(tasks) > 1 {
			return models.ActionCreateQuest
		}
		return models.ActionCreateTask
	case containsAny(lower, reminderKeywords):
		return models.ActionCreateReminder
	case containsAny(lower, reflectionKeywords):
		return models.ActionAddToReflection
	case containsAny(lower, noteKeywords):
		return models.ActionAddNote
	case len(tasks) > 0:
		return models.ActionCreateTask
	default:
		return models.ActionAddNote
	}
}

func determinePriority(urgency models.Urgency, emotions []string, entities models.ExtractedEntities) models.Priority {
	switch {
	case urgency == models.UrgencyNow || hasString(emotions, emotionAnxiety):
		return models.PriorityCritical
	case urgency == models.UrgencyToday || entities.HasExclamation || entities.HasCapitalWords:
		return models.PriorityHigh
	case urgency == models.UrgencyThisWeek || hasString(emotions, emotionFrustration):
		return models.PriorityMedium
	default:
		return models.PriorityLow
	}
}

func requiresReview(lower string, emotions []string, priority models.Priority, wordCount int) bool {
	if hasString(emotions, emotionAnxiety) && hasString(emotions, emotionSadness) {
		return true
	}
	if priority == models.PriorityCritical {
		return true
	}
	if wordCount > maxReviewWords || wordCount < minReviewWords {
		return true
	}
	return containsAny(lower, crisisKeywords)
}

func confidence(wordCount int, categories []string, taskCount int) float64 {
	score := 0.5
	if wordCount > 10 {
		score += 0.2
	}
	if wordCount > 50 {
		score += 0.1
	}
	if len(categories) > 0 && categories[0] != models.CategoryGeneral {
		score += 0.1
		if len(categories) > 1 {
			score += 0.05
		}
	}
	if taskCount > 0 {
		score += 0.1
	}
	if taskCount > 2 {
		score += 0.05
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

func suggestSkillTrees(categories []string) []string {
	trees := []string{}
	for _, c := range categories {
		for _, skill := range skillTreesByCategory[c] {
			if !hasString(trees, skill) {
				trees = append(trees, skill)
			}
		}
	}
	return trees
}

func suggestQuestType(urgency models.Urgency, priority models.Priority, taskCount int) models.QuestType {
	switch {
	case urgency == models.UrgencyNow || priority == models.PriorityCritical:
		return models.QuestTypeUrgent
	case taskCount > 2:
		return models.QuestTypeMultiStep
	case urgency == models.UrgencyToday:
		return models.QuestTypeDaily
	case urgency == models.UrgencyThisWeek:
		return models.QuestTypeWeekly
	default:
		return models.QuestTypeStandard
	}
}

func interpret(raw string, categories, emotions []string, taskCount int, urgency models.Urgency) string {
	var b strings.Builder
	fmt.Fprintf(&b, "This brain dump touches on %s.", strings.Join(categories, ", "))
	if len(emotions) > 0 {
		fmt.Fprintf(&b, " You seem to be feeling %s.", strings.Join(emotions, ", "))
	}
	if taskCount > 0 {
		fmt.Fprintf(&b, " I found %d potential task(s).", taskCount)
	}
	if urgency != models.UrgencyUnknown {
		fmt.Fprintf(&b, " Urgency level: %s.", urgency)
	}
	if utf8.RuneCountInString(raw) < briefNoteChars {
		b.WriteString(" This looks like a brief note.")
	}
	return b.String()
}

package models

// SuggestedAction is what the brain dump processor recommends doing with an entry
type SuggestedAction string

const (
	ActionCreateQuest     SuggestedAction = "create_quest"
	ActionCreateTask      SuggestedAction = "create_task"
	ActionAddNote         SuggestedAction = "add_note"
	ActionCreateReminder  SuggestedAction = "create_reminder"
	ActionAddToReflection SuggestedAction = "add_to_reflection"
	ActionIgnore          SuggestedAction = "ignore"
)

// Urgency represents how soon a brain dump implies action is needed
type Urgency string

const (
	UrgencyNow      Urgency = "now"
	UrgencyToday    Urgency = "today"
	UrgencyThisWeek Urgency = "this_week"
	UrgencySomeday  Urgency = "someday"
	UrgencyUnknown  Urgency = "unknown"
)

// Mood is the single mood detected for a brain dump
type Mood string

const (
	MoodTerrible Mood = "terrible"
	MoodBad      Mood = "bad"
	MoodOkay     Mood = "okay"
	MoodGood     Mood = "good"
	MoodAmazing  Mood = "amazing"
)

// Priority represents how pressing a classified entry is
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// QuestType is the shape of quest suggested for a brain dump
type QuestType string

const (
	QuestTypeUrgent    QuestType = "urgent"
	QuestTypeMultiStep QuestType = "multi-step"
	QuestTypeDaily     QuestType = "daily"
	QuestTypeWeekly    QuestType = "weekly"
	QuestTypeStandard  QuestType = "standard"
)

// CategoryGeneral is used only when no other category matched
const CategoryGeneral = "general"

// ExtractedTask is a task fragment pulled out of a brain dump
type ExtractedTask struct {
	Text     string  `json:"text"`
	Urgency  Urgency `json:"urgency"`
	Category string  `json:"category"`
}

// DetectedPattern is a recurring behavioral signal found in a brain dump
type DetectedPattern struct {
	Pattern    string  `json:"pattern"`
	Confidence float64 `json:"confidence"`
	Frequency  string  `json:"frequency"`
	Suggestion string  `json:"suggestion,omitempty"`
}

// ExtractedEntities holds formatting metadata computed from the raw text
type ExtractedEntities struct {
	WordCount       int  `json:"word_count"`
	HasExclamation  bool `json:"has_exclamation"`
	HasQuestion     bool `json:"has_question"`
	HasCapitalWords bool `json:"has_capital_words"`
	TextLength      int  `json:"text_length"`
}

// ClassificationResult is the structured output of the brain dump processor.
// It is constructed once per input and never mutated afterwards.
type ClassificationResult struct {
	Interpretation      string            `json:"interpretation"`
	SuggestedAction     SuggestedAction   `json:"suggested_action"`
	DetectedUrgency     Urgency           `json:"detected_urgency"`
	DetectedEmotions    []string          `json:"detected_emotions"`
	DetectedMood        Mood              `json:"detected_mood"`
	Categories          []string          `json:"categories"`
	ExtractedTasks      []ExtractedTask   `json:"extracted_tasks"`
	Patterns            []DetectedPattern `json:"patterns"`
	Tags                []string          `json:"tags"`
	SuggestedSkillTrees []string          `json:"suggested_skill_trees"`
	SuggestedQuestType  QuestType         `json:"suggested_quest_type"`
	ExtractedEntities   ExtractedEntities `json:"extracted_entities"`
	ConfidenceScore     float64           `json:"confidence_score"`
	RequiresHumanReview bool              `json:"requires_human_review"`
	Priority            Priority          `json:"priority"`
}

// HasEmotion reports whether the given emotion was detected
func (r *ClassificationResult) HasEmotion(emotion string) bool {
	return contains(r.DetectedEmotions, emotion)
}

// HasCategory reports whether the given category was detected
func (r *ClassificationResult) HasCategory(category string) bool {
	return contains(r.Categories, category)
}

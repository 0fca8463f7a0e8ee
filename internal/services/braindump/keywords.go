package braindump

import (
	"regexp"

	"github.com/benvon/life-rpg/internal/models"
)

// keywordTable is a named list of substrings. Tables are kept in slices so
// every scan visits them in a fixed order.
type keywordTable struct {
	name     string
	keywords []string
}

type urgencyTable struct {
	urgency  models.Urgency
	keywords []string
}

type moodTable struct {
	mood     models.Mood
	keywords []string
}

// Checked in order; the first table with a hit wins.
var urgencyTables = []urgencyTable{
	{models.UrgencyNow, []string{"urgent", "asap", "immediately", "emergency", "crisis", "help", "panic", "right now"}},
	{models.UrgencyToday, []string{"today", "tonight", "deadline", "due", "meeting", "appointment"}},
	{models.UrgencyThisWeek, []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday", "this week", "soon"}},
	{models.UrgencySomeday, []string{"someday", "eventually", "maybe", "consider", "idea", "think about", "one day"}},
}

const (
	emotionAnxiety     = "anxiety"
	emotionExcitement  = "excitement"
	emotionFrustration = "frustration"
	emotionSadness     = "sadness"
	emotionConfusion   = "confusion"
	emotionMotivation  = "motivation"
	emotionFatigue     = "fatigue"
)

var emotionTables = []keywordTable{
	{emotionAnxiety, []string{"anxious", "worried", "nervous", "stressed", "panic", "overwhelmed", "scared", "afraid"}},
	{emotionExcitement, []string{"excited", "can't wait", "thrilled", "pumped", "looking forward"}},
	{emotionFrustration, []string{"frustrated", "annoyed", "angry", "irritated", "fed up", "ugh"}},
	{emotionSadness, []string{"sad", "depressed", "feeling down", "lonely", "upset", "crying"}},
	{emotionConfusion, []string{"confused", "unsure", "don't know", "not sure", "unclear", "lost"}},
	{emotionMotivation, []string{"motivated", "determined", "ready to", "let's go", "inspired", "focused"}},
	{emotionFatigue, []string{"tired", "exhausted", "sleepy", "drained", "burnt out", "burned out", "worn out"}},
}

// Checked in order; the first table with a hit wins.
var moodTables = []moodTable{
	{models.MoodTerrible, []string{"terrible", "awful", "horrible", "worst", "miserable", "hopeless"}},
	{models.MoodBad, []string{"bad", "not great", "rough", "crappy", "bummed"}},
	{models.MoodOkay, []string{"okay", "fine", "alright", "meh", "so-so"}},
	{models.MoodGood, []string{"good", "great", "happy", "nice", "productive", "pleased"}},
	{models.MoodAmazing, []string{"amazing", "awesome", "fantastic", "incredible", "wonderful", "best day"}},
}

var categoryTables = []keywordTable{
	{"work", []string{"work", "job", "boss", "meeting", "project", "office", "client", "email", "deadline", "presentation", "report"}},
	{"personal", []string{"family", "friend", "home", "personal", "birthday", "gift", "vacation"}},
	{"health", []string{"doctor", "dentist", "gym", "exercise", "workout", "medication", "meds", "therapy", "sleep", "health", "diet"}},
	{"finance", []string{"bill", "pay", "money", "budget", "bank", "tax", "rent", "invoice", "savings", "loan"}},
	{"learning", []string{"learn", "study", "course", "book", "reading", "class", "tutorial", "practice", "research"}},
	{"creative", []string{"write", "draw", "paint", "music", "design", "artwork", "create", "craft", "photo"}},
	{"maintenance", []string{"clean", "fix", "repair", "laundry", "dishes", "organize", "groceries", "chores", "oil change"}},
	{"social", []string{"call", "text", "party", "dinner", "hang out", "visit", "meet up", "message", "reply"}},
}

// Categories without an entry contribute no skill trees.
var skillTreesByCategory = map[string][]string{
	"work":     {"productivity", "organization", "communication"},
	"health":   {"self-care", "wellness", "routine-building"},
	"learning": {"focus", "memory", "skill-development"},
	"creative": {"creativity", "expression", "innovation"},
	"finance":  {"organization", "planning", "responsibility"},
}

type patternRule struct {
	name       string
	triggers   []string
	confidence float64
	suggestion string
}

const patternFrequency = "recurring"

var patternRules = []patternRule{
	{
		name:       "memory_issues",
		triggers:   []string{"forgot", "remember"},
		confidence: 0.8,
		suggestion: "Consider setting up reminders or using a task management system",
	},
	{
		name:       "overwhelm",
		triggers:   []string{"overwhelmed", "too much"},
		confidence: 0.9,
		suggestion: "Try breaking tasks into smaller, manageable steps",
	},
	{
		name:       "procrastination",
		triggers:   []string{"procrastinating", "putting off"},
		confidence: 0.85,
		suggestion: "Consider the 2-minute rule: if it takes less than 2 minutes, do it now",
	},
}

type specialTag struct {
	tag      string
	triggers []string
}

var specialTags = []specialTag{
	{"urgent", []string{"urgent", "asap"}},
	{"idea", []string{"idea", "thought"}},
	{"reminder", []string{"reminder", "remember"}},
}

var (
	reminderKeywords   = []string{"reminder", "remember", "don't forget"}
	reflectionKeywords = []string{"feeling", "thinking", "reflect"}
	noteKeywords       = []string{"idea", "thought", "note"}
	crisisKeywords     = []string{"crisis", "emergency", "help", "suicide", "harm"}
)

// Task patterns run against the original-case text. Each has exactly one
// capture group holding the task fragment.
var taskPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bneed to\s+([^.!?\n]+)`),
	regexp.MustCompile(`(?i)\bshould\s+([^.!?\n]+)`),
	regexp.MustCompile(`(?i)\bmust\s+([^.!?\n]+)`),
	regexp.MustCompile(`(?i)\bhave to\s+([^.!?\n]+)`),
	regexp.MustCompile(`(?i)\bremember to\s+([^.!?\n]+)`),
	regexp.MustCompile(`(?i)\bdon'?t forget(?:\s+to)?\s+([^.!?\n]+)`),
	regexp.MustCompile(`(?m)^[ \t]*-[ \t]+(.+)$`),
	regexp.MustCompile(`(?m)^[ \t]*\*[ \t]+(.+)$`),
	regexp.MustCompile(`(?m)^[ \t]*\d+[.)][ \t]+(.+)$`),
}

var capitalRun = regexp.MustCompile(`[A-Z]{2,}`)

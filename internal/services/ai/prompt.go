package ai

import (
	"fmt"
	"strings"

	logpkg "github.com/benvon/life-rpg/internal/logger"
	"github.com/benvon/life-rpg/internal/models"
)

const (
	// MaxPromptTextLength caps how much of the raw entry is sent to a provider
	MaxPromptTextLength = 2000
	// MaxNoteLength caps the stored companion note, in runes
	MaxNoteLength = 1000

	companionSystemPrompt = "You are a warm, practical companion in a life RPG. " +
		"Reply with one short paragraph (at most four sentences) that acknowledges how the player feels " +
		"and points at one concrete next step. No lists, no headings, no emojis."
)

// BuildCompanionPrompt renders the user prompt for a companion note
func BuildCompanionPrompt(text string, result *models.ClassificationResult) string {
	var b strings.Builder
	b.WriteString("Brain dump:\n")
	b.WriteString(logpkg.Truncate(logpkg.StripControl(text), MaxPromptTextLength))

	if result == nil {
		return b.String()
	}

	b.WriteString("\n\nWhat the keyword analysis found:\n")
	fmt.Fprintf(&b, "- summary: %s\n", result.Interpretation)
	fmt.Fprintf(&b, "- mood: %s\n", result.DetectedMood)
	if len(result.DetectedEmotions) > 0 {
		fmt.Fprintf(&b, "- emotions: %s\n", strings.Join(result.DetectedEmotions, ", "))
	}
	fmt.Fprintf(&b, "- urgency: %s\n", result.DetectedUrgency)
	fmt.Fprintf(&b, "- categories: %s\n", strings.Join(result.Categories, ", "))
	if len(result.ExtractedTasks) > 0 {
		b.WriteString("- tasks:\n")
		for _, task := range result.ExtractedTasks {
			fmt.Fprintf(&b, "  - %s\n", task.Text)
		}
	}
	if len(result.SuggestedSkillTrees) > 0 {
		fmt.Fprintf(&b, "- skill trees: %s\n", strings.Join(result.SuggestedSkillTrees, ", "))
	}

	return strings.TrimRight(b.String(), "\n")
}

// CleanNote trims a provider response and bounds its length
func CleanNote(note string) (string, error) {
	note = strings.TrimSpace(note)
	note = strings.Trim(note, "\"")
	note = strings.TrimSpace(note)
	if note == "" {
		return "", ErrEmptyNote
	}
	return logpkg.Truncate(note, MaxNoteLength), nil
}

package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/benvon/life-rpg/internal/models"
)

// MaxBrainDumpLength bounds a single brain dump, in characters
const MaxBrainDumpLength = 10000

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Custom enum validators; registration only fails on a programming error.
	for tag, fn := range map[string]validator.Func{
		"quest_status": validateQuestStatus,
		"journal_kind": validateJournalKind,
		"priority":     validatePriority,
	} {
		if err := Validate.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("failed to register %s validator: %v", tag, err))
		}
	}
}

func validateQuestStatus(fl validator.FieldLevel) bool {
	return ValidateQuestStatus(fl.Field().String()) == nil
}

func validateJournalKind(fl validator.FieldLevel) bool {
	return ValidateJournalKind(fl.Field().String()) == nil
}

func validatePriority(fl validator.FieldLevel) bool {
	return ValidatePriority(fl.Field().String()) == nil
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)

	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

// ValidateQuestStatus validates a QuestStatus string value
func ValidateQuestStatus(value string) error {
	switch models.QuestStatus(value) {
	case models.QuestStatusActive, models.QuestStatusCompleted, models.QuestStatusAbandoned:
		return nil
	default:
		return fmt.Errorf("invalid status: %s (must be 'active', 'completed', or 'abandoned')", value)
	}
}

// ValidateBrainDumpStatus validates a BrainDumpStatus string value
func ValidateBrainDumpStatus(value string) error {
	switch models.BrainDumpStatus(value) {
	case models.BrainDumpStatusPending, models.BrainDumpStatusClassified,
		models.BrainDumpStatusProcessed, models.BrainDumpStatusFailed:
		return nil
	default:
		return fmt.Errorf("invalid status: %s (must be 'pending', 'classified', 'processed', or 'failed')", value)
	}
}

// ValidateJournalKind validates a JournalKind string value
func ValidateJournalKind(value string) error {
	switch models.JournalKind(value) {
	case models.JournalKindNote, models.JournalKindReminder, models.JournalKindReflection:
		return nil
	default:
		return fmt.Errorf("invalid kind: %s (must be 'note', 'reminder', or 'reflection')", value)
	}
}

// ValidatePriority validates a Priority string value
func ValidatePriority(value string) error {
	switch models.Priority(value) {
	case models.PriorityLow, models.PriorityMedium, models.PriorityHigh, models.PriorityCritical:
		return nil
	default:
		return fmt.Errorf("invalid priority: %s (must be 'low', 'medium', 'high', or 'critical')", value)
	}
}

// ValidateEmail validates an email address asserted by the identity header
func ValidateEmail(email string) error {
	if err := Validate.Var(email, "required,email,max=320"); err != nil {
		return fmt.Errorf("invalid email: %w", err)
	}
	return nil
}

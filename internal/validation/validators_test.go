package validation

import (
	"strings"
	"testing"
)

func TestSanitizeText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"trims", "  hello  ", "hello"},
		{"keeps newlines and tabs", "a\n\tb", "a\n\tb"},
		{"drops control characters", "a\x00b\x07c", "abc"},
		{"empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := SanitizeText(tt.in); got != tt.want {
				t.Errorf("SanitizeText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestEnumValidators(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		fn      func(string) error
		valid   []string
		invalid []string
	}{
		{"quest status", ValidateQuestStatus, []string{"active", "completed", "abandoned"}, []string{"", "done", "Active"}},
		{"brain dump status", ValidateBrainDumpStatus, []string{"pending", "classified", "processed", "failed"}, []string{"queued"}},
		{"journal kind", ValidateJournalKind, []string{"note", "reminder", "reflection"}, []string{"diary"}},
		{"priority", ValidatePriority, []string{"low", "medium", "high", "critical"}, []string{"urgent"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			for _, v := range tt.valid {
				if err := tt.fn(v); err != nil {
					t.Errorf("Expected %q to be valid, got %v", v, err)
				}
			}
			for _, v := range tt.invalid {
				if err := tt.fn(v); err == nil {
					t.Errorf("Expected %q to be invalid", v)
				}
			}
		})
	}
}

func TestStructTags(t *testing.T) {
	t.Parallel()

	type patch struct {
		Status   *string `validate:"omitempty,quest_status"`
		Priority *string `validate:"omitempty,priority"`
	}

	bad := "sideways"
	if err := Validate.Struct(patch{Status: &bad}); err == nil {
		t.Error("Expected invalid quest status to fail struct validation")
	}
	good := "completed"
	high := "high"
	if err := Validate.Struct(patch{Status: &good, Priority: &high}); err != nil {
		t.Errorf("Expected valid patch, got %v", err)
	}
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()

	if err := ValidateEmail("player@example.com"); err != nil {
		t.Errorf("Expected valid email, got %v", err)
	}
	for _, bad := range []string{"", "not-an-email", strings.Repeat("a", 320) + "@example.com"} {
		if err := ValidateEmail(bad); err == nil {
			t.Errorf("Expected %q to be rejected", bad)
		}
	}
}

package database

import (
	"database/sql"
	"testing"
	"time"
)

func TestNormalizePage(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		page       int
		pageSize   int
		wantPage   int
		wantSize   int
		wantOffset int
	}{
		{"defaults", 0, 0, 1, 20, 0},
		{"second page", 2, 10, 2, 10, 10},
		{"clamped size", 3, 1000, 3, 100, 200},
		{"negative", -4, -1, 1, 20, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			page, size, offset := NormalizePage(tt.page, tt.pageSize)
			if page != tt.wantPage || size != tt.wantSize || offset != tt.wantOffset {
				t.Errorf("NormalizePage(%d, %d) = (%d, %d, %d), want (%d, %d, %d)",
					tt.page, tt.pageSize, page, size, offset, tt.wantPage, tt.wantSize, tt.wantOffset)
			}
		})
	}
}

func TestNullTimeHelpers(t *testing.T) {
	t.Parallel()

	if nullTimePtr(sql.NullTime{}) != nil {
		t.Error("Expected nil for invalid NullTime")
	}
	now := time.Now()
	if got := nullTimePtr(toNullTime(&now)); got == nil || !got.Equal(now) {
		t.Errorf("Expected %v, got %v", now, got)
	}
	if toNullTime(nil).Valid {
		t.Error("Expected invalid NullTime for nil pointer")
	}
}

func TestValidateRate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		rate    string
		want    string
		wantErr bool
	}{
		{" 5-S ", "5-S", false},
		{"100-M", "100-M", false},
		{"1000-H", "1000-H", false},
		{"", "", true},
		{"fast", "", true},
	}
	for _, tt := range tests {
		got, err := ValidateRate(tt.rate)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateRate(%q) error = %v, wantErr %v", tt.rate, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ValidateRate(%q) = %q, want %q", tt.rate, got, tt.want)
		}
	}
}

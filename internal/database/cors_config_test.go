package database

import (
	"testing"
)

func TestValidateOrigins(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"wildcard", "*", false},
		{"https origins", "https://a.example.com, http://localhost:3000", false},
		{"empty", " , ", true},
		{"missing scheme", "example.com", true},
		{"ftp scheme", "ftp://files.example.com", true},
		{"one bad among good", "https://a.example.com,not a url", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ValidateOrigins(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateOrigins(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if err == nil && len(got) == 0 {
				t.Errorf("ValidateOrigins(%q) returned no origins", tt.raw)
			}
		})
	}
}

package errors

import (
	"strings"
	"testing"
)

func TestValidateNodeID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid uuid", "3b241101-e2bb-4255-8caf-4136c566a962", false},
		{"valid short", "x", false},
		{"valid with dot", "node.1", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 129), true},
		{"space", "a b", true},
		{"tab", "a\tb", true},
		{"null byte", "a\x00b", true},
		{"slash", "a/b", true},
		{"backslash", "a\\b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNodeID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateNodeID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidNodeID) {
				t.Errorf("ValidateNodeID(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidNodeID)
			}
		})
	}
}

func TestValidateLabel(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"empty", "", false},
		{"simple", "Central Topic", false},
		{"unicode", "Idée ✨", false},
		{"multiline", "line one\nline two", false},
		{"max length", strings.Repeat("é", MaxLabelLength), false},

		{"too long", strings.Repeat("a", MaxLabelLength+1), true},
		{"null byte", "a\x00b", true},
		{"bell", "a\x07b", true},
		{"invalid utf8", "a\xffb", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLabel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateLabel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

package errors

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxLabelLength is the longest label, in runes, accepted for a node.
const MaxLabelLength = 512

// ValidateNodeID validates a node identifier received from outside the
// store (HTTP path parameters, CLI flags).
//
// Validation rules:
//   - ID cannot be empty
//   - Maximum length of 128 characters
//   - No whitespace or control characters
//   - No path separators
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidNodeID, "node id cannot be empty")
	}

	const maxIDLength = 128
	if len(id) > maxIDLength {
		return New(ErrCodeInvalidNodeID, "node id too long (max %d characters)", maxIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidNodeID, "node id contains invalid characters")
		}
	}

	if strings.ContainsAny(id, "/\\") {
		return New(ErrCodeInvalidNodeID, "node id cannot contain path separators")
	}

	return nil
}

// ValidateLabel validates node label text. Empty labels are allowed; the
// editor treats blank input as a cancellation before it gets here.
func ValidateLabel(label string) error {
	if !utf8.ValidString(label) {
		return New(ErrCodeInvalidInput, "label is not valid UTF-8")
	}

	if utf8.RuneCountInString(label) > MaxLabelLength {
		return New(ErrCodeInvalidInput, "label too long (max %d characters)", MaxLabelLength)
	}

	for _, r := range label {
		if r == '\x00' || (unicode.IsControl(r) && r != '\n' && r != '\t') {
			return New(ErrCodeInvalidInput, "label contains invalid control characters")
		}
	}

	return nil
}

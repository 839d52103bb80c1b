package errors

import (
	"strings"
	"unicode"
)

// ValidateNodeID validates a curriculum node identifier for safety and
// correctness. Node ids are used as upsert keys in the graph store and as
// cache-key material, so they must be stable, printable, and path-safe.
//
// The validation rules are intentionally conservative:
//   - No empty ids
//   - No control characters or null bytes
//   - No whitespace
//   - Maximum length of 256 characters
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidNodeID, "node id cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidNodeID, "node id too long (max 256 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidNodeID, "node id %q contains control characters", id)
		}
		if unicode.IsSpace(r) {
			return New(ErrCodeInvalidNodeID, "node id %q contains whitespace", id)
		}
	}

	return nil
}

// ValidateTitle validates a node display title.
// Titles are free-form but must not contain control characters and are
// capped at a length that keeps store property sizes reasonable.
func ValidateTitle(title string) error {
	const maxTitleLength = 512
	if len(title) > maxTitleLength {
		return New(ErrCodeInvalidInput, "title too long (max %d characters)", maxTitleLength)
	}
	for _, r := range title {
		if r != '\t' && unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "title contains control characters")
		}
	}
	return nil
}

// ValidatePropKey validates an edge property key before persistence.
// Keys must be simple identifiers: the graph store interpolates them into
// SET clauses, so reserved identity fields and exotic characters are
// rejected here rather than at the store boundary.
func ValidatePropKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidInput, "property key cannot be empty")
	}
	switch key {
	case "source", "target", "relation", "generated":
		return New(ErrCodeInvalidInput, "property key %q is reserved", key)
	}
	for _, r := range key {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return New(ErrCodeInvalidInput, "property key %q contains invalid characters", key)
		}
	}
	return nil
}

// ValidateConfigPath validates a user-supplied config file path.
// It rejects obviously malformed paths before the file is opened.
func ValidateConfigPath(path string) error {
	if path == "" {
		return New(ErrCodeConfig, "config path cannot be empty")
	}
	if strings.ContainsRune(path, '\x00') {
		return New(ErrCodeConfig, "config path contains null byte")
	}
	return nil
}

package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	maxGroupTitleLength = 200
	maxImagePathLength  = 255
)

var groupSlugRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,49}$`)

// ValidateGroupSlug validates group slug format.
func ValidateGroupSlug(slug string) error {
	if !groupSlugRegex.MatchString(slug) {
		return fmt.Errorf("slug must be 1-50 characters of lowercase letters, digits, '_' or '-'")
	}
	return nil
}

// ValidateGroupTitle requires a non-blank title of at most 200 characters.
func ValidateGroupTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("title is required")
	}
	if utf8.RuneCountInString(title) > maxGroupTitleLength {
		return fmt.Errorf("title must be at most %d characters", maxGroupTitleLength)
	}
	return nil
}

// ValidateText rejects empty and whitespace-only bodies.
func ValidateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("this field is required")
	}
	return nil
}

// ValidateImagePath bounds the stored media reference.
func ValidateImagePath(path string) error {
	if len(path) > maxImagePathLength {
		return fmt.Errorf("image reference must be at most %d characters", maxImagePathLength)
	}
	return nil
}

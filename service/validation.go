package service

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"studyhub/models"
)

var hexColorRegex = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const (
	maxNameLength    = 120
	maxTitleLength   = 300
	maxContentLength = 64 * 1024
	minPasswordLen   = 8
	maxDisplayName   = 50
)

func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}
	return nil
}

func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLen {
		return fmt.Errorf("%w: password too short", ErrInvalidInput)
	}
	return nil
}

// Display names travel in public URL paths. Percent-encoding covers spaces
// and most punctuation, but a slash would split the path segment.
func ValidateDisplayName(displayName string) error {
	if strings.TrimSpace(displayName) == "" {
		return fmt.Errorf("%w: display name required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(displayName) > maxDisplayName {
		return fmt.Errorf("%w: display name too long", ErrInvalidInput)
	}
	if strings.ContainsAny(displayName, "/\x00") {
		return fmt.Errorf("%w: display name contains invalid characters", ErrInvalidInput)
	}
	return nil
}

// Topic names share the URL constraint with display names.
func ValidateTopicName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: topic name required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return fmt.Errorf("%w: topic name too long", ErrInvalidInput)
	}
	if strings.ContainsAny(name, "/\x00") {
		return fmt.Errorf("%w: topic name contains invalid characters", ErrInvalidInput)
	}
	return nil
}

func ValidateColor(color string) error {
	if !hexColorRegex.MatchString(color) {
		return fmt.Errorf("%w: invalid color", ErrInvalidInput)
	}
	return nil
}

func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return fmt.Errorf("%w: title too long", ErrInvalidInput)
	}
	return nil
}

func ValidateContent(content string) error {
	if len(content) > maxContentLength {
		return fmt.Errorf("%w: content too long", ErrInvalidInput)
	}
	return nil
}

func ValidatePriority(p models.Priority) error {
	switch p {
	case models.PriorityLow, models.PriorityMedium, models.PriorityHigh:
		return nil
	}
	return fmt.Errorf("%w: invalid priority", ErrInvalidInput)
}

func ValidateReminderType(t models.ReminderType) error {
	switch t {
	case models.ReminderTask, models.ReminderStudy, models.ReminderReview:
		return nil
	}
	return fmt.Errorf("%w: invalid reminder type", ErrInvalidInput)
}

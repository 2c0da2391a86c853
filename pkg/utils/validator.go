package utils

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	emailRegex   = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	controlChars = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]`)
	dataURLRegex = regexp.MustCompile(`^data:image/(png|jpeg|svg\+xml);base64,[A-Za-z0-9+/=]+$`)
)

// ValidateEmail validates an email address
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format: %s", email)
	}
	return nil
}

// ValidateImageDataURL checks that s is a base64 image data URL, the form
// signature pads export.
func ValidateImageDataURL(s string) error {
	if !dataURLRegex.MatchString(strings.TrimSpace(s)) {
		return fmt.Errorf("not an image data URL")
	}
	return nil
}

// SanitizeString removes control characters. Tabs and newlines are kept
// since letter bodies are multi-line.
func SanitizeString(s string) string {
	return controlChars.ReplaceAllString(s, "")
}

package service

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"vidhub/internal/domain"
	"vidhub/internal/storage"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// canonicalID rejects ids that could never have been issued and returns the stored
// form of the rest: uuid.Parse also accepts upper case, braces, urn:uuid: and
// unhyphenated input, while lookups compare strings.
func canonicalID(kind, id string) (string, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return "", fmt.Errorf("%w: invalid %s ID format", domain.ErrValidation, kind)
	}
	return parsed.String(), nil
}

// validMediaURL accepts absolute http(s) URLs and s3://bucket/key object references.
func validMediaURL(raw string) bool {
	raw = strings.TrimSpace(raw)
	if storage.IsObjectRef(raw) {
		_, err := storage.ParseObjectRef(raw)
		return err == nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func validateTitle(title string) error {
	if len(strings.TrimSpace(title)) < 3 {
		return fmt.Errorf("%w: title must be at least 3 characters", domain.ErrValidation)
	}
	return nil
}

func validateDescription(description string) error {
	if len(strings.TrimSpace(description)) < 10 {
		return fmt.Errorf("%w: description must be at least 10 characters", domain.ErrValidation)
	}
	return nil
}

func validateMedia(field, value string) error {
	if !validMediaURL(value) {
		return fmt.Errorf("%w: %s must be a valid URL", domain.ErrValidation, field)
	}
	return nil
}

func validateCategory(category string) error {
	if strings.TrimSpace(category) == "" {
		return fmt.Errorf("%w: category is required", domain.ErrValidation)
	}
	return nil
}

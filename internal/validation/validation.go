// Package validation holds the field rules shared by the API and the client forms.
package validation

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"inkwell/internal/models"
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 6

// MaxBioLength bounds a profile bio, in characters.
const MaxBioLength = 500

var emailRegex = regexp.MustCompile(`^[^\s@]+@([A-Za-z0-9-]+\.)+[A-Za-z]{2,}$`)

// ValidateName requires a non-blank display name.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("Name is required")
	}
	return nil
}

// ValidateEmail checks the address shape only; deliverability is not tested.
func ValidateEmail(email string) error {
	if len(email) > 254 || !emailRegex.MatchString(email) {
		return errors.New("Please include a valid email")
	}
	return nil
}

func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return errors.New("Please enter a password with 6 or more characters")
	}
	return nil
}

func ValidateBio(bio string) error {
	if utf8.RuneCountInString(bio) > MaxBioLength {
		return errors.New("Bio too long (max 500 characters)")
	}
	return nil
}

// ValidateTitle counts characters, not bytes.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return errors.New("Title is required")
	}
	if utf8.RuneCountInString(title) > models.MaxTitleLength {
		return errors.New("Title cannot be more than 100 characters")
	}
	return nil
}

func ValidateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return errors.New("Content is required")
	}
	return nil
}

// ValidateImage accepts an empty value or an absolute http(s) URL.
func ValidateImage(image string) error {
	if image == "" {
		return nil
	}
	u, err := url.ParseRequestURI(image)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return errors.New("Image must be a valid URL")
	}
	return nil
}

// Errors collects field failures in the order they were checked.
type Errors []models.FieldError

// Check records err against field when non-nil.
func (e *Errors) Check(field string, err error) {
	if err != nil {
		*e = append(*e, models.FieldError{Field: field, Message: err.Error()})
	}
}

// Err returns nil when nothing failed, otherwise a VALIDATION_ERROR AppError.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return models.NewFieldValidationError(e...)
}

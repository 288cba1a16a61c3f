package domain

import (
	"fmt"
	"net/mail"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	maxNameLength     = 50
	minPasswordLength = 6
)

// FieldErrors maps an input field to its validation message. It doubles as
// an error so callers can surface field-level feedback without retrying.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}

	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, e[field]))
	}

	return strings.Join(parts, "; ")
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c Credentials) Validate() error {
	fields := FieldErrors{}
	validateEmail(fields, c.Email)
	validatePassword(fields, c.Password)
	if len(fields) > 0 {
		return fields
	}
	return nil
}

type Registration struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

func (r Registration) Validate() error {
	fields := FieldErrors{}
	validateName(fields, "firstName", "First name", r.FirstName)
	validateName(fields, "lastName", "Last name", r.LastName)
	validateEmail(fields, r.Email)
	validatePassword(fields, r.Password)
	if len(fields) > 0 {
		return fields
	}
	return nil
}

func validateName(fields FieldErrors, key, label, value string) {
	if value == "" {
		fields[key] = label + " is required"
		return
	}
	if utf8.RuneCountInString(value) > maxNameLength {
		fields[key] = fmt.Sprintf("%s cannot exceed %d characters", label, maxNameLength)
	}
}

func validateEmail(fields FieldErrors, value string) {
	if value == "" {
		fields["email"] = "Email is required"
		return
	}
	if _, err := mail.ParseAddress(value); err != nil {
		fields["email"] = "Must be a valid email"
	}
}

func validatePassword(fields FieldErrors, value string) {
	if value == "" {
		fields["password"] = "Password is required"
		return
	}
	if utf8.RuneCountInString(value) < minPasswordLength {
		fields["password"] = fmt.Sprintf("Password must be at least %d characters", minPasswordLength)
	}
}

package validate

import (
	"fmt"
	"strings"
)

// Typed inputs, one per record kind. Each Validate call returns the
// full violation list; callers persist only after Valid.

// MedicationInput is an unvalidated create-medication request.
type MedicationInput struct {
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	Time      string `json:"time"`
	Frequency string `json:"frequency"`
	Color     string `json:"color,omitempty"`
}

// Validate checks every field and sanitizes the name in place.
func (in *MedicationInput) Validate() Result {
	var violations []string

	in.Name = SanitizeString(in.Name)
	if in.UserID == "" {
		violations = append(violations, "user id is required")
	}
	if !MedicationName(in.Name) {
		violations = append(violations, "invalid medication name (2-100 characters required)")
	}
	if !Dosage(in.Dosage) {
		violations = append(violations, "invalid dosage format (e.g. 100mg, 5ml)")
	}
	if !ClockTime(in.Time) {
		violations = append(violations, "invalid time format (use HH:MM)")
	}
	if !MedFrequency(in.Frequency) {
		violations = append(violations, "invalid frequency (must be: daily, weekly, or asNeeded)")
	}
	if in.Color != "" && !HexColor(in.Color) {
		violations = append(violations, "invalid color format (use hex color)")
	}

	if len(violations) > 0 {
		return failure(violations...)
	}
	return ok()
}

// SymptomInput is an unvalidated log-symptom request.
type SymptomInput struct {
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	Severity int    `json:"severity"`
	Notes    string `json:"notes,omitempty"`
}

// Validate checks every field and sanitizes name and notes in place.
func (in *SymptomInput) Validate() Result {
	var violations []string

	// Length is checked on the raw input; the sanitizer truncates, and a
	// silent clip is not a rejection.
	rawNotesLen := len(in.Notes)
	in.Name = SanitizeString(in.Name)
	in.Notes = SanitizeString(in.Notes)
	if in.UserID == "" {
		violations = append(violations, "user id is required")
	}
	if len(strings.TrimSpace(in.Name)) < 2 {
		violations = append(violations, "symptom name is required (minimum 2 characters)")
	}
	if !Severity(in.Severity) {
		violations = append(violations, "severity must be a number between 1 and 5")
	}
	if rawNotesLen > 1000 {
		violations = append(violations, "notes must be less than 1000 characters")
	}

	if len(violations) > 0 {
		return failure(violations...)
	}
	return ok()
}

// ProfileInput is an unvalidated profile update. Zero values mean
// "field not supplied" and are skipped.
type ProfileInput struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Age   int    `json:"age,omitempty"`
	Phone string `json:"phone,omitempty"`
	Role  string `json:"role,omitempty"`
}

// Validate checks the supplied fields.
func (in *ProfileInput) Validate() Result {
	var violations []string

	if in.Name != "" && !PersonName(in.Name) {
		violations = append(violations, "invalid name (2-50 characters, letters and spaces only)")
	}
	if in.Email != "" && !Email(in.Email) {
		violations = append(violations, "invalid email address")
	}
	if in.Age != 0 && !Age(in.Age) {
		violations = append(violations, "invalid age (must be between 0 and 150)")
	}
	if in.Phone != "" && !Phone(in.Phone) {
		violations = append(violations, "invalid phone number format")
	}
	if in.Role != "" && !Role(in.Role) {
		violations = append(violations, "invalid role (must be patient or doctor)")
	}

	if len(violations) > 0 {
		return failure(violations...)
	}
	return ok()
}

// ─── Pagination ─────────────────────────────────────────────────────────────

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// Page is a sanitized limit/offset pair.
type Page struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// Pagination validates and clamps limit/offset. Zero limit selects the
// default. The returned Page is always usable even when Result is
// invalid.
func Pagination(limit, offset int) (Page, Result) {
	var violations []string
	page := Page{Limit: defaultPageLimit, Offset: 0}

	switch {
	case limit < 0:
		violations = append(violations, "limit must be a positive number")
	case limit > maxPageLimit:
		violations = append(violations, fmt.Sprintf("limit cannot exceed %d", maxPageLimit))
	case limit > 0:
		page.Limit = limit
	}

	if offset < 0 {
		violations = append(violations, "offset must be a non-negative number")
	} else {
		page.Offset = offset
	}

	if len(violations) > 0 {
		return page, failure(violations...)
	}
	return page, ok()
}

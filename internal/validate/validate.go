// Package validate is the input validation layer. Predicates and
// sanitizers are pure; typed inputs produce a Result carrying every
// violation instead of stopping at the first. Nothing past this layer
// sees a partially-trusted value.
package validate

import (
	"regexp"
	"strings"
)

// Result is the outcome of validating one input.
type Result struct {
	Valid      bool     `json:"valid"`
	Violations []string `json:"violations,omitempty"`
}

func failure(violations ...string) Result {
	return Result{Valid: false, Violations: violations}
}

func ok() Result {
	return Result{Valid: true}
}

// Batch combines several results into one.
func Batch(results ...Result) Result {
	var all []string
	for _, r := range results {
		if !r.Valid {
			all = append(all, r.Violations...)
		}
	}
	if len(all) > 0 {
		return failure(all...)
	}
	return ok()
}

// ─── Predicates ─────────────────────────────────────────────────────────────

var (
	emailRe  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	nameRe   = regexp.MustCompile(`^[a-zA-Z\s'-]{2,50}$`)
	dosageRe = regexp.MustCompile(`(?i)^\d+(\.\d+)?\s*(mg|g|ml|mcg|IU|units?)$`)
	timeRe   = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)
	hexRe    = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)
	digitsRe = regexp.MustCompile(`\D`)
)

// Email reports whether s looks like an email address.
func Email(s string) bool {
	return emailRe.MatchString(strings.ToLower(strings.TrimSpace(s)))
}

// PersonName accepts 2–50 characters of letters, spaces, apostrophes
// and hyphens.
func PersonName(s string) bool {
	return nameRe.MatchString(strings.TrimSpace(s))
}

// Age accepts whole years 0–150.
func Age(n int) bool {
	return n >= 0 && n <= 150
}

// Phone accepts US numbers: 10 digits, or 11 with a leading 1.
func Phone(s string) bool {
	digits := digitsRe.ReplaceAllString(s, "")
	return len(digits) == 10 || (len(digits) == 11 && digits[0] == '1')
}

// MedicationName accepts 2–100 characters after trimming.
func MedicationName(s string) bool {
	n := len(strings.TrimSpace(s))
	return n >= 2 && n <= 100
}

// Dosage accepts a number plus unit, e.g. "100mg", "2.5 ml".
func Dosage(s string) bool {
	return dosageRe.MatchString(strings.TrimSpace(s))
}

// ClockTime accepts HH:MM in 24-hour form.
func ClockTime(s string) bool {
	return timeRe.MatchString(s)
}

// HexColor accepts #RGB or #RRGGBB.
func HexColor(s string) bool {
	return hexRe.MatchString(s)
}

// Severity accepts the canonical 1–5 scale.
func Severity(n int) bool {
	return n >= 1 && n <= 5
}

// Role accepts "patient" or "doctor".
func Role(s string) bool {
	return s == "patient" || s == "doctor"
}

// MedFrequency accepts daily, weekly or asNeeded.
func MedFrequency(s string) bool {
	return s == "daily" || s == "weekly" || s == "asNeeded"
}

// ─── Sanitization ───────────────────────────────────────────────────────────

const maxStringLen = 1000

// SanitizeString trims, strips angle brackets, and caps length.
func SanitizeString(s string) string {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer("<", "", ">", "").Replace(s)
	if len(s) > maxStringLen {
		s = s[:maxStringLen]
	}
	return s
}

// ─── Injection Pattern Detection ────────────────────────────────────────────

var sqlPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\bOR\b|\bAND\b).*?=`),
	regexp.MustCompile(`(?i)UNION.*?SELECT`),
	regexp.MustCompile(`(?i)DROP.*?TABLE`),
	regexp.MustCompile(`(?i)INSERT.*?INTO`),
	regexp.MustCompile(`(?i)DELETE.*?FROM`),
	regexp.MustCompile(`--`),
	regexp.MustCompile(`(?i);.*?DROP`),
	regexp.MustCompile(`(?i);.*?DELETE`),
}

var xssPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<script`),
	regexp.MustCompile(`(?i)javascript:`),
	regexp.MustCompile(`(?i)onerror=`),
	regexp.MustCompile(`(?i)onload=`),
	regexp.MustCompile(`(?i)onclick=`),
	regexp.MustCompile(`(?i)<iframe`),
	regexp.MustCompile(`(?i)eval\(`),
}

// ContainsSQLInjection reports whether s matches a known SQL injection
// pattern.
func ContainsSQLInjection(s string) bool {
	for _, p := range sqlPatterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

// ContainsXSS reports whether s matches a known XSS pattern.
func ContainsXSS(s string) bool {
	for _, p := range xssPatterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

// SearchQuery trims and validates a search string. Returns the cleaned
// query and false if it is too short, too long, or dangerous.
func SearchQuery(q string) (string, bool) {
	q = strings.TrimSpace(q)
	if len(q) < 2 || len(q) > 100 {
		return "", false
	}
	if ContainsSQLInjection(q) || ContainsXSS(q) {
		return "", false
	}
	return q, true
}

// ─── Password Strength ──────────────────────────────────────────────────────

// PasswordStrength buckets.
const (
	StrengthWeak   = "weak"
	StrengthMedium = "medium"
	StrengthStrong = "strong"
)

// PasswordResult is Result plus a strength estimate.
type PasswordResult struct {
	Result
	Strength string `json:"strength"`
}

var (
	upperRe   = regexp.MustCompile(`[A-Z]`)
	lowerRe   = regexp.MustCompile(`[a-z]`)
	digitRe   = regexp.MustCompile(`[0-9]`)
	specialRe = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
)

// Password checks minimum requirements (8+ chars, upper, lower, digit)
// and estimates strength from character-class coverage and length.
func Password(pw string) PasswordResult {
	var violations []string
	if len(pw) < 8 {
		violations = append(violations, "password must be at least 8 characters long")
	}
	if !upperRe.MatchString(pw) {
		violations = append(violations, "password must contain at least one uppercase letter")
	}
	if !lowerRe.MatchString(pw) {
		violations = append(violations, "password must contain at least one lowercase letter")
	}
	if !digitRe.MatchString(pw) {
		violations = append(violations, "password must contain at least one number")
	}

	score := 0
	for _, hit := range []bool{
		upperRe.MatchString(pw),
		lowerRe.MatchString(pw),
		digitRe.MatchString(pw),
		specialRe.MatchString(pw),
		len(pw) >= 12,
	} {
		if hit {
			score++
		}
	}
	strength := StrengthWeak
	if score >= 4 {
		strength = StrengthStrong
	} else if score >= 3 {
		strength = StrengthMedium
	}

	res := ok()
	if len(violations) > 0 {
		res = failure(violations...)
	}
	return PasswordResult{Result: res, Strength: strength}
}

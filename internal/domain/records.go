package domain

import "time"

// ─── Medication Types ───────────────────────────────────────────────────────

// Frequency is how often a medication is due.
type Frequency string

const (
	FreqDaily    Frequency = "daily"
	FreqWeekly   Frequency = "weekly"
	FreqAsNeeded Frequency = "asNeeded"
)

// Valid reports whether the frequency is a known value.
func (f Frequency) Valid() bool {
	return f == FreqDaily || f == FreqWeekly || f == FreqAsNeeded
}

// MedicationRecord is one medication on a patient's plan.
// The adherence calculator only reads it; mark-taken mutates
// Taken and LastTaken.
type MedicationRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Dosage    string    `json:"dosage"` // e.g. "100mg"
	Time      string    `json:"time"`   // scheduled HH:MM
	Frequency Frequency `json:"frequency"`
	Color     string    `json:"color,omitempty"` // display hex
	Taken     bool      `json:"taken"`
	LastTaken time.Time `json:"last_taken"` // zero = never taken
	CreatedAt time.Time `json:"created_at"`
}

// ─── Symptom Types ──────────────────────────────────────────────────────────

// Severity bounds. The canonical scale is 1–5.
const (
	SeverityMin = 1
	SeverityMax = 5
)

// SymptomRecord is one logged symptom. Read-only to the engines.
type SymptomRecord struct {
	ID       string    `json:"id"`
	UserID   string    `json:"user_id"`
	Name     string    `json:"name"`
	Severity int       `json:"severity"` // 1..5
	Notes    string    `json:"notes,omitempty"`
	Date     time.Time `json:"date"`
}

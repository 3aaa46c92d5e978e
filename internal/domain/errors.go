package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency.

var (
	// Account errors
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
	ErrNotPatient   = errors.New("account is not a patient")
	ErrNotDoctor    = errors.New("account is not a doctor")

	// Record errors
	ErrMedicationNotFound = errors.New("medication not found")
	ErrSymptomNotFound    = errors.New("symptom not found")

	// Validation errors
	ErrInvalidInput = errors.New("input failed validation")

	// Level table errors
	ErrLevelTableEmpty      = errors.New("level table must not be empty")
	ErrLevelTableBase       = errors.New("level table must start at level 1 with 0 XP")
	ErrLevelTableContiguous = errors.New("level table levels must be contiguous")
	ErrLevelTableIncreasing = errors.New("level table XP thresholds must be strictly increasing")

	// Store errors
	ErrStoreClosed = errors.New("store is closed")
)

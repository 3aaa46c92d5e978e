// Package domain holds the pure types shared by the HealthSync engines.
// No infrastructure imports — engines and stores depend on domain, never
// the other way around.
package domain

import "time"

// Role distinguishes the two account kinds.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
)

// Valid reports whether the role is one of the known kinds.
func (r Role) Valid() bool {
	return r == RolePatient || r == RoleDoctor
}

// UserAccount is the persisted profile record. The engines mutate only
// XP, Streak, BestStreak, LastActive, HealthScore and UpdatedAt; the rest
// belongs to the auth/profile layer.
type UserAccount struct {
	UID         string    `json:"uid"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Role        Role      `json:"role"`
	DoctorID    string    `json:"doctor_id,omitempty"` // assigned doctor, patients only
	XP          int64     `json:"xp"`
	Streak      int       `json:"streak"`
	BestStreak  int       `json:"best_streak"`
	LastActive  time.Time `json:"last_active"` // zero = never active
	HealthScore int       `json:"health_score"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Package score computes the composite health score: a 0..100 value
// blending medication adherence, streak momentum, and recent symptom
// burden.
package score

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/healthsync-app/healthsync/internal/app/adherence"
	"github.com/healthsync-app/healthsync/internal/domain"
	"github.com/healthsync-app/healthsync/internal/infra/sqlite"
	"github.com/healthsync-app/healthsync/internal/timeutil"
)

// Component weights. Adherence dominates; symptoms act as a drag.
const (
	adherenceWeight = 0.60
	streakWeight    = 0.25
	symptomWeight   = 0.15

	// Streaks at or beyond this many days earn the full streak component.
	streakCapDays = 30

	// Symptom burden looks back this many calendar days.
	symptomWindowDays = 7
)

// Result breaks a health score into its weighted parts.
type Result struct {
	Score          int `json:"score"`
	AdherencePart  int `json:"adherencePart"`
	StreakPart     int `json:"streakPart"`
	SymptomPart    int `json:"symptomPart"`
	AdherenceRate  int `json:"adherenceRate"`
	CurrentStreak  int `json:"currentStreak"`
	SymptomsLogged int `json:"symptomsLogged"`
}

// Calculator derives and persists health scores.
type Calculator struct {
	db        *sqlite.DB
	adherence *adherence.Calculator
}

func NewCalculator(db *sqlite.DB, adh *adherence.Calculator) *Calculator {
	return &Calculator{db: db, adherence: adh}
}

// Compute calculates the current health score for a user and persists
// it on the account.
func (c *Calculator) Compute(ctx context.Context, userID string) (Result, error) {
	return c.ComputeAt(ctx, userID, time.Now())
}

// ComputeAt is Compute with an explicit clock.
//
// Scoring:
//   - adherence: today's adherence rate, weighted 60%
//   - streak: current streak / 30 capped at 1.0, weighted 25%
//   - symptoms: 1 - (mean severity over the last 7 days / 5), weighted
//     15%; no symptoms logged counts as no burden
func (c *Calculator) ComputeAt(ctx context.Context, userID string, now time.Time) (Result, error) {
	user, err := c.db.GetUser(userID)
	if err != nil {
		return Result{}, fmt.Errorf("load user: %w", err)
	}

	adh, err := c.adherence.ComputeAt(ctx, userID, now)
	if err != nil {
		return Result{}, fmt.Errorf("compute adherence: %w", err)
	}

	windowStart := timeutil.StartOfDay(timeutil.AddDays(now, -(symptomWindowDays - 1)))
	symptoms, err := c.db.SymptomsByUserSince(userID, windowStart)
	if err != nil {
		return Result{}, fmt.Errorf("load symptoms: %w", err)
	}

	streakRatio := float64(user.Streak) / float64(streakCapDays)
	if streakRatio > 1 {
		streakRatio = 1
	}

	burden := 0.0
	if len(symptoms) > 0 {
		var total int
		for _, s := range symptoms {
			total += s.Severity
		}
		mean := float64(total) / float64(len(symptoms))
		burden = mean / float64(domain.SeverityMax)
	}

	adherencePart := float64(adh.AdherenceRate) * adherenceWeight
	streakPart := streakRatio * 100 * streakWeight
	symptomPart := (1 - burden) * 100 * symptomWeight

	score := int(math.Round(adherencePart + streakPart + symptomPart))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	if err := c.db.SetHealthScore(userID, score, now); err != nil {
		return Result{}, fmt.Errorf("persist score: %w", err)
	}

	return Result{
		Score:          score,
		AdherencePart:  int(math.Round(adherencePart)),
		StreakPart:     int(math.Round(streakPart)),
		SymptomPart:    int(math.Round(symptomPart)),
		AdherenceRate:  adh.AdherenceRate,
		CurrentStreak:  user.Streak,
		SymptomsLogged: len(symptoms),
	}, nil
}

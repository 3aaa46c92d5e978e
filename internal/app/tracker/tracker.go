// Package tracker orchestrates the daily tracking flows: adding and
// taking medications, logging symptoms, and firing the XP and streak
// side effects each action earns.
package tracker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/healthsync-app/healthsync/internal/app/adherence"
	"github.com/healthsync-app/healthsync/internal/app/streak"
	"github.com/healthsync-app/healthsync/internal/app/xp"
	"github.com/healthsync-app/healthsync/internal/domain"
	"github.com/healthsync-app/healthsync/internal/infra/metrics"
	"github.com/healthsync-app/healthsync/internal/infra/sqlite"
	"github.com/healthsync-app/healthsync/internal/timeutil"
	"github.com/healthsync-app/healthsync/internal/validate"
)

// Service wires the store and the engines behind the tracking flows.
type Service struct {
	db        *sqlite.DB
	streaks   *streak.Service
	engine    *xp.Engine
	adherence *adherence.Calculator
}

func NewService(db *sqlite.DB, streaks *streak.Service, engine *xp.Engine, adh *adherence.Calculator) *Service {
	return &Service{db: db, streaks: streaks, engine: engine, adherence: adh}
}

func invalid(res validate.Result) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(res.Violations, "; "))
}

// ─── Medications ────────────────────────────────────────────────────────────

// AddMedication validates and stores a medication, then awards the
// add-medication XP.
func (s *Service) AddMedication(ctx context.Context, in validate.MedicationInput) (*domain.MedicationRecord, error) {
	return s.AddMedicationAt(ctx, in, time.Now())
}

func (s *Service) AddMedicationAt(ctx context.Context, in validate.MedicationInput, now time.Time) (*domain.MedicationRecord, error) {
	if res := in.Validate(); !res.Valid {
		return nil, invalid(res)
	}
	if _, err := s.db.GetUser(in.UserID); err != nil {
		return nil, fmt.Errorf("add medication: %w", err)
	}

	med := domain.MedicationRecord{
		ID:        uuid.NewString(),
		UserID:    in.UserID,
		Name:      in.Name,
		Dosage:    in.Dosage,
		Time:      in.Time,
		Frequency: domain.Frequency(in.Frequency),
		Color:     in.Color,
		CreatedAt: now,
	}
	if err := s.db.InsertMedication(med); err != nil {
		return nil, fmt.Errorf("add medication: %w", err)
	}

	if _, err := s.engine.AwardXPAt(ctx, in.UserID, s.engine.Rewards().MedicationAdded, domain.ReasonMedicationAdded, now); err != nil {
		return nil, fmt.Errorf("award add-medication xp: %w", err)
	}
	return &med, nil
}

// Medications lists a user's medications, newest first.
func (s *Service) Medications(ctx context.Context, userID string) ([]domain.MedicationRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.db.MedicationsByUser(userID)
}

// DeleteMedication removes a medication after checking ownership.
func (s *Service) DeleteMedication(ctx context.Context, userID, medicationID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	med, err := s.db.GetMedication(medicationID)
	if err != nil {
		return err
	}
	if med.UserID != userID {
		return domain.ErrMedicationNotFound
	}
	return s.db.DeleteMedication(medicationID)
}

// TakeResult reports everything a mark-taken action triggered.
type TakeResult struct {
	Medication *domain.MedicationRecord     `json:"medication"`
	Streak     domain.StreakResult          `json:"streak"`
	Milestone  domain.MilestoneInfo         `json:"milestone"`
	Award      domain.MultiplierAwardResult `json:"award"`
	Adherence  domain.AdherenceResult       `json:"adherence"`
	PerfectDay bool                         `json:"perfect_day"`
}

// MarkTaken records a dose, updates the streak, and awards XP. The
// base reward is scaled by the post-update streak multiplier. Landing
// exactly on a streak milestone unlocks its achievement bonus, and
// completing the last tracked medication of the day earns the
// perfect-day bonus.
func (s *Service) MarkTaken(ctx context.Context, userID, medicationID string) (*TakeResult, error) {
	return s.MarkTakenAt(ctx, userID, medicationID, time.Now())
}

func (s *Service) MarkTakenAt(ctx context.Context, userID, medicationID string, now time.Time) (*TakeResult, error) {
	med, err := s.db.GetMedication(medicationID)
	if err != nil {
		return nil, fmt.Errorf("mark taken: %w", err)
	}
	if med.UserID != userID {
		return nil, domain.ErrMedicationNotFound
	}

	if err := s.db.MarkMedicationTaken(medicationID, now); err != nil {
		return nil, fmt.Errorf("mark taken: %w", err)
	}
	metrics.MedicationsTaken.Inc()
	med.Taken = true
	med.LastTaken = now

	streakRes, err := s.streaks.UpdateStreakAt(ctx, userID, now)
	if err != nil {
		return nil, fmt.Errorf("update streak: %w", err)
	}
	milestone := s.streaks.Milestone(streakRes.CurrentStreak)

	award, err := s.engine.AwardXPWithMultiplierAt(ctx, userID,
		s.engine.Rewards().MedicationTaken, domain.ReasonMedicationTaken,
		streakRes.CurrentStreak, now)
	if err != nil {
		return nil, fmt.Errorf("award medication xp: %w", err)
	}

	if milestone.IsMilestone && streakRes.StreakContinued {
		if _, err := s.engine.AwardXPAt(ctx, userID,
			s.engine.Rewards().AchievementUnlocked, domain.ReasonAchievementUnlocked, now); err != nil {
			return nil, fmt.Errorf("award milestone xp: %w", err)
		}
	}

	adh, err := s.adherence.ComputeAt(ctx, userID, now)
	if err != nil {
		return nil, fmt.Errorf("compute adherence: %w", err)
	}

	perfectDay := adh.AllMedicationsTaken
	if perfectDay {
		if _, err := s.engine.AwardXPAt(ctx, userID,
			s.engine.Rewards().PerfectDay, domain.ReasonPerfectDay, now); err != nil {
			return nil, fmt.Errorf("award perfect-day xp: %w", err)
		}
	}

	return &TakeResult{
		Medication: med,
		Streak:     streakRes,
		Milestone:  milestone,
		Award:      award,
		Adherence:  adh,
		PerfectDay: perfectDay,
	}, nil
}

// UnmarkTaken clears the taken flag. The last-taken timestamp is kept,
// so streak history is unaffected; XP already awarded is not clawed
// back.
func (s *Service) UnmarkTaken(ctx context.Context, userID, medicationID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	med, err := s.db.GetMedication(medicationID)
	if err != nil {
		return err
	}
	if med.UserID != userID {
		return domain.ErrMedicationNotFound
	}
	return s.db.ClearMedicationTaken(medicationID)
}

// ─── Symptoms ───────────────────────────────────────────────────────────────

// LogSymptom validates and stores a symptom entry, then awards the
// log-symptom XP.
func (s *Service) LogSymptom(ctx context.Context, in validate.SymptomInput) (*domain.SymptomRecord, error) {
	return s.LogSymptomAt(ctx, in, time.Now())
}

func (s *Service) LogSymptomAt(ctx context.Context, in validate.SymptomInput, now time.Time) (*domain.SymptomRecord, error) {
	if res := in.Validate(); !res.Valid {
		return nil, invalid(res)
	}
	if _, err := s.db.GetUser(in.UserID); err != nil {
		return nil, fmt.Errorf("log symptom: %w", err)
	}

	rec := domain.SymptomRecord{
		ID:       uuid.NewString(),
		UserID:   in.UserID,
		Name:     in.Name,
		Severity: in.Severity,
		Notes:    in.Notes,
		Date:     now,
	}
	if err := s.db.InsertSymptom(rec); err != nil {
		return nil, fmt.Errorf("log symptom: %w", err)
	}

	if _, err := s.engine.AwardXPAt(ctx, in.UserID, s.engine.Rewards().SymptomLogged, domain.ReasonSymptomLogged, now); err != nil {
		return nil, fmt.Errorf("award symptom xp: %w", err)
	}
	return &rec, nil
}

// Symptoms lists a user's symptoms over the trailing window of days.
func (s *Service) Symptoms(ctx context.Context, userID string, days int) ([]domain.SymptomRecord, error) {
	return s.SymptomsAt(ctx, userID, days, time.Now())
}

func (s *Service) SymptomsAt(ctx context.Context, userID string, days int, now time.Time) ([]domain.SymptomRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if days < 1 {
		days = 1
	}
	since := timeutil.StartOfDay(timeutil.AddDays(now, -(days - 1)))
	return s.db.SymptomsByUserSince(userID, since)
}

// DeleteSymptom removes a symptom entry after checking ownership.
func (s *Service) DeleteSymptom(ctx context.Context, userID, symptomID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	owned, err := s.db.SymptomOwner(symptomID)
	if err != nil {
		return err
	}
	if owned != userID {
		return domain.ErrSymptomNotFound
	}
	return s.db.DeleteSymptom(symptomID)
}

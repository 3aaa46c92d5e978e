// Package analytics aggregates patient data into doctor-facing
// summaries.
package analytics

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

// Service computes roster aggregates for doctors.
type Service struct {
	db        *sqlite.DB
	adherence *adherence.Calculator
}

func NewService(db *sqlite.DB, adh *adherence.Calculator) *Service {
	return &Service{db: db, adherence: adh}
}

// PatientSummary is one roster row in a doctor's overview.
type PatientSummary struct {
	UID           string `json:"uid"`
	Name          string `json:"name"`
	HealthScore   int    `json:"health_score"`
	CurrentStreak int    `json:"current_streak"`
	AdherenceRate int    `json:"adherence_rate"`
	FullyAdherent bool   `json:"fully_adherent"`
	LastActive    string `json:"last_active"`
}

// Overview computes the doctor's roster aggregate. The caller must be
// a doctor account.
func (s *Service) Overview(ctx context.Context, doctorID string) (domain.DoctorOverview, []PatientSummary, error) {
	return s.OverviewAt(ctx, doctorID, time.Now())
}

// OverviewAt is Overview with an explicit clock. XP-awarded totals
// cover the trailing 7 calendar days.
func (s *Service) OverviewAt(ctx context.Context, doctorID string, now time.Time) (domain.DoctorOverview, []PatientSummary, error) {
	doctor, err := s.db.GetUser(doctorID)
	if err != nil {
		return domain.DoctorOverview{}, nil, fmt.Errorf("load doctor: %w", err)
	}
	if doctor.Role != domain.RoleDoctor {
		return domain.DoctorOverview{}, nil, domain.ErrNotDoctor
	}

	patients, err := s.db.PatientsByDoctor(doctorID)
	if err != nil {
		return domain.DoctorOverview{}, nil, fmt.Errorf("load roster: %w", err)
	}

	overview := domain.DoctorOverview{Patients: len(patients)}
	if len(patients) == 0 {
		return overview, nil, nil
	}

	weekStart := timeutil.StartOfDay(timeutil.AddDays(now, -6))
	summaries := make([]PatientSummary, 0, len(patients))
	var adherenceSum, streakSum float64

	for _, p := range patients {
		adh, err := s.adherence.ComputeAt(ctx, p.UID, now)
		if err != nil {
			return domain.DoctorOverview{}, nil, fmt.Errorf("adherence for %s: %w", p.UID, err)
		}
		weekXP, err := s.db.XPTotalSince(p.UID, weekStart)
		if err != nil {
			return domain.DoctorOverview{}, nil, fmt.Errorf("xp total for %s: %w", p.UID, err)
		}

		adherenceSum += float64(adh.AdherenceRate)
		streakSum += float64(p.Streak)
		overview.XPAwardedThisWeek += weekXP
		if adh.AllMedicationsTaken {
			overview.FullyAdherentToday++
		}

		lastActive := "never"
		if !p.LastActive.IsZero() {
			lastActive = timeutil.RelativeTime(p.LastActive, now)
		}
		summaries = append(summaries, PatientSummary{
			UID:           p.UID,
			Name:          p.Name,
			HealthScore:   p.HealthScore,
			CurrentStreak: p.Streak,
			AdherenceRate: adh.AdherenceRate,
			FullyAdherent: adh.AllMedicationsTaken,
			LastActive:    lastActive,
		})
	}

	n := float64(len(patients))
	overview.AverageAdherence = round1(adherenceSum / n)
	overview.AverageStreak = round1(streakSum / n)
	return overview, summaries, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

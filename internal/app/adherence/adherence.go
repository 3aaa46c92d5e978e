// Package adherence computes today's medication-taken ratio.
// A medication counts as taken today iff its last-taken instant falls
// inside the half-open interval [today, tomorrow).
package adherence

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/healthsync-app/healthsync/internal/domain"
	"github.com/healthsync-app/healthsync/internal/infra/metrics"
	"github.com/healthsync-app/healthsync/internal/infra/sqlite"
	"github.com/healthsync-app/healthsync/internal/timeutil"
)

// Calculator computes adherence snapshots. Pure read, no side effects
// on the store.
type Calculator struct {
	db *sqlite.DB
}

// NewCalculator creates an adherence calculator.
func NewCalculator(db *sqlite.DB) *Calculator {
	return &Calculator{db: db}
}

// ComputeToday returns the user's adherence for the current calendar day.
func (c *Calculator) ComputeToday(ctx context.Context, userID string) (domain.AdherenceResult, error) {
	return c.ComputeAt(ctx, userID, time.Now())
}

// ComputeAt is ComputeToday with an explicit clock, for jobs and tests.
// Only daily and as-needed medications count. Zero medications is
// vacuously 100% adherent, but never "all taken".
func (c *Calculator) ComputeAt(ctx context.Context, userID string, now time.Time) (domain.AdherenceResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.AdherenceResult{}, err
	}

	meds, err := c.db.TrackedMedicationsByUser(userID)
	if err != nil {
		return domain.AdherenceResult{}, fmt.Errorf("load medications: %w", err)
	}

	dayStart := timeutil.StartOfDay(now)
	dayEnd := timeutil.AddDays(dayStart, 1)

	taken := 0
	for _, m := range meds {
		if !m.LastTaken.IsZero() && !m.LastTaken.Before(dayStart) && m.LastTaken.Before(dayEnd) {
			taken++
		}
	}

	total := len(meds)
	result := domain.AdherenceResult{
		TotalMedications:    total,
		TakenMedications:    taken,
		AdherenceRate:       100,
		AllMedicationsTaken: total > 0 && taken == total,
	}
	if total > 0 {
		result.AdherenceRate = int(math.Round(float64(taken) / float64(total) * 100))
	}

	metrics.AdherenceRate.Observe(float64(result.AdherenceRate))
	return result, nil
}

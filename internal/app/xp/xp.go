// Package xp implements the XP and leveling engine.
// Levels come from an explicit threshold table; every award appends one
// immutable ledger entry atomically with the account update, so the
// ledger and the balance can never disagree.
package xp

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/healthsync-app/healthsync/internal/domain"
	"github.com/healthsync-app/healthsync/internal/infra/metrics"
	"github.com/healthsync-app/healthsync/internal/infra/sqlite"
	"github.com/healthsync-app/healthsync/internal/timeutil"
)

// Engine awards XP and resolves levels.
type Engine struct {
	db      *sqlite.DB
	table   domain.LevelTable
	rewards domain.RewardTable
}

// NewEngine creates an XP engine with the given tables. The level table
// is validated up front; a bad table is a configuration error.
func NewEngine(db *sqlite.DB, table domain.LevelTable, rewards domain.RewardTable) (*Engine, error) {
	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("level table: %w", err)
	}
	return &Engine{db: db, table: table, rewards: rewards}, nil
}

// Rewards returns the engine's reward table.
func (e *Engine) Rewards() domain.RewardTable {
	return e.rewards
}

// CalculateLevel resolves the level for a cumulative XP amount: the
// highest threshold with xpRequired <= xp. The table starts at {1, 0},
// so every non-negative amount matches.
func (e *Engine) CalculateLevel(xp int64) int {
	for i := len(e.table) - 1; i >= 0; i-- {
		if xp >= e.table[i].XP {
			return e.table[i].Level
		}
	}
	return 1
}

// AwardXP adds points to an account and appends a ledger entry.
// Points are taken as supplied — negative awards (penalties) are an
// intentional capability, not clamped. Returns domain.ErrUserNotFound
// when the account is missing.
func (e *Engine) AwardXP(ctx context.Context, userID string, points int64, reason string) (domain.XPAwardResult, error) {
	return e.AwardXPAt(ctx, userID, points, reason, time.Now())
}

// AwardXPAt is AwardXP with an explicit clock.
func (e *Engine) AwardXPAt(ctx context.Context, userID string, points int64, reason string, now time.Time) (domain.XPAwardResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.XPAwardResult{}, err
	}

	entry, err := e.db.AwardXP(uuid.NewString(), userID, points, reason, now, e.CalculateLevel)
	if err != nil {
		return domain.XPAwardResult{}, fmt.Errorf("award xp: %w", err)
	}

	// Counters reject negative deltas; deductions get their own series.
	if points >= 0 {
		metrics.XPAwarded.WithLabelValues(reason).Add(float64(points))
	} else {
		metrics.XPDeducted.WithLabelValues(reason).Add(float64(-points))
	}
	metrics.LedgerAppends.Inc()
	if entry.NewLevel > entry.PreviousLevel {
		metrics.LevelUps.Inc()
	}

	return domain.XPAwardResult{
		NewXP:         entry.NewXP,
		NewLevel:      entry.NewLevel,
		PreviousLevel: entry.PreviousLevel,
		LeveledUp:     entry.NewLevel > entry.PreviousLevel,
	}, nil
}

// StreakMultiplier returns the XP multiplier for a streak length.
// Tiers are inclusive at their lower bound: exactly 30 days earns 2.0x.
func StreakMultiplier(streakDays int) float64 {
	switch {
	case streakDays >= 30:
		return 2.0
	case streakDays >= 21:
		return 1.75
	case streakDays >= 14:
		return 1.5
	case streakDays >= 7:
		return 1.25
	default:
		return 1.0
	}
}

// AwardXPWithMultiplier scales basePoints by the streak multiplier,
// rounds to the nearest point, and delegates to AwardXP.
func (e *Engine) AwardXPWithMultiplier(ctx context.Context, userID string, basePoints int64, reason string, streakDays int) (domain.MultiplierAwardResult, error) {
	return e.AwardXPWithMultiplierAt(ctx, userID, basePoints, reason, streakDays, time.Now())
}

// AwardXPWithMultiplierAt is AwardXPWithMultiplier with an explicit clock.
func (e *Engine) AwardXPWithMultiplierAt(ctx context.Context, userID string, basePoints int64, reason string, streakDays int, now time.Time) (domain.MultiplierAwardResult, error) {
	multiplier := StreakMultiplier(streakDays)
	total := int64(math.Round(float64(basePoints) * multiplier))

	award, err := e.AwardXPAt(ctx, userID, total, reason, now)
	if err != nil {
		return domain.MultiplierAwardResult{}, err
	}

	return domain.MultiplierAwardResult{
		XPAwardResult: award,
		BaseXP:        basePoints,
		Multiplier:    multiplier,
		TotalXP:       total,
	}, nil
}

// ProgressToNextLevel computes progress between the current and next
// thresholds. At max level: 100%, nothing needed. Pure.
func (e *Engine) ProgressToNextLevel(currentXP int64) domain.LevelProgress {
	current := e.CalculateLevel(currentXP)
	if current >= e.table.MaxLevel() {
		return domain.LevelProgress{
			CurrentLevel:       current,
			NextLevel:          current,
			ProgressPercentage: 100,
		}
	}

	// Table is contiguous from 1, so index by level directly.
	curThreshold := e.table[current-1].XP
	nextThreshold := e.table[current].XP

	progress := currentXP - curThreshold
	span := nextThreshold - curThreshold
	pct := int(math.Round(float64(progress) / float64(span) * 100))

	return domain.LevelProgress{
		CurrentLevel:       current,
		NextLevel:          current + 1,
		XPNeeded:           nextThreshold - currentXP,
		XPProgress:         progress,
		ProgressPercentage: pct,
	}
}

// Breakdown returns per-day XP totals for the trailing window of
// calendar days ending today. Every day appears, zero-filled when no
// transactions landed on it.
func (e *Engine) Breakdown(ctx context.Context, userID string, days int) ([]domain.DailyXP, error) {
	return e.BreakdownAt(ctx, userID, days, time.Now())
}

// BreakdownAt is Breakdown with an explicit clock.
func (e *Engine) BreakdownAt(ctx context.Context, userID string, days int, now time.Time) ([]domain.DailyXP, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if days < 1 {
		return nil, fmt.Errorf("breakdown window must be at least 1 day, got %d", days)
	}

	windowStart := timeutil.StartOfDay(timeutil.AddDays(now, -(days - 1)))
	entries, err := e.db.XPHistorySince(userID, windowStart)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}

	byDay := make(map[string]*domain.DailyXP, days)
	series := make([]domain.DailyXP, days)
	for i := 0; i < days; i++ {
		key := timeutil.DayKey(timeutil.AddDays(windowStart, i))
		series[i] = domain.DailyXP{Date: key}
		byDay[key] = &series[i]
	}

	for _, entry := range entries {
		// Ledger timestamps group on the caller's calendar.
		if day, ok := byDay[timeutil.DayKey(entry.Timestamp.In(now.Location()))]; ok {
			day.XP += entry.Points
			day.Transactions++
		}
	}
	return series, nil
}

// Package streak implements the adherence streak engine.
// A streak is the count of consecutive calendar days with at least one
// qualifying action. Same-day repeats are no-ops; a gap of one day
// extends, anything longer resets.
package streak

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/healthsync-app/healthsync/internal/domain"
	"github.com/healthsync-app/healthsync/internal/infra/metrics"
	"github.com/healthsync-app/healthsync/internal/infra/sqlite"
	"github.com/healthsync-app/healthsync/internal/timeutil"
)

// Service manages per-user streak state.
type Service struct {
	db         *sqlite.DB
	milestones domain.MilestoneTable
}

// NewService creates a streak service with the default milestone ladder.
func NewService(db *sqlite.DB) *Service {
	return NewServiceWithMilestones(db, domain.DefaultMilestones())
}

// NewServiceWithMilestones creates a streak service with a custom ladder.
func NewServiceWithMilestones(db *sqlite.DB, m domain.MilestoneTable) *Service {
	return &Service{db: db, milestones: m}
}

// UpdateStreak records activity for today and advances the user's streak.
func (s *Service) UpdateStreak(ctx context.Context, userID string) (domain.StreakResult, error) {
	return s.UpdateStreakAt(ctx, userID, time.Now())
}

// UpdateStreakAt is UpdateStreak with an explicit clock, for jobs and tests.
//
// Decision table, in order:
//  1. never active            -> streak = 1
//  2. last active today       -> no-op, nothing written (idempotent)
//  3. last active yesterday   -> streak + 1, best updated
//  4. gap of 2+ days          -> streak = 1, marked broken
func (s *Service) UpdateStreakAt(ctx context.Context, userID string, now time.Time) (domain.StreakResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.StreakResult{}, err
	}

	user, err := s.db.GetUser(userID)
	if err != nil {
		return domain.StreakResult{}, fmt.Errorf("load account: %w", err)
	}

	result := domain.StreakResult{
		CurrentStreak: user.Streak,
		BestStreak:    user.BestStreak,
	}

	switch {
	case user.LastActive.IsZero():
		// First-ever activity
		result.CurrentStreak = 1

	case timeutil.IsToday(user.LastActive, now):
		// Already counted today — preserve idempotence, write nothing
		return result, nil

	case timeutil.IsYesterday(user.LastActive, now):
		result.CurrentStreak = user.Streak + 1
		result.StreakContinued = true
		metrics.StreaksContinued.Inc()

	default:
		result.CurrentStreak = 1
		result.StreakBroken = true
		metrics.StreaksBroken.Inc()
	}

	if result.CurrentStreak > result.BestStreak {
		result.BestStreak = result.CurrentStreak
	}

	if err := s.db.UpdateStreakFields(userID, result.CurrentStreak, result.BestStreak, now, now); err != nil {
		return domain.StreakResult{}, fmt.Errorf("persist streak: %w", err)
	}

	if info := s.Milestone(result.CurrentStreak); info.IsMilestone {
		metrics.MilestonesReached.WithLabelValues(strconv.Itoa(info.Milestone)).Inc()
	}

	return result, nil
}

// ResetStreak unconditionally zeroes the streak and clears last-active.
// Best streak is history and survives the reset.
func (s *Service) ResetStreak(ctx context.Context, userID string) error {
	return s.ResetStreakAt(ctx, userID, time.Now())
}

// ResetStreakAt is ResetStreak with an explicit clock.
func (s *Service) ResetStreakAt(ctx context.Context, userID string, now time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.db.ResetStreakFields(userID, now); err != nil {
		return fmt.Errorf("reset streak: %w", err)
	}
	return nil
}

// Milestone locates a streak on the milestone ladder. Pure.
func (s *Service) Milestone(streak int) domain.MilestoneInfo {
	return MilestoneFor(s.milestones, streak)
}

// MilestoneFor locates a streak on the given ladder.
//   - Milestone: largest ladder value <= streak, 0 if none achieved
//   - NextMilestone: smallest ladder value > streak, sentinel past the top
//   - AchievementName: set only when the streak is exactly a ladder value
func MilestoneFor(table domain.MilestoneTable, streak int) domain.MilestoneInfo {
	info := domain.MilestoneInfo{NextMilestone: table.Sentinel}

	for _, m := range table.Days {
		if m <= streak {
			info.Milestone = m
		} else {
			info.NextMilestone = m
			break
		}
	}
	if info.Milestone == streak && streak > 0 {
		if name, ok := table.Names[streak]; ok {
			info.IsMilestone = true
			info.AchievementName = name
		}
	}
	return info
}

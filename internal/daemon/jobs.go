package daemon

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/healthsync-app/healthsync/internal/app/adherence"
	"github.com/healthsync-app/healthsync/internal/app/score"
	"github.com/healthsync-app/healthsync/internal/app/xp"
	"github.com/healthsync-app/healthsync/internal/domain"
	"github.com/healthsync-app/healthsync/internal/infra/sqlite"
	"github.com/healthsync-app/healthsync/internal/timeutil"
)

// Rollover runs the nightly close-of-day job: it finalizes yesterday's
// adherence for every patient, pays out the perfect-day bonus, and
// refreshes health scores.
type Rollover struct {
	db        *sqlite.DB
	adherence *adherence.Calculator
	engine    *xp.Engine
	scores    *score.Calculator
	log       *zap.Logger
	cron      *cron.Cron
}

// NewRollover builds the scheduled job from config. The schedule uses
// standard 5-field cron syntax.
func NewRollover(db *sqlite.DB, adh *adherence.Calculator, engine *xp.Engine, scores *score.Calculator, cfg EngineConfig, log *zap.Logger) (*Rollover, error) {
	loc := time.Local
	if cfg.Timezone != "" {
		var err error
		loc, err = time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
		}
	}

	r := &Rollover{
		db:        db,
		adherence: adh,
		engine:    engine,
		scores:    scores,
		log:       log,
		cron:      cron.New(cron.WithLocation(loc)),
	}

	schedule := cfg.RolloverCron
	if schedule == "" {
		schedule = "5 0 * * *"
	}
	if _, err := r.cron.AddFunc(schedule, func() {
		if err := r.Run(context.Background(), time.Now()); err != nil {
			log.Error("daily rollover failed", zap.Error(err))
		}
	}); err != nil {
		return nil, fmt.Errorf("schedule rollover %q: %w", schedule, err)
	}
	return r, nil
}

// Start begins the cron scheduler.
func (r *Rollover) Start() { r.cron.Start() }

// Stop halts the scheduler, waiting for a running job to finish.
func (r *Rollover) Stop() {
	<-r.cron.Stop().Done()
}

// Run executes one rollover pass. Yesterday's adherence is computed as
// of the last instant of that day; a patient who took every tracked
// medication earns the perfect-day bonus unless the ledger shows it was
// already paid during the day. Per-patient failures are logged and
// skipped so one bad account cannot stall the nightly run.
func (r *Rollover) Run(ctx context.Context, now time.Time) error {
	patients, err := r.db.ListPatients()
	if err != nil {
		return fmt.Errorf("list patients: %w", err)
	}

	yesterdayStart := timeutil.StartOfDay(timeutil.AddDays(now, -1))
	yesterdayEnd := timeutil.EndOfDay(timeutil.AddDays(now, -1))
	var perfect int
	for _, p := range patients {
		adh, err := r.adherence.ComputeAt(ctx, p.UID, yesterdayEnd)
		if err != nil {
			r.log.Warn("rollover adherence failed",
				zap.String("uid", p.UID), zap.Error(err))
			continue
		}

		if adh.AllMedicationsTaken {
			perfect++
			// Completing the last dose already pays the bonus in the
			// moment; the rollover only settles days nobody closed out.
			paid, err := r.perfectDayPaid(p.UID, yesterdayStart, yesterdayEnd)
			if err != nil {
				r.log.Warn("rollover ledger check failed",
					zap.String("uid", p.UID), zap.Error(err))
				continue
			}
			if !paid {
				// Stamped on the day it rewards so the audit trail and
				// per-day breakdowns group it with that day.
				if _, err := r.engine.AwardXPAt(ctx, p.UID,
					r.engine.Rewards().PerfectDay, domain.ReasonPerfectDay, yesterdayEnd); err != nil {
					r.log.Warn("rollover perfect-day award failed",
						zap.String("uid", p.UID), zap.Error(err))
				}
			}
		}

		if _, err := r.scores.ComputeAt(ctx, p.UID, now); err != nil {
			r.log.Warn("rollover score update failed",
				zap.String("uid", p.UID), zap.Error(err))
		}
	}

	r.log.Info("daily rollover complete",
		zap.Int("patients", len(patients)),
		zap.Int("perfect_days", perfect),
	)
	return nil
}

// perfectDayPaid reports whether the ledger already holds a perfect-day
// entry stamped within [from, to].
func (r *Rollover) perfectDayPaid(userID string, from, to time.Time) (bool, error) {
	entries, err := r.db.XPHistorySince(userID, from)
	if err != nil {
		return false, err
	}
	for _, e := range entries {
		if e.Reason == domain.ReasonPerfectDay && !e.Timestamp.After(to) {
			return true, nil
		}
	}
	return false, nil
}

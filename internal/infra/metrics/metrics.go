// Package metrics provides Prometheus metrics for HealthSync —
// counters and histograms for streaks, adherence, XP and HTTP traffic.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Streaks ────────────────────────────────────────────────────────────────

// StreaksContinued counts day-over-day streak continuations.
var StreaksContinued = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "healthsync",
	Name:      "streaks_continued_total",
	Help:      "Total streak continuations across all users.",
})

// StreaksBroken counts streak resets caused by a gap of 2+ days.
var StreaksBroken = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "healthsync",
	Name:      "streaks_broken_total",
	Help:      "Total streaks broken across all users.",
})

// MilestonesReached counts streak milestones hit, by milestone value.
var MilestonesReached = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "healthsync",
	Name:      "streak_milestones_total",
	Help:      "Total streak milestones reached.",
}, []string{"milestone"})

// ─── Adherence ──────────────────────────────────────────────────────────────

// AdherenceRate observes computed adherence percentages.
var AdherenceRate = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "healthsync",
	Name:      "adherence_rate_percent",
	Help:      "Distribution of computed adherence rates.",
	Buckets:   []float64{0, 25, 50, 75, 90, 100},
})

// MedicationsTaken counts mark-taken actions.
var MedicationsTaken = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "healthsync",
	Name:      "medications_taken_total",
	Help:      "Total medications marked taken.",
})

// ─── XP ─────────────────────────────────────────────────────────────────────

// XPAwarded counts XP points awarded, by reason.
var XPAwarded = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "healthsync",
	Name:      "xp_awarded_total",
	Help:      "Total XP points awarded.",
}, []string{"reason"})

// XPDeducted counts XP points removed by negative awards, by reason.
var XPDeducted = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "healthsync",
	Name:      "xp_deducted_total",
	Help:      "Total XP points deducted via negative awards.",
}, []string{"reason"})

// LevelUps counts level-up events.
var LevelUps = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "healthsync",
	Name:      "level_ups_total",
	Help:      "Total level-up events.",
})

// LedgerAppends counts XP ledger entries written.
var LedgerAppends = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "healthsync",
	Name:      "xp_ledger_appends_total",
	Help:      "Total XP ledger entries appended.",
})

// ─── HTTP ───────────────────────────────────────────────────────────────────

// HTTPDuration tracks request latency by route and status class.
var HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "healthsync",
	Name:      "http_request_duration_seconds",
	Help:      "HTTP request duration in seconds.",
	Buckets:   prometheus.DefBuckets,
}, []string{"route", "status"})

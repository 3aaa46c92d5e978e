// Package domain — streak, adherence and XP progression types.
// The tables here (levels, milestones, rewards) are explicit immutable
// configuration handed to the engines, not ambient constants, so tests
// can swap in alternate tables.
package domain

import "time"

// ─── Streak Types ───────────────────────────────────────────────────────────

// StreakResult summarizes one UpdateStreak call.
type StreakResult struct {
	CurrentStreak   int  `json:"current_streak"`
	BestStreak      int  `json:"best_streak"`
	StreakContinued bool `json:"streak_continued"`
	StreakBroken    bool `json:"streak_broken"`
}

// MilestoneInfo describes where a streak sits on the milestone ladder.
type MilestoneInfo struct {
	Milestone       int    `json:"milestone"`        // largest milestone <= streak, 0 if none
	NextMilestone   int    `json:"next_milestone"`   // smallest milestone > streak, sentinel past the top
	IsMilestone     bool   `json:"is_milestone"`     // streak is exactly a milestone value
	AchievementName string `json:"achievement_name,omitempty"` // bound name when IsMilestone
}

// MilestoneTable is the ordered milestone ladder with display names.
type MilestoneTable struct {
	Days     []int          // ascending milestone values
	Names    map[int]string // milestone value -> achievement name
	Sentinel int            // NextMilestone once past the top
}

// DefaultMilestones returns the fixed milestone ladder.
func DefaultMilestones() MilestoneTable {
	return MilestoneTable{
		Days: []int{7, 14, 21, 30, 50, 100, 365},
		Names: map[int]string{
			7:   "Week Warrior",
			14:  "Two Week Champion",
			21:  "Three Week Hero",
			30:  "Monthly Master",
			50:  "Dedication Medal",
			100: "Century Champion",
			365: "Year-Long Legend",
		},
		Sentinel: 999,
	}
}

// ─── Adherence Types ────────────────────────────────────────────────────────

// AdherenceResult is today's medication-taken snapshot.
// A patient with zero medications is vacuously 100% adherent but never
// reported as "all taken".
type AdherenceResult struct {
	AllMedicationsTaken bool `json:"all_medications_taken"`
	TotalMedications    int  `json:"total_medications"`
	TakenMedications    int  `json:"taken_medications"`
	AdherenceRate       int  `json:"adherence_rate"` // rounded percent, 100 when no meds
}

// ─── XP / Level Types ───────────────────────────────────────────────────────

// LevelThreshold maps a level to the minimum cumulative XP required.
type LevelThreshold struct {
	Level int   `json:"level"`
	XP    int64 `json:"xp"`
}

// LevelTable is the ordered level ladder. Validate before use.
type LevelTable []LevelThreshold

// Validate checks the table invariants: non-empty, first entry {1, 0},
// contiguous levels, strictly increasing XP.
func (t LevelTable) Validate() error {
	if len(t) == 0 {
		return ErrLevelTableEmpty
	}
	if t[0].Level != 1 || t[0].XP != 0 {
		return ErrLevelTableBase
	}
	for i := 1; i < len(t); i++ {
		if t[i].Level != t[i-1].Level+1 {
			return ErrLevelTableContiguous
		}
		if t[i].XP <= t[i-1].XP {
			return ErrLevelTableIncreasing
		}
	}
	return nil
}

// MaxLevel returns the highest level in the table.
func (t LevelTable) MaxLevel() int {
	return t[len(t)-1].Level
}

// DefaultLevelTable returns the production level ladder (L1–L15).
func DefaultLevelTable() LevelTable {
	return LevelTable{
		{Level: 1, XP: 0},
		{Level: 2, XP: 100},
		{Level: 3, XP: 250},
		{Level: 4, XP: 500},
		{Level: 5, XP: 1000},
		{Level: 6, XP: 1750},
		{Level: 7, XP: 2500},
		{Level: 8, XP: 3500},
		{Level: 9, XP: 5000},
		{Level: 10, XP: 7000},
		{Level: 11, XP: 10000},
		{Level: 12, XP: 15000},
		{Level: 13, XP: 20000},
		{Level: 14, XP: 30000},
		{Level: 15, XP: 50000},
	}
}

// XPTransaction is one immutable entry in the append-only XP ledger.
// Invariant: NewXP == PreviousXP + Points. Entries are never mutated
// or deleted; the ledger is the audit trail for level history.
type XPTransaction struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Points        int64     `json:"points"`
	Reason        string    `json:"reason"`
	PreviousXP    int64     `json:"previous_xp"`
	NewXP         int64     `json:"new_xp"`
	PreviousLevel int       `json:"previous_level"`
	NewLevel      int       `json:"new_level"`
	Timestamp     time.Time `json:"timestamp"`
}

// XPAwardResult summarizes one AwardXP call.
type XPAwardResult struct {
	NewXP         int64 `json:"new_xp"`
	NewLevel      int   `json:"new_level"`
	PreviousLevel int   `json:"previous_level"`
	LeveledUp     bool  `json:"leveled_up"`
}

// MultiplierAwardResult extends XPAwardResult with the streak multiplier
// that was applied.
type MultiplierAwardResult struct {
	XPAwardResult
	BaseXP     int64   `json:"base_xp"`
	Multiplier float64 `json:"multiplier"`
	TotalXP    int64   `json:"total_xp"`
}

// LevelProgress describes progress between the current and next level.
type LevelProgress struct {
	CurrentLevel       int   `json:"current_level"`
	NextLevel          int   `json:"next_level"`
	XPNeeded           int64 `json:"xp_needed"`
	XPProgress         int64 `json:"xp_progress"`
	ProgressPercentage int   `json:"progress_percentage"`
}

// DailyXP is one day in an XP breakdown series.
type DailyXP struct {
	Date         string `json:"date"` // YYYY-MM-DD
	XP           int64  `json:"xp"`
	Transactions int    `json:"transactions"`
}

// ─── Reward Table ───────────────────────────────────────────────────────────

// RewardTable maps user actions to XP amounts.
type RewardTable struct {
	MedicationTaken      int64 `toml:"medication_taken" json:"medication_taken"`
	MedicationAdded      int64 `toml:"medication_added" json:"medication_added"`
	SymptomLogged        int64 `toml:"symptom_logged" json:"symptom_logged"`
	PrescriptionUploaded int64 `toml:"prescription_uploaded" json:"prescription_uploaded"`
	ProfileCompleted     int64 `toml:"profile_completed" json:"profile_completed"`
	DailyStreak          int64 `toml:"daily_streak" json:"daily_streak"`
	WeeklyStreak         int64 `toml:"weekly_streak" json:"weekly_streak"`
	MonthlyStreak        int64 `toml:"monthly_streak" json:"monthly_streak"`
	AchievementUnlocked  int64 `toml:"achievement_unlocked" json:"achievement_unlocked"`
	ReportViewed         int64 `toml:"report_viewed" json:"report_viewed"`
	PerfectDay           int64 `toml:"perfect_day" json:"perfect_day"`
	PerfectWeek          int64 `toml:"perfect_week" json:"perfect_week"`
}

// DefaultRewards returns the production reward amounts.
func DefaultRewards() RewardTable {
	return RewardTable{
		MedicationTaken:      10,
		MedicationAdded:      15,
		SymptomLogged:        5,
		PrescriptionUploaded: 15,
		ProfileCompleted:     50,
		DailyStreak:          25,
		WeeklyStreak:         100,
		MonthlyStreak:        500,
		AchievementUnlocked:  50,
		ReportViewed:         5,
		PerfectDay:           50,
		PerfectWeek:          200,
	}
}

// Award reasons recorded in the ledger.
const (
	ReasonMedicationTaken     = "medication_taken"
	ReasonMedicationAdded     = "medication_added"
	ReasonSymptomLogged       = "symptom_logged"
	ReasonProfileCompleted    = "profile_completed"
	ReasonDailyStreak         = "daily_streak"
	ReasonPerfectDay          = "perfect_day"
	ReasonPerfectWeek         = "perfect_week"
	ReasonAchievementUnlocked = "achievement_unlocked"
	ReasonReportViewed        = "report_viewed"
)

// ─── Doctor Analytics ───────────────────────────────────────────────────────

// DoctorOverview aggregates a doctor's patient roster.
type DoctorOverview struct {
	Patients           int     `json:"patients"`
	AverageAdherence   float64 `json:"average_adherence"`
	AverageStreak      float64 `json:"average_streak"`
	FullyAdherentToday int     `json:"fully_adherent_today"`
	XPAwardedThisWeek  int64   `json:"xp_awarded_this_week"`
}

package daemon

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/healthsync-app/healthsync/internal/app/adherence"
	"github.com/healthsync-app/healthsync/internal/app/score"
	"github.com/healthsync-app/healthsync/internal/app/xp"
	"github.com/healthsync-app/healthsync/internal/domain"
	"github.com/healthsync-app/healthsync/internal/infra/sqlite"
)

var rolloverNow = time.Date(2026, 5, 11, 0, 5, 0, 0, time.UTC)

func testRollover(t *testing.T) (*Rollover, *sqlite.DB) {
	t.Helper()
	db, err := sqlite.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	engine, err := xp.NewEngine(db, domain.DefaultLevelTable(), domain.DefaultRewards())
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	adh := adherence.NewCalculator(db)
	r, err := NewRollover(db, adh, engine, score.NewCalculator(db, adh), EngineConfig{}, zap.NewNop())
	if err != nil {
		t.Fatalf("new rollover: %v", err)
	}
	return r, db
}

func seedPatientWithMed(t *testing.T, db *sqlite.DB, uid string, takenAt time.Time) {
	t.Helper()
	err := db.PutUser(domain.UserAccount{
		UID:       uid,
		Email:     uid + "@example.com",
		Name:      "Rollover Patient",
		Role:      domain.RolePatient,
		CreatedAt: rolloverNow.Add(-72 * time.Hour),
		UpdatedAt: rolloverNow.Add(-72 * time.Hour),
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}

	med := domain.MedicationRecord{
		ID:        uuid.NewString(),
		UserID:    uid,
		Name:      "Amlodipine",
		Dosage:    "5mg",
		Time:      "08:00",
		Frequency: domain.FreqDaily,
		CreatedAt: rolloverNow.Add(-72 * time.Hour),
	}
	if err := db.InsertMedication(med); err != nil {
		t.Fatalf("insert medication: %v", err)
	}
	if !takenAt.IsZero() {
		if err := db.MarkMedicationTaken(med.ID, takenAt); err != nil {
			t.Fatalf("mark taken: %v", err)
		}
	}
}

func TestRolloverAwardsPerfectDay(t *testing.T) {
	r, db := testRollover(t)
	// Taken yesterday afternoon: a perfect day at rollover.
	seedPatientWithMed(t, db, "p1", rolloverNow.Add(-14*time.Hour))
	// Never taken: no bonus.
	seedPatientWithMed(t, db, "p2", time.Time{})

	if err := r.Run(context.Background(), rolloverNow); err != nil {
		t.Fatalf("run: %v", err)
	}

	p1, err := db.GetUser("p1")
	if err != nil {
		t.Fatalf("get p1: %v", err)
	}
	if p1.XP != 50 {
		t.Errorf("p1 XP = %d, want 50 perfect-day bonus", p1.XP)
	}
	if p1.HealthScore == 0 {
		t.Error("p1 health score should be refreshed")
	}

	p2, err := db.GetUser("p2")
	if err != nil {
		t.Fatalf("get p2: %v", err)
	}
	if p2.XP != 0 {
		t.Errorf("p2 XP = %d, want 0", p2.XP)
	}

	// The payout is stamped on the day it rewards, not the run time.
	entries, err := db.XPHistorySince("p1", rolloverNow.Add(-48*time.Hour))
	if err != nil {
		t.Fatalf("ledger: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("ledger entries = %d, want 1", len(entries))
	}
	wantDay := rolloverNow.Add(-24 * time.Hour).Format("2006-01-02")
	if got := entries[0].Timestamp.UTC().Format("2006-01-02"); got != wantDay {
		t.Errorf("payout stamped on %s, want %s", got, wantDay)
	}
}

func TestRolloverSkipsAlreadyPaidDay(t *testing.T) {
	r, db := testRollover(t)
	takenAt := rolloverNow.Add(-14 * time.Hour)
	seedPatientWithMed(t, db, "p1", takenAt)

	// Completing the last dose paid the bonus during the day.
	levelFor := func(int64) int { return 1 }
	if _, err := db.AwardXP(uuid.NewString(), "p1", 50, domain.ReasonPerfectDay, takenAt, levelFor); err != nil {
		t.Fatalf("seed payout: %v", err)
	}

	if err := r.Run(context.Background(), rolloverNow); err != nil {
		t.Fatalf("run: %v", err)
	}

	p1, err := db.GetUser("p1")
	if err != nil {
		t.Fatalf("get p1: %v", err)
	}
	if p1.XP != 50 {
		t.Errorf("p1 XP = %d, want 50 (bonus must not be paid twice)", p1.XP)
	}

	entries, err := db.XPHistorySince("p1", rolloverNow.Add(-48*time.Hour))
	if err != nil {
		t.Fatalf("ledger: %v", err)
	}
	var perfectEntries int
	for _, e := range entries {
		if e.Reason == domain.ReasonPerfectDay {
			perfectEntries++
		}
	}
	if perfectEntries != 1 {
		t.Errorf("perfect-day ledger entries = %d, want 1", perfectEntries)
	}
}

func TestRolloverIdleRoster(t *testing.T) {
	r, _ := testRollover(t)
	if err := r.Run(context.Background(), rolloverNow); err != nil {
		t.Fatalf("run on empty roster: %v", err)
	}
}

func TestNewRolloverRejectsBadSchedule(t *testing.T) {
	db, err := sqlite.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer db.Close()

	engine, err := xp.NewEngine(db, domain.DefaultLevelTable(), domain.DefaultRewards())
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	adh := adherence.NewCalculator(db)
	_, err = NewRollover(db, adh, engine, score.NewCalculator(db, adh), EngineConfig{RolloverCron: "not a cron"}, zap.NewNop())
	if err == nil {
		t.Fatal("expected error for invalid schedule")
	}
}

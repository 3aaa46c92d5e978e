package xp_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/healthsync-app/healthsync/internal/app/xp"
	"github.com/healthsync-app/healthsync/internal/domain"
	"github.com/healthsync-app/healthsync/internal/infra/sqlite"
)

var noon = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

func testEngine(t *testing.T) (*xp.Engine, *sqlite.DB) {
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
	return engine, db
}

func seedUser(t *testing.T, db *sqlite.DB, uid string, xpBalance int64) {
	t.Helper()
	err := db.PutUser(domain.UserAccount{
		UID:       uid,
		Email:     uid + "@example.com",
		Name:      "Test Patient",
		Role:      domain.RolePatient,
		XP:        xpBalance,
		CreatedAt: noon.Add(-24 * time.Hour),
		UpdatedAt: noon.Add(-24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
}

func TestNewEngineRejectsBadTable(t *testing.T) {
	db, err := sqlite.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer db.Close()

	bad := domain.LevelTable{{Level: 1, XP: 0}, {Level: 3, XP: 100}}
	if _, err := xp.NewEngine(db, bad, domain.DefaultRewards()); !errors.Is(err, domain.ErrLevelTableContiguous) {
		t.Fatalf("expected ErrLevelTableContiguous, got %v", err)
	}
}

func TestCalculateLevel(t *testing.T) {
	engine, _ := testEngine(t)

	cases := []struct {
		xp   int64
		want int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{249, 2},
		{250, 3},
		{999, 4},
		{1000, 5},
		{50000, 15},
		{999999, 15},
	}
	for _, tc := range cases {
		if got := engine.CalculateLevel(tc.xp); got != tc.want {
			t.Errorf("CalculateLevel(%d) = %d, want %d", tc.xp, got, tc.want)
		}
	}
}

func TestAwardXPCrossesLevel(t *testing.T) {
	engine, db := testEngine(t)
	seedUser(t, db, "u1", 80)

	res, err := engine.AwardXPAt(context.Background(), "u1", 150, domain.ReasonMedicationTaken, noon)
	if err != nil {
		t.Fatalf("award: %v", err)
	}
	if res.NewXP != 230 {
		t.Errorf("NewXP = %d, want 230", res.NewXP)
	}
	if res.PreviousLevel != 1 || res.NewLevel != 2 || !res.LeveledUp {
		t.Errorf("level transition = %d -> %d (leveledUp=%v), want 1 -> 2 true",
			res.PreviousLevel, res.NewLevel, res.LeveledUp)
	}

	user, err := db.GetUser("u1")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if user.XP != 230 {
		t.Errorf("persisted XP = %d, want 230", user.XP)
	}
}

func TestAwardXPNegativePoints(t *testing.T) {
	engine, db := testEngine(t)
	seedUser(t, db, "u1", 120)

	res, err := engine.AwardXPAt(context.Background(), "u1", -50, "penalty", noon)
	if err != nil {
		t.Fatalf("award: %v", err)
	}
	if res.NewXP != 70 {
		t.Errorf("NewXP = %d, want 70", res.NewXP)
	}
	if res.LeveledUp {
		t.Error("a deduction must not report a level-up")
	}
	if res.PreviousLevel != 2 || res.NewLevel != 1 {
		t.Errorf("level transition = %d -> %d, want 2 -> 1", res.PreviousLevel, res.NewLevel)
	}

	// Repeated deductions keep working and keep the ledger consistent.
	res, err = engine.AwardXPAt(context.Background(), "u1", -20, "penalty", noon.Add(time.Minute))
	if err != nil {
		t.Fatalf("second deduction: %v", err)
	}
	if res.NewXP != 50 {
		t.Errorf("NewXP = %d, want 50", res.NewXP)
	}
	count, err := db.LedgerCount("u1")
	if err != nil {
		t.Fatalf("ledger count: %v", err)
	}
	if count != 2 {
		t.Errorf("ledger entries = %d, want 2", count)
	}
}

func TestAwardXPUserMissing(t *testing.T) {
	engine, _ := testEngine(t)

	_, err := engine.AwardXPAt(context.Background(), "ghost", 10, domain.ReasonMedicationTaken, noon)
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestStreakMultiplier(t *testing.T) {
	cases := []struct {
		days int
		want float64
	}{
		{0, 1.0},
		{6, 1.0},
		{7, 1.25},
		{13, 1.25},
		{14, 1.5},
		{20, 1.5},
		{21, 1.75},
		{29, 1.75},
		{30, 2.0},
		{365, 2.0},
	}
	for _, tc := range cases {
		if got := xp.StreakMultiplier(tc.days); got != tc.want {
			t.Errorf("StreakMultiplier(%d) = %v, want %v", tc.days, got, tc.want)
		}
	}
}

func TestAwardXPWithMultiplierRounds(t *testing.T) {
	engine, db := testEngine(t)
	seedUser(t, db, "u1", 0)

	// 10 base at 1.25x = 12.5, rounds to 13.
	res, err := engine.AwardXPWithMultiplierAt(context.Background(), "u1", 10, domain.ReasonMedicationTaken, 7, noon)
	if err != nil {
		t.Fatalf("award: %v", err)
	}
	if res.BaseXP != 10 || res.Multiplier != 1.25 || res.TotalXP != 13 {
		t.Errorf("got base=%d mult=%v total=%d, want 10 1.25 13", res.BaseXP, res.Multiplier, res.TotalXP)
	}
	if res.NewXP != 13 {
		t.Errorf("NewXP = %d, want 13", res.NewXP)
	}
}

func TestProgressToNextLevel(t *testing.T) {
	engine, _ := testEngine(t)

	// 230 XP sits between level 2 (100) and level 3 (250): 130 of 150.
	p := engine.ProgressToNextLevel(230)
	if p.CurrentLevel != 2 || p.NextLevel != 3 {
		t.Errorf("levels = %d -> %d, want 2 -> 3", p.CurrentLevel, p.NextLevel)
	}
	if p.XPNeeded != 20 || p.XPProgress != 130 {
		t.Errorf("needed=%d progress=%d, want 20 130", p.XPNeeded, p.XPProgress)
	}
	if p.ProgressPercentage != 87 {
		t.Errorf("percentage = %d, want 87", p.ProgressPercentage)
	}
}

func TestProgressAtMaxLevel(t *testing.T) {
	engine, _ := testEngine(t)

	p := engine.ProgressToNextLevel(60000)
	if p.CurrentLevel != 15 || p.NextLevel != 15 {
		t.Errorf("levels = %d -> %d, want 15 -> 15", p.CurrentLevel, p.NextLevel)
	}
	if p.XPNeeded != 0 || p.ProgressPercentage != 100 {
		t.Errorf("needed=%d pct=%d, want 0 100", p.XPNeeded, p.ProgressPercentage)
	}
}

func TestBreakdownZeroFillsEmptyDays(t *testing.T) {
	engine, db := testEngine(t)
	seedUser(t, db, "u1", 0)

	ctx := context.Background()
	if _, err := engine.AwardXPAt(ctx, "u1", 10, domain.ReasonMedicationTaken, noon.Add(-48*time.Hour)); err != nil {
		t.Fatalf("award: %v", err)
	}
	if _, err := engine.AwardXPAt(ctx, "u1", 5, domain.ReasonSymptomLogged, noon.Add(-48*time.Hour)); err != nil {
		t.Fatalf("award: %v", err)
	}
	if _, err := engine.AwardXPAt(ctx, "u1", 25, domain.ReasonDailyStreak, noon); err != nil {
		t.Fatalf("award: %v", err)
	}

	series, err := engine.BreakdownAt(ctx, "u1", 3, noon)
	if err != nil {
		t.Fatalf("breakdown: %v", err)
	}
	if len(series) != 3 {
		t.Fatalf("len(series) = %d, want 3", len(series))
	}

	want := []domain.DailyXP{
		{Date: "2026-05-08", XP: 15, Transactions: 2},
		{Date: "2026-05-09"},
		{Date: "2026-05-10", XP: 25, Transactions: 1},
	}
	for i, w := range want {
		if series[i] != w {
			t.Errorf("series[%d] = %+v, want %+v", i, series[i], w)
		}
	}
}

func TestBreakdownRejectsBadWindow(t *testing.T) {
	engine, _ := testEngine(t)
	if _, err := engine.BreakdownAt(context.Background(), "u1", 0, noon); err == nil {
		t.Fatal("expected error for zero-day window")
	}
}

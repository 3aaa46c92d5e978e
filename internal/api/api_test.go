package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/healthsync-app/healthsync/internal/api"
	"github.com/healthsync-app/healthsync/internal/app/adherence"
	"github.com/healthsync-app/healthsync/internal/app/analytics"
	"github.com/healthsync-app/healthsync/internal/app/score"
	"github.com/healthsync-app/healthsync/internal/app/streak"
	"github.com/healthsync-app/healthsync/internal/app/tracker"
	"github.com/healthsync-app/healthsync/internal/app/xp"
	"github.com/healthsync-app/healthsync/internal/domain"
	"github.com/healthsync-app/healthsync/internal/infra/sqlite"
)

func testHandler(t *testing.T) (http.Handler, *sqlite.DB) {
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
	streaks := streak.NewService(db)
	trk := tracker.NewService(db, streaks, engine, adh)
	scores := score.NewCalculator(db, adh)
	ana := analytics.NewService(db, adh)

	srv := api.NewServer(db, streaks, engine, adh, trk, scores, ana, zap.NewNop())
	return srv.Handler(), db
}

func seedUser(t *testing.T, db *sqlite.DB, uid string, role domain.Role) {
	t.Helper()
	now := time.Now()
	err := db.PutUser(domain.UserAccount{
		UID:       uid,
		Email:     uid + "@example.com",
		Name:      "Api Test",
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var parsed map[string]any
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &parsed); err != nil {
			t.Fatalf("decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, parsed
}

func TestHealthEndpoint(t *testing.T) {
	h, _ := testHandler(t)
	rec, body := doJSON(t, h, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if body["ok"] != true || body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestCreateAndGetUser(t *testing.T) {
	h, _ := testHandler(t)

	rec, body := doJSON(t, h, http.MethodPost, "/api/users", map[string]any{
		"uid":   "u1",
		"email": "u1@example.com",
		"name":  "Jordan Smith",
		"role":  "patient",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (%v)", rec.Code, body)
	}
	user := body["user"].(map[string]any)
	// Signup awards the profile-completed bonus.
	if user["xp"].(float64) != 50 {
		t.Errorf("xp = %v, want 50", user["xp"])
	}

	rec, body = doJSON(t, h, http.MethodGet, "/api/users/u1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if body["level"].(float64) != 1 {
		t.Errorf("level = %v, want 1", body["level"])
	}
}

func TestCreateUserValidation(t *testing.T) {
	h, _ := testHandler(t)
	rec, body := doJSON(t, h, http.MethodPost, "/api/users", map[string]any{
		"email": "not-an-email",
		"name":  "X",
		"role":  "admin",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if body["ok"] != false {
		t.Errorf("envelope ok = %v, want false", body["ok"])
	}
	msg := body["error"].(string)
	for _, want := range []string{"email", "name", "role"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q should mention %s", msg, want)
		}
	}
}

func TestUnknownUserIs404(t *testing.T) {
	h, _ := testHandler(t)
	rec, body := doJSON(t, h, http.MethodPost, "/api/users/ghost/streak", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 (%v)", rec.Code, body)
	}
	if body["ok"] != false {
		t.Errorf("envelope ok = %v, want false", body["ok"])
	}
}

func TestStreakUpdateAndReset(t *testing.T) {
	h, db := testHandler(t)
	seedUser(t, db, "u1", domain.RolePatient)

	rec, body := doJSON(t, h, http.MethodPost, "/api/users/u1/streak", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%v)", rec.Code, body)
	}
	res := body["streak"].(map[string]any)
	if res["current_streak"].(float64) != 1 {
		t.Errorf("current streak = %v, want 1", res["current_streak"])
	}

	rec, _ = doJSON(t, h, http.MethodDelete, "/api/users/u1/streak", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("reset status = %d", rec.Code)
	}
	user, err := db.GetUser("u1")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if user.Streak != 0 {
		t.Errorf("streak = %d after reset, want 0", user.Streak)
	}
}

func TestMilestoneQuery(t *testing.T) {
	h, _ := testHandler(t)

	rec, body := doJSON(t, h, http.MethodGet, "/api/streak/milestone?streak=7", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	milestone := body["milestone"].(map[string]any)
	if milestone["achievement_name"] != "Week Warrior" {
		t.Errorf("milestone = %v", milestone)
	}

	rec, _ = doJSON(t, h, http.MethodGet, "/api/streak/milestone?streak=abc", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad query status = %d, want 400", rec.Code)
	}
}

func TestAwardXPEndpoint(t *testing.T) {
	h, db := testHandler(t)
	seedUser(t, db, "u1", domain.RolePatient)

	rec, body := doJSON(t, h, http.MethodPost, "/api/users/u1/xp", map[string]any{
		"points": 150,
		"reason": "medication_taken",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%v)", rec.Code, body)
	}
	award := body["award"].(map[string]any)
	if award["new_xp"].(float64) != 150 || award["new_level"].(float64) != 2 {
		t.Errorf("award = %v", award)
	}

	rec, _ = doJSON(t, h, http.MethodPost, "/api/users/u1/xp", map[string]any{"points": 10})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing reason status = %d, want 400", rec.Code)
	}
}

func TestMedicationFlow(t *testing.T) {
	h, db := testHandler(t)
	seedUser(t, db, "u1", domain.RolePatient)

	rec, body := doJSON(t, h, http.MethodPost, "/api/medications", map[string]any{
		"user_id":   "u1",
		"name":      "Metformin",
		"dosage":    "500mg",
		"time":      "08:00",
		"frequency": "daily",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add status = %d (%v)", rec.Code, body)
	}
	medID := body["medication"].(map[string]any)["id"].(string)

	rec, body = doJSON(t, h, http.MethodPost, "/api/medications/"+medID+"/taken", map[string]any{
		"user_id": "u1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("take status = %d (%v)", rec.Code, body)
	}
	result := body["result"].(map[string]any)
	adh := result["adherence"].(map[string]any)
	if adh["all_medications_taken"] != true {
		t.Errorf("adherence = %v", adh)
	}

	rec, body = doJSON(t, h, http.MethodGet, "/api/users/u1/adherence", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("adherence status = %d", rec.Code)
	}
	if body["adherence"].(map[string]any)["adherence_rate"].(float64) != 100 {
		t.Errorf("adherence = %v", body["adherence"])
	}
}

func TestSymptomValidation400(t *testing.T) {
	h, db := testHandler(t)
	seedUser(t, db, "u1", domain.RolePatient)

	rec, body := doJSON(t, h, http.MethodPost, "/api/symptoms", map[string]any{
		"user_id":  "u1",
		"name":     "Headache",
		"severity": 11,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d (%v)", rec.Code, body)
	}
	if !strings.Contains(body["error"].(string), "severity") {
		t.Errorf("error = %v", body["error"])
	}
}

func TestDoctorOverviewEndpoint(t *testing.T) {
	h, db := testHandler(t)
	seedUser(t, db, "d1", domain.RoleDoctor)

	rec, body := doJSON(t, h, http.MethodGet, "/api/doctors/d1/overview", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%v)", rec.Code, body)
	}
	overview := body["overview"].(map[string]any)
	if overview["patients"].(float64) != 0 {
		t.Errorf("patients = %v, want 0", overview["patients"])
	}

	// A patient asking for an overview is a client error.
	seedUser(t, db, "p1", domain.RolePatient)
	rec, _ = doJSON(t, h, http.MethodGet, "/api/doctors/p1/overview", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("patient overview status = %d, want 400", rec.Code)
	}
}

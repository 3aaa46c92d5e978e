package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/healthsync-app/healthsync/internal/domain"
	"github.com/healthsync-app/healthsync/internal/validate"
)

// ─── Users ───────────────────────────────────────────────────────────────────

type createUserRequest struct {
	UID      string `json:"uid,omitempty"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	DoctorID string `json:"doctor_id,omitempty"`
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	var violations []string
	req.Name = validate.SanitizeString(req.Name)
	if !validate.Email(req.Email) {
		violations = append(violations, "invalid email address")
	}
	if !validate.PersonName(req.Name) {
		violations = append(violations, "invalid name (2-50 characters, letters and spaces only)")
	}
	if !validate.Role(req.Role) {
		violations = append(violations, "invalid role (must be patient or doctor)")
	}
	if len(violations) > 0 {
		writeError(w, http.StatusBadRequest, strings.Join(violations, "; "))
		return
	}

	if req.UID == "" {
		req.UID = uuid.NewString()
	}
	now := time.Now()
	account := domain.UserAccount{
		UID:       req.UID,
		Email:     req.Email,
		Name:      req.Name,
		Role:      domain.Role(req.Role),
		DoctorID:  req.DoctorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.db.PutUser(account); err != nil {
		s.respondError(w, err)
		return
	}

	// A complete profile earns its one-time bonus at signup.
	if _, err := s.engine.AwardXP(r.Context(), account.UID, s.engine.Rewards().ProfileCompleted, domain.ReasonProfileCompleted); err != nil {
		s.respondError(w, err)
		return
	}

	user, err := s.db.GetUser(account.UID)
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeOK(w, http.StatusCreated, map[string]any{"user": user})
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.db.GetUser(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{
		"user":     user,
		"level":    s.engine.CalculateLevel(user.XP),
		"progress": s.engine.ProgressToNextLevel(user.XP),
	})
}

// ─── Streaks ─────────────────────────────────────────────────────────────────

func (s *Server) handleUpdateStreak(w http.ResponseWriter, r *http.Request) {
	res, err := s.streaks.UpdateStreak(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{
		"streak":    res,
		"milestone": s.streaks.Milestone(res.CurrentStreak),
	})
}

func (s *Server) handleResetStreak(w http.ResponseWriter, r *http.Request) {
	if err := s.streaks.ResetStreak(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.respondError(w, err)
		return
	}
	writeOK(w, http.StatusOK, nil)
}

func (s *Server) handleMilestone(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r, "streak")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"milestone": s.streaks.Milestone(days)})
}

// ─── Adherence and score ─────────────────────────────────────────────────────

func (s *Server) handleAdherence(w http.ResponseWriter, r *http.Request) {
	res, err := s.adherence.ComputeToday(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"adherence": res})
}

func (s *Server) handleHealthScore(w http.ResponseWriter, r *http.Request) {
	res, err := s.scores.Compute(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"health_score": res})
}

// ─── XP ──────────────────────────────────────────────────────────────────────

type awardXPRequest struct {
	Points     int64  `json:"points"`
	Reason     string `json:"reason"`
	StreakDays *int   `json:"streak_days,omitempty"`
}

func (s *Server) handleAwardXP(w http.ResponseWriter, r *http.Request) {
	var req awardXPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if req.Reason == "" {
		writeError(w, http.StatusBadRequest, "reason is required")
		return
	}

	userID := chi.URLParam(r, "id")
	if req.StreakDays != nil {
		res, err := s.engine.AwardXPWithMultiplier(r.Context(), userID, req.Points, req.Reason, *req.StreakDays)
		if err != nil {
			s.respondError(w, err)
			return
		}
		writeOK(w, http.StatusOK, map[string]any{"award": res})
		return
	}

	res, err := s.engine.AwardXP(r.Context(), userID, req.Points, req.Reason)
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"award": res})
}

func (s *Server) handleXPProgress(w http.ResponseWriter, r *http.Request) {
	current, err := queryInt(r, "xp")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"progress": s.engine.ProgressToNextLevel(int64(current))})
}

func (s *Server) handleXPBreakdown(w http.ResponseWriter, r *http.Request) {
	days := 7
	if r.URL.Query().Get("days") != "" {
		var err error
		if days, err = queryInt(r, "days"); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	series, err := s.engine.Breakdown(r.Context(), chi.URLParam(r, "id"), days)
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"breakdown": series})
}

// ─── Medications ─────────────────────────────────────────────────────────────

func (s *Server) handleAddMedication(w http.ResponseWriter, r *http.Request) {
	var in validate.MedicationInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	med, err := s.tracker.AddMedication(r.Context(), in)
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeOK(w, http.StatusCreated, map[string]any{"medication": med})
}

func (s *Server) handleListMedications(w http.ResponseWriter, r *http.Request) {
	meds, err := s.tracker.Medications(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"medications": meds})
}

type takeRequest struct {
	UserID string `json:"user_id"`
}

func (s *Server) handleMarkTaken(w http.ResponseWriter, r *http.Request) {
	var req takeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	res, err := s.tracker.MarkTaken(r.Context(), req.UserID, chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"result": res})
}

func (s *Server) handleUnmarkTaken(w http.ResponseWriter, r *http.Request) {
	err := s.tracker.UnmarkTaken(r.Context(), r.URL.Query().Get("user"), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeOK(w, http.StatusOK, nil)
}

func (s *Server) handleDeleteMedication(w http.ResponseWriter, r *http.Request) {
	err := s.tracker.DeleteMedication(r.Context(), r.URL.Query().Get("user"), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeOK(w, http.StatusOK, nil)
}

// ─── Symptoms ────────────────────────────────────────────────────────────────

func (s *Server) handleLogSymptom(w http.ResponseWriter, r *http.Request) {
	var in validate.SymptomInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	rec, err := s.tracker.LogSymptom(r.Context(), in)
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeOK(w, http.StatusCreated, map[string]any{"symptom": rec})
}

func (s *Server) handleListSymptoms(w http.ResponseWriter, r *http.Request) {
	days := 7
	if r.URL.Query().Get("days") != "" {
		var err error
		if days, err = queryInt(r, "days"); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	symptoms, err := s.tracker.Symptoms(r.Context(), chi.URLParam(r, "id"), days)
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"symptoms": symptoms})
}

func (s *Server) handleDeleteSymptom(w http.ResponseWriter, r *http.Request) {
	err := s.tracker.DeleteSymptom(r.Context(), r.URL.Query().Get("user"), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeOK(w, http.StatusOK, nil)
}

// ─── Doctor analytics ────────────────────────────────────────────────────────

func (s *Server) handleDoctorOverview(w http.ResponseWriter, r *http.Request) {
	overview, patients, err := s.analytics.Overview(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{
		"overview": overview,
		"patients": patients,
	})
}

func queryInt(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("query parameter %q must be an integer", key)
	}
	return n, nil
}

package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mind-engage/mindengage-labrank/internal/eventlog"
	"github.com/mind-engage/mindengage-labrank/internal/lab"
	"github.com/mind-engage/mindengage-labrank/internal/metrics"
	"github.com/mind-engage/mindengage-labrank/internal/rbac"
)

// GET /me/application
func GetMyApplicationHandler(store lab.Store, log *slog.Logger) http.HandlerFunc {
	log = orDefault(log)
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := store.GetStudent(r.Context(), viewerID(r))
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}

// PUT /me/application  { "gpa": 3.45, "lab_id": "..." }
//
// A student holds one registration; submitting again replaces it.
func RegisterHandler(store lab.Store, events eventlog.Recorder, log *slog.Logger) http.HandlerFunc {
	log = orDefault(log)
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			GPA   *float64 `json:"gpa"`
			LabID string   `json:"lab_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.GPA == nil || strings.TrimSpace(req.LabID) == "" {
			http.Error(w, "gpa and lab_id required", http.StatusBadRequest)
			return
		}
		p, _ := rbac.PrincipalFromContext(r.Context())
		reg := lab.Registration{
			StudentID: p.Subject,
			Email:     p.Email,
			GPA:       *req.GPA,
			LabID:     strings.TrimSpace(req.LabID),
		}
		st, err := store.Register(r.Context(), reg)
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		metrics.RecordApplicationChange("register")
		if err := events.Record(r.Context(), eventlog.TypeApplicationRegistered, st.ID,
			map[string]any{"lab_id": st.LabID, "gpa": st.GPA}); err != nil {
			log.WarnContext(r.Context(), "event log append failed", "type", eventlog.TypeApplicationRegistered, "err", err)
		}
		log.InfoContext(r.Context(), "application registered", "student_id", st.ID, "lab_id", st.LabID)
		writeJSON(w, http.StatusOK, st)
	}
}

// DELETE /me/application
func WithdrawHandler(store lab.Store, events eventlog.Recorder, log *slog.Logger) http.HandlerFunc {
	log = orDefault(log)
	return func(w http.ResponseWriter, r *http.Request) {
		id := viewerID(r)
		prev, err := store.GetStudent(r.Context(), id)
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		st, err := store.Withdraw(r.Context(), id)
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		metrics.RecordApplicationChange("withdraw")
		if err := events.Record(r.Context(), eventlog.TypeApplicationWithdrawn, id,
			map[string]any{"lab_id": prev.LabID}); err != nil {
			log.WarnContext(r.Context(), "event log append failed", "type", eventlog.TypeApplicationWithdrawn, "err", err)
		}
		writeJSON(w, http.StatusOK, st)
	}
}

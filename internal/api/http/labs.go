package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-labrank/internal/rbac"
	"github.com/mind-engage/mindengage-labrank/internal/standings"
)

// StandingsService is implemented by *standings.Service.
type StandingsService interface {
	LabStandings(ctx context.Context, labID, viewerID string) (standings.Standings, error)
	Overview(ctx context.Context, major, viewerID string) ([]standings.Summary, error)
	AdminRoster(ctx context.Context) ([]standings.RosterRow, error)
}

func viewerID(r *http.Request) string {
	p, _ := rbac.PrincipalFromContext(r.Context())
	return p.Subject
}

// GET /labs?major=
func ListLabsHandler(svc StandingsService, log *slog.Logger) http.HandlerFunc {
	log = orDefault(log)
	return func(w http.ResponseWriter, r *http.Request) {
		major := strings.TrimSpace(r.URL.Query().Get("major"))
		list, err := svc.Overview(r.Context(), major, viewerID(r))
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// GET /labs/{labID}
func GetLabStandingsHandler(svc StandingsService, log *slog.Logger) http.HandlerFunc {
	log = orDefault(log)
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := svc.LabStandings(r.Context(), chi.URLParam(r, "labID"), viewerID(r))
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}

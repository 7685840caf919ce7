package http

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-labrank/internal/eventlog"
	"github.com/mind-engage/mindengage-labrank/internal/lab"
)

// GET /admin/applicants[?format=csv]
func RosterHandler(svc StandingsService, log *slog.Logger) http.HandlerFunc {
	log = orDefault(log)
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.AdminRoster(r.Context())
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		if r.URL.Query().Get("format") != "csv" {
			writeJSON(w, http.StatusOK, rows)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="applicants.csv"`)
		cw := csv.NewWriter(w)
		_ = cw.Write([]string{"lab_id", "lab_name", "major", "capacity", "rank", "within_capacity", "student_id", "email", "gpa"})
		for _, row := range rows {
			_ = cw.Write([]string{
				row.LabID, row.LabName, row.Major, strconv.Itoa(row.Capacity),
				strconv.Itoa(row.Rank), strconv.FormatBool(row.WithinCapacity),
				row.StudentID, row.Email, strconv.FormatFloat(row.GPA, 'f', 2, 64),
			})
		}
		cw.Flush()
	}
}

// PATCH /admin/labs/{labID}/capacity  { "capacity": 4 }
//
// Only the lab row changes; rankings pick up the new capacity on next read.
func UpdateCapacityHandler(store lab.Store, events eventlog.Recorder, log *slog.Logger) http.HandlerFunc {
	log = orDefault(log)
	return func(w http.ResponseWriter, r *http.Request) {
		labID := chi.URLParam(r, "labID")
		var req struct {
			Capacity *int `json:"capacity"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Capacity == nil {
			http.Error(w, "capacity required", http.StatusBadRequest)
			return
		}
		prev, err := store.GetLab(r.Context(), labID)
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		l, err := store.UpdateCapacity(r.Context(), labID, *req.Capacity)
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		if err := events.Record(r.Context(), eventlog.TypeCapacityChanged, labID,
			map[string]int{"from": prev.Capacity, "to": l.Capacity}); err != nil {
			log.WarnContext(r.Context(), "event log append failed", "type", eventlog.TypeCapacityChanged, "err", err)
		}
		log.InfoContext(r.Context(), "lab capacity changed", "lab_id", labID, "from", prev.Capacity, "to", l.Capacity)
		writeJSON(w, http.StatusOK, l)
	}
}

type labRow struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Professor string `json:"professor"`
	Major     string `json:"major"`
	Capacity  int    `json:"capacity"`
}

// POST /admin/labs/import
//
// Accepts either multipart file= (CSV/JSON) OR raw JSON array in body.
// Rows with an id update that lab; rows without one create a lab.
func ImportLabsHandler(store lab.Store, events eventlog.Recorder, majors []string, log *slog.Logger) http.HandlerFunc {
	log = orDefault(log)
	return func(w http.ResponseWriter, r *http.Request) {
		var rows []labRow
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			f, _, err := r.FormFile("file")
			if err != nil {
				http.Error(w, "file required", http.StatusBadRequest)
				return
			}
			defer f.Close()
			rows, err = decodeLabRows(f)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		} else if err := json.NewDecoder(r.Body).Decode(&rows); err != nil {
			http.Error(w, "expected JSON array or multipart file", http.StatusBadRequest)
			return
		}

		for i, row := range rows {
			if err := validateLabRow(row, majors); err != nil {
				http.Error(w, fmt.Sprintf("row %d: %v", i+1, err), http.StatusBadRequest)
				return
			}
		}

		saved, err := upsertLabs(r.Context(), store, rows)
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		if err := events.Record(r.Context(), eventlog.TypeLabImported, "labs",
			map[string]int{"count": len(saved)}); err != nil {
			log.WarnContext(r.Context(), "event log append failed", "type", eventlog.TypeLabImported, "err", err)
		}
		writeJSON(w, http.StatusOK, map[string]any{"upserted": len(saved), "labs": saved})
	}
}

func validateLabRow(row labRow, majors []string) error {
	if strings.TrimSpace(row.Name) == "" {
		return errors.New("name required")
	}
	if strings.TrimSpace(row.Major) == "" {
		return errors.New("major required")
	}
	if len(majors) > 0 && !slices.Contains(majors, row.Major) {
		return fmt.Errorf("unknown major %q", row.Major)
	}
	return lab.ValidateCapacity(row.Capacity)
}

func upsertLabs(ctx context.Context, store lab.Store, rows []labRow) ([]lab.Lab, error) {
	out := make([]lab.Lab, 0, len(rows))
	for _, row := range rows {
		l, err := store.PutLab(ctx, lab.Lab{
			ID:        strings.TrimSpace(row.ID),
			Name:      strings.TrimSpace(row.Name),
			Professor: strings.TrimSpace(row.Professor),
			Major:     strings.TrimSpace(row.Major),
			Capacity:  row.Capacity,
		})
		if err != nil {
			return out, err
		}
		out = append(out, l)
	}
	return out, nil
}

// decodeLabRows sniffs CSV vs JSON by the first non-space byte.
func decodeLabRows(f io.ReadSeeker) ([]labRow, error) {
	buf := make([]byte, 64)
	n, err := f.Read(buf)
	if n == 0 {
		return nil, errors.New("empty file")
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	if first := strings.TrimSpace(string(buf[:n])); strings.HasPrefix(first, "[") {
		var rows []labRow
		if err := json.NewDecoder(f).Decode(&rows); err != nil {
			return nil, errors.New("bad json")
		}
		return rows, nil
	}
	rows, err := parseLabCSV(f)
	if err != nil {
		return nil, fmt.Errorf("bad csv: %w", err)
	}
	return rows, nil
}

func parseLabCSV(r io.Reader) ([]labRow, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	hdr, err := cr.Read()
	if err != nil {
		return nil, err
	}
	idx := map[string]int{}
	for i, h := range hdr {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF")))] = i
	}
	for _, k := range []string{"name", "major", "capacity"} {
		if _, ok := idx[k]; !ok {
			return nil, errors.New("missing column: " + k)
		}
	}
	col := func(rec []string, k string) string {
		if i, ok := idx[k]; ok && i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
		return ""
	}
	var rows []labRow
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		capacity, err := strconv.Atoi(col(rec, "capacity"))
		if err != nil {
			return nil, fmt.Errorf("capacity %q: %w", col(rec, "capacity"), err)
		}
		rows = append(rows, labRow{
			ID:        col(rec, "id"),
			Name:      col(rec, "name"),
			Professor: col(rec, "professor"),
			Major:     col(rec, "major"),
			Capacity:  capacity,
		})
	}
	return rows, nil
}

// EventLister is implemented by *eventlog.Repo.
type EventLister interface {
	List(ctx context.Context, afterSeq int64, limit int) ([]eventlog.Event, error)
}

// GET /admin/events?after=0&limit=100
func EventsHandler(events EventLister, log *slog.Logger) http.HandlerFunc {
	log = orDefault(log)
	return func(w http.ResponseWriter, r *http.Request) {
		after := int64(parseIntDefault(r.URL.Query().Get("after"), 0))
		limit := parseIntDefault(r.URL.Query().Get("limit"), 100)
		list, err := events.List(r.Context(), after, limit)
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// Package standings derives per-lab rankings from the current store
// snapshot. Nothing here is persisted; every call re-ranks.
package standings

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/mind-engage/mindengage-labrank/internal/lab"
	"github.com/mind-engage/mindengage-labrank/internal/metrics"
	"github.com/mind-engage/mindengage-labrank/internal/ranking"
)

// Reader is the part of lab.Store the service needs.
type Reader interface {
	ListLabs(ctx context.Context, opts lab.LabListOpts) ([]lab.Lab, error)
	GetLab(ctx context.Context, id string) (lab.Lab, error)
	ListApplicants(ctx context.Context, labID string) ([]lab.Applicant, error)
	ListAllApplicants(ctx context.Context) ([]lab.Applicant, error)
}

type Service struct {
	store Reader
	log   *slog.Logger
}

func NewService(store Reader, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, log: log}
}

// Entry is one row of a lab's ranking as shown to students. Identities of
// other applicants are not exposed.
type Entry struct {
	Rank           int     `json:"rank"`
	GPA            float64 `json:"gpa"`
	WithinCapacity bool    `json:"within_capacity"`
	Position       float64 `json:"position"` // 0..100 on the lab's scale
	IsViewer       bool    `json:"is_viewer,omitempty"`
}

type Standings struct {
	Lab        lab.Lab        `json:"lab"`
	Capacity   int            `json:"capacity"` // normalized, >= 1
	Applicants int            `json:"applicants"`
	Ratio      float64        `json:"ratio"`
	Demand     ranking.Demand `json:"demand"`
	Scale      ScaleView      `json:"scale"`
	Entries    []Entry        `json:"entries"`
	Viewer     *Entry         `json:"viewer,omitempty"`
}

// ScaleView is ranking.Scale without applicant identities.
type ScaleView struct {
	Min      float64   `json:"min"`
	Max      float64   `json:"max"`
	Midpoint float64   `json:"midpoint"`
	Boundary *Boundary `json:"boundary,omitempty"`
}

type Boundary struct {
	Rank     int     `json:"rank"`
	GPA      float64 `json:"gpa"`
	Position float64 `json:"position"`
}

// LabStandings ranks one lab. The lab row and its applicants are read
// concurrently.
func (s *Service) LabStandings(ctx context.Context, labID, viewerID string) (Standings, error) {
	var (
		l    lab.Lab
		apps []lab.Applicant
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		l, err = s.store.GetLab(gctx, labID)
		return err
	})
	g.Go(func() error {
		var err error
		apps, err = s.store.ListApplicants(gctx, labID)
		return err
	})
	if err := g.Wait(); err != nil {
		return Standings{}, err
	}

	st := build(l, apps, viewerID)
	metrics.RecordRanking("lab", st.Applicants)
	s.log.DebugContext(ctx, "lab ranked",
		"lab_id", l.ID, "applicants", st.Applicants, "capacity", st.Capacity,
		"boundary", st.Scale.Boundary != nil)
	return st, nil
}

func build(l lab.Lab, apps []lab.Applicant, viewerID string) Standings {
	capacity := ranking.NormalizeCapacity(l.Capacity)
	ranked := ranking.Rank(capacity, toApplications(apps))
	scale := ranking.ComputeScale(ranked, capacity)
	ratio := ranking.Ratio(len(ranked), capacity)

	st := Standings{
		Lab:        l,
		Capacity:   capacity,
		Applicants: len(ranked),
		Ratio:      ratio,
		Demand:     ranking.DemandFor(ratio),
		Scale: ScaleView{
			Min:      scale.Min,
			Max:      scale.Max,
			Midpoint: scale.Midpoint(),
		},
		Entries: make([]Entry, len(ranked)),
	}
	if b := scale.Boundary; b != nil {
		st.Scale.Boundary = &Boundary{Rank: b.Rank, GPA: b.GPA, Position: scale.BoundaryPosition}
	}
	for i, r := range ranked {
		st.Entries[i] = Entry{
			Rank:           r.Rank,
			GPA:            r.GPA,
			WithinCapacity: r.WithinCapacity,
			Position:       scale.Position(r.GPA),
			IsViewer:       viewerID != "" && r.Identity == viewerID,
		}
		if st.Entries[i].IsViewer {
			e := st.Entries[i]
			st.Viewer = &e
		}
	}
	return st
}

func toApplications(apps []lab.Applicant) []ranking.Application {
	out := make([]ranking.Application, len(apps))
	for i, a := range apps {
		out[i] = ranking.Application{Identity: a.StudentID, GPA: a.GPA}
	}
	return out
}

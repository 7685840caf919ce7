package standings

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/mind-engage/mindengage-labrank/internal/lab"
	"github.com/mind-engage/mindengage-labrank/internal/metrics"
	"github.com/mind-engage/mindengage-labrank/internal/ranking"
)

// Summary is one lab card on the dashboard.
type Summary struct {
	Lab        lab.Lab        `json:"lab"`
	Capacity   int            `json:"capacity"`
	Applicants int            `json:"applicants"`
	Ratio      float64        `json:"ratio"`
	Demand     ranking.Demand `json:"demand"`

	// Set only on the lab the viewer applied to.
	ViewerRank           int  `json:"viewer_rank,omitempty"`
	ViewerWithinCapacity bool `json:"viewer_within_capacity,omitempty"`
}

// RosterRow is an applicant as seen by an administrator.
type RosterRow struct {
	LabID          string  `json:"lab_id"`
	LabName        string  `json:"lab_name"`
	Major          string  `json:"major"`
	Capacity       int     `json:"capacity"`
	StudentID      string  `json:"student_id"`
	Email          string  `json:"email"`
	GPA            float64 `json:"gpa"`
	Rank           int     `json:"rank"`
	WithinCapacity bool    `json:"within_capacity"`
	RegisteredAt   int64   `json:"registered_at"`
}

type snapshot struct {
	labs  []lab.Lab
	byLab map[string][]lab.Applicant
}

func (s *Service) snapshot(ctx context.Context, opts lab.LabListOpts) (snapshot, error) {
	var (
		labs []lab.Lab
		apps []lab.Applicant
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		labs, err = s.store.ListLabs(gctx, opts)
		return err
	})
	g.Go(func() error {
		var err error
		apps, err = s.store.ListAllApplicants(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return snapshot{}, err
	}

	// appending keeps the store's per-lab order (registration time, id)
	byLab := make(map[string][]lab.Applicant, len(labs))
	for _, a := range apps {
		byLab[a.LabID] = append(byLab[a.LabID], a)
	}
	return snapshot{labs: labs, byLab: byLab}, nil
}

// Overview summarizes every lab, optionally filtered by major.
func (s *Service) Overview(ctx context.Context, major, viewerID string) ([]Summary, error) {
	snap, err := s.snapshot(ctx, lab.LabListOpts{Major: major})
	if err != nil {
		return nil, err
	}
	out := make([]Summary, 0, len(snap.labs))
	for _, l := range snap.labs {
		capacity := ranking.NormalizeCapacity(l.Capacity)
		apps := snap.byLab[l.ID]
		ratio := ranking.Ratio(len(apps), capacity)
		sum := Summary{
			Lab:        l,
			Capacity:   capacity,
			Applicants: len(apps),
			Ratio:      ratio,
			Demand:     ranking.DemandFor(ratio),
		}
		if viewerID != "" && hasApplicant(apps, viewerID) {
			ranked := ranking.Rank(capacity, toApplications(apps))
			if me, ok := ranking.Find(ranked, viewerID); ok {
				sum.ViewerRank = me.Rank
				sum.ViewerWithinCapacity = me.WithinCapacity
			}
			metrics.RecordRanking("overview", len(ranked))
		}
		out = append(out, sum)
	}
	return out, nil
}

// AdminRoster lists every applicant, grouped by lab in listing order and by
// rank within a lab.
func (s *Service) AdminRoster(ctx context.Context) ([]RosterRow, error) {
	snap, err := s.snapshot(ctx, lab.LabListOpts{})
	if err != nil {
		return nil, err
	}
	out := []RosterRow{}
	for _, l := range snap.labs {
		apps := snap.byLab[l.ID]
		if len(apps) == 0 {
			continue
		}
		capacity := ranking.NormalizeCapacity(l.Capacity)
		byID := make(map[string]lab.Applicant, len(apps))
		for _, a := range apps {
			byID[a.StudentID] = a
		}
		ranked := ranking.Rank(capacity, toApplications(apps))
		metrics.RecordRanking("roster", len(ranked))
		for _, r := range ranked {
			a := byID[r.Identity]
			out = append(out, RosterRow{
				LabID:          l.ID,
				LabName:        l.Name,
				Major:          l.Major,
				Capacity:       capacity,
				StudentID:      a.StudentID,
				Email:          a.Email,
				GPA:            r.GPA,
				Rank:           r.Rank,
				WithinCapacity: r.WithinCapacity,
				RegisteredAt:   a.RegisteredAt,
			})
		}
	}
	return out, nil
}

func hasApplicant(apps []lab.Applicant, id string) bool {
	for _, a := range apps {
		if a.StudentID == id {
			return true
		}
	}
	return false
}

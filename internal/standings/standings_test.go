package standings

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-labrank/internal/lab"
	"github.com/mind-engage/mindengage-labrank/internal/ranking"
)

/* ---------------- in-memory fake satisfying Reader ---------------- */

type fakeReader struct {
	labs []lab.Lab
	apps []lab.Applicant // already in store order
	err  error
}

func (f *fakeReader) ListLabs(_ context.Context, opts lab.LabListOpts) ([]lab.Lab, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := []lab.Lab{}
	for _, l := range f.labs {
		if opts.Major == "" || l.Major == opts.Major {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeReader) GetLab(_ context.Context, id string) (lab.Lab, error) {
	for _, l := range f.labs {
		if l.ID == id {
			return l, nil
		}
	}
	return lab.Lab{}, fmt.Errorf("lab %q: %w", id, lab.ErrNotFound)
}

func (f *fakeReader) ListApplicants(_ context.Context, labID string) ([]lab.Applicant, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := []lab.Applicant{}
	for _, a := range f.apps {
		if a.LabID == labID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeReader) ListAllApplicants(_ context.Context) ([]lab.Applicant, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.apps, nil
}

func newTestService(r Reader) *Service {
	return NewService(r, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func applicant(id, labID string, gpa float64) lab.Applicant {
	return lab.Applicant{StudentID: id, Email: id + "@u.example.ac.jp", GPA: gpa, LabID: labID}
}

func fixture() *fakeReader {
	return &fakeReader{
		labs: []lab.Lab{
			{ID: "optics", Name: "Optics", Major: "physics", Capacity: 3},
			{ID: "polymers", Name: "Polymers", Major: "materials", Capacity: 2},
			{ID: "empty", Name: "Empty", Major: "physics", Capacity: 0},
		},
		apps: []lab.Applicant{
			applicant("s1", "optics", 3.2),
			applicant("s2", "optics", 3.8),
			applicant("s3", "optics", 3.2),
			applicant("s4", "optics", 2.9),
			applicant("s5", "polymers", 1.7),
			applicant("s6", "polymers", 3.0),
		},
	}
}

func TestLabStandings(t *testing.T) {
	svc := newTestService(fixture())

	st, err := svc.LabStandings(context.Background(), "optics", "s3")
	require.NoError(t, err)

	assert.Equal(t, 3, st.Capacity)
	assert.Equal(t, 4, st.Applicants)
	assert.InDelta(t, 4.0/3.0, st.Ratio, 1e-9)
	assert.Equal(t, ranking.DemandOver, st.Demand)

	require.Len(t, st.Entries, 4)
	gpas := []float64{st.Entries[0].GPA, st.Entries[1].GPA, st.Entries[2].GPA, st.Entries[3].GPA}
	assert.Equal(t, []float64{3.8, 3.2, 3.2, 2.9}, gpas)

	// s1 registered before s3, so s3 takes the third seat
	require.NotNil(t, st.Viewer)
	assert.Equal(t, 3, st.Viewer.Rank)
	assert.True(t, st.Viewer.WithinCapacity)
	assert.True(t, st.Entries[2].IsViewer)
	assert.False(t, st.Entries[3].WithinCapacity)

	assert.Equal(t, 2.0, st.Scale.Min)
	assert.Equal(t, 4.3, st.Scale.Max)
	require.NotNil(t, st.Scale.Boundary)
	assert.Equal(t, 3, st.Scale.Boundary.Rank)
	assert.Equal(t, 3.2, st.Scale.Boundary.GPA)
	assert.InDelta(t, st.Entries[2].Position, st.Scale.Boundary.Position, 1e-9)
}

func TestLabStandingsLowFloorAndNoBoundary(t *testing.T) {
	svc := newTestService(fixture())

	st, err := svc.LabStandings(context.Background(), "polymers", "")
	require.NoError(t, err)
	assert.Equal(t, 0.0, st.Scale.Min)
	assert.Nil(t, st.Scale.Boundary)
	assert.Nil(t, st.Viewer)
	assert.Equal(t, ranking.DemandOver, st.Demand)
}

func TestLabStandingsEmptyLab(t *testing.T) {
	svc := newTestService(fixture())

	st, err := svc.LabStandings(context.Background(), "empty", "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, st.Capacity) // zero capacity normalized
	assert.Empty(t, st.Entries)
	assert.Equal(t, ScaleView{Min: 2.0, Max: 4.3, Midpoint: 3.15}, roundMid(st.Scale))
	assert.Equal(t, ranking.DemandOpen, st.Demand)
}

func roundMid(s ScaleView) ScaleView {
	s.Midpoint = float64(int(s.Midpoint*100+0.5)) / 100
	return s
}

func TestLabStandingsNotFound(t *testing.T) {
	svc := newTestService(fixture())
	_, err := svc.LabStandings(context.Background(), "ghost", "")
	assert.ErrorIs(t, err, lab.ErrNotFound)
}

func TestLabStandingsRepeatable(t *testing.T) {
	svc := newTestService(fixture())
	a, err := svc.LabStandings(context.Background(), "optics", "s1")
	require.NoError(t, err)
	b, err := svc.LabStandings(context.Background(), "optics", "s1")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestOverview(t *testing.T) {
	svc := newTestService(fixture())

	all, err := svc.Overview(context.Background(), "", "s4")
	require.NoError(t, err)
	require.Len(t, all, 3)

	optics := all[0]
	assert.Equal(t, "optics", optics.Lab.ID)
	assert.Equal(t, 4, optics.Applicants)
	assert.Equal(t, 4, optics.ViewerRank)
	assert.False(t, optics.ViewerWithinCapacity)

	polymers := all[1]
	assert.Zero(t, polymers.ViewerRank)
	assert.Equal(t, ranking.DemandOver, polymers.Demand)

	empty := all[2]
	assert.Equal(t, 0, empty.Applicants)
	assert.Equal(t, ranking.DemandOpen, empty.Demand)

	physics, err := svc.Overview(context.Background(), "physics", "")
	require.NoError(t, err)
	assert.Len(t, physics, 2)
}

func TestAdminRoster(t *testing.T) {
	svc := newTestService(fixture())

	rows, err := svc.AdminRoster(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 6)

	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.StudentID
	}
	assert.Equal(t, []string{"s2", "s1", "s3", "s4", "s6", "s5"}, ids)
	assert.Equal(t, "s4@u.example.ac.jp", rows[3].Email)
	assert.False(t, rows[3].WithinCapacity)
	assert.Equal(t, 2, rows[5].Rank)
	assert.True(t, rows[5].WithinCapacity)
}

func TestStoreErrorsPropagate(t *testing.T) {
	boom := errors.New("boom")
	svc := newTestService(&fakeReader{err: boom})

	_, err := svc.Overview(context.Background(), "", "")
	assert.ErrorIs(t, err, boom)
	_, err = svc.AdminRoster(context.Background())
	assert.ErrorIs(t, err, boom)
}

package ranking

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeScaleFloor(t *testing.T) {
	tests := []struct {
		name    string
		gpas    []float64
		wantMin float64
	}{
		{name: "low outlier", gpas: []float64{1.5, 3.0, 3.5}, wantMin: 0.0},
		{name: "no low outlier", gpas: []float64{2.5, 3.0, 3.5}, wantMin: 2.0},
		{name: "exactly two", gpas: []float64{2.0, 4.3}, wantMin: 2.0},
		{name: "just under two", gpas: []float64{1.99}, wantMin: 0.0},
		{name: "empty", gpas: nil, wantMin: 2.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := ComputeScale(Rank(10, apps(tt.gpas...)), 10)
			assert.Equal(t, tt.wantMin, s.Min)
			assert.Equal(t, 4.3, s.Max)
		})
	}
}

func TestComputeScaleEmpty(t *testing.T) {
	s := ComputeScale(nil, 5)
	assert.Equal(t, Scale{Min: 2.0, Max: 4.3}, s)
	assert.False(t, s.HasBoundary())
}

func TestComputeScaleBoundary(t *testing.T) {
	ranked := Rank(2, apps(3.9, 3.5, 3.1))
	s := ComputeScale(ranked, 2)

	require.True(t, s.HasBoundary())
	assert.Equal(t, 3.5, s.Boundary.GPA)
	assert.Equal(t, 2, s.Boundary.Rank)
	assert.True(t, s.Boundary.WithinCapacity)
	assert.InDelta(t, (3.5-2.0)/2.3*100, s.BoundaryPosition, 1e-9)
}

func TestComputeScaleNoBoundaryWhenUnderCapacity(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		gpas     []float64
	}{
		{name: "fewer than capacity", capacity: 5, gpas: []float64{3.9, 3.5, 3.1}},
		{name: "exactly capacity", capacity: 3, gpas: []float64{3.9, 3.5, 3.1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := ComputeScale(Rank(tt.capacity, apps(tt.gpas...)), tt.capacity)
			assert.Nil(t, s.Boundary)
			assert.Zero(t, s.BoundaryPosition)
		})
	}
}

func TestComputeScaleNonPositiveCapacity(t *testing.T) {
	s := ComputeScale(Rank(0, apps(3.0, 2.5)), 0)
	require.True(t, s.HasBoundary())
	assert.Equal(t, "a", s.Boundary.Identity)
}

func TestNormalize(t *testing.T) {
	high := Scale{Min: 2.0, Max: 4.3}
	full := Scale{Min: 0.0, Max: 4.3}

	tests := []struct {
		name  string
		gpa   float64
		scale Scale
		want  float64
	}{
		{name: "above ceiling clamps", gpa: 5.0, scale: high, want: 100},
		{name: "below floor clamps", gpa: -1.0, scale: full, want: 0},
		{name: "below default floor clamps", gpa: 1.2, scale: high, want: 0},
		{name: "floor", gpa: 2.0, scale: high, want: 0},
		{name: "ceiling", gpa: 4.3, scale: full, want: 100},
		{name: "middle", gpa: 2.15, scale: full, want: 50},
		{name: "degenerate range", gpa: 3.0, scale: Scale{Min: 4.3, Max: 4.3}, want: 50},
		{name: "inverted range", gpa: 3.0, scale: Scale{Min: 4.3, Max: 2.0}, want: 50},
		{name: "nan", gpa: math.NaN(), scale: high, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.gpa, tt.scale)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.Equal(t, got, tt.scale.Position(tt.gpa))
		})
	}
}

func TestNormalizeAlwaysInRange(t *testing.T) {
	for _, s := range []Scale{{Min: 0, Max: 4.3}, {Min: 2, Max: 4.3}} {
		for g := -3.0; g <= 7.0; g += 0.01 {
			p := Normalize(g, s)
			assert.GreaterOrEqual(t, p, 0.0)
			assert.LessOrEqual(t, p, 100.0)
		}
	}
}

func TestScaleMidpoint(t *testing.T) {
	assert.InDelta(t, 3.15, Scale{Min: 2.0, Max: 4.3}.Midpoint(), 1e-9)
	assert.InDelta(t, 2.15, Scale{Min: 0.0, Max: 4.3}.Midpoint(), 1e-9)
}

func TestDemand(t *testing.T) {
	tests := []struct {
		applicants, capacity int
		want                 Demand
	}{
		{applicants: 0, capacity: 4, want: DemandOpen},
		{applicants: 3, capacity: 4, want: DemandOpen},
		{applicants: 4, capacity: 4, want: DemandOver},
		{applicants: 5, capacity: 4, want: DemandOver},
		{applicants: 6, capacity: 4, want: DemandHigh},
		{applicants: 2, capacity: 0, want: DemandHigh},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DemandFor(Ratio(tt.applicants, tt.capacity)), "%d/%d", tt.applicants, tt.capacity)
	}
}

package ranking

import "math"

const (
	// GPAMax is the domain ceiling and the fixed top of every scale.
	GPAMax = 4.30
	// GPAMin is the domain floor.
	GPAMin = 0.0

	// LowFloor is the scale floor used only when someone is below 2.0.
	LowFloor = 0.0
	// DefaultFloor is the usual scale floor.
	DefaultFloor = 2.0

	midpointPosition = 50.0
)

// Scale maps GPA values onto a 0..100 display coordinate.
type Scale struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`

	// Boundary is the applicant holding the last admitted seat. Nil when
	// every applicant fits within capacity.
	Boundary         *RankedApplicant `json:"boundary,omitempty"`
	BoundaryPosition float64          `json:"boundary_position"`
}

// ComputeScale picks the scale bounds for ranked and locates the boundary
// applicant for capacity.
func ComputeScale(ranked []RankedApplicant, capacity int) Scale {
	s := Scale{Min: DefaultFloor, Max: GPAMax}
	for _, r := range ranked {
		if r.GPA < DefaultFloor {
			s.Min = LowFloor
			break
		}
	}

	capacity = NormalizeCapacity(capacity)
	if len(ranked) > capacity {
		for i := range ranked {
			if ranked[i].Rank == capacity {
				b := ranked[i]
				s.Boundary = &b
				s.BoundaryPosition = s.Position(b.GPA)
				break
			}
		}
	}
	return s
}

// Range is Max-Min.
func (s Scale) Range() float64 { return s.Max - s.Min }

// Midpoint is the GPA halfway along the axis.
func (s Scale) Midpoint() float64 { return (s.Min + s.Max) / 2 }

// HasBoundary reports whether applicants exceed capacity.
func (s Scale) HasBoundary() bool { return s.Boundary != nil }

// Position is Normalize(gpa, s).
func (s Scale) Position(gpa float64) float64 { return Normalize(gpa, s) }

// Normalize clamps gpa into [s.Min, s.Max] and returns its position in
// 0..100. A degenerate scale yields the midpoint 50; NaN yields 0.
func Normalize(gpa float64, s Scale) float64 {
	span := s.Range()
	if span <= 0 || math.IsNaN(span) {
		return midpointPosition
	}
	if math.IsNaN(gpa) {
		return 0
	}
	v := math.Max(s.Min, math.Min(gpa, s.Max))
	return (v - s.Min) / span * 100
}

// Package ranking orders a lab's applicants by GPA and derives the
// admission boundary and display scale from that order.
//
// Everything here is a pure function of its arguments. Results are
// recomputed on every read and never stored.
package ranking

import (
	"math"
	"slices"
)

// Application is one student's first-choice preference for a lab.
type Application struct {
	Identity string  `json:"identity"`
	GPA      float64 `json:"gpa"`
}

// RankedApplicant is an Application with its position in the lab.
type RankedApplicant struct {
	Application
	Rank           int  `json:"rank"`            // 1-based, no shared ranks
	WithinCapacity bool `json:"within_capacity"` // Rank <= capacity
}

// NormalizeCapacity maps non-positive capacities to 1.
func NormalizeCapacity(capacity int) int {
	if capacity < 1 {
		return 1
	}
	return capacity
}

// Rank sorts apps by GPA descending and numbers them 1..n.
//
// The sort is stable: applicants with exactly equal GPAs keep their input
// order, so callers that want a secondary key (registration time, identity)
// sort by it before calling. apps is not modified.
func Rank(capacity int, apps []Application) []RankedApplicant {
	capacity = NormalizeCapacity(capacity)

	sorted := slices.Clone(apps)
	slices.SortStableFunc(sorted, compareGPADesc)

	out := make([]RankedApplicant, len(sorted))
	for i, a := range sorted {
		rank := i + 1
		out[i] = RankedApplicant{
			Application:    a,
			Rank:           rank,
			WithinCapacity: rank <= capacity,
		}
	}
	return out
}

// compareGPADesc orders higher GPAs first. NaN sorts after every number.
func compareGPADesc(a, b Application) int {
	an, bn := math.IsNaN(a.GPA), math.IsNaN(b.GPA)
	switch {
	case an && bn:
		return 0
	case an:
		return 1
	case bn:
		return -1
	case a.GPA > b.GPA:
		return -1
	case a.GPA < b.GPA:
		return 1
	}
	return 0
}

// Find returns the ranked entry for identity.
func Find(ranked []RankedApplicant, identity string) (RankedApplicant, bool) {
	for _, r := range ranked {
		if r.Identity == identity {
			return r, true
		}
	}
	return RankedApplicant{}, false
}

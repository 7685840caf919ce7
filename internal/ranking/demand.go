package ranking

// Demand classifies how contested a lab is.
type Demand string

const (
	DemandOpen Demand = "open" // fewer applicants than seats
	DemandOver Demand = "over" // at least one applicant per seat
	DemandHigh Demand = "high" // 1.5 applicants per seat or more
)

const (
	overRatio = 1.0
	highRatio = 1.5
)

// Ratio is applicants per seat.
func Ratio(applicants, capacity int) float64 {
	return float64(applicants) / float64(NormalizeCapacity(capacity))
}

// DemandFor buckets an applicants-per-seat ratio.
func DemandFor(ratio float64) Demand {
	switch {
	case ratio >= highRatio:
		return DemandHigh
	case ratio >= overRatio:
		return DemandOver
	default:
		return DemandOpen
	}
}

package valuation

import (
	"math"
)

// OwnershipTolerance is the slack allowed when checking that ownership sums to 100%.
const OwnershipTolerance = 1e-6

// Holding is a participant's beginning value in the period being rebalanced.
type Holding struct {
	ParticipantID  int64
	BeginningValue float64
}

// Allocation is a participant's recomputed ownership.
type Allocation struct {
	ParticipantID       int64
	BeginningValue      float64
	OwnershipPercentage float64
}

// Rebalance replaces the edited participant's beginning value with newValue
// (adding the participant if absent) and recomputes every ownership as a share
// of the new total. Order of holdings is preserved; an added participant is
// appended. When the total is zero every ownership is zero.
func Rebalance(holdings []Holding, editedID int64, newValue float64) ([]Allocation, float64) {
	allocations := make([]Allocation, 0, len(holdings)+1)
	found := false
	for _, h := range holdings {
		bv := h.BeginningValue
		if h.ParticipantID == editedID {
			bv = newValue
			found = true
		}
		allocations = append(allocations, Allocation{ParticipantID: h.ParticipantID, BeginningValue: bv})
	}
	if !found {
		allocations = append(allocations, Allocation{ParticipantID: editedID, BeginningValue: newValue})
	}

	total := 0.0
	for _, a := range allocations {
		total += a.BeginningValue
	}
	if total == 0 {
		return allocations, 0
	}
	for i := range allocations {
		allocations[i].OwnershipPercentage = allocations[i].BeginningValue / total * 100
	}
	return allocations, total
}

// OwnershipTotal sums ownership percentages.
func OwnershipTotal(pcts ...float64) float64 {
	total := 0.0
	for _, p := range pcts {
		total += p
	}
	return total
}

// ExceedsFull reports whether total is above 100% beyond OwnershipTolerance.
func ExceedsFull(total float64) bool {
	return total > 100 && math.Abs(total-100) > OwnershipTolerance
}

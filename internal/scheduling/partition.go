package scheduling

import (
	"sort"
	"time"
)

// Partition is the result of splitting a candidate pool against an urgency
// horizon. Recommended and Other are disjoint and together hold exactly the
// filtered candidates, each in chronological order.
type Partition struct {
	Recommended []RecommendedSlot
	Other       []Slot
}

// PartitionSlots filters the pool to open future slots (optionally for one
// provider) and splits them at ref + horizonDays. A slot starting exactly on
// the boundary is recommended. Ties on start time sort by slot id so the
// ordering is deterministic.
func PartitionSlots(ref time.Time, pool []Slot, providerID *int, horizonDays int) Partition {
	candidates := make([]Slot, 0, len(pool))
	for _, s := range pool {
		if s.Status != StatusAvailable {
			continue
		}
		if s.Start.Before(ref) {
			continue
		}
		if providerID != nil && (s.ProviderID == nil || *s.ProviderID != *providerID) {
			continue
		}
		candidates = append(candidates, s)
	}

	maxStart := ref.AddDate(0, 0, horizonDays)

	partition := Partition{
		Recommended: make([]RecommendedSlot, 0, len(candidates)),
		Other:       make([]Slot, 0),
	}
	sortSlots(candidates)
	for _, s := range candidates {
		if s.Start.After(maxStart) {
			partition.Other = append(partition.Other, s)
		} else {
			partition.Recommended = append(partition.Recommended, RecommendedSlot{Appointment: s})
		}
	}
	return partition
}

func sortSlots(slots []Slot) {
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].Start.Equal(slots[j].Start) {
			return slots[i].ID < slots[j].ID
		}
		return slots[i].Start.Before(slots[j].Start)
	})
}

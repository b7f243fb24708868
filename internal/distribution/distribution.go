package distribution

import (
	"errors"

	"github.com/leadflowhq/lead-services/models"
)

// ErrNoRepAvailable means every rep is inactive or at capacity.
var ErrNoRepAvailable = errors.New("no sales rep available for assignment")

// Pick selects the rep a new lead should go to. Candidates must be
// active with spare capacity; among those the highest priority wins,
// ties broken by lowest current load, then by least recent assignment
// so rotation stays fair.
func Pick(reps []models.SalesRep, defaultCapacity int) (*models.SalesRep, error) {
	var best *models.SalesRep

	for i := range reps {
		rep := &reps[i]
		if !rep.Active {
			continue
		}
		capacity := rep.LeadCapacity
		if capacity <= 0 {
			capacity = defaultCapacity
		}
		if rep.AssignedCount >= capacity {
			continue
		}
		if best == nil || better(rep, best) {
			best = rep
		}
	}

	if best == nil {
		return nil, ErrNoRepAvailable
	}
	return best, nil
}

func better(a, b *models.SalesRep) bool {
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	if a.AssignedCount != b.AssignedCount {
		return a.AssignedCount < b.AssignedCount
	}
	// Never-assigned reps sort ahead of recently assigned ones.
	if a.LastAssignedAt == nil {
		return true
	}
	if b.LastAssignedAt == nil {
		return false
	}
	return a.LastAssignedAt.Before(*b.LastAssignedAt)
}

package distribution

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/leadflowhq/lead-services/models"
)

func rep(name string, priority, assigned, capacity int, active bool) models.SalesRep {
	return models.SalesRep{
		ID:            uuid.New(),
		Name:          name,
		Priority:      priority,
		AssignedCount: assigned,
		LeadCapacity:  capacity,
		Active:        active,
	}
}

func TestPickPrefersHighestPriority(t *testing.T) {
	reps := []models.SalesRep{
		rep("junior", 1, 0, 50, true),
		rep("senior", 5, 0, 50, true),
	}

	picked, err := Pick(reps, 50)
	assert.NoError(t, err)
	assert.Equal(t, "senior", picked.Name)
}

func TestPickSkipsInactiveAndFullReps(t *testing.T) {
	reps := []models.SalesRep{
		rep("inactive", 5, 0, 50, false),
		rep("full", 5, 50, 50, true),
		rep("available", 1, 10, 50, true),
	}

	picked, err := Pick(reps, 50)
	assert.NoError(t, err)
	assert.Equal(t, "available", picked.Name)
}

func TestPickBreaksTiesByLoad(t *testing.T) {
	reps := []models.SalesRep{
		rep("busy", 3, 20, 50, true),
		rep("idle", 3, 2, 50, true),
	}

	picked, err := Pick(reps, 50)
	assert.NoError(t, err)
	assert.Equal(t, "idle", picked.Name)
}

func TestPickRotatesByLastAssignment(t *testing.T) {
	earlier := time.Now().Add(-2 * time.Hour)
	later := time.Now().Add(-10 * time.Minute)

	a := rep("assigned-earlier", 3, 5, 50, true)
	a.LastAssignedAt = &earlier
	b := rep("assigned-later", 3, 5, 50, true)
	b.LastAssignedAt = &later

	picked, err := Pick([]models.SalesRep{b, a}, 50)
	assert.NoError(t, err)
	assert.Equal(t, "assigned-earlier", picked.Name)
}

func TestPickUsesDefaultCapacity(t *testing.T) {
	r := rep("uncapped", 3, 10, 0, true)

	_, err := Pick([]models.SalesRep{r}, 10)
	assert.ErrorIs(t, err, ErrNoRepAvailable, "default capacity should apply when none is set")

	picked, err := Pick([]models.SalesRep{r}, 20)
	assert.NoError(t, err)
	assert.Equal(t, "uncapped", picked.Name)
}

func TestPickErrorsWhenNobodyAvailable(t *testing.T) {
	_, err := Pick(nil, 50)
	assert.ErrorIs(t, err, ErrNoRepAvailable)
}

package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"leave-sync/internal/models"
)

func TestComputeTeamStats(t *testing.T) {
	now := time.Now()
	team := &models.Team{
		ID: "team-1",
		Members: []models.Member{
			{ID: "m1", Name: "Maya Chen"},
			{ID: "m2", Name: "Jon Park"},
		},
	}
	approvals := []models.Approval{{ID: "l3", Status: models.StatusPending}}
	leaves := []models.LeaveRecord{
		{ID: "l1", MemberID: "m1", LeaveType: "vacation", Status: models.StatusApproved,
			FromDate: now.AddDate(0, 0, -1), ToDate: now.AddDate(0, 0, 2), Days: 4},
		{ID: "l2", MemberID: "m2", LeaveType: "sick", Status: models.StatusApproved,
			FromDate: now.AddDate(0, 0, -10), ToDate: now.AddDate(0, 0, -8), Days: 3},
		{ID: "l3", MemberID: "m2", LeaveType: "vacation", Status: models.StatusPending,
			FromDate: now, ToDate: now.AddDate(0, 0, 5), Days: 6},
	}

	stats := ComputeTeamStats(team, approvals, leaves)
	assert.Equal(t, 2, stats.MemberCount)
	assert.Equal(t, 1, stats.PendingApprovals)
	assert.Equal(t, 7, stats.TotalLeaveDays, "pending requests do not count")
	assert.Equal(t, map[string]int{"vacation": 4, "sick": 3}, stats.DaysByType)
	assert.Equal(t, 1, stats.OnLeaveToday)
}

func TestComputeTeamStats_NoTeam(t *testing.T) {
	stats := ComputeTeamStats(nil, nil, nil)
	assert.Equal(t, 0, stats.MemberCount)
	assert.Equal(t, 0, stats.PendingApprovals)
	assert.Empty(t, stats.DaysByType)
}

func TestFilterMembers(t *testing.T) {
	team := &models.Team{Members: []models.Member{
		{Name: "Maya Chen", Email: "maya@example.com"},
		{Name: "Jon Park", Email: "jon@example.com"},
	}}

	assert.Len(t, FilterMembers(team, ""), 2)
	assert.Len(t, FilterMembers(team, "maya"), 1)
	assert.Len(t, FilterMembers(team, "EXAMPLE.COM"), 2)
	assert.Empty(t, FilterMembers(team, "nobody"))
	assert.Nil(t, FilterMembers(nil, "maya"))
}

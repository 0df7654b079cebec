package dashboard

import (
	"time"

	"leave-sync/internal/models"
)

// ComputeTeamStats derives the header view-model from the current cache
// snapshots. Recomputing on every pass is cheap and means the stats can
// never go stale independently of their inputs.
func ComputeTeamStats(team *models.Team, approvals []models.Approval, leaves []models.LeaveRecord) models.TeamStats {
	stats := models.TeamStats{
		PendingApprovals: len(approvals),
		DaysByType:       map[string]int{},
	}
	if team != nil {
		stats.MemberCount = len(team.Members)
	}

	today := time.Now()
	for _, rec := range leaves {
		if rec.Status != models.StatusApproved {
			continue
		}
		stats.TotalLeaveDays += rec.Days
		stats.DaysByType[rec.LeaveType] += rec.Days
		if !today.Before(rec.FromDate) && !today.After(rec.ToDate.Add(24*time.Hour)) {
			stats.OnLeaveToday++
		}
	}
	return stats
}

// FilterMembers applies the members-tab name filter to the roster.
func FilterMembers(team *models.Team, query string) []models.Member {
	if team == nil {
		return nil
	}
	if query == "" {
		return team.Members
	}
	var out []models.Member
	for _, m := range team.Members {
		if containsFold(m.Name, query) || containsFold(m.Email, query) {
			out = append(out, m)
		}
	}
	return out
}

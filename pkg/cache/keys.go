package cache

// Resource keys for the team dashboard. A key is never reused for a
// semantically different resource.
const (
	KeyTeam         = "team"
	KeyApprovals    = "approvals"
	KeyPendingUsers = "pendingUsers"
)

// AnalyticsKey builds the per-team leave analytics key. An empty team id
// yields an empty key, which the fetch coordinator treats as "do not
// subscribe" until the team resolves.
func AnalyticsKey(teamID string) string {
	if teamID == "" {
		return ""
	}
	return "analytics:" + teamID
}

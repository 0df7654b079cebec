package dashboard

import "leave-sync/internal/prefetch"

type Tab string

const (
	TabMembers   Tab = "members"
	TabApprovals Tab = "approvals"
	TabAnalytics Tab = "analytics"
	TabPending   Tab = "pending"
)

// Page is a wholesale-replaced pagination cursor; no partial merging.
type Page struct {
	Page     int
	PageSize int
}

// TabState is the dashboard's finite UI state. It is a value type: the
// reducer returns fresh copies and nobody mutates a state another holder
// can see.
type TabState struct {
	ActiveTab      Tab
	Modals         map[string]bool
	Filters        map[string]string
	Pagination     map[string]Page
	PrefetchStatus map[Tab]prefetch.Status
}

func NewTabState() TabState {
	return TabState{
		ActiveTab:      TabMembers,
		Modals:         map[string]bool{},
		Filters:        map[string]string{},
		Pagination:     map[string]Page{},
		PrefetchStatus: map[Tab]prefetch.Status{},
	}
}

func copyBoolMap(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyStringMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyPageMap(m map[string]Page) map[string]Page {
	out := make(map[string]Page, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyStatusMap(m map[Tab]prefetch.Status) map[Tab]prefetch.Status {
	out := make(map[Tab]prefetch.Status, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

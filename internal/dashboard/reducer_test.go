package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"leave-sync/internal/prefetch"
)

func TestReduce_InitialState(t *testing.T) {
	s := NewTabState()
	assert.Equal(t, TabMembers, s.ActiveTab)
	assert.Empty(t, s.Modals)
	assert.Empty(t, s.Filters)
	assert.Empty(t, s.PrefetchStatus)
}

func TestReduce_SetActiveTabIsIdempotent(t *testing.T) {
	s := NewTabState()
	once := Reduce(s, SetActiveTab{Tab: TabAnalytics})
	twice := Reduce(once, SetActiveTab{Tab: TabAnalytics})

	assert.Equal(t, TabAnalytics, once.ActiveTab)
	assert.Equal(t, once, twice)
	assert.Equal(t, TabMembers, s.ActiveTab, "input state is never mutated")
}

func TestReduce_ToggleModalIsAnInvolution(t *testing.T) {
	s := NewTabState()
	opened := Reduce(s, ToggleModal{Name: "addMember"})
	closed := Reduce(opened, ToggleModal{Name: "addMember"})

	assert.True(t, opened.Modals["addMember"])
	assert.False(t, closed.Modals["addMember"])

	t.Run("ModalsAreIndependent", func(t *testing.T) {
		both := Reduce(opened, ToggleModal{Name: "createTeam"})
		assert.True(t, both.Modals["addMember"])
		assert.True(t, both.Modals["createTeam"])
	})
}

func TestReduce_FiltersAndPagination(t *testing.T) {
	s := NewTabState()

	s = Reduce(s, SetFilter{Name: "members", Value: "chen"})
	assert.Equal(t, "chen", s.Filters["members"])

	// Wholesale replacement, no merging.
	s = Reduce(s, SetFilter{Name: "members", Value: ""})
	assert.Equal(t, "", s.Filters["members"])

	s = Reduce(s, SetPagination{Name: "approvals", Page: Page{Page: 3, PageSize: 25}})
	assert.Equal(t, Page{Page: 3, PageSize: 25}, s.Pagination["approvals"])

	again := Reduce(s, SetPagination{Name: "approvals", Page: Page{Page: 3, PageSize: 25}})
	assert.Equal(t, s, again)
}

func TestReduce_PrefetchStatus(t *testing.T) {
	s := NewTabState()
	s = Reduce(s, SetPrefetchStatus{Tab: TabApprovals, Status: prefetch.StatusLoading})
	assert.Equal(t, prefetch.StatusLoading, s.PrefetchStatus[TabApprovals])

	// A fresh attempt may restart from loading even after success.
	s = Reduce(s, SetPrefetchStatus{Tab: TabApprovals, Status: prefetch.StatusSuccess})
	s = Reduce(s, SetPrefetchStatus{Tab: TabApprovals, Status: prefetch.StatusLoading})
	assert.Equal(t, prefetch.StatusLoading, s.PrefetchStatus[TabApprovals])
}

func TestReduce_Reset(t *testing.T) {
	s := NewTabState()
	s = Reduce(s, SetActiveTab{Tab: TabPending})
	s = Reduce(s, ToggleModal{Name: "addMember"})

	s = Reduce(s, Reset{})
	assert.Equal(t, NewTabState(), s)
}

func TestReduce_UnknownActionIsANoOp(t *testing.T) {
	type strayAction struct{ Action }
	s := Reduce(NewTabState(), strayAction{})
	assert.Equal(t, NewTabState(), s)
}

package dashboard

import "leave-sync/internal/prefetch"

// Action is a message to the reducer. Every state change flows through
// Dispatch; nothing else writes TabState.
type Action interface {
	isAction()
}

type SetActiveTab struct {
	Tab Tab
}

type ToggleModal struct {
	Name string
}

type SetFilter struct {
	Name  string
	Value string
}

type SetPagination struct {
	Name string
	Page Page
}

type SetPrefetchStatus struct {
	Tab    Tab
	Status prefetch.Status
}

// Reset restores the initial state, keeping nothing.
type Reset struct{}

func (SetActiveTab) isAction()      {}
func (ToggleModal) isAction()       {}
func (SetFilter) isAction()         {}
func (SetPagination) isAction()     {}
func (SetPrefetchStatus) isAction() {}
func (Reset) isAction()             {}

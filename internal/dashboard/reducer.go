package dashboard

// Reduce applies one action to a state and returns the next state. Pure:
// the input state is never mutated, unknown actions return it unchanged, and
// every non-toggle action is idempotent.
func Reduce(s TabState, a Action) TabState {
	switch action := a.(type) {
	case SetActiveTab:
		s.ActiveTab = action.Tab
		return s
	case ToggleModal:
		modals := copyBoolMap(s.Modals)
		modals[action.Name] = !modals[action.Name]
		s.Modals = modals
		return s
	case SetFilter:
		filters := copyStringMap(s.Filters)
		filters[action.Name] = action.Value
		s.Filters = filters
		return s
	case SetPagination:
		pagination := copyPageMap(s.Pagination)
		pagination[action.Name] = action.Page
		s.Pagination = pagination
		return s
	case SetPrefetchStatus:
		status := copyStatusMap(s.PrefetchStatus)
		status[action.Tab] = action.Status
		s.PrefetchStatus = status
		return s
	case Reset:
		return NewTabState()
	default:
		return s
	}
}

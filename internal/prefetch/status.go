// Package prefetch warms code and data before the user commits to a tab.
// Both facilities debounce by name, replacing (never stacking) the pending
// timer, and are fully cancellable on unmount.
package prefetch

type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

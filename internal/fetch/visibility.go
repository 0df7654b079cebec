package fetch

// VisibilitySource reports hidden-to-visible transitions of the host
// surface. The coordinator consumes it on one shared goroutine regardless of
// how many subscriptions opt into revalidation.
type VisibilitySource interface {
	Visible() <-chan struct{}
}

// VisibilitySignal is the channel-backed source hosts embed: call Emit when
// the surface regains focus or visibility.
type VisibilitySignal struct {
	ch chan struct{}
}

func NewVisibilitySignal() *VisibilitySignal {
	return &VisibilitySignal{ch: make(chan struct{}, 1)}
}

// Emit signals a transition. Non-blocking; a pending signal absorbs
// duplicates, which matches the revalidate-once intent.
func (v *VisibilitySignal) Emit() {
	select {
	case v.ch <- struct{}{}:
	default:
	}
}

func (v *VisibilitySignal) Visible() <-chan struct{} {
	return v.ch
}

// Package session holds the bearer token the rest of the sync layer reads on
// every request. Login and logout UI live elsewhere; this store only owns the
// token value, its change notifications, and the discard discipline that a
// token rotation implies for in-flight responses.
package session

import (
	"sync"
	"time"

	"leave-sync/pkg/jwt"
)

// Store is safe for concurrent use. The fetch coordinator captures Token()
// before each network call and compares again on resolution; any difference
// means the response belongs to a previous identity and must be dropped.
type Store struct {
	mu      sync.RWMutex
	token   string
	subs    map[int]func(token string)
	nextSub int
}

func NewStore() *Store {
	return &Store{subs: make(map[int]func(string))}
}

// Token returns the current bearer token, empty when logged out. Callers must
// not cache the value across requests; mid-session rotation is honored by
// re-reading here every time.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// SetToken replaces the token and notifies subscribers. Setting the same
// value is a no-op so redundant login responses do not invalidate caches.
func (s *Store) SetToken(token string) {
	s.mu.Lock()
	if s.token == token {
		s.mu.Unlock()
		return
	}
	s.token = token
	subs := make([]func(string), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(token)
	}
}

// Clear logs the session out.
func (s *Store) Clear() {
	s.SetToken("")
}

// Authenticated reports whether a token is present.
func (s *Store) Authenticated() bool {
	return s.Token() != ""
}

// OnChange registers a callback invoked after every token change. The
// returned cancel func removes the registration.
func (s *Store) OnChange(fn func(token string)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// ExpiresSoon reports whether the current token expires within the given
// window. Unparseable or absent tokens count as expiring so the host errs
// toward refreshing.
func (s *Store) ExpiresSoon(within time.Duration) bool {
	tok := s.Token()
	if tok == "" {
		return true
	}
	exp, err := jwt.ExpiresAt(tok)
	if err != nil {
		return true
	}
	return time.Until(exp) < within
}

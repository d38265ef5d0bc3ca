package usecase

import (
	"sync"

	"expressivart/internal/domain/entity"
)

// AuthState is the single source of "who is signed in" for a connection.
// It is initialized once from a verified token, read through typed snapshots,
// and lets dependents observe changes until they unsubscribe.
type AuthState struct {
	mu        sync.Mutex
	current   *entity.Principal
	listeners map[int]func(*entity.Principal)
	nextID    int
}

func NewAuthState(initial *entity.Principal) *AuthState {
	s := &AuthState{listeners: make(map[int]func(*entity.Principal))}
	if initial != nil {
		p := *initial
		s.current = &p
	}
	return s
}

// Current returns a copy of the signed-in principal, or false when there is none.
func (s *AuthState) Current() (entity.Principal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return entity.Principal{}, false
	}
	return *s.current, true
}

// Set replaces the principal and notifies listeners. A nil principal signs out.
func (s *AuthState) Set(p *entity.Principal) {
	s.mu.Lock()
	if p != nil {
		cp := *p
		p = &cp
	}
	s.current = p
	listeners := make([]func(*entity.Principal), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		if p == nil {
			fn(nil)
			continue
		}
		cp := *p
		fn(&cp)
	}
}

func (s *AuthState) Clear() {
	s.Set(nil)
}

// OnChange registers fn for every later Set. The returned func unsubscribes.
func (s *AuthState) OnChange(fn func(*entity.Principal)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

package usecase

import (
	"sort"
	"sync"

	"expressivart/internal/domain/entity"
)

// MessageStream is the ordered message list of one open conversation. Live
// inserts and loaded history are merged by message ID, so a message that
// arrives on both paths appears once.
type MessageStream struct {
	mu    sync.Mutex
	items []entity.MessageView
	seen  map[string]struct{}
}

func NewMessageStream() *MessageStream {
	return &MessageStream{seen: make(map[string]struct{})}
}

// Append adds a live message at the end. It reports false for a duplicate.
func (s *MessageStream) Append(v entity.MessageView) bool {
	if v.Message == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[v.ID]; ok {
		return false
	}
	s.seen[v.ID] = struct{}{}
	s.items = append(s.items, v)
	return true
}

// Merge folds loaded history into the stream and keeps creation order.
// It returns how many messages were new.
func (s *MessageStream) Merge(history []entity.MessageView) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := 0
	for _, v := range history {
		if v.Message == nil {
			continue
		}
		if _, ok := s.seen[v.ID]; ok {
			continue
		}
		s.seen[v.ID] = struct{}{}
		s.items = append(s.items, v)
		added++
	}
	if added > 0 {
		sort.SliceStable(s.items, func(i, j int) bool {
			a, b := s.items[i], s.items[j]
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
			return a.ID < b.ID
		})
	}
	return added
}

// Messages returns a snapshot of the stream.
func (s *MessageStream) Messages() []entity.MessageView {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.MessageView, len(s.items))
	copy(out, s.items)
	return out
}

func (s *MessageStream) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

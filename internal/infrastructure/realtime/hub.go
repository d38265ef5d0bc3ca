package realtime

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"expressivart/internal/infrastructure/metrics"
	"expressivart/pkg/logger"
)

const defaultQueueSize = 256

var (
	ErrHubClosed    = errors.New("realtime: hub closed")
	ErrSlowConsumer = errors.New("realtime: subscriber queue overflow")
)

// Publisher accepts committed changes for fan-out.
type Publisher interface {
	Publish(ctx context.Context, change Change) error
}

// Subscriber hands out filtered subscriptions.
type Subscriber interface {
	Subscribe(filter Filter, onChange func(Change), onError func(error)) (*Subscription, error)
}

// Hub fans changes out to in-process subscriptions. Each subscription has its
// own queue and worker, so delivery is ordered per subscription and a slow
// consumer never blocks publishers.
type Hub struct {
	mu        sync.RWMutex
	subs      map[string]*Subscription
	closed    bool
	queueSize int
	log       zerolog.Logger
}

func NewHub() *Hub {
	return NewHubWithQueueSize(defaultQueueSize)
}

func NewHubWithQueueSize(size int) *Hub {
	if size <= 0 {
		size = defaultQueueSize
	}
	return &Hub{
		subs:      make(map[string]*Subscription),
		queueSize: size,
		log:       logger.With("realtime"),
	}
}

func (h *Hub) Subscribe(filter Filter, onChange func(Change), onError func(error)) (*Subscription, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	if onChange == nil {
		return nil, errors.New("realtime: onChange callback is required")
	}

	sub := &Subscription{
		ID:       uuid.NewString(),
		Filter:   filter,
		hub:      h,
		onChange: onChange,
		onError:  onError,
		queue:    make(chan Change, h.queueSize),
		done:     make(chan struct{}),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, ErrHubClosed
	}
	h.subs[sub.ID] = sub
	h.mu.Unlock()

	metrics.RealtimeSubscriptions.Inc()
	go sub.run()

	h.log.Debug().Str("subscription", sub.ID).Str("filter", filter.String()).Msg("subscribed")
	return sub, nil
}

// Publish delivers change to every matching subscription.
func (h *Hub) Publish(_ context.Context, change Change) error {
	h.mu.RLock()
	if h.closed {
		h.mu.RUnlock()
		return ErrHubClosed
	}
	var overflow []*Subscription
	for _, sub := range h.subs {
		if !sub.Filter.Matches(change) {
			continue
		}
		if !sub.enqueue(change) {
			overflow = append(overflow, sub)
		}
	}
	h.mu.RUnlock()

	metrics.RealtimeEventsPublished.WithLabelValues(change.Table, string(change.Event)).Inc()

	for _, sub := range overflow {
		h.log.Warn().Str("subscription", sub.ID).Str("filter", sub.Filter.String()).Msg("dropping slow subscriber")
		sub.fail(ErrSlowConsumer)
	}
	return nil
}

// Fail terminates every live subscription with err. The relay calls it when
// the shared transport drops.
func (h *Hub) Fail(err error) {
	h.mu.RLock()
	subs := make([]*Subscription, 0, len(h.subs))
	for _, sub := range h.subs {
		subs = append(subs, sub)
	}
	h.mu.RUnlock()

	if len(subs) > 0 {
		h.log.Error().Err(err).Int("subscriptions", len(subs)).Msg("failing subscriptions")
	}
	for _, sub := range subs {
		sub.fail(err)
	}
}

// Count returns the number of live subscriptions.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	subs := h.subs
	h.subs = make(map[string]*Subscription)
	h.mu.Unlock()

	for _, sub := range subs {
		sub.stop()
	}
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	delete(h.subs, id)
	h.mu.Unlock()
}

// Subscription is a live filtered feed. Release stops it.
type Subscription struct {
	ID     string
	Filter Filter

	hub      *Hub
	onChange func(Change)
	onError  func(error)
	queue    chan Change
	done     chan struct{}
	released atomic.Bool
	once     sync.Once
}

// Release detaches the subscription. No callback starts after Release returns.
// It is safe to call more than once and from inside the callback.
func (s *Subscription) Release() {
	s.hub.remove(s.ID)
	s.stop()
}

func (s *Subscription) Released() bool {
	return s.released.Load()
}

func (s *Subscription) stop() {
	s.once.Do(func() {
		s.released.Store(true)
		close(s.done)
		metrics.RealtimeSubscriptions.Dec()
	})
}

func (s *Subscription) fail(err error) {
	if s.released.Load() {
		return
	}
	s.Release()
	if s.onError != nil {
		go s.onError(err)
	}
}

func (s *Subscription) enqueue(change Change) bool {
	if s.released.Load() {
		return true
	}
	select {
	case s.queue <- change:
		return true
	default:
		return false
	}
}

func (s *Subscription) run() {
	for {
		select {
		case <-s.done:
			return
		case change := <-s.queue:
			if s.released.Load() {
				return
			}
			s.onChange(change)
			metrics.RealtimeEventsDelivered.WithLabelValues(change.Table).Inc()
		}
	}
}

package usecase

import (
	"context"
	stderrors "errors"
	"sync"

	"expressivart/internal/domain/entity"
	"expressivart/internal/infrastructure/metrics"
	"expressivart/pkg/errors"
)

type SessionState int

const (
	StateClosed SessionState = iota
	StateResolving
	StateLoading
	StateLive
)

func (s SessionState) String() string {
	switch s {
	case StateResolving:
		return "resolving"
	case StateLoading:
		return "loading"
	case StateLive:
		return "live"
	default:
		return "closed"
	}
}

const (
	EventOpened       = "chat_opened"
	EventMessage      = "message"
	EventClosed       = "chat_closed"
	EventDisconnected = "chat_disconnected"
	EventNotice       = "notice"
)

// SessionEvent is what a session reports to its owner.
type SessionEvent struct {
	Type         string
	Conversation *entity.Conversation
	Messages     []entity.MessageView
	Message      *entity.MessageView
	Err          error
}

// SessionSink receives session events in order. It is called with the
// session lock held, so it must not block or call back into the session.
type SessionSink func(SessionEvent)

// ErrSessionSuperseded is returned by an open call whose result was discarded
// because the session was closed or reopened meanwhile.
var ErrSessionSuperseded = stderrors.New("chat session superseded")

// ChatSession is one open chat window: a resolved conversation, its merged
// message stream and the live listener feeding it.
//
// Closed -> Resolving -> Loading -> Live -> Closed. Every open bumps the
// generation so results that arrive for an older open are dropped.
type ChatSession struct {
	chat *ChatUseCase
	auth *AuthState
	sink SessionSink

	mu           sync.Mutex
	state        SessionState
	generation   uint64
	userID       string
	conversation *entity.Conversation
	stream       *MessageStream
	release      func()

	unsubscribeAuth func()
}

func NewChatSession(chat *ChatUseCase, auth *AuthState, sink SessionSink) *ChatSession {
	s := &ChatSession{chat: chat, auth: auth, sink: sink}
	s.unsubscribeAuth = auth.OnChange(s.onAuthChange)
	return s
}

func (s *ChatSession) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *ChatSession) Conversation() *entity.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conversation
}

// Messages returns the current stream with sides computed for the signed-in user.
func (s *ChatSession) Messages() []entity.MessageView {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stream == nil {
		return nil
	}
	return viewsFor(s.stream.Messages(), s.userID)
}

// Open resolves the signed-in buyer's conversation about artworkID and goes live.
func (s *ChatSession) Open(ctx context.Context, artworkID, sellerID string) error {
	principal, ok := s.auth.Current()
	if !ok {
		return errors.AuthRequired()
	}

	gen := s.begin(principal.UserID)
	conversation, err := s.chat.StartConversation(ctx, principal.UserID, artworkID, sellerID)
	if err != nil {
		s.abort(gen)
		return err
	}
	return s.attach(ctx, gen, conversation)
}

// OpenConversation goes live on an existing conversation the user takes part in.
func (s *ChatSession) OpenConversation(ctx context.Context, conversationID string) error {
	principal, ok := s.auth.Current()
	if !ok {
		return errors.AuthRequired()
	}

	gen := s.begin(principal.UserID)
	conversation, err := s.chat.GetConversation(ctx, conversationID, principal.UserID)
	if err != nil {
		s.abort(gen)
		return errors.ResolveFailed("Could not open conversation", err)
	}
	return s.attach(ctx, gen, conversation)
}

// Send writes text to the open conversation. The message shows up in the
// stream when the live listener delivers it.
func (s *ChatSession) Send(ctx context.Context, text string) (*entity.Message, error) {
	s.mu.Lock()
	if s.state != StateLive {
		s.mu.Unlock()
		return nil, errors.SendFailed("Message not sent", errors.BadRequest("Chat is not open", nil))
	}
	conversationID, userID := s.conversation.ID, s.userID
	s.mu.Unlock()

	return s.chat.Send(ctx, conversationID, userID, text)
}

// Close tears the session down. It is safe to call in any state.
func (s *ChatSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
}

// Dispose closes the session and detaches it from the auth context.
func (s *ChatSession) Dispose() {
	s.Close()
	s.unsubscribeAuth()
}

func (s *ChatSession) begin(userID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
	s.state = StateResolving
	s.userID = userID
	return s.generation
}

func (s *ChatSession) abort(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation == gen && s.state == StateResolving {
		s.closeLocked()
	}
}

func (s *ChatSession) attach(ctx context.Context, gen uint64, conversation *entity.Conversation) error {
	s.mu.Lock()
	if s.generation != gen || s.state != StateResolving {
		s.mu.Unlock()
		return ErrSessionSuperseded
	}
	s.state = StateLoading
	s.conversation = conversation
	s.stream = NewMessageStream()
	s.mu.Unlock()

	// The listener is attached before history is read so nothing committed in
	// between is missed; the stream drops whatever arrives on both paths.
	release, err := s.chat.Subscribe(conversation.ID,
		func(v entity.MessageView) { s.onLive(gen, v) },
		func(err error) { s.onDisconnect(gen, err) })
	if err != nil {
		s.abortLoading(gen)
		return err
	}

	s.mu.Lock()
	if s.generation != gen {
		s.mu.Unlock()
		release()
		return ErrSessionSuperseded
	}
	s.release = release
	s.mu.Unlock()

	history, loadErr := s.chat.LoadHistory(ctx, conversation.ID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen || s.state != StateLoading {
		return ErrSessionSuperseded
	}
	if loadErr == nil {
		s.stream.Merge(history)
	}
	s.state = StateLive
	metrics.ChatSessions.Inc()

	if loadErr != nil {
		s.emit(SessionEvent{Type: EventNotice, Conversation: conversation, Err: loadErr})
	}
	s.emit(SessionEvent{
		Type:         EventOpened,
		Conversation: conversation,
		Messages:     viewsFor(s.stream.Messages(), s.userID),
	})
	return nil
}

func (s *ChatSession) abortLoading(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation == gen && s.state == StateLoading {
		s.closeLocked()
	}
}

func (s *ChatSession) onLive(gen uint64, v entity.MessageView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen || (s.state != StateLoading && s.state != StateLive) {
		return
	}
	if !s.stream.Append(v) || s.state != StateLive {
		return
	}
	view := v.ForViewer(s.userID)
	s.emit(SessionEvent{Type: EventMessage, Conversation: s.conversation, Message: &view})
}

// onDisconnect ends the session when its live listener fails. There is no
// automatic resubscribe; the owner decides whether to open again.
func (s *ChatSession) onDisconnect(gen uint64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen || s.state == StateClosed {
		return
	}
	conversation := s.conversation
	s.closeLocked()
	s.emit(SessionEvent{Type: EventDisconnected, Conversation: conversation, Err: err})
}

func (s *ChatSession) onAuthChange(p *entity.Principal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return
	}
	if p != nil && p.UserID == s.userID {
		return
	}
	conversation := s.conversation
	s.closeLocked()
	s.emit(SessionEvent{Type: EventClosed, Conversation: conversation, Err: errors.AuthRequired()})
}

func (s *ChatSession) closeLocked() {
	s.generation++
	if s.state == StateLive {
		metrics.ChatSessions.Dec()
	}
	if s.release != nil {
		s.release()
		s.release = nil
	}
	s.state = StateClosed
	s.conversation = nil
	s.stream = nil
}

func (s *ChatSession) emit(ev SessionEvent) {
	if s.sink != nil {
		s.sink(ev)
	}
}

func viewsFor(views []entity.MessageView, userID string) []entity.MessageView {
	for i := range views {
		views[i] = views[i].ForViewer(userID)
	}
	return views
}

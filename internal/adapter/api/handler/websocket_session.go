package handler

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"expressivart/internal/domain/entity"
	"expressivart/internal/infrastructure/realtime"
	ws "expressivart/internal/infrastructure/websocket"
	"expressivart/internal/usecase"
	"expressivart/pkg/errors"
	"expressivart/pkg/logger"
)

const wsOperationTimeout = 10 * time.Second

type chatOpenedData struct {
	Conversation *entity.Conversation `json:"conversation"`
	Messages     []entity.MessageView `json:"messages"`
}

type subscribedData struct {
	SubscriptionID string `json:"subscription_id"`
	Channel        string `json:"channel"`
}

type changeData struct {
	Channel string          `json:"channel"`
	Change  realtime.Change `json:"change"`
}

type authenticatedData struct {
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// wsConnection drives one websocket: its auth state, the chat sessions it has
// open (one per conversation) and any raw change subscriptions.
type wsConnection struct {
	client  *ws.Client
	manager *ws.Manager
	auth    *usecase.AuthState

	authUseCase *usecase.AuthUseCase
	chatUseCase *usecase.ChatUseCase
	feed        *usecase.ChangeFeed

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	sessions map[string]*usecase.ChatSession
	subs     map[string]*realtime.Subscription
	expiry   *time.Timer
	closed   bool

	log zerolog.Logger
}

func newWSConnection(
	client *ws.Client,
	manager *ws.Manager,
	principal *entity.Principal,
	authUseCase *usecase.AuthUseCase,
	chatUseCase *usecase.ChatUseCase,
	feed *usecase.ChangeFeed,
) *wsConnection {
	ctx, cancel := context.WithCancel(context.Background())
	c := &wsConnection{
		client:      client,
		manager:     manager,
		auth:        usecase.NewAuthState(principal),
		authUseCase: authUseCase,
		chatUseCase: chatUseCase,
		feed:        feed,
		ctx:         ctx,
		cancel:      cancel,
		sessions:    make(map[string]*usecase.ChatSession),
		subs:        make(map[string]*realtime.Subscription),
		log:         logger.With("websocket").With().Str("client", client.ID).Logger(),
	}
	c.scheduleExpiry(principal)
	return c
}

// handle dispatches one inbound frame. Frames are handled in arrival order.
func (c *wsConnection) handle(payload []byte) {
	frame, err := ws.ParseFrame(payload)
	if err != nil {
		c.sendError("", "", errors.BadRequest("Malformed frame", err))
		return
	}

	switch frame.Type {
	case ws.FramePing:
		c.send(ws.Frame{Type: ws.FramePong, RequestID: frame.RequestID}, nil)
	case ws.FrameAuth:
		c.handleAuth(frame)
	case ws.FrameOpenChat:
		c.handleOpenChat(frame)
	case ws.FrameCloseChat:
		c.handleCloseChat(frame)
	case ws.FrameSendMessage:
		c.handleSendMessage(frame)
	case ws.FrameSubscribe:
		c.handleSubscribe(frame)
	case ws.FrameUnsubscribe:
		c.handleUnsubscribe(frame)
	default:
		c.sendError(frame.RequestID, "", errors.BadRequest("Unknown frame type "+frame.Type, nil))
	}
}

// handleAuth swaps the connection to a freshly verified token. Sessions owned
// by a different user are closed by the auth change.
func (c *wsConnection) handleAuth(frame ws.Frame) {
	var data ws.AuthData
	if err := frame.Decode(&data); err != nil {
		c.sendError(frame.RequestID, "", errors.BadRequest("token is required", err))
		return
	}

	ctx, cancel := context.WithTimeout(c.ctx, wsOperationTimeout)
	defer cancel()
	principal, err := c.authUseCase.Authenticate(ctx, data.Token)
	if err != nil {
		c.sendError(frame.RequestID, "", err)
		return
	}

	if principal.UserID != c.client.UserID {
		c.releaseSubscriptions()
		c.manager.Rekey(c.client, principal.UserID)
	}
	c.auth.Set(principal)
	c.scheduleExpiry(principal)

	c.send(ws.Frame{Type: ws.FrameAuthenticated, RequestID: frame.RequestID}, authenticatedData{
		UserID:    principal.UserID,
		ExpiresAt: principal.ExpiresAt,
	})
}

func (c *wsConnection) handleOpenChat(frame ws.Frame) {
	var data ws.OpenChatData
	if err := frame.Decode(&data); err != nil {
		c.sendError(frame.RequestID, "", errors.BadRequest("artwork_id or conversation_id is required", err))
		return
	}
	if data.ArtworkID == "" && data.ConversationID == "" {
		c.sendError(frame.RequestID, "", errors.BadRequest("artwork_id or conversation_id is required", nil))
		return
	}

	var session *usecase.ChatSession
	session = usecase.NewChatSession(c.chatUseCase, c.auth, func(ev usecase.SessionEvent) {
		c.onSessionEvent(session, frame.RequestID, ev)
	})

	ctx, cancel := context.WithTimeout(c.ctx, wsOperationTimeout)
	defer cancel()

	var err error
	if data.ConversationID != "" {
		err = session.OpenConversation(ctx, data.ConversationID)
	} else {
		err = session.Open(ctx, data.ArtworkID, data.SellerID)
	}
	if err != nil {
		session.Dispose()
		c.sendError(frame.RequestID, data.ConversationID, err)
		return
	}

	conversation := session.Conversation()
	if conversation == nil {
		session.Dispose()
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		session.Dispose()
		return
	}
	previous := c.sessions[conversation.ID]
	c.sessions[conversation.ID] = session
	c.mu.Unlock()

	if previous != nil {
		previous.Dispose()
	}
	// A drop between Open returning and registration leaves a dead entry.
	if session.State() == usecase.StateClosed {
		c.forgetSession(conversation.ID, session)
		session.Dispose()
	}
}

func (c *wsConnection) handleCloseChat(frame ws.Frame) {
	var data ws.CloseChatData
	if err := frame.Decode(&data); err != nil || data.ConversationID == "" {
		c.sendError(frame.RequestID, "", errors.BadRequest("conversation_id is required", err))
		return
	}

	c.mu.Lock()
	session := c.sessions[data.ConversationID]
	delete(c.sessions, data.ConversationID)
	c.mu.Unlock()

	if session != nil {
		session.Dispose()
	}
	c.send(ws.Frame{Type: ws.FrameChatClosed, ConversationID: data.ConversationID, RequestID: frame.RequestID}, nil)
}

func (c *wsConnection) handleSendMessage(frame ws.Frame) {
	var data ws.SendMessageData
	if err := frame.Decode(&data); err != nil || data.ConversationID == "" {
		c.sendError(frame.RequestID, "", errors.SendFailed("Message not sent", errors.BadRequest("conversation_id is required", err)))
		return
	}

	c.mu.Lock()
	session := c.sessions[data.ConversationID]
	c.mu.Unlock()
	if session == nil {
		c.sendError(frame.RequestID, data.ConversationID, errors.SendFailed("Message not sent", errors.BadRequest("Chat is not open", nil)))
		return
	}

	ctx, cancel := context.WithTimeout(c.ctx, wsOperationTimeout)
	defer cancel()
	message, err := session.Send(ctx, data.Content)
	if err != nil {
		c.sendError(frame.RequestID, data.ConversationID, err)
		return
	}
	c.send(ws.Frame{Type: ws.FrameMessageSent, ConversationID: data.ConversationID, RequestID: frame.RequestID}, message)
}

func (c *wsConnection) handleSubscribe(frame ws.Frame) {
	var data ws.SubscribeData
	if err := frame.Decode(&data); err != nil {
		c.sendError(frame.RequestID, "", errors.BadRequest("table and event are required", err))
		return
	}

	principal, ok := c.auth.Current()
	if !ok {
		c.sendError(frame.RequestID, "", errors.AuthRequired())
		return
	}

	filter := realtime.Filter{
		Table:  data.Table,
		Event:  realtime.EventType(data.Event),
		Column: data.Column,
		Value:  data.Value,
	}
	channel := filter.String()

	ctx, cancel := context.WithTimeout(c.ctx, wsOperationTimeout)
	defer cancel()
	sub, err := c.feed.Subscribe(ctx, principal.UserID, filter,
		func(change realtime.Change) {
			c.send(ws.Frame{Type: ws.FrameChange}, changeData{Channel: channel, Change: change})
		},
		func(err error) {
			c.sendError("", "", err)
		})
	if err != nil {
		c.sendError(frame.RequestID, "", err)
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		sub.Release()
		return
	}
	c.pruneSubscriptionsLocked()
	c.subs[sub.ID] = sub
	c.mu.Unlock()

	c.send(ws.Frame{Type: ws.FrameSubscribed, RequestID: frame.RequestID}, subscribedData{
		SubscriptionID: sub.ID,
		Channel:        channel,
	})
}

func (c *wsConnection) handleUnsubscribe(frame ws.Frame) {
	var data ws.UnsubscribeData
	if err := frame.Decode(&data); err != nil || data.SubscriptionID == "" {
		c.sendError(frame.RequestID, "", errors.BadRequest("subscription_id is required", err))
		return
	}

	c.mu.Lock()
	sub := c.subs[data.SubscriptionID]
	delete(c.subs, data.SubscriptionID)
	c.mu.Unlock()

	if sub == nil {
		c.sendError(frame.RequestID, "", errors.NotFound("Subscription", nil))
		return
	}
	sub.Release()
	c.send(ws.Frame{Type: ws.FrameUnsubscribed, RequestID: frame.RequestID}, subscribedData{
		SubscriptionID: sub.ID,
		Channel:        sub.Filter.String(),
	})
}

// onSessionEvent runs under the session lock, so it only queues frames and
// defers anything that calls back into the session.
func (c *wsConnection) onSessionEvent(session *usecase.ChatSession, requestID string, ev usecase.SessionEvent) {
	conversationID := ""
	if ev.Conversation != nil {
		conversationID = ev.Conversation.ID
	}

	switch ev.Type {
	case usecase.EventOpened:
		c.send(ws.Frame{Type: ws.FrameChatOpened, ConversationID: conversationID, RequestID: requestID}, chatOpenedData{
			Conversation: ev.Conversation,
			Messages:     ev.Messages,
		})
	case usecase.EventMessage:
		c.send(ws.Frame{Type: ws.FrameMessage, ConversationID: conversationID}, ev.Message)
	case usecase.EventNotice:
		c.send(ws.Frame{Type: ws.FrameNotice, ConversationID: conversationID}, ws.ErrorDataOf(ev.Err))
	case usecase.EventClosed, usecase.EventDisconnected:
		frameType := ws.FrameChatClosed
		if ev.Type == usecase.EventDisconnected {
			frameType = ws.FrameChatDisconnected
		}
		c.send(ws.Frame{Type: frameType, ConversationID: conversationID}, ws.ErrorDataOf(ev.Err))
		if conversationID != "" {
			c.forgetSession(conversationID, session)
		}
		go session.Dispose()
	}
}

func (c *wsConnection) forgetSession(conversationID string, session *usecase.ChatSession) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sessions[conversationID] == session {
		delete(c.sessions, conversationID)
	}
}

func (c *wsConnection) pruneSubscriptionsLocked() {
	for id, sub := range c.subs {
		if sub.Released() {
			delete(c.subs, id)
		}
	}
}

func (c *wsConnection) releaseSubscriptions() {
	c.mu.Lock()
	subs := c.subs
	c.subs = make(map[string]*realtime.Subscription)
	c.mu.Unlock()

	for _, sub := range subs {
		sub.Release()
	}
}

// scheduleExpiry signs the connection out when the token it authenticated
// with expires. Clients renew by sending a fresh auth frame.
func (c *wsConnection) scheduleExpiry(principal *entity.Principal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.expiry != nil {
		c.expiry.Stop()
		c.expiry = nil
	}
	if principal == nil || principal.ExpiresAt.IsZero() || c.closed {
		return
	}

	expiresAt := principal.ExpiresAt
	c.expiry = time.AfterFunc(time.Until(expiresAt), func() {
		current, ok := c.auth.Current()
		if !ok || !current.ExpiresAt.Equal(expiresAt) {
			return
		}
		c.auth.Clear()
		c.releaseSubscriptions()
		c.sendError("", "", errors.AuthRequired())
	})
}

// close tears down every session and subscription. It is idempotent.
func (c *wsConnection) close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	sessions := c.sessions
	c.sessions = make(map[string]*usecase.ChatSession)
	if c.expiry != nil {
		c.expiry.Stop()
	}
	c.mu.Unlock()

	for _, session := range sessions {
		session.Dispose()
	}
	c.releaseSubscriptions()
	c.cancel()
	c.manager.Leave(c.client)
	c.log.Debug().Int("sessions", len(sessions)).Msg("connection closed")
}

func (c *wsConnection) send(frame ws.Frame, data interface{}) {
	payload, err := ws.Encode(frame, data)
	if err != nil {
		c.log.Error().Err(err).Str("type", frame.Type).Msg("failed to encode frame")
		return
	}
	if err := c.client.Send(payload); err != nil {
		c.log.Debug().Err(err).Str("type", frame.Type).Msg("frame dropped")
	}
}

func (c *wsConnection) sendError(requestID, conversationID string, err error) {
	c.send(ws.Frame{Type: ws.FrameError, RequestID: requestID, ConversationID: conversationID}, ws.ErrorDataOf(err))
}

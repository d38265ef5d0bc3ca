package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expressivart/internal/domain/entity"
	ws "expressivart/internal/infrastructure/websocket"
	"expressivart/pkg/errors"
)

type wsTestClient struct {
	t    *testing.T
	conn *gorillaws.Conn
}

func dialWS(t *testing.T, url string) *wsTestClient {
	t.Helper()
	conn, resp, err := gorillaws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return &wsTestClient{t: t, conn: conn}
}

func (c *wsTestClient) send(frameType, requestID string, data interface{}) {
	c.t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(c.t, err)
	require.NoError(c.t, c.conn.WriteJSON(ws.Frame{Type: frameType, RequestID: requestID, Data: raw}))
}

// next reads frames until one of type frameType arrives.
func (c *wsTestClient) next(frameType string) ws.Frame {
	c.t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		require.NoError(c.t, c.conn.SetReadDeadline(deadline))
		var f ws.Frame
		require.NoError(c.t, c.conn.ReadJSON(&f), "waiting for %s", frameType)
		if f.Type == frameType {
			return f
		}
	}
}

func TestWebSocketRejectsMissingToken(t *testing.T) {
	f := newAPIFixture(t)
	srv := f.server(t)

	_, resp, err := gorillaws.DefaultDialer.Dial(f.wsURL(srv, ""), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestWebSocketChatSession(t *testing.T) {
	f := newAPIFixture(t)
	srv := f.server(t)
	ctx := context.Background()

	conversation, err := f.chat.Resolve(ctx, "art1", "buyer1", "seller1")
	require.NoError(t, err)
	_, err = f.chat.Send(ctx, conversation.ID, "seller1", "Welcome!")
	require.NoError(t, err)

	buyer := dialWS(t, f.wsURL(srv, "token-buyer1"))

	buyer.send(ws.FramePing, "p1", map[string]string{})
	assert.Equal(t, "p1", buyer.next(ws.FramePong).RequestID)

	buyer.send(ws.FrameOpenChat, "r1", ws.OpenChatData{ArtworkID: "art1"})
	opened := buyer.next(ws.FrameChatOpened)
	assert.Equal(t, "r1", opened.RequestID)
	assert.Equal(t, conversation.ID, opened.ConversationID)

	var openedData chatOpenedData
	require.NoError(t, opened.Decode(&openedData))
	require.Len(t, openedData.Messages, 1)
	assert.Equal(t, "Welcome!", openedData.Messages[0].Content)
	assert.Equal(t, entity.SideOther, openedData.Messages[0].Side)

	buyer.send(ws.FrameSendMessage, "r2", ws.SendMessageData{ConversationID: conversation.ID, Content: "   "})
	failed := buyer.next(ws.FrameError)
	assert.Equal(t, "r2", failed.RequestID)
	var errData ws.ErrorData
	require.NoError(t, failed.Decode(&errData))
	assert.Equal(t, errors.CodeSendFailed, errData.Code)

	buyer.send(ws.FrameSendMessage, "r3", ws.SendMessageData{ConversationID: conversation.ID, Content: "Still available?"})
	own := buyer.next(ws.FrameMessage)
	var ownView entity.MessageView
	require.NoError(t, own.Decode(&ownView))
	assert.Equal(t, "Still available?", ownView.Content)
	assert.Equal(t, entity.SideSelf, ownView.Side)

	_, err = f.chat.Send(ctx, conversation.ID, "seller1", "Yes")
	require.NoError(t, err)
	reply := buyer.next(ws.FrameMessage)
	var replyView entity.MessageView
	require.NoError(t, reply.Decode(&replyView))
	assert.Equal(t, "Yes", replyView.Content)
	assert.Equal(t, entity.SideOther, replyView.Side)

	buyer.send(ws.FrameCloseChat, "r4", ws.CloseChatData{ConversationID: conversation.ID})
	assert.Equal(t, "r4", buyer.next(ws.FrameChatClosed).RequestID)
	assert.Eventually(t, func() bool { return f.hub.Count() == 0 }, time.Second, 5*time.Millisecond)

	buyer.send(ws.FrameSendMessage, "r5", ws.SendMessageData{ConversationID: conversation.ID, Content: "hello?"})
	require.NoError(t, buyer.next(ws.FrameError).Decode(&errData))
	assert.Equal(t, errors.CodeSendFailed, errData.Code)
}

func TestWebSocketDisconnectNotifiesClient(t *testing.T) {
	f := newAPIFixture(t)
	srv := f.server(t)

	buyer := dialWS(t, f.wsURL(srv, "token-buyer1"))
	buyer.send(ws.FrameOpenChat, "r1", ws.OpenChatData{ArtworkID: "art1"})
	buyer.next(ws.FrameChatOpened)

	f.hub.Fail(assert.AnError)

	dropped := buyer.next(ws.FrameChatDisconnected)
	var errData ws.ErrorData
	require.NoError(t, dropped.Decode(&errData))
	assert.Equal(t, errors.CodeSubscriptionFailed, errData.Code)
}

func TestWebSocketReauthClosesOtherUsersSessions(t *testing.T) {
	f := newAPIFixture(t)
	srv := f.server(t)

	client := dialWS(t, f.wsURL(srv, "token-buyer1"))
	client.send(ws.FrameOpenChat, "r1", ws.OpenChatData{ArtworkID: "art1"})
	client.next(ws.FrameChatOpened)

	client.send(ws.FrameAuth, "r2", ws.AuthData{Token: "token-buyer1"})
	assert.Equal(t, "r2", client.next(ws.FrameAuthenticated).RequestID)
	assert.Equal(t, 1, f.hub.Count())

	client.send(ws.FrameAuth, "r3", ws.AuthData{Token: "token-buyer2"})
	closed := client.next(ws.FrameChatClosed)
	var errData ws.ErrorData
	require.NoError(t, closed.Decode(&errData))
	assert.Equal(t, errors.CodeAuthRequired, errData.Code)
	client.next(ws.FrameAuthenticated)
	assert.Eventually(t, func() bool { return f.hub.Count() == 0 }, time.Second, 5*time.Millisecond)
}

func TestWebSocketSubscribeIsScopedToUser(t *testing.T) {
	f := newAPIFixture(t)
	srv := f.server(t)

	client := dialWS(t, f.wsURL(srv, "token-seller1"))

	client.send(ws.FrameSubscribe, "r1", ws.SubscribeData{Table: "orders", Event: "*", Column: "seller_id", Value: "someone-else"})
	var errData ws.ErrorData
	require.NoError(t, client.next(ws.FrameError).Decode(&errData))
	assert.Equal(t, errors.CodeSubscriptionFailed, errData.Code)

	client.send(ws.FrameSubscribe, "r2", ws.SubscribeData{Table: "orders", Event: "*", Column: "seller_id", Value: "seller1"})
	var sub subscribedData
	require.NoError(t, client.next(ws.FrameSubscribed).Decode(&sub))
	assert.NotEmpty(t, sub.SubscriptionID)
	assert.Equal(t, "orders:*:seller_id=eq.seller1", sub.Channel)

	client.send(ws.FrameUnsubscribe, "r3", ws.UnsubscribeData{SubscriptionID: sub.SubscriptionID})
	assert.Equal(t, "r3", client.next(ws.FrameUnsubscribed).RequestID)
	assert.Eventually(t, func() bool { return f.hub.Count() == 0 }, time.Second, 5*time.Millisecond)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://expressivart.app/"})

	req, _ := http.NewRequest(http.MethodGet, "http://api.local/v1/ws", nil)
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://expressivart.app")
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://evil.example")
	assert.False(t, check(req))

	req.Header.Set("Origin", "http://api.local")
	assert.True(t, check(req))

	assert.True(t, originChecker([]string{"*"})(req))
}

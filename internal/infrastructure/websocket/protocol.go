package websocket

import (
	"encoding/json"
	stderrors "errors"
	"time"

	apperrors "expressivart/pkg/errors"
)

// Client to server frame types.
const (
	FramePing        = "ping"
	FrameAuth        = "auth"
	FrameOpenChat    = "open_chat"
	FrameCloseChat   = "close_chat"
	FrameSendMessage = "send_message"
	FrameSubscribe   = "subscribe"
	FrameUnsubscribe = "unsubscribe"
)

// Server to client frame types.
const (
	FramePong             = "pong"
	FrameAuthenticated    = "authenticated"
	FrameChatOpened       = "chat_opened"
	FrameMessage          = "message"
	FrameMessageSent      = "message_sent"
	FrameChatClosed       = "chat_closed"
	FrameChatDisconnected = "chat_disconnected"
	FrameNotice           = "notice"
	FrameSubscribed       = "subscribed"
	FrameUnsubscribed     = "unsubscribed"
	FrameChange           = "change"
	FrameNotification     = "notification"
	FrameError            = "error"
)

// Frame is the envelope for every message in both directions.
type Frame struct {
	Type           string          `json:"type"`
	ConversationID string          `json:"conversation_id,omitempty"`
	RequestID      string          `json:"request_id,omitempty"`
	Data           json.RawMessage `json:"data,omitempty"`
	Timestamp      string          `json:"timestamp,omitempty"`
}

// Decode unmarshals the frame payload into v.
func (f Frame) Decode(v interface{}) error {
	if len(f.Data) == 0 {
		return stderrors.New("frame data is required")
	}
	return json.Unmarshal(f.Data, v)
}

type AuthData struct {
	Token string `json:"token"`
}

type OpenChatData struct {
	ArtworkID      string `json:"artwork_id,omitempty"`
	SellerID       string `json:"seller_id,omitempty"`
	ConversationID string `json:"conversation_id,omitempty"`
}

type CloseChatData struct {
	ConversationID string `json:"conversation_id"`
}

type SendMessageData struct {
	ConversationID string `json:"conversation_id"`
	Content        string `json:"content"`
}

type SubscribeData struct {
	Table  string `json:"table"`
	Event  string `json:"event"`
	Column string `json:"column,omitempty"`
	Value  string `json:"value,omitempty"`
}

type UnsubscribeData struct {
	SubscriptionID string `json:"subscription_id"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Encode stamps and marshals a server frame carrying data.
func Encode(f Frame, data interface{}) ([]byte, error) {
	f.Timestamp = time.Now().UTC().Format(time.RFC3339Nano)
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		f.Data = raw
	}
	return json.Marshal(f)
}

// ParseFrame decodes a client frame.
func ParseFrame(payload []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(payload, &f); err != nil {
		return Frame{}, err
	}
	if f.Type == "" {
		return Frame{}, stderrors.New("frame type is required")
	}
	return f, nil
}

// ErrorDataOf maps err onto the wire error shape.
func ErrorDataOf(err error) ErrorData {
	var appErr *apperrors.AppError
	if stderrors.As(err, &appErr) {
		return ErrorData{Code: appErr.Code, Message: appErr.Message}
	}
	return ErrorData{Code: apperrors.CodeInternal, Message: "Internal server error"}
}

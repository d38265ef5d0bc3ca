package entity

import "time"

type Message struct {
	ID             string    `json:"id" firestore:"id"`
	ConversationID string    `json:"conversation_id" firestore:"conversationId"`
	SenderID       string    `json:"sender_id" firestore:"senderId"`
	Content        string    `json:"content" firestore:"content"`
	IsRead         bool      `json:"is_read" firestore:"isRead"`
	CreatedAt      time.Time `json:"created_at" firestore:"createdAt"`
}

type Side string

const (
	SideSelf  Side = "self"
	SideOther Side = "other"
)

// SideOf is derived on every render from the sender and the viewer. It is never persisted.
func SideOf(m *Message, currentUserID string) Side {
	if m != nil && currentUserID != "" && m.SenderID == currentUserID {
		return SideSelf
	}
	return SideOther
}

type MessageView struct {
	*Message
	Sender *ProfileSummary `json:"sender,omitempty"`
	Side   Side            `json:"side,omitempty"`
}

// ForViewer returns a copy of v with Side computed for the given user.
func (v MessageView) ForViewer(userID string) MessageView {
	v.Side = SideOf(v.Message, userID)
	return v
}

package entity

import (
	"time"

	"github.com/google/uuid"
)

// Conversation is the single chat thread between one buyer and an artwork's seller.
// Buyer and seller are fixed at creation.
type Conversation struct {
	ID        string    `json:"id" firestore:"id"`
	ArtworkID string    `json:"artwork_id" firestore:"artworkId"`
	BuyerID   string    `json:"buyer_id" firestore:"buyerId"`
	SellerID  string    `json:"seller_id" firestore:"sellerId"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}

var conversationNamespace = uuid.MustParse("5b0f3c1e-8d2a-4c6e-9a7b-2e4d6f8a0c1b")

// ConversationKey is the natural key of a conversation, a name-based UUID of
// (artwork, buyer). At most one conversation exists per key.
func ConversationKey(artworkID, buyerID string) string {
	return uuid.NewSHA1(conversationNamespace, []byte(artworkID+"\x00"+buyerID)).String()
}

// IsFor reports whether c belongs to the (artwork, buyer) pair.
func (c *Conversation) IsFor(artworkID, buyerID string) bool {
	return c.ArtworkID == artworkID && c.BuyerID == buyerID
}

func (c *Conversation) HasParticipant(userID string) bool {
	return userID != "" && (c.BuyerID == userID || c.SellerID == userID)
}

// OtherParticipant returns the counterpart of userID in the conversation.
func (c *Conversation) OtherParticipant(userID string) string {
	if c.BuyerID == userID {
		return c.SellerID
	}
	return c.BuyerID
}

type ConversationWithDetails struct {
	*Conversation
	Artwork     *ArtworkSummary `json:"artwork,omitempty"`
	OtherUser   *ProfileSummary `json:"other_user,omitempty"`
	LastMessage *Message        `json:"last_message,omitempty"`
}

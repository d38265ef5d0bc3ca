package repository

import (
	"context"
	"time"

	"expressivart/internal/domain/entity"
)

type ConversationRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Conversation, error)

	// FindByArtworkAndBuyer returns a NOT_FOUND AppError when no conversation exists for the pair.
	FindByArtworkAndBuyer(ctx context.Context, artworkID, buyerID string) (*entity.Conversation, error)

	// Create inserts a new conversation. Implementations enforce uniqueness on
	// (artwork, buyer) and return a CONFLICT AppError when the pair already exists.
	Create(ctx context.Context, conversation *entity.Conversation) error

	// ListByParticipant returns conversations where the user is buyer or seller, most recently active first.
	ListByParticipant(ctx context.Context, userID string) ([]*entity.Conversation, error)

	Touch(ctx context.Context, id string, at time.Time) error
}

type MessageRepository interface {
	Create(ctx context.Context, message *entity.Message) error

	// ListByConversation returns every message ordered by creation time, oldest first.
	ListByConversation(ctx context.Context, conversationID string) ([]*entity.Message, error)

	// Latest returns nil without error for an empty conversation.
	Latest(ctx context.Context, conversationID string) (*entity.Message, error)

	// MarkRead flags messages not sent by readerID as read and returns how many changed.
	MarkRead(ctx context.Context, conversationID, readerID string) (int, error)
}

package repository

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"

	"expressivart/internal/domain/entity"
	"expressivart/internal/domain/repository"
	"expressivart/pkg/errors"
	"expressivart/pkg/logger"
)

const (
	conversationsCollection = "conversations"
	messagesCollection      = "messages"
)

type firestoreConversationRepository struct {
	client *firestore.Client
}

// NewFirestoreConversationRepository stores conversations under a document ID
// derived from (artwork, buyer), so the document store itself rejects a second
// conversation for the same pair.
func NewFirestoreConversationRepository(client *firestore.Client) repository.ConversationRepository {
	return &firestoreConversationRepository{client: client}
}

func (r *firestoreConversationRepository) doc(id string) *firestore.DocumentRef {
	return r.client.Collection(conversationsCollection).Doc(id)
}

func (r *firestoreConversationRepository) GetByID(ctx context.Context, id string) (*entity.Conversation, error) {
	snap, err := r.doc(id).Get(ctx)
	if err != nil {
		return nil, mapFirestoreError(err, "Conversation", "get")
	}

	var c entity.Conversation
	if err := snap.DataTo(&c); err != nil {
		return nil, errors.Internal("Failed to parse conversation data", err)
	}
	return &c, nil
}

func (r *firestoreConversationRepository) FindByArtworkAndBuyer(ctx context.Context, artworkID, buyerID string) (*entity.Conversation, error) {
	return r.GetByID(ctx, entity.ConversationKey(artworkID, buyerID))
}

func (r *firestoreConversationRepository) Create(ctx context.Context, c *entity.Conversation) error {
	c.ID = entity.ConversationKey(c.ArtworkID, c.BuyerID)
	c.CreatedAt = createdAtOr(c.CreatedAt)
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = c.CreatedAt
	}

	if _, err := r.doc(c.ID).Create(ctx, c); err != nil {
		return mapFirestoreError(err, "Conversation", "create")
	}
	return nil
}

func (r *firestoreConversationRepository) ListByParticipant(ctx context.Context, userID string) ([]*entity.Conversation, error) {
	col := r.client.Collection(conversationsCollection)

	asBuyer, err := collect[entity.Conversation](col.Where("buyerId", "==", userID).Documents(ctx), "conversations")
	if err != nil {
		logger.Error("ListByParticipant buyer query for %s: %v", userID, err)
		return nil, err
	}
	asSeller, err := collect[entity.Conversation](col.Where("sellerId", "==", userID).Documents(ctx), "conversations")
	if err != nil {
		logger.Error("ListByParticipant seller query for %s: %v", userID, err)
		return nil, err
	}

	seen := make(map[string]bool, len(asBuyer)+len(asSeller))
	out := make([]*entity.Conversation, 0, len(asBuyer)+len(asSeller))
	for _, c := range append(asBuyer, asSeller...) {
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		out = append(out, c)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (r *firestoreConversationRepository) Touch(ctx context.Context, id string, at time.Time) error {
	_, err := r.doc(id).Update(ctx, []firestore.Update{{Path: "updatedAt", Value: at}})
	if err != nil {
		return mapFirestoreError(err, "Conversation", "update")
	}
	return nil
}

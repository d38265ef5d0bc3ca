package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"

	"expressivart/internal/domain/entity"
	"expressivart/internal/domain/repository"
	"expressivart/pkg/errors"
	"expressivart/pkg/logger"
)

type firestoreMessageRepository struct {
	client *firestore.Client
}

func NewFirestoreMessageRepository(client *firestore.Client) repository.MessageRepository {
	return &firestoreMessageRepository{client: client}
}

func (r *firestoreMessageRepository) messages(conversationID string) *firestore.CollectionRef {
	return r.client.Collection(conversationsCollection).Doc(conversationID).Collection(messagesCollection)
}

func (r *firestoreMessageRepository) Create(ctx context.Context, m *entity.Message) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	if _, err := r.messages(m.ConversationID).Doc(m.ID).Create(ctx, m); err != nil {
		return mapFirestoreError(err, "Message", "create")
	}
	return nil
}

func (r *firestoreMessageRepository) ListByConversation(ctx context.Context, conversationID string) ([]*entity.Message, error) {
	iter := r.messages(conversationID).OrderBy("createdAt", firestore.Asc).Documents(ctx)
	msgs, err := collect[entity.Message](iter, "messages")
	if err != nil {
		logger.Error("ListByConversation %s: %v", conversationID, err)
		return nil, err
	}
	return msgs, nil
}

func (r *firestoreMessageRepository) Latest(ctx context.Context, conversationID string) (*entity.Message, error) {
	iter := r.messages(conversationID).OrderBy("createdAt", firestore.Desc).Limit(1).Documents(ctx)
	msgs, err := collect[entity.Message](iter, "messages")
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return nil, nil
	}
	return msgs[0], nil
}

func (r *firestoreMessageRepository) MarkRead(ctx context.Context, conversationID, readerID string) (int, error) {
	iter := r.messages(conversationID).Where("isRead", "==", false).Documents(ctx)
	unread, err := collect[entity.Message](iter, "messages")
	if err != nil {
		return 0, err
	}

	bw := r.client.BulkWriter(ctx)
	var jobs []*firestore.BulkWriterJob
	for _, m := range unread {
		if m.SenderID == readerID {
			continue
		}
		job, err := bw.Update(r.messages(conversationID).Doc(m.ID), []firestore.Update{{Path: "isRead", Value: true}})
		if err != nil {
			bw.End()
			return 0, errors.Internal("Failed to queue read update", err)
		}
		jobs = append(jobs, job)
	}
	bw.End()

	updated := 0
	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			logger.Warn("MarkRead: update in conversation %s failed: %v", conversationID, err)
			continue
		}
		updated++
	}
	return updated, nil
}

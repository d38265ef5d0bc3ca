package repository

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"

	"expressivart/internal/domain/entity"
	"expressivart/internal/domain/repository"
)

const commentsCollection = "comments"

type firestoreCommentRepository struct {
	client *firestore.Client
}

func NewFirestoreCommentRepository(client *firestore.Client) repository.CommentRepository {
	return &firestoreCommentRepository{client: client}
}

func (r *firestoreCommentRepository) Create(ctx context.Context, c *entity.Comment) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	if _, err := r.client.Collection(commentsCollection).Doc(c.ID).Create(ctx, c); err != nil {
		return mapFirestoreError(err, "Comment", "create")
	}
	return nil
}

func (r *firestoreCommentRepository) ListByArtwork(ctx context.Context, artworkID string) ([]*entity.Comment, error) {
	iter := r.client.Collection(commentsCollection).Where("artworkId", "==", artworkID).Documents(ctx)
	comments, err := collect[entity.Comment](iter, "comments")
	if err != nil {
		return nil, err
	}

	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].CreatedAt.After(comments[j].CreatedAt)
	})
	return comments, nil
}

package usecase

import (
	"context"
	"strings"
	"time"

	"expressivart/internal/domain/entity"
	"expressivart/internal/domain/repository"
	"expressivart/pkg/errors"
)

const maxCommentLength = 2000

type CommentUseCase struct {
	commentRepo repository.CommentRepository
	artworkRepo repository.ArtworkRepository
	profiles    ProfileLookup
}

func NewCommentUseCase(commentRepo repository.CommentRepository, artworkRepo repository.ArtworkRepository, profiles ProfileLookup) *CommentUseCase {
	return &CommentUseCase{commentRepo: commentRepo, artworkRepo: artworkRepo, profiles: profiles}
}

func (uc *CommentUseCase) List(ctx context.Context, artworkID string) ([]*entity.CommentWithAuthor, error) {
	comments, err := uc.commentRepo.ListByArtwork(ctx, artworkID)
	if err != nil {
		return nil, err
	}

	result := make([]*entity.CommentWithAuthor, 0, len(comments))
	for _, c := range comments {
		item := &entity.CommentWithAuthor{Comment: c}
		if uc.profiles != nil {
			if author, err := uc.profiles.Summary(ctx, c.UserID); err == nil {
				item.Author = author
			}
		}
		result = append(result, item)
	}
	return result, nil
}

func (uc *CommentUseCase) Add(ctx context.Context, userID, artworkID, content string) (*entity.CommentWithAuthor, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errors.BadRequest("Comment cannot be empty", nil)
	}
	if len(content) > maxCommentLength {
		return nil, errors.BadRequest("Comment is too long", nil)
	}
	if _, err := uc.artworkRepo.GetByID(ctx, artworkID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	comment := &entity.Comment{
		ArtworkID: artworkID,
		UserID:    userID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	result := &entity.CommentWithAuthor{Comment: comment}
	if uc.profiles != nil {
		result.Author, _ = uc.profiles.Summary(ctx, userID)
	}
	return result, nil
}

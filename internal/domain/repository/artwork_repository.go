package repository

import (
	"context"

	"expressivart/internal/domain/entity"
)

type ArtworkRepository interface {
	Create(ctx context.Context, artwork *entity.Artwork) error
	GetByID(ctx context.Context, id string) (*entity.Artwork, error)
	Update(ctx context.Context, artwork *entity.Artwork) error
	Delete(ctx context.Context, id string) error

	// List returns every artwork matching filter in filter.Sort order.
	List(ctx context.Context, filter entity.ArtworkFilter) ([]*entity.Artwork, error)
}

type CommentRepository interface {
	Create(ctx context.Context, comment *entity.Comment) error

	// ListByArtwork returns comments newest first.
	ListByArtwork(ctx context.Context, artworkID string) ([]*entity.Comment, error)
}

type FavoriteRepository interface {
	Add(ctx context.Context, userID, artworkID string) (*entity.Favorite, error)
	Remove(ctx context.Context, userID, artworkID string) error
	Exists(ctx context.Context, userID, artworkID string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]*entity.Favorite, error)
	CountByArtwork(ctx context.Context, artworkID string) (int64, error)
}

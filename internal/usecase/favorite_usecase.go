package usecase

import (
	"context"

	"expressivart/internal/domain/entity"
	"expressivart/internal/domain/repository"
	"expressivart/pkg/errors"
	"expressivart/pkg/logger"
)

type FavoriteUseCase struct {
	favoriteRepo repository.FavoriteRepository
	artworkRepo  repository.ArtworkRepository
}

func NewFavoriteUseCase(favoriteRepo repository.FavoriteRepository, artworkRepo repository.ArtworkRepository) *FavoriteUseCase {
	return &FavoriteUseCase{favoriteRepo: favoriteRepo, artworkRepo: artworkRepo}
}

type FavoriteStatus struct {
	ArtworkID  string `json:"artwork_id"`
	IsFavorite bool   `json:"favorited"`
	Count      int64  `json:"count"`
}

// Toggle flips the user's favorite on an artwork and returns the new state.
func (uc *FavoriteUseCase) Toggle(ctx context.Context, userID, artworkID string) (*FavoriteStatus, error) {
	if _, err := uc.artworkRepo.GetByID(ctx, artworkID); err != nil {
		return nil, err
	}

	exists, err := uc.favoriteRepo.Exists(ctx, userID, artworkID)
	if err != nil {
		return nil, err
	}
	if exists {
		if err := uc.favoriteRepo.Remove(ctx, userID, artworkID); err != nil && !errors.Is(err, errors.CodeNotFound) {
			return nil, err
		}
	} else if _, err := uc.favoriteRepo.Add(ctx, userID, artworkID); err != nil {
		return nil, err
	}

	return uc.status(ctx, artworkID, !exists)
}

func (uc *FavoriteUseCase) Status(ctx context.Context, userID, artworkID string) (*FavoriteStatus, error) {
	exists := false
	if userID != "" {
		var err error
		if exists, err = uc.favoriteRepo.Exists(ctx, userID, artworkID); err != nil {
			return nil, err
		}
	}
	return uc.status(ctx, artworkID, exists)
}

// List returns the user's favorites with their artworks, skipping artworks
// that no longer exist.
func (uc *FavoriteUseCase) List(ctx context.Context, userID string) ([]*entity.FavoriteWithArtwork, error) {
	favorites, err := uc.favoriteRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := make([]*entity.FavoriteWithArtwork, 0, len(favorites))
	for _, f := range favorites {
		artwork, err := uc.artworkRepo.GetByID(ctx, f.ArtworkID)
		if err != nil {
			if !errors.Is(err, errors.CodeNotFound) {
				logger.Warn("Favorites: artwork %s lookup failed: %v", f.ArtworkID, err)
			}
			continue
		}
		result = append(result, &entity.FavoriteWithArtwork{Favorite: f, Artwork: artwork})
	}
	return result, nil
}

func (uc *FavoriteUseCase) status(ctx context.Context, artworkID string, isFavorite bool) (*FavoriteStatus, error) {
	count, err := uc.favoriteRepo.CountByArtwork(ctx, artworkID)
	if err != nil {
		return nil, err
	}
	return &FavoriteStatus{ArtworkID: artworkID, IsFavorite: isFavorite, Count: count}, nil
}

package repository

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"

	"expressivart/internal/domain/entity"
	"expressivart/internal/domain/repository"
	"expressivart/pkg/errors"
)

const favoritesCollection = "favorites"

type firestoreFavoriteRepository struct {
	client *firestore.Client
}

func NewFirestoreFavoriteRepository(client *firestore.Client) repository.FavoriteRepository {
	return &firestoreFavoriteRepository{client: client}
}

func (r *firestoreFavoriteRepository) Add(ctx context.Context, userID, artworkID string) (*entity.Favorite, error) {
	fav := &entity.Favorite{
		ID:        entity.FavoriteID(userID, artworkID),
		UserID:    userID,
		ArtworkID: artworkID,
		CreatedAt: time.Now().UTC(),
	}

	if _, err := r.client.Collection(favoritesCollection).Doc(fav.ID).Create(ctx, fav); err != nil {
		mapped := mapFirestoreError(err, "Favorite", "add")
		if errors.Is(mapped, errors.CodeConflict) {
			return fav, nil
		}
		return nil, mapped
	}
	return fav, nil
}

func (r *firestoreFavoriteRepository) Remove(ctx context.Context, userID, artworkID string) error {
	if _, err := r.client.Collection(favoritesCollection).Doc(entity.FavoriteID(userID, artworkID)).Delete(ctx); err != nil {
		return mapFirestoreError(err, "Favorite", "remove")
	}
	return nil
}

func (r *firestoreFavoriteRepository) Exists(ctx context.Context, userID, artworkID string) (bool, error) {
	_, err := r.client.Collection(favoritesCollection).Doc(entity.FavoriteID(userID, artworkID)).Get(ctx)
	if err != nil {
		mapped := mapFirestoreError(err, "Favorite", "get")
		if errors.Is(mapped, errors.CodeNotFound) {
			return false, nil
		}
		return false, mapped
	}
	return true, nil
}

func (r *firestoreFavoriteRepository) ListByUser(ctx context.Context, userID string) ([]*entity.Favorite, error) {
	iter := r.client.Collection(favoritesCollection).Where("userId", "==", userID).Documents(ctx)
	favs, err := collect[entity.Favorite](iter, "favorites")
	if err != nil {
		return nil, err
	}

	sort.SliceStable(favs, func(i, j int) bool {
		return favs[i].CreatedAt.After(favs[j].CreatedAt)
	})
	return favs, nil
}

func (r *firestoreFavoriteRepository) CountByArtwork(ctx context.Context, artworkID string) (int64, error) {
	q := r.client.Collection(favoritesCollection).Where("artworkId", "==", artworkID)
	agg := q.NewAggregationQuery().WithCount(countAlias)

	res, err := agg.Get(ctx)
	if err != nil {
		return 0, errors.Internal("Failed to count favorites", err)
	}
	return aggregateCount(res, countAlias)
}

const countAlias = "all"

func aggregateCount(res firestore.AggregationResult, alias string) (int64, error) {
	v, ok := res[alias].(*firestorepb.Value)
	if !ok {
		return 0, errors.Internal("Unexpected aggregation result", nil)
	}
	return v.GetIntegerValue(), nil
}

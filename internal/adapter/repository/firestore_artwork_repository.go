package repository

import (
	"context"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"

	"expressivart/internal/domain/entity"
	"expressivart/internal/domain/repository"
	"expressivart/pkg/errors"
	"expressivart/pkg/logger"
)

const artworksCollection = "artworks"

type firestoreArtworkRepository struct {
	client *firestore.Client
}

func NewFirestoreArtworkRepository(client *firestore.Client) repository.ArtworkRepository {
	return &firestoreArtworkRepository{client: client}
}

func (r *firestoreArtworkRepository) Create(ctx context.Context, a *entity.Artwork) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now

	if _, err := r.client.Collection(artworksCollection).Doc(a.ID).Create(ctx, a); err != nil {
		return mapFirestoreError(err, "Artwork", "create")
	}
	return nil
}

func (r *firestoreArtworkRepository) GetByID(ctx context.Context, id string) (*entity.Artwork, error) {
	snap, err := r.client.Collection(artworksCollection).Doc(id).Get(ctx)
	if err != nil {
		return nil, mapFirestoreError(err, "Artwork", "get")
	}

	var a entity.Artwork
	if err := snap.DataTo(&a); err != nil {
		return nil, errors.Internal("Failed to parse artwork data", err)
	}
	return &a, nil
}

func (r *firestoreArtworkRepository) Update(ctx context.Context, a *entity.Artwork) error {
	a.UpdatedAt = time.Now().UTC()
	if _, err := r.client.Collection(artworksCollection).Doc(a.ID).Set(ctx, a); err != nil {
		return mapFirestoreError(err, "Artwork", "update")
	}
	return nil
}

func (r *firestoreArtworkRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.client.Collection(artworksCollection).Doc(id).Delete(ctx); err != nil {
		return mapFirestoreError(err, "Artwork", "delete")
	}
	return nil
}

// List pushes equality filters to Firestore and applies text search and
// ordering in memory; Firestore has no substring match.
func (r *firestoreArtworkRepository) List(ctx context.Context, f entity.ArtworkFilter) ([]*entity.Artwork, error) {
	q := r.client.Collection(artworksCollection).Query
	if f.ArtistID != "" {
		q = q.Where("artistId", "==", f.ArtistID)
	}
	if f.Status != "" {
		q = q.Where("status", "==", string(f.Status))
	}
	if f.Category != "" {
		q = q.Where("category", "==", f.Category)
	}
	if f.OnlySold != nil {
		q = q.Where("isSold", "==", *f.OnlySold)
	}

	artworks, err := collect[entity.Artwork](q.Documents(ctx), "artworks")
	if err != nil {
		logger.Error("List artworks: %v", err)
		return nil, err
	}

	return SortArtworks(FilterArtworks(artworks, f.Search), f.Sort), nil
}

// FilterArtworks keeps artworks whose title or description contains search, case-insensitively.
func FilterArtworks(artworks []*entity.Artwork, search string) []*entity.Artwork {
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return artworks
	}

	out := artworks[:0:0]
	for _, a := range artworks {
		if strings.Contains(strings.ToLower(a.Title), search) ||
			strings.Contains(strings.ToLower(a.Description), search) {
			out = append(out, a)
		}
	}
	return out
}

func SortArtworks(artworks []*entity.Artwork, by entity.ArtworkSort) []*entity.Artwork {
	sort.SliceStable(artworks, func(i, j int) bool {
		switch by {
		case entity.SortPriceAsc:
			return artworks[i].Price < artworks[j].Price
		case entity.SortPriceDesc:
			return artworks[i].Price > artworks[j].Price
		default:
			return artworks[i].CreatedAt.After(artworks[j].CreatedAt)
		}
	})
	return artworks
}

package usecase

import (
	"context"
	"strings"
	"time"

	"expressivart/internal/domain/entity"
	"expressivart/internal/domain/repository"
	"expressivart/pkg/errors"
	"expressivart/pkg/logger"
	"expressivart/pkg/utils"
)

type ArtworkUseCase struct {
	artworkRepo  repository.ArtworkRepository
	profileRepo  repository.ProfileRepository
	favoriteRepo repository.FavoriteRepository
	profiles     ProfileLookup
}

func NewArtworkUseCase(
	artworkRepo repository.ArtworkRepository,
	profileRepo repository.ProfileRepository,
	favoriteRepo repository.FavoriteRepository,
	profiles ProfileLookup,
) *ArtworkUseCase {
	return &ArtworkUseCase{
		artworkRepo:  artworkRepo,
		profileRepo:  profileRepo,
		favoriteRepo: favoriteRepo,
		profiles:     profiles,
	}
}

type ArtworkInput struct {
	Title       string
	Description string
	Price       float64
	ImageURL    string
	Category    string
	Medium      string
	Dimensions  string
	YearCreated *int
}

type GalleryInput struct {
	Search   string
	Category string
	Sort     entity.ArtworkSort
	Page     utils.PaginationParams
}

// Gallery lists approved artworks that are still for sale, newest first
// unless Sort says otherwise.
func (uc *ArtworkUseCase) Gallery(ctx context.Context, input GalleryInput) ([]*entity.ArtworkWithArtist, int64, error) {
	switch input.Sort {
	case entity.SortNewest, entity.SortPriceAsc, entity.SortPriceDesc:
	case "":
		input.Sort = entity.SortNewest
	default:
		return nil, 0, errors.BadRequest("sort must be newest, price_asc or price_desc", nil)
	}

	unsold := false
	artworks, err := uc.artworkRepo.List(ctx, entity.ArtworkFilter{
		Status:   entity.ArtworkApproved,
		OnlySold: &unsold,
		Category: strings.TrimSpace(input.Category),
		Search:   strings.TrimSpace(input.Search),
		Sort:     input.Sort,
	})
	if err != nil {
		return nil, 0, err
	}

	page := utils.Page(artworks, input.Page)
	return uc.withArtists(ctx, page), int64(len(artworks)), nil
}

// Featured returns the most recent approved artworks that are still for sale.
func (uc *ArtworkUseCase) Featured(ctx context.Context, limit int) ([]*entity.ArtworkWithArtist, error) {
	unsold := false
	artworks, err := uc.artworkRepo.List(ctx, entity.ArtworkFilter{
		Status:   entity.ArtworkApproved,
		OnlySold: &unsold,
		Sort:     entity.SortNewest,
	})
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(artworks) > limit {
		artworks = artworks[:limit]
	}
	return uc.withArtists(ctx, artworks), nil
}

// GetArtwork returns an artwork with its artist and favorites count. Artworks
// that are not approved are visible to their artist only.
func (uc *ArtworkUseCase) GetArtwork(ctx context.Context, id, viewerID string) (*entity.ArtworkWithArtist, error) {
	artwork, err := uc.artworkRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if artwork.Status != entity.ArtworkApproved && artwork.ArtistID != viewerID {
		return nil, errors.NotFound("Artwork", nil)
	}

	result := &entity.ArtworkWithArtist{Artwork: artwork, Artist: uc.artistOf(ctx, artwork.ArtistID)}
	count, err := uc.favoriteRepo.CountByArtwork(ctx, id)
	if err != nil {
		logger.Warn("GetArtwork: favorites count for %s failed: %v", id, err)
	}
	result.FavoritesCount = count
	return result, nil
}

func (uc *ArtworkUseCase) ListMine(ctx context.Context, artistID string) ([]*entity.Artwork, error) {
	return uc.artworkRepo.List(ctx, entity.ArtworkFilter{ArtistID: artistID, Sort: entity.SortNewest})
}

func (uc *ArtworkUseCase) CreateArtwork(ctx context.Context, artistID string, input ArtworkInput) (*entity.Artwork, error) {
	if err := uc.requireSeller(ctx, artistID); err != nil {
		return nil, err
	}
	if err := validateArtwork(input); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	artwork := &entity.Artwork{
		ArtistID:    artistID,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Price:       input.Price,
		ImageURL:    input.ImageURL,
		Category:    input.Category,
		Medium:      input.Medium,
		Dimensions:  input.Dimensions,
		YearCreated: input.YearCreated,
		Status:      entity.ArtworkApproved,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.artworkRepo.Create(ctx, artwork); err != nil {
		return nil, err
	}
	return artwork, nil
}

// UpdateArtwork replaces the editable fields. Status is managed by moderation.
func (uc *ArtworkUseCase) UpdateArtwork(ctx context.Context, artistID, id string, input ArtworkInput) (*entity.Artwork, error) {
	artwork, err := uc.ownedArtwork(ctx, artistID, id)
	if err != nil {
		return nil, err
	}
	if artwork.IsSold {
		return nil, errors.Conflict("Sold artworks cannot be edited", nil)
	}
	if err := validateArtwork(input); err != nil {
		return nil, err
	}

	artwork.Title = strings.TrimSpace(input.Title)
	artwork.Description = input.Description
	artwork.Price = input.Price
	artwork.ImageURL = input.ImageURL
	artwork.Category = input.Category
	artwork.Medium = input.Medium
	artwork.Dimensions = input.Dimensions
	artwork.YearCreated = input.YearCreated
	artwork.UpdatedAt = time.Now().UTC()

	if err := uc.artworkRepo.Update(ctx, artwork); err != nil {
		return nil, err
	}
	return artwork, nil
}

func (uc *ArtworkUseCase) DeleteArtwork(ctx context.Context, artistID, id string) error {
	artwork, err := uc.ownedArtwork(ctx, artistID, id)
	if err != nil {
		return err
	}
	if artwork.IsSold {
		return errors.Conflict("Sold artworks cannot be deleted", nil)
	}
	return uc.artworkRepo.Delete(ctx, id)
}

// ListByStatus is the moderation queue.
func (uc *ArtworkUseCase) ListByStatus(ctx context.Context, status entity.ArtworkStatus) ([]*entity.ArtworkWithArtist, error) {
	if status != "" && !status.Valid() {
		return nil, errors.BadRequest("Invalid artwork status", nil)
	}
	artworks, err := uc.artworkRepo.List(ctx, entity.ArtworkFilter{Status: status, Sort: entity.SortNewest})
	if err != nil {
		return nil, err
	}
	return uc.withArtists(ctx, artworks), nil
}

func (uc *ArtworkUseCase) SetStatus(ctx context.Context, id string, status entity.ArtworkStatus) (*entity.Artwork, error) {
	if !status.Valid() {
		return nil, errors.BadRequest("Invalid artwork status", nil)
	}
	artwork, err := uc.artworkRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	artwork.Status = status
	artwork.UpdatedAt = time.Now().UTC()
	if err := uc.artworkRepo.Update(ctx, artwork); err != nil {
		return nil, err
	}
	logger.Info("Artwork %s moved to %s", id, status)
	return artwork, nil
}

func (uc *ArtworkUseCase) ownedArtwork(ctx context.Context, artistID, id string) (*entity.Artwork, error) {
	artwork, err := uc.artworkRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if artwork.ArtistID != artistID {
		return nil, errors.Forbidden("You can only manage your own artworks", nil)
	}
	return artwork, nil
}

func (uc *ArtworkUseCase) requireSeller(ctx context.Context, userID string) error {
	profile, err := uc.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !profile.IsSeller() {
		return errors.Forbidden("Only sellers can list artworks", nil)
	}
	return nil
}

func (uc *ArtworkUseCase) withArtists(ctx context.Context, artworks []*entity.Artwork) []*entity.ArtworkWithArtist {
	result := make([]*entity.ArtworkWithArtist, 0, len(artworks))
	for _, a := range artworks {
		result = append(result, &entity.ArtworkWithArtist{Artwork: a, Artist: uc.artistOf(ctx, a.ArtistID)})
	}
	return result
}

func (uc *ArtworkUseCase) artistOf(ctx context.Context, artistID string) *entity.ProfileSummary {
	if uc.profiles == nil {
		return nil
	}
	s, err := uc.profiles.Summary(ctx, artistID)
	if err != nil {
		return nil
	}
	return s
}

func validateArtwork(input ArtworkInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return errors.BadRequest("title is required", nil)
	}
	if input.Price <= 0 {
		return errors.BadRequest("price must be greater than zero", nil)
	}
	if input.ImageURL == "" {
		return errors.BadRequest("image_url is required", nil)
	}
	if input.Category == "" {
		return errors.BadRequest("category is required", nil)
	}
	return nil
}

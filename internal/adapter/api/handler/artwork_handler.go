package handler

import (
	"github.com/labstack/echo/v4"

	"expressivart/internal/adapter/api/middleware"
	"expressivart/internal/domain/entity"
	"expressivart/internal/usecase"
	"expressivart/pkg/response"
	"expressivart/pkg/utils"
)

const (
	defaultFeaturedLimit = 6
	maxFeaturedLimit     = 24
)

type ArtworkHandler struct {
	artworkUseCase *usecase.ArtworkUseCase
}

func NewArtworkHandler(artworkUseCase *usecase.ArtworkUseCase) *ArtworkHandler {
	return &ArtworkHandler{
		artworkUseCase: artworkUseCase,
	}
}

type artworkRequest struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description string  `json:"description" validate:"max=5000"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	ImageURL    string  `json:"image_url" validate:"required,url"`
	Category    string  `json:"category" validate:"required,max=64"`
	Medium      string  `json:"medium" validate:"max=100"`
	Dimensions  string  `json:"dimensions" validate:"max=100"`
	YearCreated *int    `json:"year_created" validate:"omitempty,min=1000,max=3000"`
}

func (r artworkRequest) input() usecase.ArtworkInput {
	return usecase.ArtworkInput{
		Title:       r.Title,
		Description: r.Description,
		Price:       r.Price,
		ImageURL:    r.ImageURL,
		Category:    r.Category,
		Medium:      r.Medium,
		Dimensions:  r.Dimensions,
		YearCreated: r.YearCreated,
	}
}

type artworkStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending approved rejected"`
}

// Gallery handles GET /v1/artworks?q=&category=&sort=&page=&limit=
func (h *ArtworkHandler) Gallery(c echo.Context) error {
	p := utils.GetPaginationParams(c)
	items, total, err := h.artworkUseCase.Gallery(c.Request().Context(), usecase.GalleryInput{
		Search:   c.QueryParam("q"),
		Category: c.QueryParam("category"),
		Sort:     entity.ArtworkSort(c.QueryParam("sort")),
		Page:     p,
	})
	if err != nil {
		return response.Error(c, err)
	}
	return response.Paginated(c, items, total, p.Page, p.PageSize)
}

func (h *ArtworkHandler) Featured(c echo.Context) error {
	limit := utils.QueryInt(c, "limit", defaultFeaturedLimit, maxFeaturedLimit)
	items, err := h.artworkUseCase.Featured(c.Request().Context(), limit)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, items)
}

func (h *ArtworkHandler) GetArtwork(c echo.Context) error {
	artwork, err := h.artworkUseCase.GetArtwork(c.Request().Context(), c.Param("id"), middleware.OptionalUser(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, artwork)
}

func (h *ArtworkHandler) ListMine(c echo.Context) error {
	uid, err := middleware.CurrentUser(c)
	if err != nil {
		return response.Error(c, err)
	}
	items, err := h.artworkUseCase.ListMine(c.Request().Context(), uid)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, items)
}

func (h *ArtworkHandler) CreateArtwork(c echo.Context) error {
	uid, err := middleware.CurrentUser(c)
	if err != nil {
		return response.Error(c, err)
	}

	var req artworkRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	artwork, err := h.artworkUseCase.CreateArtwork(c.Request().Context(), uid, req.input())
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, artwork)
}

func (h *ArtworkHandler) UpdateArtwork(c echo.Context) error {
	uid, err := middleware.CurrentUser(c)
	if err != nil {
		return response.Error(c, err)
	}

	var req artworkRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	artwork, err := h.artworkUseCase.UpdateArtwork(c.Request().Context(), uid, c.Param("id"), req.input())
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, artwork)
}

func (h *ArtworkHandler) DeleteArtwork(c echo.Context) error {
	uid, err := middleware.CurrentUser(c)
	if err != nil {
		return response.Error(c, err)
	}
	if err := h.artworkUseCase.DeleteArtwork(c.Request().Context(), uid, c.Param("id")); err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]string{"message": "Artwork deleted successfully"})
}

// AdminList handles GET /v1/admin/artworks?status=
func (h *ArtworkHandler) AdminList(c echo.Context) error {
	items, err := h.artworkUseCase.ListByStatus(c.Request().Context(), entity.ArtworkStatus(c.QueryParam("status")))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, items)
}

func (h *ArtworkHandler) AdminSetStatus(c echo.Context) error {
	var req artworkStatusRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	artwork, err := h.artworkUseCase.SetStatus(c.Request().Context(), c.Param("id"), entity.ArtworkStatus(req.Status))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, artwork)
}

package entity

import "time"

type ArtworkStatus string

const (
	ArtworkPending  ArtworkStatus = "pending"
	ArtworkApproved ArtworkStatus = "approved"
	ArtworkRejected ArtworkStatus = "rejected"
)

func (s ArtworkStatus) Valid() bool {
	switch s {
	case ArtworkPending, ArtworkApproved, ArtworkRejected:
		return true
	}
	return false
}

type Artwork struct {
	ID          string        `json:"id" firestore:"id"`
	ArtistID    string        `json:"artist_id" firestore:"artistId"`
	Title       string        `json:"title" firestore:"title"`
	Description string        `json:"description" firestore:"description"`
	Price       float64       `json:"price" firestore:"price"`
	ImageURL    string        `json:"image_url" firestore:"imageUrl"`
	Category    string        `json:"category" firestore:"category"`
	Medium      string        `json:"medium,omitempty" firestore:"medium,omitempty"`
	Dimensions  string        `json:"dimensions,omitempty" firestore:"dimensions,omitempty"`
	YearCreated *int          `json:"year_created,omitempty" firestore:"yearCreated,omitempty"`
	Status      ArtworkStatus `json:"status" firestore:"status"`
	IsSold      bool          `json:"is_sold" firestore:"isSold"`
	CreatedAt   time.Time     `json:"created_at" firestore:"createdAt"`
	UpdatedAt   time.Time     `json:"updated_at" firestore:"updatedAt"`
}

// Purchasable is true for approved artworks that have not been sold.
func (a *Artwork) Purchasable() bool {
	return a.Status == ArtworkApproved && !a.IsSold
}

type ArtworkSummary struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	ImageURL string  `json:"image_url"`
	Price    float64 `json:"price"`
	IsSold   bool    `json:"is_sold"`
}

func (a *Artwork) Summary() *ArtworkSummary {
	if a == nil {
		return nil
	}
	return &ArtworkSummary{ID: a.ID, Title: a.Title, ImageURL: a.ImageURL, Price: a.Price, IsSold: a.IsSold}
}

type ArtworkWithArtist struct {
	*Artwork
	Artist         *ProfileSummary `json:"artist,omitempty"`
	FavoritesCount int64           `json:"favorites_count"`
}

type ArtworkSort string

const (
	SortNewest    ArtworkSort = "newest"
	SortPriceAsc  ArtworkSort = "price_asc"
	SortPriceDesc ArtworkSort = "price_desc"
)

// ArtworkFilter narrows artwork listings. Zero values mean "no constraint".
type ArtworkFilter struct {
	ArtistID string
	Status   ArtworkStatus
	Category string
	Search   string
	OnlySold *bool
	Sort     ArtworkSort
}

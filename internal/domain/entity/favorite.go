package entity

import (
	"fmt"
	"time"
)

type Favorite struct {
	ID        string    `json:"id" firestore:"id"`
	UserID    string    `json:"user_id" firestore:"userId"`
	ArtworkID string    `json:"artwork_id" firestore:"artworkId"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
}

func FavoriteID(userID, artworkID string) string {
	return fmt.Sprintf("%s_%s", userID, artworkID)
}

type FavoriteWithArtwork struct {
	*Favorite
	Artwork *Artwork `json:"artwork"`
}

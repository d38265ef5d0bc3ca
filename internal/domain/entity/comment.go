package entity

import "time"

type Comment struct {
	ID        string    `json:"id" firestore:"id"`
	ArtworkID string    `json:"artwork_id" firestore:"artworkId"`
	UserID    string    `json:"user_id" firestore:"userId"`
	Content   string    `json:"content" firestore:"content"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}

type CommentWithAuthor struct {
	*Comment
	Author *ProfileSummary `json:"author,omitempty"`
}

package handler

// Handlers groups every HTTP handler the router mounts. Optional handlers
// (DevToken, Upload) are nil when their backing service is not configured.
type Handlers struct {
	Auth      *AuthHandler
	DevToken  *DevTokenHandler
	Profile   *ProfileHandler
	Artwork   *ArtworkHandler
	Comment   *CommentHandler
	Favorite  *FavoriteHandler
	Order     *OrderHandler
	Chat      *ChatHandler
	Upload    *UploadHandler
	Health    *HealthHandler
	WebSocket *WebSocketHandler
}

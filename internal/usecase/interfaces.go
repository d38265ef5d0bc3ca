package usecase

import (
	"context"
	"time"

	"expressivart/internal/domain/entity"
)

type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*entity.Principal, error)
}

type IdentityProvider interface {
	CreateUser(ctx context.Context, email, password, displayName string) (string, error)
	DeleteUser(ctx context.Context, uid string) error
	SignInWithEmailPassword(ctx context.Context, email, password string) (string, error)
}

type DevTokenMinter interface {
	Issue(uid, email string) (string, time.Time, error)
}

type ImageStore interface {
	Upload(ctx context.Context, objectName, contentType string, data []byte) (string, error)
}

// ProfileLookup resolves public profile summaries, usually through a cache.
type ProfileLookup interface {
	Summary(ctx context.Context, userID string) (*entity.ProfileSummary, error)
	Invalidate(userID string)
}

type RateLimiter interface {
	Allow(userID, action string) (bool, time.Duration)
}

type noLimit struct{}

func (noLimit) Allow(string, string) (bool, time.Duration) { return true, 0 }

package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"expressivart/internal/domain/entity"
	"expressivart/internal/domain/repository"
)

// ProfileCache memoizes public profile summaries used to decorate messages,
// comments and listings.
type ProfileCache struct {
	repo  repository.ProfileRepository
	cache *expirable.LRU[string, *entity.ProfileSummary]
}

func NewProfileCache(repo repository.ProfileRepository, size int, ttl time.Duration) *ProfileCache {
	if size <= 0 {
		size = 1024
	}
	return &ProfileCache{
		repo:  repo,
		cache: expirable.NewLRU[string, *entity.ProfileSummary](size, nil, ttl),
	}
}

func (c *ProfileCache) Summary(ctx context.Context, userID string) (*entity.ProfileSummary, error) {
	if s, ok := c.cache.Get(userID); ok {
		return s, nil
	}

	profile, err := c.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	s := profile.Summary()
	c.cache.Add(userID, s)
	return s, nil
}

func (c *ProfileCache) Invalidate(userID string) {
	c.cache.Remove(userID)
}

func (c *ProfileCache) Len() int {
	return c.cache.Len()
}

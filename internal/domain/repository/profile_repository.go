package repository

import (
	"context"

	"expressivart/internal/domain/entity"
)

type ProfileRepository interface {
	Create(ctx context.Context, profile *entity.Profile) error
	GetByID(ctx context.Context, id string) (*entity.Profile, error)
	GetByEmail(ctx context.Context, email string) (*entity.Profile, error)
	Update(ctx context.Context, profile *entity.Profile) error
}

type UserRoleRepository interface {
	HasRole(ctx context.Context, userID, role string) (bool, error)
	Assign(ctx context.Context, userID, role string) error
}

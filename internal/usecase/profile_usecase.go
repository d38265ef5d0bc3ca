package usecase

import (
	"context"
	"time"

	"expressivart/internal/domain/entity"
	"expressivart/internal/domain/repository"
	"expressivart/pkg/errors"
)

type ProfileUseCase struct {
	profileRepo repository.ProfileRepository
	profiles    ProfileLookup
}

func NewProfileUseCase(profileRepo repository.ProfileRepository, profiles ProfileLookup) *ProfileUseCase {
	return &ProfileUseCase{profileRepo: profileRepo, profiles: profiles}
}

// UpdateProfileInput carries optional fields; nil leaves a field unchanged.
type UpdateProfileInput struct {
	FullName     *string
	Bio          *string
	ProfilePhoto *string
	UserType     *entity.UserType
	MobileNumber *string
	Address      *string
	City         *string
	State        *string
	Country      *string
	PostalCode   *string
	Gender       *string
	DateOfBirth  *time.Time
}

func (uc *ProfileUseCase) GetProfile(ctx context.Context, userID string) (*entity.Profile, error) {
	return uc.profileRepo.GetByID(ctx, userID)
}

// GetPublicProfile returns the fields any visitor may see.
func (uc *ProfileUseCase) GetPublicProfile(ctx context.Context, userID string) (*entity.Profile, error) {
	p, err := uc.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &entity.Profile{
		ID:           p.ID,
		FullName:     p.FullName,
		Bio:          p.Bio,
		ProfilePhoto: p.ProfilePhoto,
		UserType:     p.UserType,
		City:         p.City,
		Country:      p.Country,
		CreatedAt:    p.CreatedAt,
	}, nil
}

func (uc *ProfileUseCase) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*entity.Profile, error) {
	p, err := uc.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.FullName != nil {
		if *input.FullName == "" {
			return nil, errors.BadRequest("full_name cannot be empty", nil)
		}
		p.FullName = *input.FullName
	}
	if input.UserType != nil {
		if *input.UserType != entity.UserTypeBuyer && *input.UserType != entity.UserTypeSeller {
			return nil, errors.BadRequest("user_type must be buyer or seller", nil)
		}
		p.UserType = *input.UserType
	}
	setString(&p.Bio, input.Bio)
	setString(&p.ProfilePhoto, input.ProfilePhoto)
	setString(&p.MobileNumber, input.MobileNumber)
	setString(&p.Address, input.Address)
	setString(&p.City, input.City)
	setString(&p.State, input.State)
	setString(&p.Country, input.Country)
	setString(&p.PostalCode, input.PostalCode)
	setString(&p.Gender, input.Gender)
	if input.DateOfBirth != nil {
		p.DateOfBirth = input.DateOfBirth
	}
	p.UpdatedAt = time.Now().UTC()

	if err := uc.profileRepo.Update(ctx, p); err != nil {
		return nil, err
	}
	if uc.profiles != nil {
		uc.profiles.Invalidate(userID)
	}
	return p, nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

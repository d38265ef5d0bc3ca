package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"

	"expressivart/internal/domain/entity"
	"expressivart/internal/domain/repository"
	"expressivart/pkg/errors"
)

const (
	profilesCollection  = "profiles"
	userRolesCollection = "user_roles"
)

type firestoreProfileRepository struct {
	client *firestore.Client
}

func NewFirestoreProfileRepository(client *firestore.Client) repository.ProfileRepository {
	return &firestoreProfileRepository{client: client}
}

func (r *firestoreProfileRepository) Create(ctx context.Context, p *entity.Profile) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	if _, err := r.client.Collection(profilesCollection).Doc(p.ID).Create(ctx, p); err != nil {
		return mapFirestoreError(err, "Profile", "create")
	}
	return nil
}

func (r *firestoreProfileRepository) GetByID(ctx context.Context, id string) (*entity.Profile, error) {
	snap, err := r.client.Collection(profilesCollection).Doc(id).Get(ctx)
	if err != nil {
		return nil, mapFirestoreError(err, "Profile", "get")
	}

	var p entity.Profile
	if err := snap.DataTo(&p); err != nil {
		return nil, errors.Internal("Failed to parse profile data", err)
	}
	return &p, nil
}

func (r *firestoreProfileRepository) GetByEmail(ctx context.Context, email string) (*entity.Profile, error) {
	iter := r.client.Collection(profilesCollection).Where("email", "==", email).Limit(1).Documents(ctx)
	profiles, err := collect[entity.Profile](iter, "profiles")
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, errors.NotFound("Profile", nil)
	}
	return profiles[0], nil
}

func (r *firestoreProfileRepository) Update(ctx context.Context, p *entity.Profile) error {
	p.UpdatedAt = time.Now().UTC()
	if _, err := r.client.Collection(profilesCollection).Doc(p.ID).Set(ctx, p); err != nil {
		return mapFirestoreError(err, "Profile", "update")
	}
	return nil
}

type firestoreUserRoleRepository struct {
	client *firestore.Client
}

func NewFirestoreUserRoleRepository(client *firestore.Client) repository.UserRoleRepository {
	return &firestoreUserRoleRepository{client: client}
}

func roleDocID(userID, role string) string {
	return userID + "_" + role
}

func (r *firestoreUserRoleRepository) HasRole(ctx context.Context, userID, role string) (bool, error) {
	_, err := r.client.Collection(userRolesCollection).Doc(roleDocID(userID, role)).Get(ctx)
	if err != nil {
		mapped := mapFirestoreError(err, "Role", "get")
		if errors.Is(mapped, errors.CodeNotFound) {
			return false, nil
		}
		return false, mapped
	}
	return true, nil
}

func (r *firestoreUserRoleRepository) Assign(ctx context.Context, userID, role string) error {
	id := roleDocID(userID, role)
	_, err := r.client.Collection(userRolesCollection).Doc(id).Set(ctx, entity.UserRole{
		ID:        id,
		UserID:    userID,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return mapFirestoreError(err, "Role", "assign")
	}
	return nil
}

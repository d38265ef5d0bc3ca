package usecase

import (
	"context"
	"strings"
	"time"

	"expressivart/internal/domain/entity"
	"expressivart/internal/domain/repository"
	"expressivart/pkg/errors"
	"expressivart/pkg/logger"
)

type AuthUseCase struct {
	verifier    TokenVerifier
	identity    IdentityProvider
	devTokens   DevTokenMinter
	profileRepo repository.ProfileRepository
	roleRepo    repository.UserRoleRepository
}

// NewAuthUseCase wires token verification. identity may be nil when password
// sign-in is unavailable; devTokens is only set in dev auth mode.
func NewAuthUseCase(
	verifier TokenVerifier,
	identity IdentityProvider,
	devTokens DevTokenMinter,
	profileRepo repository.ProfileRepository,
	roleRepo repository.UserRoleRepository,
) *AuthUseCase {
	return &AuthUseCase{
		verifier:    verifier,
		identity:    identity,
		devTokens:   devTokens,
		profileRepo: profileRepo,
		roleRepo:    roleRepo,
	}
}

type RegisterInput struct {
	Email    string
	Password string
	FullName string
	UserType entity.UserType
}

type AuthResult struct {
	Profile   *entity.Profile `json:"profile"`
	Token     string          `json:"token"`
	ExpiresAt *time.Time      `json:"expires_at,omitempty"`
}

type MeResult struct {
	*entity.Profile
	IsAdmin bool `json:"is_admin"`
}

// Authenticate verifies a bearer token and returns its principal.
func (uc *AuthUseCase) Authenticate(ctx context.Context, token string) (*entity.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.AuthRequired()
	}

	p, err := uc.verifier.VerifyToken(ctx, token)
	if err != nil {
		logger.Debug("Token verification failed: %v", err)
		return nil, errors.Unauthorized("Invalid or expired token", err)
	}
	return p, nil
}

func (uc *AuthUseCase) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	if uc.identity == nil {
		return nil, errors.BadRequest("Registration is not available in this auth mode", nil)
	}
	if input.UserType == "" {
		input.UserType = entity.UserTypeBuyer
	}

	if existing, err := uc.profileRepo.GetByEmail(ctx, input.Email); err == nil && existing != nil {
		return nil, errors.Conflict("Email already in use", nil)
	}

	uid, err := uc.identity.CreateUser(ctx, input.Email, input.Password, input.FullName)
	if err != nil {
		return nil, errors.Internal("Failed to create user in authentication provider", err)
	}

	profile := &entity.Profile{
		ID:       uid,
		Email:    input.Email,
		FullName: input.FullName,
		UserType: input.UserType,
	}
	if err := uc.profileRepo.Create(ctx, profile); err != nil {
		if delErr := uc.identity.DeleteUser(ctx, uid); delErr != nil {
			logger.Error("Register: failed to roll back auth user %s: %v", uid, delErr)
		}
		return nil, errors.Internal("Failed to create profile", err)
	}

	token, err := uc.identity.SignInWithEmailPassword(ctx, input.Email, input.Password)
	if err != nil {
		return nil, errors.Internal("Failed to generate authentication token", err)
	}

	return &AuthResult{Profile: profile, Token: token}, nil
}

func (uc *AuthUseCase) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	if uc.identity == nil {
		return nil, errors.BadRequest("Password sign-in is not available in this auth mode", nil)
	}

	token, err := uc.identity.SignInWithEmailPassword(ctx, email, password)
	if err != nil {
		logger.Info("Login failed for %s: %v", email, err)
		return nil, errors.Unauthorized("Invalid credentials", err)
	}

	p, err := uc.verifier.VerifyToken(ctx, token)
	if err != nil {
		return nil, errors.Internal("Failed to verify token", err)
	}

	profile, err := uc.profileRepo.GetByID(ctx, p.UserID)
	if err != nil {
		return nil, err
	}

	expires := p.ExpiresAt
	return &AuthResult{Profile: profile, Token: token, ExpiresAt: &expires}, nil
}

func (uc *AuthUseCase) Me(ctx context.Context, userID string) (*MeResult, error) {
	profile, err := uc.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	admin, err := uc.IsAdmin(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &MeResult{Profile: profile, IsAdmin: admin}, nil
}

func (uc *AuthUseCase) IsAdmin(ctx context.Context, userID string) (bool, error) {
	ok, err := uc.roleRepo.HasRole(ctx, userID, entity.RoleAdmin)
	if err != nil {
		return false, errors.Internal("Failed to verify admin privileges", err)
	}
	return ok, nil
}

type DevTokenInput struct {
	UserID   string
	Email    string
	FullName string
	UserType entity.UserType
	Admin    bool
}

// IssueDevToken mints a local token and makes sure a profile exists for it.
func (uc *AuthUseCase) IssueDevToken(ctx context.Context, input DevTokenInput) (*AuthResult, error) {
	if uc.devTokens == nil {
		return nil, errors.Forbidden("Dev tokens are disabled", nil)
	}

	profile, err := uc.profileRepo.GetByID(ctx, input.UserID)
	if errors.Is(err, errors.CodeNotFound) {
		if input.UserType == "" {
			input.UserType = entity.UserTypeBuyer
		}
		profile = &entity.Profile{
			ID:       input.UserID,
			Email:    input.Email,
			FullName: input.FullName,
			UserType: input.UserType,
		}
		if err := uc.profileRepo.Create(ctx, profile); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	if input.Admin {
		if err := uc.roleRepo.Assign(ctx, input.UserID, entity.RoleAdmin); err != nil {
			return nil, err
		}
	}

	token, expiresAt, err := uc.devTokens.Issue(profile.ID, profile.Email)
	if err != nil {
		return nil, errors.Internal("Failed to issue dev token", err)
	}
	return &AuthResult{Profile: profile, Token: token, ExpiresAt: &expiresAt}, nil
}

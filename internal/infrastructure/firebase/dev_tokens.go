package firebase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"expressivart/internal/domain/entity"
)

const devIssuer = "expressivart-dev"

// DevTokenIssuer mints and verifies HS256 tokens for local development, so the
// service can run without a Firebase project.
type DevTokenIssuer struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

type devClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

func NewDevTokenIssuer(secret string, expiry time.Duration) *DevTokenIssuer {
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	return &DevTokenIssuer{secret: []byte(secret), expiry: expiry, now: time.Now}
}

func (d *DevTokenIssuer) Issue(uid, email string) (string, time.Time, error) {
	if uid == "" {
		return "", time.Time{}, errors.New("dev token: uid is required")
	}
	now := d.now()
	expiresAt := now.Add(d.expiry)
	claims := devClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    devIssuer,
			Subject:   uid,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(d.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("dev token: sign: %w", err)
	}
	return signed, expiresAt, nil
}

func (d *DevTokenIssuer) VerifyToken(_ context.Context, token string) (*entity.Principal, error) {
	claims := &devClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return d.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(devIssuer),
		jwt.WithTimeFunc(d.now),
	)
	if err != nil {
		return nil, err
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, errors.New("dev token: invalid")
	}

	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	return &entity.Principal{UserID: claims.Subject, Email: claims.Email, ExpiresAt: expiresAt}, nil
}

package entity

import "time"

type UserType string

const (
	UserTypeBuyer  UserType = "buyer"
	UserTypeSeller UserType = "seller"
)

type Profile struct {
	ID           string     `json:"id" firestore:"id"`
	Email        string     `json:"email" firestore:"email"`
	FullName     string     `json:"full_name" firestore:"fullName"`
	Bio          string     `json:"bio,omitempty" firestore:"bio,omitempty"`
	ProfilePhoto string     `json:"profile_photo,omitempty" firestore:"profilePhoto,omitempty"`
	UserType     UserType   `json:"user_type" firestore:"userType"`
	MobileNumber string     `json:"mobile_number,omitempty" firestore:"mobileNumber,omitempty"`
	Address      string     `json:"address,omitempty" firestore:"address,omitempty"`
	City         string     `json:"city,omitempty" firestore:"city,omitempty"`
	State        string     `json:"state,omitempty" firestore:"state,omitempty"`
	Country      string     `json:"country,omitempty" firestore:"country,omitempty"`
	PostalCode   string     `json:"postal_code,omitempty" firestore:"postalCode,omitempty"`
	Gender       string     `json:"gender,omitempty" firestore:"gender,omitempty"`
	DateOfBirth  *time.Time `json:"date_of_birth,omitempty" firestore:"dateOfBirth,omitempty"`
	CreatedAt    time.Time  `json:"created_at" firestore:"createdAt"`
	UpdatedAt    time.Time  `json:"updated_at" firestore:"updatedAt"`
}

func (p *Profile) IsSeller() bool {
	return p != nil && p.UserType == UserTypeSeller
}

// ProfileSummary is the public slice of a profile joined into other payloads.
type ProfileSummary struct {
	ID           string `json:"id"`
	FullName     string `json:"full_name"`
	ProfilePhoto string `json:"profile_photo,omitempty"`
}

func (p *Profile) Summary() *ProfileSummary {
	if p == nil {
		return nil
	}
	return &ProfileSummary{ID: p.ID, FullName: p.FullName, ProfilePhoto: p.ProfilePhoto}
}

const RoleAdmin = "admin"

type UserRole struct {
	ID        string    `json:"id" firestore:"id"`
	UserID    string    `json:"user_id" firestore:"userId"`
	Role      string    `json:"role" firestore:"role"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
}

// Principal is the verified identity behind a request or socket.
type Principal struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

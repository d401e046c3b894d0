package auth

import (
	"strings"
	"time"

	"nahio/backend/internal/schema"
)

// Account is the users/{uid} document. Role-specific fields live in the
// role's own profile collection.
type Account struct {
	UID       string      `firestore:"uid" json:"uid"`
	Email     string      `firestore:"email" json:"email"`
	Role      schema.Role `firestore:"role" json:"role"`
	IsActive  bool        `firestore:"isActive" json:"isActive"`
	CreatedAt time.Time   `firestore:"createdAt" json:"createdAt"`
	UpdatedAt time.Time   `firestore:"updatedAt" json:"updatedAt"`
}

// UserData bundles the account with its role profile. Profile is nil
// when the profile document is missing; callers tolerate that.
type UserData struct {
	Account Account                `json:"account"`
	Profile map[string]interface{} `json:"profile,omitempty"`
}

type RegisterInput struct {
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     schema.Role `json:"role"`

	// Display name: personal name for scouts and guardians, school
	// name for institutions.
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`

	// Institution extras.
	TaxID   string          `json:"taxId,omitempty"`
	Address *schema.Address `json:"address,omitempty"`
}

func (in *RegisterInput) Trim() {
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	in.TaxID = strings.TrimSpace(in.TaxID)
}

type GuardianInput struct {
	Email         string `json:"email"`
	Name          string `json:"name"`
	Phone         string `json:"phone,omitempty"`
	InstitutionID string `json:"institutionId"`
}

func (in *GuardianInput) Trim() {
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	in.InstitutionID = strings.TrimSpace(in.InstitutionID)
}

// Session is what a successful password login yields.
type Session struct {
	UID          string    `json:"uid"`
	IDToken      string    `json:"idToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
	User         *UserData `json:"user"`
}

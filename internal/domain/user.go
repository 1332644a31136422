package domain

import (
	"context"
	"time"
)

type Role string

const (
	RoleCandidate Role = "CANDIDATE"
	RoleRecruiter Role = "RECRUITER"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCandidate, RoleRecruiter:
		return true
	}
	return false
}

// Gin context keys set by the auth middleware for the current Actor.
const (
	ActorIDKey    = "actor_id"
	ActorEmailKey = "actor_email"
	ActorRoleKey  = "actor_role"
)

// Actor is the authenticated caller of a usecase.
type Actor struct {
	UserID string
	Role   Role
}

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserSummary is the public projection embedded in connections, posts and comments.
type UserSummary struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Username       string  `json:"username"`
	Role           Role    `json:"role"`
	ProfilePicture *string `json:"profile_picture,omitempty"`
}

type Experience struct {
	Title       string     `json:"title" validate:"required,max=120"`
	Company     string     `json:"company" validate:"required,max=120"`
	StartDate   time.Time  `json:"start_date" validate:"required"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Description string     `json:"description" validate:"max=2000"`
}

type Education struct {
	School    string     `json:"school" validate:"required,max=160"`
	Degree    string     `json:"degree" validate:"max=120"`
	Field     string     `json:"field" validate:"max=120"`
	StartDate time.Time  `json:"start_date" validate:"required"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

type Profile struct {
	UserID         string       `json:"user_id"`
	About          string       `json:"about"`
	Skills         []string     `json:"skills"`
	ProfilePicture *string      `json:"profile_picture,omitempty"`
	Experience     []Experience `json:"experience"`
	Education      []Education  `json:"education"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// UserDetail is the response for profile pages.
type UserDetail struct {
	User    *User    `json:"user"`
	Profile *Profile `json:"profile"`
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Search(ctx context.Context, query string, limit int) ([]UserSummary, error)
	// Delete removes the user and every row the user owns in one transaction.
	Delete(ctx context.Context, id string) error
}

type ProfileRepository interface {
	// GetByUserID returns ErrNotFound when the profile was never created.
	GetByUserID(ctx context.Context, userID string) (*Profile, error)
	Upsert(ctx context.Context, profile *Profile) error
	UpdatePicture(ctx context.Context, userID, path string) error
}

type RegisterInput struct {
	Name     string `json:"name" validate:"required,min=2,max=100,valid_name"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Username string `json:"username" validate:"required,username"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     Role   `json:"role" validate:"required,oneof=CANDIDATE RECRUITER"`
}

type AuthResult struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

type AuthUsecase interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	GetCurrentUser(ctx context.Context, id string) (*User, error)
}

type UpdateProfileInput struct {
	About      string       `json:"about" validate:"max=2000,no_emoji"`
	Skills     []string     `json:"skills" validate:"max=50,dive,min=1,max=50"`
	Experience []Experience `json:"experience" validate:"max=30,dive"`
	Education  []Education  `json:"education" validate:"max=20,dive"`
}

type UserUsecase interface {
	GetUser(ctx context.Context, id string) (*UserDetail, error)
	Search(ctx context.Context, query string, limit int) ([]UserSummary, error)
	UpdateProfile(ctx context.Context, actor Actor, in UpdateProfileInput) (*Profile, error)
	UpdateProfilePicture(ctx context.Context, actor Actor, upload *Upload) (*Profile, error)
	DeleteAccount(ctx context.Context, actor Actor) error
}

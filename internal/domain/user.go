package domain

import (
	"context"
	"time"
)

// UserType is the role stored on a user record.
type UserType string

const (
	UserStudent UserType = "student"
	UserTeacher UserType = "teacher"
	UserAdmin   UserType = "admin"
)

// User represents a registered user
// swagger:model User
type User struct {
	ID        int64    `json:"id"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Email     string   `json:"email"`
	Type      UserType `json:"userType"`
	// PasswordHash is never serialized.
	PasswordHash string `json:"-"`
}

// IsTeacher reports whether the user may own events.
func (u *User) IsTeacher() bool {
	return u.Type == UserTeacher
}

// UserRepository is the read side of user storage consumed by the scheduling
// core: role lookups and the login path. User CRUD lives outside this module.
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// PasswordHasher verifies stored password hashes.
type PasswordHasher interface {
	Compare(hash, password string) error
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID int64, email string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated user ID.
type TokenVerifier interface {
	Verify(token string) (userID int64, err error)
}

// AuthService authenticates users and issues tokens. It exists only so the
// delivery layer can attach a caller identity to requests; token format and
// role authorization are not this module's concern.
type AuthService interface {
	Login(ctx context.Context, email, password string) (token string, user *User, err error)
}

package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for user operations.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateEmail     = errors.New("email already in use")
	ErrDuplicateUsername  = errors.New("username already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Role is an application role.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleStudent   Role = "student"
	RoleTeacher   Role = "teacher"
	RoleStaff     Role = "staff"
	RoleVolunteer Role = "volunteer"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStudent, RoleTeacher, RoleStaff, RoleVolunteer:
		return true
	}
	return false
}

// User represents a registered user
// swagger:model User
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Salt         string    `json:"-"`
	Role         Role      `json:"role"`
	CollegeName  string    `json:"collegeName"`
	Department   string    `json:"department"`
	MobileNo     *string   `json:"mobileNo"`
	Favorites    []string  `json:"favorites"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Profile returns the lightweight view used when expanding references.
func (u *User) Profile() *UserProfile {
	return &UserProfile{ID: u.ID, Username: u.Username, Email: u.Email}
}

// UserProfile is the lightweight view of a user embedded in event responses.
type UserProfile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Principal is the authenticated caller as established by the auth collaborator.
type Principal struct {
	UserID string
	Role   Role
}

// NewUserInput is the sign-up payload.
type NewUserInput struct {
	Username    string
	Email       string
	Password    string
	Role        Role
	CollegeName string
	Department  string
	MobileNo    *string
}

// ProfileUpdate is a partial profile update.
type ProfileUpdate struct {
	Username    Optional[string]
	CollegeName Optional[string]
	Department  Optional[string]
	MobileNo    Optional[*string]
}

// PasswordHasher handles salt generation, hashing, and verification.
// Implementations may use bcrypt, argon2, etc.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID string, role Role, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated principal.
type TokenVerifier interface {
	Verify(token string) (*Principal, error)
}

// UserRepository defines the interface for user storage
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	// ListByIDs returns the users that exist among ids; missing ids are skipped.
	ListByIDs(ctx context.Context, ids []string) ([]*User, error)
	Update(ctx context.Context, user *User) error
}

// AuthService defines sign-up, login and profile operations.
type AuthService interface {
	Register(ctx context.Context, in NewUserInput) (token string, user *User, err error)
	Login(ctx context.Context, email, password string) (token string, user *User, err error)
	GetProfile(ctx context.Context, userID string) (*User, error)
	UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (*User, error)
}

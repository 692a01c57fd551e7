package data

import (
	"errors"
	"strings"
	"time"

	"github.com/okenov/recensio/internal/validator"
	"golang.org/x/crypto/bcrypt"
)

// Role determines a user's capability tier. Tiers are ordered: admin implies
// moderator rights, moderator implies ordinary user rights.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

func (r Role) tier() int {
	switch r {
	case RoleAdmin:
		return 2
	case RoleModerator:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether r carries at least the capabilities of other.
func (r Role) AtLeast(other Role) bool {
	return r.tier() >= other.tier()
}

// AnonymousUser represents an unauthenticated requester.
var AnonymousUser = &User{}

// User defines a user model.
type User struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Bio       string    `json:"bio"`
	Role      Role      `json:"role"`
	Password  password  `json:"-"`
	Version   int32     `json:"-"`
}

// IsAnonymous checks if a user instance is the anonymous user.
func (u *User) IsAnonymous() bool {
	return u == AnonymousUser
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanModify is the object-level write rule for reviews and comments: the
// author may modify their own record, and moderators and admins may modify
// anyone's. Safe (read) methods never reach this check.
func (u *User) CanModify(authorID int64) bool {
	return u.ID == authorID || u.Role.AtLeast(RoleModerator)
}

// password holds the plaintext and hashed versions of a user's password. The
// plaintext field is a *pointer* to a string so that a password which was
// never set can be distinguished from the empty string.
type password struct {
	Plaintext *string
	Hash      []byte
}

// Set calculates the bcrypt hash of a plaintext password.
func (p *password) Set(plaintextPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintextPassword), 12)
	if err != nil {
		return err
	}
	p.Plaintext = &plaintextPassword
	p.Hash = hash
	return nil
}

// Matches checks whether a plaintext password matches the stored hash.
func (p *password) Matches(plaintextPassword string) (bool, error) {
	err := bcrypt.CompareHashAndPassword(p.Hash, []byte(plaintextPassword))
	if err != nil {
		switch {
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			return false, nil
		default:
			return false, err
		}
	}
	return true, nil
}

func ValidateUsername(v *validator.Validator, username string) {
	v.Check(username != "", "username", "must be provided")
	v.Check(len(username) <= 150, "username", "must not be more than 150 bytes long")
	v.Check(validator.Matches(username, validator.UsernameRX), "username", "must contain only letters, digits and . @ + - _ characters")
	v.Check(!strings.EqualFold(username, "me"), "username", "is reserved and cannot be used")
}

func ValidateEmail(v *validator.Validator, email string) {
	v.Check(email != "", "email", "must be provided")
	v.Check(len(email) <= 254, "email", "must not be more than 254 bytes long")
	v.Check(validator.Matches(email, validator.EmailRX), "email", "must be a valid email address")
}

func ValidateRole(v *validator.Validator, role Role) {
	v.Check(validator.PermittedValue(role, RoleUser, RoleModerator, RoleAdmin), "role", "must be one of user, moderator or admin")
}

func ValidateUser(v *validator.Validator, user *User) {
	ValidateUsername(v, user.Username)
	ValidateEmail(v, user.Email)
	ValidateRole(v, user.Role)
	v.Check(len(user.FirstName) <= 150, "first_name", "must not be more than 150 bytes long")
	v.Check(len(user.LastName) <= 150, "last_name", "must not be more than 150 bytes long")
}

package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/gridledger/billing/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Password cost for bcrypt
const bcryptCost = 12

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_\-.]+$`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	letterRegex   = regexp.MustCompile(`[a-zA-Z]`)
	digitRegex    = regexp.MustCompile(`[0-9]`)
)

// User represents an operator account
// It is the aggregate root for user-related operations
type User struct {
	shared.BaseAggregateRoot
	Username     string
	Email        string
	Phone        string
	PasswordHash string
	Role         Role
}

// NewUser creates a new user with a hashed password
func NewUser(username, password string, role Role) (*User, error) {
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if !role.IsValid() {
		return nil, shared.NewValidationError("role", "unknown role")
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	user := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Username:          strings.ToLower(strings.TrimSpace(username)),
		PasswordHash:      passwordHash,
		Role:              role,
	}

	user.AddDomainEvent(NewUserCreatedEvent(user))

	return user, nil
}

// SetContact sets the user's email and phone
func (u *User) SetContact(email, phone string) error {
	if email != "" {
		if err := validateEmail(email); err != nil {
			return err
		}
		email = strings.ToLower(strings.TrimSpace(email))
	}
	if len(phone) > 15 {
		return shared.NewValidationError("phone", "cannot exceed 15 characters")
	}

	u.Email = email
	u.Phone = strings.TrimSpace(phone)
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	return nil
}

// ChangeRole moves the user to a different role
func (u *User) ChangeRole(role Role) error {
	if !role.IsValid() {
		return shared.NewValidationError("role", "unknown role")
	}
	if u.Role == role {
		return nil
	}

	old := u.Role
	u.Role = role
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	u.AddDomainEvent(NewUserRoleChangedEvent(u, old))

	return nil
}

// SetPassword sets a new password (admin reset, no old password check)
func (u *User) SetPassword(newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	passwordHash, err := hashPassword(newPassword)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	u.PasswordHash = passwordHash
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	return nil
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// Actor returns the actor this user acts as once authenticated
func (u *User) Actor() Actor {
	return NewActor(u.ID, u.Username, u.Role)
}

// Validation functions

func validateUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return shared.NewValidationError("username", "cannot be empty")
	}
	if len(username) < 3 {
		return shared.NewValidationError("username", "must be at least 3 characters")
	}
	if len(username) > 45 {
		return shared.NewValidationError("username", "cannot exceed 45 characters")
	}
	if !usernameRegex.MatchString(username) {
		return shared.NewValidationError("username", "can only contain letters, numbers, underscores, hyphens, and dots")
	}
	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return shared.NewValidationError("password", "cannot be empty")
	}
	if len(password) < 8 {
		return shared.NewValidationError("password", "must be at least 8 characters")
	}
	if len(password) > 72 {
		return shared.NewValidationError("password", "cannot exceed 72 characters")
	}
	if !letterRegex.MatchString(password) || !digitRegex.MatchString(password) {
		return shared.NewValidationError("password", "must contain at least one letter and one number")
	}
	return nil
}

func validateEmail(email string) error {
	if len(email) > 45 {
		return shared.NewValidationError("email", "cannot exceed 45 characters")
	}
	if !emailRegex.MatchString(email) {
		return shared.NewValidationError("email", "invalid email format")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/gridledger/billing/internal/domain/identity"
)

// LoginInput carries login credentials
type LoginInput struct {
	Username string `json:"username" binding:"required,min=3,max=45"`
	Password string `json:"password" binding:"required,min=1,max=72"`
}

// LoginResult is returned on successful login
type LoginResult struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        UserInfo  `json:"user"`
}

// UserInfo is the authenticated user as seen by the client
type UserInfo struct {
	ID       uuid.UUID         `json:"id"`
	Username string            `json:"username"`
	Email    string            `json:"email,omitempty"`
	Phone    string            `json:"phone,omitempty"`
	Role     identity.Role     `json:"role"`
	Modules  []identity.Module `json:"modules"`
}

// CreateUserRequest is the payload to create a user
type CreateUserRequest struct {
	Username string `json:"username" binding:"required,min=3,max=45"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Email    string `json:"email" binding:"omitempty,email,max=45"`
	Phone    string `json:"phone" binding:"max=15"`
	Role     string `json:"role" binding:"required,oneof=ADMIN ELECTRICAL FINANCE"`
}

// UpdateUserRequest is the payload to update a user. Nil fields are left alone.
type UpdateUserRequest struct {
	Email    *string `json:"email" binding:"omitempty,max=45"`
	Phone    *string `json:"phone" binding:"omitempty,max=15"`
	Role     *string `json:"role" binding:"omitempty,oneof=ADMIN ELECTRICAL FINANCE"`
	Password *string `json:"password" binding:"omitempty,min=8,max=72"`
}

// UserListFilter narrows a user listing
type UserListFilter struct {
	Search   string `form:"search"`
	Role     string `form:"role" binding:"omitempty,oneof=ADMIN ELECTRICAL FINANCE"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// UserResponse is a user in API responses
type UserResponse struct {
	ID        uuid.UUID     `json:"id"`
	Username  string        `json:"username"`
	Email     string        `json:"email"`
	Phone     string        `json:"phone"`
	Role      identity.Role `json:"role"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// ToUserResponse converts a domain user to a response
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func toUserInfo(u *identity.User) UserInfo {
	return UserInfo{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Phone:    u.Phone,
		Role:     u.Role,
		Modules:  identity.ModulesFor(u.Role),
	}
}

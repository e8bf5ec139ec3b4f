package models

import "time"

type UserRole string

const (
	RoleUser   UserRole = "USER"
	RoleAdmin  UserRole = "ADMIN"
	RoleBuyer  UserRole = "BUYER"
	RoleSeller UserRole = "SELLER"
)

type User struct {
	UserID       string    `json:"user_id"`
	Email        string    `json:"email" validate:"required,email,max=254"`
	Name         *string   `json:"name,omitempty" validate:"omitempty,max=150"`
	PasswordHash string    `json:"-" validate:"required"`
	Role         UserRole  `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

type SignUpRequest struct {
	Email    string  `json:"email" validate:"required,email,max=254"`
	Password string  `json:"password" validate:"required,min=1,max=72"`
	Name     *string `json:"name,omitempty" validate:"omitempty,max=150"`
}

type Credentials struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=1,max=72"`
}

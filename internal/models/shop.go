package models

import "time"

type ShopRole string

const (
	ShopRoleOwner   ShopRole = "owner"
	ShopRoleManager ShopRole = "manager"
	ShopRoleStaff   ShopRole = "staff"
)

func (r ShopRole) Valid() bool {
	switch r {
	case ShopRoleOwner, ShopRoleManager, ShopRoleStaff:
		return true
	}
	return false
}

type Shop struct {
	ShopID    string    `json:"shop_id"`
	Name      string    `json:"name" validate:"required,min=1,max=120"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ShopUser links a user to a shop. Every shop-scoped read and write goes through
// this link.
type ShopUser struct {
	ShopID    string    `json:"shop_id"`
	UserID    string    `json:"user_id"`
	Role      ShopRole  `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type Supplier struct {
	SupplierID string    `json:"supplier_id"`
	Name       string    `json:"name" validate:"required,max=200"`
	Email      *string   `json:"email,omitempty" validate:"omitempty,email"`
	Phone      *string   `json:"phone,omitempty" validate:"omitempty,max=40"`
	Address    *string   `json:"address,omitempty" validate:"omitempty,max=300"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

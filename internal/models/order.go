package models

import "time"

type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderConfirmed OrderStatus = "CONFIRMED"
	OrderShipped   OrderStatus = "SHIPPED"
	OrderDelivered OrderStatus = "DELIVERED"
	OrderCancelled OrderStatus = "CANCELLED"
)

var OrderStatuses = []OrderStatus{
	OrderPending,
	OrderConfirmed,
	OrderShipped,
	OrderDelivered,
	OrderCancelled,
}

func (s OrderStatus) Valid() bool {
	for _, st := range OrderStatuses {
		if s == st {
			return true
		}
	}
	return false
}

type Order struct {
	OrderID     string      `json:"order_id"`
	TotalAmount int64       `json:"total_amount"`
	Status      OrderStatus `json:"status"`
	ShopID      string      `json:"shop_id"`
	SupplierID  *string     `json:"supplier_id,omitempty"`
	UserID      string      `json:"user_id"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// OrderItem price is the product price at the time the order was placed.
type OrderItem struct {
	OrderItemID string    `json:"order_item_id"`
	OrderID     string    `json:"order_id"`
	ProductID   string    `json:"product_id"`
	Quantity    int       `json:"quantity"`
	Price       int64     `json:"price"`
	CreatedAt   time.Time `json:"created_at"`
}

// OrderWithRelations is the display shape returned by order queries.
type OrderWithRelations struct {
	Order
	User       User        `json:"user"`
	Shop       Shop        `json:"shop"`
	Supplier   *Supplier   `json:"supplier,omitempty"`
	OrderItems []OrderItem `json:"order_items"`
}

type OrderItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"gt=0"`
}

type OrderRequest struct {
	ShopID string             `json:"shop_id" validate:"required,uuid"`
	Status OrderStatus        `json:"status" validate:"omitempty,oneof=PENDING CONFIRMED SHIPPED DELIVERED CANCELLED"`
	Items  []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

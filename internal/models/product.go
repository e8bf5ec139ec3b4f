package models

import "time"

type Product struct {
	ProductID  string    `json:"product_id"`
	ShopID     string    `json:"shop_id" validate:"required,uuid"`
	SupplierID *string   `json:"supplier_id,omitempty" validate:"omitempty,uuid"`
	Name       string    `json:"name" validate:"required,max=200"`
	Price      int64     `json:"price" validate:"gte=0"`
	Stock      int       `json:"stock" validate:"gte=0"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type OperationType string

const (
	OperationOutgoing   OperationType = "outgoing"
	OperationIncoming   OperationType = "incoming"
	OperationAdjustment OperationType = "adjustment"
)

// Operation is one stock ledger entry. ChangeQuant is signed: outgoing rows are
// negative, incoming rows positive.
type Operation struct {
	OperationID   string        `json:"operation_id"`
	ProductID     string        `json:"product_id"`
	OrderID       *string       `json:"order_id,omitempty"`
	OperationType OperationType `json:"operation_type"`
	ChangeQuant   int           `json:"change_quant"`
	CreatedAt     time.Time     `json:"created_at"`
}

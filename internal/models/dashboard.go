package models

import "time"

// DashboardProduct is a product row joined with its shop and supplier names.
type DashboardProduct struct {
	ProductID    string
	ShopID       string
	ShopName     string
	SupplierID   *string
	SupplierName *string
	Price        int64
	Stock        int
	CreatedAt    time.Time
}

type DashboardOrder struct {
	ShopID      string
	Status      OrderStatus
	TotalAmount int64
}

// DashboardSource is everything the dashboard is computed from, already scoped to
// the shops of one user.
type DashboardSource struct {
	Shops       []Shop
	SupplierIDs []string
	Products    []DashboardProduct
	Orders      []DashboardOrder
}

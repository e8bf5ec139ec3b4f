package dashboard

import (
	"context"
	"fmt"
	"sort"

	"shop-service/internal/models"
	"shop-service/internal/repository"

	"github.com/shopspring/decimal"
)

type ShopStat struct {
	ShopID         string          `json:"shop_id"`
	Name           string          `json:"name"`
	Products       int             `json:"products"`
	InventoryValue decimal.Decimal `json:"inventory_value"`
}

type SupplierStat struct {
	SupplierID     string          `json:"supplier_id"`
	Name           string          `json:"name"`
	Products       int             `json:"products"`
	InventoryValue decimal.Decimal `json:"inventory_value"`
}

type MonthStat struct {
	Month    string `json:"month"`
	Products int    `json:"products"`
}

type Dashboard struct {
	TotalShops       int                        `json:"total_shops"`
	TotalProducts    int                        `json:"total_products"`
	TotalSuppliers   int                        `json:"total_suppliers"`
	ActiveSuppliers  int                        `json:"active_suppliers"`
	TotalValue       decimal.Decimal            `json:"total_value"`
	AveragePrice     decimal.Decimal            `json:"average_price"`
	InventoryValue   decimal.Decimal            `json:"inventory_value"`
	Shops            []ShopStat                 `json:"shops"`
	Suppliers        []SupplierStat             `json:"suppliers"`
	ProductsPerMonth []MonthStat                `json:"products_per_month"`
	OrdersByStatus   map[models.OrderStatus]int `json:"orders_by_status"`
	Revenue          decimal.Decimal            `json:"revenue"`
}

// Money converts minor units into a two-place decimal.
func Money(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// Build aggregates src. It has no side effects and does not depend on row order.
func Build(src *models.DashboardSource) *Dashboard {
	d := &Dashboard{
		TotalShops:       len(src.Shops),
		TotalProducts:    len(src.Products),
		TotalSuppliers:   len(src.SupplierIDs),
		TotalValue:       decimal.Zero,
		AveragePrice:     decimal.Zero,
		InventoryValue:   decimal.Zero,
		Shops:            []ShopStat{},
		Suppliers:        []SupplierStat{},
		ProductsPerMonth: []MonthStat{},
		OrdersByStatus:   make(map[models.OrderStatus]int, len(models.OrderStatuses)),
		Revenue:          decimal.Zero,
	}

	shopIndex := make(map[string]int, len(src.Shops))
	for _, s := range src.Shops {
		shopIndex[s.ShopID] = len(d.Shops)
		d.Shops = append(d.Shops, ShopStat{ShopID: s.ShopID, Name: s.Name, InventoryValue: decimal.Zero})
	}

	supplierIndex := map[string]int{}
	months := map[string]int{}

	for _, p := range src.Products {
		price := Money(p.Price)
		value := price.Mul(decimal.NewFromInt(int64(p.Stock)))

		d.TotalValue = d.TotalValue.Add(price)
		d.InventoryValue = d.InventoryValue.Add(value)

		if i, ok := shopIndex[p.ShopID]; ok {
			d.Shops[i].Products++
			d.Shops[i].InventoryValue = d.Shops[i].InventoryValue.Add(value)
		}

		if p.SupplierID != nil {
			i, ok := supplierIndex[*p.SupplierID]
			if !ok {
				name := ""
				if p.SupplierName != nil {
					name = *p.SupplierName
				}
				i = len(d.Suppliers)
				supplierIndex[*p.SupplierID] = i
				d.Suppliers = append(d.Suppliers, SupplierStat{SupplierID: *p.SupplierID, Name: name, InventoryValue: decimal.Zero})
			}
			d.Suppliers[i].Products++
			d.Suppliers[i].InventoryValue = d.Suppliers[i].InventoryValue.Add(value)
		}

		months[p.CreatedAt.UTC().Format("2006-01")]++
	}

	if d.TotalProducts > 0 {
		d.AveragePrice = d.TotalValue.Div(decimal.NewFromInt(int64(d.TotalProducts))).Round(2)
	}
	d.ActiveSuppliers = len(d.Suppliers)

	sort.Slice(d.Suppliers, func(i, j int) bool {
		if d.Suppliers[i].Name != d.Suppliers[j].Name {
			return d.Suppliers[i].Name < d.Suppliers[j].Name
		}
		return d.Suppliers[i].SupplierID < d.Suppliers[j].SupplierID
	})

	for month, n := range months {
		d.ProductsPerMonth = append(d.ProductsPerMonth, MonthStat{Month: month, Products: n})
	}
	sort.Slice(d.ProductsPerMonth, func(i, j int) bool {
		return d.ProductsPerMonth[i].Month < d.ProductsPerMonth[j].Month
	})

	for _, status := range models.OrderStatuses {
		d.OrdersByStatus[status] = 0
	}
	for _, o := range src.Orders {
		d.OrdersByStatus[o.Status]++
		if o.Status != models.OrderCancelled {
			d.Revenue = d.Revenue.Add(Money(o.TotalAmount))
		}
	}

	return d
}

type Service struct {
	repo  repository.DashboardRepository
	shops repository.ShopRepository
}

func NewService(repo repository.DashboardRepository, shops repository.ShopRepository) *Service {
	return &Service{repo: repo, shops: shops}
}

// ForUser covers every shop the user is linked to.
func (s *Service) ForUser(ctx context.Context, userID string) (*Dashboard, error) {
	src, err := s.repo.Load(ctx, userID, "")
	if err != nil {
		return nil, fmt.Errorf("load dashboard: %w", err)
	}
	return Build(src), nil
}

func (s *Service) ForShop(ctx context.Context, userID, shopID string) (*Dashboard, error) {
	if _, err := s.shops.GetMembership(ctx, shopID, userID); err != nil {
		return nil, err
	}

	src, err := s.repo.Load(ctx, userID, shopID)
	if err != nil {
		return nil, fmt.Errorf("load shop dashboard: %w", err)
	}
	return Build(src), nil
}

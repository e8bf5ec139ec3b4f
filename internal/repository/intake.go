package repository

import (
	"fmt"
	"math"
	"sort"

	"shop-service/internal/models"
)

// orderDraft is a priced order that has not been written yet.
type orderDraft struct {
	total      int64
	supplierID *string
	items      []models.OrderItem
}

// priceOrder resolves every line against catalog and snapshots the current price.
// It performs no I/O.
func priceOrder(req models.OrderRequest, catalog map[string]models.Product) (*orderDraft, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: order must contain at least one item", ErrInvalidInput)
	}

	draft := &orderDraft{items: make([]models.OrderItem, 0, len(req.Items))}

	for _, line := range req.Items {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive for product %s", ErrInvalidInput, line.ProductID)
		}

		product, ok := catalog[line.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: product %s", ErrNotFound, line.ProductID)
		}

		lineTotal := product.Price * int64(line.Quantity)
		if line.Quantity != 0 && lineTotal/int64(line.Quantity) != product.Price {
			return nil, fmt.Errorf("%w: line total overflows for product %s", ErrInvalidInput, line.ProductID)
		}
		if draft.total > math.MaxInt64-lineTotal {
			return nil, fmt.Errorf("%w: order total overflows", ErrInvalidInput)
		}
		draft.total += lineTotal

		draft.items = append(draft.items, models.OrderItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Price:     product.Price,
		})
	}

	draft.supplierID = catalog[req.Items[0].ProductID].SupplierID

	return draft, nil
}

// stockMovement is the net quantity for one product across all lines of an order.
type stockMovement struct {
	productID string
	quantity  int
}

// aggregateLines sums quantities per product and sorts by product id so that
// concurrent transactions touch product rows in the same order.
func aggregateLines(items []models.OrderItem) []stockMovement {
	totals := make(map[string]int, len(items))
	for _, item := range items {
		totals[item.ProductID] += item.Quantity
	}

	movements := make([]stockMovement, 0, len(totals))
	for productID, qty := range totals {
		movements = append(movements, stockMovement{productID: productID, quantity: qty})
	}

	sort.Slice(movements, func(i, j int) bool {
		return movements[i].productID < movements[j].productID
	})

	return movements
}

// checkStock fails fast on the stock read with the catalog. The conditional
// decrement still guards against writes that happened after that read.
func checkStock(movements []stockMovement, catalog map[string]models.Product) error {
	for _, m := range movements {
		product := catalog[m.productID]
		if product.Stock < m.quantity {
			return &InsufficientStockError{
				ProductID: m.productID,
				Requested: m.quantity,
				Available: product.Stock,
			}
		}
	}
	return nil
}

func uniqueProductIDs(items []models.OrderItemRequest) []string {
	seen := make(map[string]struct{}, len(items))
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	sort.Strings(ids)
	return ids
}

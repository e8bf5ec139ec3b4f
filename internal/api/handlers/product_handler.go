package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"shop-service/internal/models"
)

type ProductService interface {
	Create(ctx context.Context, userID string, p *models.Product) error
	List(ctx context.Context, userID, shopID string) ([]models.Product, error)
	Get(ctx context.Context, userID, shopID, productID string) (*models.Product, error)
	Update(ctx context.Context, userID string, p *models.Product) error
	Delete(ctx context.Context, userID, shopID, productID string) error
	Operations(ctx context.Context, userID, shopID, productID string) ([]models.Operation, error)
}

type ProductHandler struct {
	svc    ProductService
	logger *slog.Logger
}

func NewProductHandler(svc ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{svc: svc, logger: logger}
}

// ProductRequest is the body of both create and update. Price is in minor units.
// Update requires UpdatedAt as last read, so a stale stock value is refused.
type ProductRequest struct {
	Name       string     `json:"name"`
	Price      int64      `json:"price"`
	Stock      int        `json:"stock"`
	SupplierID *string    `json:"supplier_id"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	shopID, ok := uuidParam(w, r, "shopID")
	if !ok {
		return
	}

	products, err := h.svc.List(r.Context(), currentUser(r), shopID)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "get products")
		return
	}

	writeData(w, http.StatusOK, products)
}

func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	shopID, ok := uuidParam(w, r, "shopID")
	if !ok {
		return
	}
	productID, ok := uuidParam(w, r, "productID")
	if !ok {
		return
	}

	product, err := h.svc.Get(r.Context(), currentUser(r), shopID, productID)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "get product")
		return
	}

	writeData(w, http.StatusOK, product)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	shopID, ok := uuidParam(w, r, "shopID")
	if !ok {
		return
	}

	var req ProductRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	p := models.Product{
		ShopID:     shopID,
		SupplierID: req.SupplierID,
		Name:       req.Name,
		Price:      req.Price,
		Stock:      req.Stock,
	}

	if err := h.svc.Create(r.Context(), currentUser(r), &p); err != nil {
		writeServiceError(w, r, h.logger, err, "create product")
		return
	}

	w.Header().Set("Location", "/shops/"+shopID+"/products/"+p.ProductID)
	writeData(w, http.StatusCreated, p)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	shopID, ok := uuidParam(w, r, "shopID")
	if !ok {
		return
	}
	productID, ok := uuidParam(w, r, "productID")
	if !ok {
		return
	}

	var req ProductRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	if req.UpdatedAt == nil || req.UpdatedAt.IsZero() {
		writeError(w, http.StatusBadRequest, "updated_at of the product as last read is required")
		return
	}

	p := models.Product{
		ProductID:  productID,
		ShopID:     shopID,
		SupplierID: req.SupplierID,
		Name:       req.Name,
		Price:      req.Price,
		Stock:      req.Stock,
		UpdatedAt:  *req.UpdatedAt,
	}

	if err := h.svc.Update(r.Context(), currentUser(r), &p); err != nil {
		writeServiceError(w, r, h.logger, err, "update product")
		return
	}

	writeData(w, http.StatusOK, p)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	shopID, ok := uuidParam(w, r, "shopID")
	if !ok {
		return
	}
	productID, ok := uuidParam(w, r, "productID")
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), currentUser(r), shopID, productID); err != nil {
		writeServiceError(w, r, h.logger, err, "delete product")
		return
	}

	writeData(w, http.StatusOK, nil)
}

func (h *ProductHandler) Operations(w http.ResponseWriter, r *http.Request) {
	shopID, ok := uuidParam(w, r, "shopID")
	if !ok {
		return
	}
	productID, ok := uuidParam(w, r, "productID")
	if !ok {
		return
	}

	ops, err := h.svc.Operations(r.Context(), currentUser(r), shopID, productID)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "get product operations")
		return
	}

	writeData(w, http.StatusOK, ops)
}

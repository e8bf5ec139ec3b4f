package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"shop-service/internal/models"
	"shop-service/internal/service"
)

type ShopService interface {
	Create(ctx context.Context, userID, name string) (*models.Shop, error)
	List(ctx context.Context, userID string) ([]models.Shop, error)
	Get(ctx context.Context, userID, shopID string) (*models.Shop, error)
	Delete(ctx context.Context, userID, shopID string) error
	AddMember(ctx context.Context, userID, shopID string, req service.AddMemberRequest) (*models.ShopUser, error)

	CreateSupplier(ctx context.Context, userID, shopID string, supplier *models.Supplier) error
	ListSuppliers(ctx context.Context, userID, shopID string) ([]models.Supplier, error)
	UnlinkSupplier(ctx context.Context, userID, shopID, supplierID string) error
}

type ShopHandler struct {
	svc    ShopService
	logger *slog.Logger
}

func NewShopHandler(svc ShopService, logger *slog.Logger) *ShopHandler {
	return &ShopHandler{svc: svc, logger: logger}
}

type ShopCreateRequest struct {
	Name string `json:"name"`
}

type SupplierCreateRequest struct {
	Name    string  `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

func (h *ShopHandler) List(w http.ResponseWriter, r *http.Request) {
	shops, err := h.svc.List(r.Context(), currentUser(r))
	if err != nil {
		writeServiceError(w, r, h.logger, err, "get shops")
		return
	}

	writeData(w, http.StatusOK, shops)
}

func (h *ShopHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ShopCreateRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	shop, err := h.svc.Create(r.Context(), currentUser(r), req.Name)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "create shop")
		return
	}

	w.Header().Set("Location", "/shops/"+shop.ShopID)
	writeData(w, http.StatusCreated, shop)
}

func (h *ShopHandler) Get(w http.ResponseWriter, r *http.Request) {
	shopID, ok := uuidParam(w, r, "shopID")
	if !ok {
		return
	}

	shop, err := h.svc.Get(r.Context(), currentUser(r), shopID)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "get shop")
		return
	}

	writeData(w, http.StatusOK, shop)
}

func (h *ShopHandler) Delete(w http.ResponseWriter, r *http.Request) {
	shopID, ok := uuidParam(w, r, "shopID")
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), currentUser(r), shopID); err != nil {
		writeServiceError(w, r, h.logger, err, "delete shop")
		return
	}

	writeData(w, http.StatusOK, nil)
}

func (h *ShopHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	shopID, ok := uuidParam(w, r, "shopID")
	if !ok {
		return
	}

	var req service.AddMemberRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	link, err := h.svc.AddMember(r.Context(), currentUser(r), shopID, req)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "add member")
		return
	}

	writeData(w, http.StatusCreated, link)
}

func (h *ShopHandler) ListSuppliers(w http.ResponseWriter, r *http.Request) {
	shopID, ok := uuidParam(w, r, "shopID")
	if !ok {
		return
	}

	suppliers, err := h.svc.ListSuppliers(r.Context(), currentUser(r), shopID)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "get suppliers")
		return
	}

	writeData(w, http.StatusOK, suppliers)
}

func (h *ShopHandler) CreateSupplier(w http.ResponseWriter, r *http.Request) {
	shopID, ok := uuidParam(w, r, "shopID")
	if !ok {
		return
	}

	var req SupplierCreateRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	supplier := models.Supplier{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	}

	if err := h.svc.CreateSupplier(r.Context(), currentUser(r), shopID, &supplier); err != nil {
		writeServiceError(w, r, h.logger, err, "create supplier")
		return
	}

	writeData(w, http.StatusCreated, supplier)
}

func (h *ShopHandler) UnlinkSupplier(w http.ResponseWriter, r *http.Request) {
	shopID, ok := uuidParam(w, r, "shopID")
	if !ok {
		return
	}
	supplierID, ok := uuidParam(w, r, "supplierID")
	if !ok {
		return
	}

	if err := h.svc.UnlinkSupplier(r.Context(), currentUser(r), shopID, supplierID); err != nil {
		writeServiceError(w, r, h.logger, err, "unlink supplier")
		return
	}

	writeData(w, http.StatusOK, nil)
}

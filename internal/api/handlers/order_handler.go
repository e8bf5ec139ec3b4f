package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"shop-service/internal/models"
)

type OrderService interface {
	Create(ctx context.Context, userID string, req models.OrderRequest) (*models.OrderWithRelations, error)
	List(ctx context.Context, userID, shopID string) ([]models.OrderWithRelations, error)
	Get(ctx context.Context, userID, shopID, orderID string) (*models.OrderWithRelations, error)
	Delete(ctx context.Context, userID, shopID, orderID string) error
	UpdateStatus(ctx context.Context, userID, shopID, orderID string, status models.OrderStatus) (*models.OrderWithRelations, error)
	Operations(ctx context.Context, userID, shopID, orderID string) ([]models.Operation, error)
}

type OrderHandler struct {
	svc    OrderService
	logger *slog.Logger
}

func NewOrderHandler(svc OrderService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{svc: svc, logger: logger}
}

type OrderStatusRequest struct {
	Status models.OrderStatus `json:"status"`
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	shopID, ok := uuidParam(w, r, "shopID")
	if !ok {
		return
	}

	orders, err := h.svc.List(r.Context(), currentUser(r), shopID)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "get orders")
		return
	}

	writeData(w, http.StatusOK, orders)
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	shopID, ok := uuidParam(w, r, "shopID")
	if !ok {
		return
	}

	var req models.OrderRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	if req.ShopID != "" && req.ShopID != shopID {
		writeError(w, http.StatusBadRequest, "shop_id does not match the path")
		return
	}
	req.ShopID = shopID

	order, err := h.svc.Create(r.Context(), currentUser(r), req)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "create order")
		return
	}

	w.Header().Set("Location", "/shops/"+shopID+"/orders/"+order.OrderID)
	writeData(w, http.StatusCreated, order)
}

func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	shopID, ok := uuidParam(w, r, "shopID")
	if !ok {
		return
	}
	orderID, ok := uuidParam(w, r, "orderID")
	if !ok {
		return
	}

	order, err := h.svc.Get(r.Context(), currentUser(r), shopID, orderID)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "get order")
		return
	}

	writeData(w, http.StatusOK, order)
}

func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	shopID, ok := uuidParam(w, r, "shopID")
	if !ok {
		return
	}
	orderID, ok := uuidParam(w, r, "orderID")
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), currentUser(r), shopID, orderID); err != nil {
		writeServiceError(w, r, h.logger, err, "delete order")
		return
	}

	writeData(w, http.StatusOK, nil)
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	shopID, ok := uuidParam(w, r, "shopID")
	if !ok {
		return
	}
	orderID, ok := uuidParam(w, r, "orderID")
	if !ok {
		return
	}

	var req OrderStatusRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	order, err := h.svc.UpdateStatus(r.Context(), currentUser(r), shopID, orderID, req.Status)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "update order status")
		return
	}

	writeData(w, http.StatusOK, order)
}

func (h *OrderHandler) Operations(w http.ResponseWriter, r *http.Request) {
	shopID, ok := uuidParam(w, r, "shopID")
	if !ok {
		return
	}
	orderID, ok := uuidParam(w, r, "orderID")
	if !ok {
		return
	}

	ops, err := h.svc.Operations(r.Context(), currentUser(r), shopID, orderID)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "get order operations")
		return
	}

	writeData(w, http.StatusOK, ops)
}

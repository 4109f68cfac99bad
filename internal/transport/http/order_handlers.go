package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/hirehub/hirehub-server/internal/store"
)

// OrderHandlers provides HTTP handlers for orders.
type OrderHandlers struct {
	store store.Store
	log   *zerolog.Logger
}

// NewOrderHandlers creates a new order handlers instance.
func NewOrderHandlers(st store.Store, logger *zerolog.Logger) *OrderHandlers {
	return &OrderHandlers{
		store: st,
		log:   logger,
	}
}

// OrderResponse represents an order in API responses.
type OrderResponse struct {
	ID           int64   `json:"id"`
	ClientID     int64   `json:"client_id"`
	ServiceID    int64   `json:"service_id"`
	OrderDate    string  `json:"order_date"`
	DeliveryDate string  `json:"delivery_date,omitempty"`
	TotalAmount  float64 `json:"total_amount"`
	Status       string  `json:"status"`
}

func orderResponse(o *store.Order) OrderResponse {
	resp := OrderResponse{
		ID:          o.ID,
		ClientID:    o.ClientID,
		ServiceID:   o.ServiceID,
		OrderDate:   o.OrderDate.UTC().Format(time.RFC3339),
		TotalAmount: o.TotalAmount,
		Status:      string(o.Status),
	}
	if !o.DeliveryDate.IsZero() {
		resp.DeliveryDate = o.DeliveryDate.UTC().Format(time.RFC3339)
	}
	return resp
}

// Create places a pending order for a service at the listed price.
// POST /api/client/services/:id
func (h *OrderHandlers) Create(c *gin.Context) {
	identity := CurrentIdentity(c)

	serviceID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid service id"})
		return
	}

	ctx := c.Request.Context()
	svc, err := h.store.GetServiceByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "service not found"})
			return
		}
		h.log.Error().Err(err).Int64("service_id", serviceID).Msg("failed to load service")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	if !svc.IsActive {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "service not found"})
		return
	}
	if svc.FreelancerID == identity.UserID {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "cannot order your own service"})
		return
	}

	order, err := h.store.CreateOrder(ctx, &store.Order{
		ClientID:    identity.UserID,
		ServiceID:   svc.ID,
		TotalAmount: svc.Price,
		Status:      store.OrderStatusPending,
	})
	if err != nil {
		h.log.Error().Err(err).Int64("service_id", serviceID).Msg("failed to create order")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, orderResponse(order))
}

// Approve moves a pending order to In Progress. Only the freelancer who
// owns the ordered service may approve.
// POST /api/orders/:id/approve
func (h *OrderHandlers) Approve(c *gin.Context) {
	identity := CurrentIdentity(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid order id"})
		return
	}

	ctx := c.Request.Context()
	order, err := h.store.GetOrderByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "order not found"})
			return
		}
		h.log.Error().Err(err).Int64("order_id", id).Msg("failed to load order")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	svc, err := h.store.GetServiceByID(ctx, order.ServiceID)
	if err != nil {
		h.log.Error().Err(err).Int64("service_id", order.ServiceID).Msg("failed to load service for order")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	if svc.FreelancerID != identity.UserID {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "not your order"})
		return
	}
	if order.Status != store.OrderStatusPending {
		c.JSON(http.StatusConflict, ErrorResponse{Error: "order is not pending"})
		return
	}

	if err := h.store.UpdateOrderStatus(ctx, id, store.OrderStatusInProgress); err != nil {
		h.log.Error().Err(err).Int64("order_id", id).Msg("failed to approve order")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	order.Status = store.OrderStatusInProgress

	c.JSON(http.StatusOK, orderResponse(order))
}

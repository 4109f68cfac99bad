package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/hirehub/hirehub-server/internal/payments"
	"github.com/hirehub/hirehub-server/internal/store"
)

// PaymentHandlers provides HTTP handlers for order payments.
type PaymentHandlers struct {
	store    store.Store
	verifier payments.Verifier
	log      *zerolog.Logger
}

// NewPaymentHandlers creates a new payment handlers instance.
func NewPaymentHandlers(st store.Store, verifier payments.Verifier, logger *zerolog.Logger) *PaymentHandlers {
	return &PaymentHandlers{
		store:    st,
		verifier: verifier,
		log:      logger,
	}
}

// PaymentResponse represents a payment in API responses.
type PaymentResponse struct {
	ID          int64   `json:"id"`
	OrderID     int64   `json:"order_id"`
	Status      string  `json:"status"`
	Amount      float64 `json:"amount"`
	PaymentDate string  `json:"payment_date"`
	IsVerified  bool    `json:"is_verified"`
}

func paymentResponse(p *store.Payment) PaymentResponse {
	return PaymentResponse{
		ID:          p.ID,
		OrderID:     p.OrderID,
		Status:      string(p.Status),
		Amount:      p.Amount,
		PaymentDate: p.PaymentDate.UTC().Format(time.RFC3339),
		IsVerified:  p.IsVerified,
	}
}

// Create creates a pending payment for an In Progress order, or returns
// the existing pending one.
// POST /api/orders/:id/payments
func (h *PaymentHandlers) Create(c *gin.Context) {
	identity := CurrentIdentity(c)

	order, ok := h.loadOwnOrder(c, identity.UserID)
	if !ok {
		return
	}
	if order.Status != store.OrderStatusInProgress {
		c.JSON(http.StatusConflict, ErrorResponse{Error: "order is not in progress"})
		return
	}

	ctx := c.Request.Context()
	if existing, err := h.store.GetPendingPaymentForOrder(ctx, order.ID); err == nil {
		c.JSON(http.StatusOK, paymentResponse(existing))
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		h.log.Error().Err(err).Int64("order_id", order.ID).Msg("failed to look up pending payment")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	payment, err := h.store.CreatePayment(ctx, &store.Payment{
		OrderID: order.ID,
		UserID:  identity.UserID,
		Status:  store.PaymentStatusPending,
		Amount:  order.TotalAmount,
	})
	if err != nil {
		h.log.Error().Err(err).Int64("order_id", order.ID).Msg("failed to create payment")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, paymentResponse(payment))
}

// VerifyPaymentRequest represents the gateway verification body.
type VerifyPaymentRequest struct {
	Token  string  `json:"token" binding:"required"`
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

// Verify confirms a payment with the Khalti gateway. On success the
// payment becomes Completed and verified and the order Completed.
// POST /api/orders/:id/payments/verify
func (h *PaymentHandlers) Verify(c *gin.Context) {
	identity := CurrentIdentity(c)

	order, ok := h.loadOwnOrder(c, identity.UserID)
	if !ok {
		return
	}

	var req VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ctx := c.Request.Context()
	payment, err := h.store.GetPaymentForOrderAmount(ctx, order.ID, req.Amount)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "no matching payment"})
			return
		}
		h.log.Error().Err(err).Int64("order_id", order.ID).Msg("failed to look up payment")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	if payment.IsVerified {
		c.JSON(http.StatusOK, paymentResponse(payment))
		return
	}

	// Khalti amounts are in paisa.
	transactionID, err := h.verifier.Verify(ctx, req.Token, int64(req.Amount*100))
	if err != nil {
		if errors.Is(err, payments.ErrVerificationFailed) {
			c.JSON(http.StatusPaymentRequired, ErrorResponse{Error: "payment verification failed"})
			return
		}
		h.log.Error().Err(err).Int64("payment_id", payment.ID).Msg("gateway verification error")
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "payment gateway unavailable"})
		return
	}

	if err := h.store.MarkPaymentVerified(ctx, payment.ID, req.Token, transactionID); err != nil {
		h.log.Error().Err(err).Int64("payment_id", payment.ID).Msg("failed to record verification")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	if err := h.store.UpdateOrderStatus(ctx, order.ID, store.OrderStatusCompleted); err != nil {
		h.log.Error().Err(err).Int64("order_id", order.ID).Msg("failed to complete order")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	payment.Status = store.PaymentStatusCompleted
	payment.IsVerified = true
	c.JSON(http.StatusOK, paymentResponse(payment))
}

func (h *PaymentHandlers) loadOwnOrder(c *gin.Context, clientID int64) (*store.Order, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid order id"})
		return nil, false
	}

	order, err := h.store.GetOrderByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "order not found"})
			return nil, false
		}
		h.log.Error().Err(err).Int64("order_id", id).Msg("failed to load order")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return nil, false
	}
	if order.ClientID != clientID {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "not your order"})
		return nil, false
	}
	return order, true
}

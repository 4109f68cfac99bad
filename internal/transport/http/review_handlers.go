package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/hirehub/hirehub-server/internal/store"
)

// ReviewHandlers provides HTTP handlers for freelancer reviews.
type ReviewHandlers struct {
	store store.Store
	log   *zerolog.Logger
}

// NewReviewHandlers creates a new review handlers instance.
func NewReviewHandlers(st store.Store, logger *zerolog.Logger) *ReviewHandlers {
	return &ReviewHandlers{
		store: st,
		log:   logger,
	}
}

// ReviewResponse represents a review in API responses.
type ReviewResponse struct {
	ID        int64  `json:"id"`
	ClientID  int64  `json:"client_id"`
	Message   string `json:"message"`
	Rating    int    `json:"rating"`
	CreatedAt string `json:"created_at"`
}

// CreateReviewRequest represents the review body.
type CreateReviewRequest struct {
	Message string `json:"message"`
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
}

// Create records a client's review of a freelancer. The client must have
// a completed order for one of the freelancer's services.
// POST /api/freelancer/:username/reviews
func (h *ReviewHandlers) Create(c *gin.Context) {
	identity := CurrentIdentity(c)

	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ctx := c.Request.Context()
	freelancer, err := h.store.GetUserByUsername(ctx, c.Param("username"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "freelancer not found"})
			return
		}
		h.log.Error().Err(err).Msg("failed to load freelancer")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	completed, err := h.hasCompletedOrder(c, identity.UserID, freelancer.ID)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to check order history")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	if !completed {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "no completed order with this freelancer"})
		return
	}

	review, err := h.store.CreateReview(ctx, &store.Review{
		FreelancerID: freelancer.ID,
		ClientID:     identity.UserID,
		Message:      req.Message,
		Rating:       req.Rating,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("failed to create review")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, ReviewResponse{
		ID:        review.ID,
		ClientID:  review.ClientID,
		Message:   review.Message,
		Rating:    review.Rating,
		CreatedAt: review.CreatedAt.UTC().Format(time.RFC3339),
	})
}

func (h *ReviewHandlers) hasCompletedOrder(c *gin.Context, clientID, freelancerID int64) (bool, error) {
	ctx := c.Request.Context()
	services, err := h.store.ListServicesForFreelancer(ctx, freelancerID)
	if err != nil {
		return false, err
	}
	for _, svc := range services {
		orders, err := h.store.ListClientOrdersForService(ctx, clientID, svc.ID)
		if err != nil {
			return false, err
		}
		for _, o := range orders {
			if o.Status == store.OrderStatusCompleted {
				return true, nil
			}
		}
	}
	return false, nil
}

// ListForFreelancer lists a freelancer's reviews, newest first.
// GET /api/freelancer/:username/reviews
func (h *ReviewHandlers) ListForFreelancer(c *gin.Context) {
	ctx := c.Request.Context()

	freelancer, err := h.store.GetUserByUsername(ctx, c.Param("username"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "freelancer not found"})
			return
		}
		h.log.Error().Err(err).Msg("failed to load freelancer")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	reviews, err := h.store.ListReviewsForFreelancer(ctx, freelancer.ID)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list reviews")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]ReviewResponse, 0, len(reviews))
	for _, r := range reviews {
		response = append(response, ReviewResponse{
			ID:        r.ID,
			ClientID:  r.ClientID,
			Message:   r.Message,
			Rating:    r.Rating,
			CreatedAt: r.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, response)
}

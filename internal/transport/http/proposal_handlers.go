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

// ProposalHandlers provides HTTP handlers for proposals.
type ProposalHandlers struct {
	store store.Store
	log   *zerolog.Logger
}

// NewProposalHandlers creates a new proposal handlers instance.
func NewProposalHandlers(st store.Store, logger *zerolog.Logger) *ProposalHandlers {
	return &ProposalHandlers{
		store: st,
		log:   logger,
	}
}

// ProposalResponse represents a proposal in API responses.
type ProposalResponse struct {
	ID            int64   `json:"id"`
	ClientID      int64   `json:"client_id"`
	FreelancerID  int64   `json:"freelancer_id"`
	ServiceID     int64   `json:"service_id"`
	ProposedPrice float64 `json:"proposed_price"`
	Status        string  `json:"status"`
	ProposalDate  string  `json:"proposal_date"`
}

func proposalResponse(p *store.Proposal) ProposalResponse {
	return ProposalResponse{
		ID:            p.ID,
		ClientID:      p.ClientID,
		FreelancerID:  p.FreelancerID,
		ServiceID:     p.ServiceID,
		ProposedPrice: p.ProposedPrice,
		Status:        string(p.Status),
		ProposalDate:  p.ProposalDate.UTC().Format(time.RFC3339),
	}
}

// CreateProposalRequest represents the proposal creation body.
type CreateProposalRequest struct {
	ServiceID     int64   `json:"service_id" binding:"required"`
	ProposedPrice float64 `json:"proposed_price" binding:"required,gt=0"`
}

// Create submits a client's proposal for a service.
// POST /api/client/proposals
func (h *ProposalHandlers) Create(c *gin.Context) {
	identity := CurrentIdentity(c)

	var req CreateProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ctx := c.Request.Context()
	svc, err := h.store.GetServiceByID(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "service not found"})
			return
		}
		h.log.Error().Err(err).Int64("service_id", req.ServiceID).Msg("failed to load service")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	if !svc.IsActive {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "service not found"})
		return
	}

	proposal, err := h.store.CreateProposal(ctx, &store.Proposal{
		ClientID:      identity.UserID,
		FreelancerID:  svc.FreelancerID,
		ServiceID:     svc.ID,
		ProposedPrice: req.ProposedPrice,
		Status:        store.ProposalStatusPending,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("failed to create proposal")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, proposalResponse(proposal))
}

// ListForFreelancer lists proposals addressed to the calling freelancer.
// GET /api/freelancer/proposals
func (h *ProposalHandlers) ListForFreelancer(c *gin.Context) {
	identity := CurrentIdentity(c)

	proposals, err := h.store.ListProposalsForFreelancer(c.Request.Context(), identity.UserID)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", identity.UserID).Msg("failed to list proposals")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]ProposalResponse, 0, len(proposals))
	for _, p := range proposals {
		response = append(response, proposalResponse(p))
	}
	c.JSON(http.StatusOK, response)
}

// DecideProposalRequest represents the accept/decline body.
type DecideProposalRequest struct {
	Status string `json:"status" binding:"required,oneof=Accepted Declined"`
}

// Decide accepts or declines a pending proposal. Accepting creates a
// pending order at the proposed price.
// PATCH /api/freelancer/proposals/:id
func (h *ProposalHandlers) Decide(c *gin.Context) {
	identity := CurrentIdentity(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid proposal id"})
		return
	}

	var req DecideProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ctx := c.Request.Context()
	proposal, err := h.store.GetProposalByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "proposal not found"})
			return
		}
		h.log.Error().Err(err).Int64("proposal_id", id).Msg("failed to load proposal")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	if proposal.FreelancerID != identity.UserID {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "not your proposal"})
		return
	}
	if proposal.Status != store.ProposalStatusPending {
		c.JSON(http.StatusConflict, ErrorResponse{Error: "proposal already decided"})
		return
	}

	status := store.ProposalStatus(req.Status)
	if err := h.store.UpdateProposalStatus(ctx, id, status); err != nil {
		h.log.Error().Err(err).Int64("proposal_id", id).Msg("failed to update proposal")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	proposal.Status = status

	if status == store.ProposalStatusAccepted {
		if _, err := h.store.CreateOrder(ctx, &store.Order{
			ClientID:    proposal.ClientID,
			ServiceID:   proposal.ServiceID,
			TotalAmount: proposal.ProposedPrice,
			Status:      store.OrderStatusPending,
		}); err != nil {
			h.log.Error().Err(err).Int64("proposal_id", id).Msg("failed to create order for accepted proposal")
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
			return
		}
	}

	c.JSON(http.StatusOK, proposalResponse(proposal))
}

package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/hirehub/hirehub-server/internal/store"
)

// CatalogHandlers provides HTTP handlers for categories and service listings.
type CatalogHandlers struct {
	store store.Store
	log   *zerolog.Logger
}

// NewCatalogHandlers creates a new catalog handlers instance.
func NewCatalogHandlers(st store.Store, logger *zerolog.Logger) *CatalogHandlers {
	return &CatalogHandlers{
		store: st,
		log:   logger,
	}
}

// ListCategories returns all categories with their skills.
// GET /api/categories
func (h *CatalogHandlers) ListCategories(c *gin.Context) {
	categories, err := h.store.ListCategories(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list categories")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]CategoryResponse, 0, len(categories))
	for _, cat := range categories {
		skills := make([]SkillResponse, 0, len(cat.Skills))
		for _, s := range cat.Skills {
			skills = append(skills, SkillResponse{ID: s.ID, Name: s.Name})
		}
		response = append(response, CategoryResponse{
			ID:          cat.ID,
			Name:        cat.Name,
			Description: cat.Description,
			Skills:      skills,
		})
	}

	c.JSON(http.StatusOK, response)
}

// ServiceResponse represents a service listing in API responses.
type ServiceResponse struct {
	ID           int64    `json:"id"`
	FreelancerID int64    `json:"freelancer_id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Price        float64  `json:"price"`
	IsActive     bool     `json:"is_active"`
	Categories   []string `json:"categories"`
}

func serviceResponse(svc *store.Service) ServiceResponse {
	categories := make([]string, 0, len(svc.Categories))
	for _, cat := range svc.Categories {
		categories = append(categories, cat.Name)
	}
	return ServiceResponse{
		ID:           svc.ID,
		FreelancerID: svc.FreelancerID,
		Title:        svc.Title,
		Description:  svc.Description,
		Price:        svc.Price,
		IsActive:     svc.IsActive,
		Categories:   categories,
	}
}

// CreateServiceRequest represents the service creation body.
type CreateServiceRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"required,gt=0"`
}

// CreateService creates a listing for the calling freelancer. The listing's
// categories are derived from the freelancer's current skills.
// POST /api/freelancer/services
func (h *CatalogHandlers) CreateService(c *gin.Context) {
	identity := CurrentIdentity(c)

	var req CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ctx := c.Request.Context()
	profile, err := h.store.GetFreelancerProfile(ctx, identity.UserID)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", identity.UserID).Msg("failed to load freelancer profile")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	categoryIDs := uniqueCategoryIDs(profile.Skills)
	svc, err := h.store.CreateService(ctx, &store.Service{
		FreelancerID: identity.UserID,
		Title:        req.Title,
		Description:  req.Description,
		Price:        req.Price,
		IsActive:     true,
	}, categoryIDs)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", identity.UserID).Msg("failed to create service")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, serviceResponse(svc))
}

func uniqueCategoryIDs(skills []store.Skill) []int64 {
	seen := make(map[int64]struct{}, len(skills))
	ids := make([]int64, 0, len(skills))
	for _, s := range skills {
		if _, ok := seen[s.CategoryID]; ok {
			continue
		}
		seen[s.CategoryID] = struct{}{}
		ids = append(ids, s.CategoryID)
	}
	return ids
}

// GetOwnService returns one of the caller's listings.
// GET /api/freelancer/services/:id
func (h *CatalogHandlers) GetOwnService(c *gin.Context) {
	identity := CurrentIdentity(c)

	svc, ok := h.loadService(c)
	if !ok {
		return
	}
	if svc.FreelancerID != identity.UserID {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "not your service"})
		return
	}

	c.JSON(http.StatusOK, serviceResponse(svc))
}

// UpdateServiceRequest represents a service patch.
type UpdateServiceRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	IsActive    *bool    `json:"is_active"`
}

// UpdateService patches one of the caller's listings.
// PATCH /api/freelancer/services/:id
func (h *CatalogHandlers) UpdateService(c *gin.Context) {
	identity := CurrentIdentity(c)

	svc, ok := h.loadService(c)
	if !ok {
		return
	}
	if svc.FreelancerID != identity.UserID {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "not your service"})
		return
	}

	var req UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.Title != nil {
		svc.Title = *req.Title
	}
	if req.Description != nil {
		svc.Description = *req.Description
	}
	if req.Price != nil {
		if *req.Price <= 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "price must be positive"})
			return
		}
		svc.Price = *req.Price
	}
	if req.IsActive != nil {
		svc.IsActive = *req.IsActive
	}

	if err := h.store.UpdateService(c.Request.Context(), svc); err != nil {
		h.log.Error().Err(err).Int64("service_id", svc.ID).Msg("failed to update service")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, serviceResponse(svc))
}

// SearchServices lists active services, optionally filtering by category or
// skill names. Without filters all active services are returned.
// GET /api/client/services?categories=a,b&skills=x,y
func (h *CatalogHandlers) SearchServices(c *gin.Context) {
	ctx := c.Request.Context()

	var (
		services []*store.Service
		err      error
	)
	switch {
	case c.Query("categories") != "":
		services, err = h.store.SearchServicesByCategories(ctx, splitNames(c.Query("categories")))
	case c.Query("skills") != "":
		services, err = h.store.SearchServicesBySkills(ctx, splitNames(c.Query("skills")))
	default:
		services, err = h.store.ListServices(ctx)
	}
	if err != nil {
		h.log.Error().Err(err).Msg("failed to search services")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]ServiceResponse, 0, len(services))
	for _, svc := range services {
		response = append(response, serviceResponse(svc))
	}
	c.JSON(http.StatusOK, response)
}

// GetService returns a single active listing for a client.
// GET /api/client/services/:id
func (h *CatalogHandlers) GetService(c *gin.Context) {
	svc, ok := h.loadService(c)
	if !ok {
		return
	}
	if !svc.IsActive {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "service not found"})
		return
	}

	c.JSON(http.StatusOK, serviceResponse(svc))
}

func (h *CatalogHandlers) loadService(c *gin.Context) (*store.Service, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid service id"})
		return nil, false
	}

	svc, err := h.store.GetServiceByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "service not found"})
			return nil, false
		}
		h.log.Error().Err(err).Int64("service_id", id).Msg("failed to load service")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return nil, false
	}
	return svc, true
}

func splitNames(raw string) []string {
	parts := strings.Split(raw, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			names = append(names, trimmed)
		}
	}
	return names
}

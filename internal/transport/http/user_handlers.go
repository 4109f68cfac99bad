package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/hirehub/hirehub-server/internal/auth"
	"github.com/hirehub/hirehub-server/internal/store"
)

// UserHandlers provides HTTP handlers for accounts and profiles.
type UserHandlers struct {
	authService *auth.Service
	store       store.Store
	log         *zerolog.Logger
}

// NewUserHandlers creates a new user handlers instance.
func NewUserHandlers(authService *auth.Service, st store.Store, logger *zerolog.Logger) *UserHandlers {
	return &UserHandlers{
		authService: authService,
		store:       st,
		log:         logger,
	}
}

// RegisterRequest represents the registration request body.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=32"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
	Bio      string `json:"bio"`
}

// LoginRequest represents the login request body.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse represents the authentication response body.
type AuthResponse struct {
	Token string `json:"token"`
}

// RegisterFreelancer handles freelancer registration.
// POST /api/register/freelancer
func (h *UserHandlers) RegisterFreelancer(c *gin.Context) {
	h.register(c, func(ctx *gin.Context, user *store.User, req RegisterRequest) error {
		return h.store.CreateFreelancerProfile(ctx.Request.Context(), user.ID, req.Bio)
	})
}

// RegisterClient handles client registration.
// POST /api/register/client
func (h *UserHandlers) RegisterClient(c *gin.Context) {
	h.register(c, func(ctx *gin.Context, user *store.User, _ RegisterRequest) error {
		return h.store.CreateClientProfile(ctx.Request.Context(), user.ID)
	})
}

func (h *UserHandlers) register(c *gin.Context, createProfile func(*gin.Context, *store.User, RegisterRequest) error) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid register request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req.Username, req.Email, req.Phone, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserExists):
			c.JSON(http.StatusConflict, ErrorResponse{Error: "user already exists"})
		case errors.Is(err, auth.ErrInvalidUsername), errors.Is(err, auth.ErrInvalidPassword):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		default:
			h.log.Error().Err(err).Str("username", req.Username).Msg("failed to register user")
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		}
		return
	}

	if err := createProfile(c, user, req); err != nil {
		h.log.Error().Err(err).Int64("user_id", user.ID).Msg("failed to create profile")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	token, err := h.authService.TokenFor(user)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", user.ID).Msg("failed to issue token")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.log.Info().Str("username", req.Username).Msg("user registered successfully")
	c.JSON(http.StatusCreated, AuthResponse{Token: token})
}

// Login handles user login.
// POST /api/login
func (h *UserHandlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid login request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	token, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})
			return
		}
		h.log.Error().Err(err).Str("username", req.Username).Msg("failed to login user")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, AuthResponse{Token: token})
}

// PasswordResetRequest represents the reset link request body.
type PasswordResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// RequestPasswordReset issues a reset token for the account with the given email.
// POST /api/password/request
func (h *UserHandlers) RequestPasswordReset(c *gin.Context) {
	var req PasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.authService.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			h.log.Error().Err(err).Msg("failed to issue reset token")
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
			return
		}
		// Unknown emails get the same answer as known ones.
	}

	c.JSON(http.StatusOK, gin.H{"status": "reset link sent if the account exists"})
}

// PasswordResetConfirm represents the password reset body.
type PasswordResetConfirm struct {
	Password string `json:"password" binding:"required,min=6"`
}

// ResetPassword consumes a reset token and sets a new password.
// POST /api/password/reset?token=
func (h *UserHandlers) ResetPassword(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing token"})
		return
	}

	var req PasswordResetConfirm
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), token, req.Password); err != nil {
		if errors.Is(err, auth.ErrResetTokenInvalid) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid or expired token"})
			return
		}
		h.log.Error().Err(err).Msg("failed to reset password")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "password updated"})
}

// SkillResponse represents a skill in API responses.
type SkillResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// FreelancerProfileResponse represents a freelancer profile.
type FreelancerProfileResponse struct {
	UserID int64           `json:"user_id"`
	Bio    string          `json:"bio"`
	Rating float64         `json:"rating"`
	Skills []SkillResponse `json:"skills"`
}

// GetFreelancerProfile returns the caller's freelancer profile.
// GET /api/freelancer/profile
func (h *UserHandlers) GetFreelancerProfile(c *gin.Context) {
	identity := CurrentIdentity(c)

	profile, err := h.store.GetFreelancerProfile(c.Request.Context(), identity.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "profile not found"})
			return
		}
		h.log.Error().Err(err).Int64("user_id", identity.UserID).Msg("failed to load freelancer profile")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	skills := make([]SkillResponse, 0, len(profile.Skills))
	for _, s := range profile.Skills {
		skills = append(skills, SkillResponse{ID: s.ID, Name: s.Name})
	}

	c.JSON(http.StatusOK, FreelancerProfileResponse{
		UserID: profile.UserID,
		Bio:    profile.Bio,
		Rating: profile.Rating,
		Skills: skills,
	})
}

// UpdateFreelancerProfileRequest represents a freelancer profile patch.
type UpdateFreelancerProfileRequest struct {
	Bio    *string  `json:"bio"`
	Skills []string `json:"skills"`
}

// UpdateFreelancerProfile patches bio and skill set.
// PATCH /api/freelancer/profile
func (h *UserHandlers) UpdateFreelancerProfile(c *gin.Context) {
	identity := CurrentIdentity(c)

	var req UpdateFreelancerProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ctx := c.Request.Context()
	if req.Bio != nil {
		if err := h.store.UpdateFreelancerBio(ctx, identity.UserID, *req.Bio); err != nil {
			h.log.Error().Err(err).Int64("user_id", identity.UserID).Msg("failed to update bio")
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
			return
		}
	}

	if req.Skills != nil {
		skills, err := h.store.GetSkillsByNames(ctx, req.Skills)
		if err != nil {
			h.log.Error().Err(err).Msg("failed to resolve skills")
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
			return
		}
		ids := make([]int64, 0, len(skills))
		for _, s := range skills {
			ids = append(ids, s.ID)
		}
		if err := h.store.SetFreelancerSkills(ctx, identity.UserID, ids); err != nil {
			h.log.Error().Err(err).Int64("user_id", identity.UserID).Msg("failed to set skills")
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
			return
		}
	}

	h.GetFreelancerProfile(c)
}

// CategoryResponse represents a category in API responses.
type CategoryResponse struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Skills      []SkillResponse `json:"skills,omitempty"`
}

// ClientProfileResponse represents a client profile.
type ClientProfileResponse struct {
	UserID     int64              `json:"user_id"`
	Categories []CategoryResponse `json:"categories"`
}

// GetClientProfile returns the caller's client profile.
// GET /api/client/profile
func (h *UserHandlers) GetClientProfile(c *gin.Context) {
	identity := CurrentIdentity(c)

	profile, err := h.store.GetClientProfile(c.Request.Context(), identity.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "profile not found"})
			return
		}
		h.log.Error().Err(err).Int64("user_id", identity.UserID).Msg("failed to load client profile")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	categories := make([]CategoryResponse, 0, len(profile.Categories))
	for _, cat := range profile.Categories {
		categories = append(categories, CategoryResponse{ID: cat.ID, Name: cat.Name})
	}

	c.JSON(http.StatusOK, ClientProfileResponse{
		UserID:     profile.UserID,
		Categories: categories,
	})
}

// UpdateClientProfileRequest represents a client profile patch.
type UpdateClientProfileRequest struct {
	CategoryIDs []int64 `json:"category_ids"`
}

// UpdateClientProfile replaces the client's preferred categories.
// PATCH /api/client/profile
func (h *UserHandlers) UpdateClientProfile(c *gin.Context) {
	identity := CurrentIdentity(c)

	var req UpdateClientProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.CategoryIDs != nil {
		if err := h.store.SetClientCategories(c.Request.Context(), identity.UserID, req.CategoryIDs); err != nil {
			h.log.Error().Err(err).Int64("user_id", identity.UserID).Msg("failed to set categories")
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
			return
		}
	}

	h.GetClientProfile(c)
}

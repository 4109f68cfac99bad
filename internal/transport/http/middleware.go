package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/hirehub/hirehub-server/internal/auth"
	"github.com/hirehub/hirehub-server/internal/store"
)

// ContextKeyIdentity is the gin context key holding the authenticated identity.
const ContextKeyIdentity = "identity"

// ErrorResponse is the JSON body returned on request failures.
type ErrorResponse struct {
	Error string `json:"error"`
}

// AuthMiddleware validates the Authorization bearer token and stores the
// resolved identity on the request context.
func AuthMiddleware(authService *auth.Service, logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := authService.VerifyBearer(c.Request.Context(), c.GetHeader("Authorization"))
		if err != nil {
			logger.Debug().Err(err).Msg("rejected bearer credential")
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
			c.Abort()
			return
		}

		c.Set(ContextKeyIdentity, identity)
		c.Next()
	}
}

// RequireFreelancer aborts with 403 unless the caller has a freelancer profile.
func RequireFreelancer(profiles store.ProfileStore) gin.HandlerFunc {
	return requireProfile(profiles.IsFreelancer, "freelancer role required")
}

// RequireClient aborts with 403 unless the caller has a client profile.
func RequireClient(profiles store.ProfileStore) gin.HandlerFunc {
	return requireProfile(profiles.IsClient, "client role required")
}

func requireProfile(check func(context.Context, int64) (bool, error), msg string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := CurrentIdentity(c)
		if identity == nil {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
			c.Abort()
			return
		}

		ok, err := check(c.Request.Context(), identity.UserID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
			c.Abort()
			return
		}
		if !ok {
			c.JSON(http.StatusForbidden, ErrorResponse{Error: msg})
			c.Abort()
			return
		}

		c.Next()
	}
}

// CurrentIdentity returns the authenticated identity set by AuthMiddleware,
// or nil when the request is unauthenticated.
func CurrentIdentity(c *gin.Context) *auth.Identity {
	v, ok := c.Get(ContextKeyIdentity)
	if !ok {
		return nil
	}
	identity, ok := v.(*auth.Identity)
	if !ok {
		return nil
	}
	return identity
}

// RequestLogger logs each request the way the access log does: method, path,
// status and latency.
func RequestLogger(logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

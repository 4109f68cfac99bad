package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/hirehub/hirehub-server/internal/auth"
	"github.com/hirehub/hirehub-server/internal/chat"
	"github.com/hirehub/hirehub-server/internal/config"
	"github.com/hirehub/hirehub-server/internal/payments"
	"github.com/hirehub/hirehub-server/internal/store"
)

// Deps collects the services the HTTP surface is built on.
type Deps struct {
	Store    store.Store
	Auth     *auth.Service
	Registry chat.Registry
	Verifier payments.Verifier
	Logger   *zerolog.Logger
}

// NewServer builds the HTTP server with all API and WebSocket routes.
func NewServer(cfg config.Config, deps Deps) *stdhttp.Server {
	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           NewRouter(deps),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(deps.Logger))

	users := NewUserHandlers(deps.Auth, deps.Store, deps.Logger)
	catalog := NewCatalogHandlers(deps.Store, deps.Logger)
	proposals := NewProposalHandlers(deps.Store, deps.Logger)
	orders := NewOrderHandlers(deps.Store, deps.Logger)
	pay := NewPaymentHandlers(deps.Store, deps.Verifier, deps.Logger)
	reviews := NewReviewHandlers(deps.Store, deps.Logger)
	ws := NewChatWSHandler(deps.Auth, deps.Store, deps.Registry, deps.Logger)
	history := NewChatHistoryHandler(chat.NewHistory(deps.Store, deps.Store), deps.Logger)

	r.GET("/health", healthHandler)

	r.POST("/api/register/freelancer", users.RegisterFreelancer)
	r.POST("/api/register/client", users.RegisterClient)
	r.POST("/api/login", users.Login)
	r.POST("/api/password/request", users.RequestPasswordReset)
	r.POST("/api/password/reset", users.ResetPassword)
	r.GET("/api/categories", catalog.ListCategories)

	r.GET("/ws/chat/:username", ws.Serve)

	authed := r.Group("/api", AuthMiddleware(deps.Auth, deps.Logger))
	{
		authed.GET("/chat/history/:username", history.Conversation)

		authed.GET("/freelancer/:username/reviews", reviews.ListForFreelancer)

		freelancer := authed.Group("", RequireFreelancer(deps.Store))
		{
			freelancer.GET("/freelancer/profile", users.GetFreelancerProfile)
			freelancer.PATCH("/freelancer/profile", users.UpdateFreelancerProfile)
			freelancer.POST("/freelancer/services", catalog.CreateService)
			freelancer.GET("/freelancer/services/:id", catalog.GetOwnService)
			freelancer.PATCH("/freelancer/services/:id", catalog.UpdateService)
			freelancer.GET("/freelancer/proposals", proposals.ListForFreelancer)
			freelancer.PATCH("/freelancer/proposals/:id", proposals.Decide)
			freelancer.POST("/orders/:id/approve", orders.Approve)
		}

		client := authed.Group("", RequireClient(deps.Store))
		{
			client.GET("/client/profile", users.GetClientProfile)
			client.PATCH("/client/profile", users.UpdateClientProfile)
			client.GET("/client/services", catalog.SearchServices)
			client.GET("/client/services/:id", catalog.GetService)
			client.POST("/client/services/:id", orders.Create)
			client.POST("/client/proposals", proposals.Create)
			client.POST("/orders/:id/payments", pay.Create)
			client.POST("/orders/:id/payments/verify", pay.Verify)
			client.POST("/freelancer/:username/reviews", reviews.Create)
		}
	}

	return r
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}

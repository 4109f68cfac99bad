package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/hirehub/hirehub-server/internal/auth"
	"github.com/hirehub/hirehub-server/internal/chat"
	"github.com/hirehub/hirehub-server/internal/config"
	"github.com/hirehub/hirehub-server/internal/payments"
	"github.com/hirehub/hirehub-server/internal/store"
	"github.com/hirehub/hirehub-server/internal/store/sqlite"
	transporthttp "github.com/hirehub/hirehub-server/internal/transport/http"
)

// resetTokenSweepInterval controls how often the janitor prunes expired
// password reset tokens. Chat messages are never touched.
const resetTokenSweepInterval = time.Hour

// App wires together storage, services and transport.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	authService     *auth.Service
	registry        chat.Registry
	redisRegistry   *chat.RedisRegistry
	store           store.Store
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	st, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	logger.Info().Str("db_path", cfg.DatabasePath).Msg("database initialized")

	jwtConfig := &auth.JWTConfig{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		TTL:      cfg.JWTTTL,
	}

	authService := auth.NewService(st, st, jwtConfig, auth.NewLogMailer(logger), cfg.ResetTokenTTL, cfg.ResetBaseURL)

	var (
		registry      chat.Registry
		redisRegistry *chat.RedisRegistry
	)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		redisRegistry = chat.NewRedisRegistry(rdb, logger)
		registry = redisRegistry
		logger.Info().Str("redis_addr", cfg.RedisAddr).Msg("using redis chat registry")
	} else {
		registry = chat.NewInProcessRegistry()
	}

	server := transporthttp.NewServer(*cfg, transporthttp.Deps{
		Store:    st,
		Auth:     authService,
		Registry: registry,
		Verifier: payments.NewKhaltiClient(cfg.KhaltiBaseURL, cfg.KhaltiSecretKey),
		Logger:   logger,
	})

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		authService:     authService,
		registry:        registry,
		redisRegistry:   redisRegistry,
		store:           st,
		log:             logger,
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go a.resetTokenJanitor(ctx)

	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		a.cleanup()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.cleanup()
			return err
		}

		a.cleanup()
		return <-serverErr
	}
}

// resetTokenJanitor periodically deletes expired password reset tokens.
func (a *App) resetTokenJanitor(ctx context.Context) {
	ticker := time.NewTicker(resetTokenSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			n, err := a.authService.PruneExpiredResetTokens(ctx)
			if err != nil {
				a.log.Warn().Err(err).Msg("reset token sweep failed")
				continue
			}
			if n > 0 {
				a.log.Info().Int64("pruned", n).Msg("expired reset tokens removed")
			}
		case <-ctx.Done():
			return
		}
	}
}

// cleanup closes the registry, database and other resources.
func (a *App) cleanup() {
	if a.redisRegistry != nil {
		a.redisRegistry.Close()
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	"starwars/docs"
	"starwars/internal/auth"
	"starwars/internal/cache"
	"starwars/internal/config"
	"starwars/internal/gql"
	"starwars/internal/handler"
	"starwars/internal/logging"
	"starwars/internal/metrics"
	"starwars/internal/model"
	"starwars/internal/repository"
	"starwars/internal/router"
	"starwars/internal/service"
)

const shutdownTimeout = 10 * time.Second

// @title Star Wars API
// @version 1.0
// @description Star Wars character catalog with JWT authentication, a master account and token revocation.
// @host localhost:3001
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		port     string
		logLevel string
	)

	cmd := &cobra.Command{
		Use:          "starwars",
		Short:        "Star Wars character catalog API (REST and GraphQL)",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if port != "" {
				cfg.ServerPort = port
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			return run(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "listen port (overrides SERVER_PORT)")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error (overrides LOG_LEVEL)")
	return cmd
}

func run(ctx context.Context, cfg *config.Config) error {
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	if cfg.UsesDefaultSecret() {
		logger.Warn("JWT_SECRET is not set, signing tokens with the built-in default secret")
	}

	blacklist, closeBlacklist := newBlacklist(ctx, cfg, logger)
	defer closeBlacklist()

	// Initialize repositories
	userRepo := repository.NewUserRepository()
	characterRepo := repository.NewCharacterRepository(model.DefaultCharacters())

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	master := auth.MasterIdentity{
		Username: cfg.MasterUsername,
		Password: cfg.MasterPassword,
		TTL:      cfg.MasterTokenTTL,
	}

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService, blacklist, master, cfg.UserTokenTTL)
	userService := service.NewUserService(userRepo, master)
	characterService := service.NewCharacterService(characterRepo)

	schema, err := gql.NewSchema(gql.NewResolver(authService, userService, characterService, logger))
	if err != nil {
		return fmt.Errorf("build graphql schema: %w", err)
	}

	docsURL := swaggerURL(cfg)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	router.Register(
		e,
		logger,
		authService,
		handler.NewAuthHandler(authService),
		handler.NewUserHandler(userService),
		handler.NewCharacterHandler(characterService),
		gql.NewHandler(schema, authService),
	)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			logging.LogError(logger, "graceful shutdown failed", err)
		}
	}()

	addr := ":" + cfg.ServerPort
	logger.Info("server listening",
		slog.String("addr", addr),
		slog.String("docs", docsURL),
		slog.String("blacklist", cfg.BlacklistBackend),
	)
	if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server start: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

// newBlacklist builds the configured revocation backend. An unreachable Redis
// is not fatal: verification fails closed until it comes back.
func newBlacklist(ctx context.Context, cfg *config.Config, logger *slog.Logger) (auth.TokenBlacklist, func()) {
	if cfg.BlacklistBackend == config.BlacklistRedis {
		client := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, auth.BlacklistKeyPrefix)
		if err := client.Ping(ctx); err != nil {
			logging.LogError(logger, "redis unreachable, authenticated requests will fail until it recovers", err,
				slog.String("addr", cfg.RedisAddr))
		}
		return auth.NewRedisBlacklist(client), func() {
			if err := client.Close(); err != nil {
				logging.LogError(logger, "close redis", err)
			}
		}
	}

	blacklist := auth.NewMemoryBlacklist()
	sweepCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		blacklist.Run(sweepCtx, cfg.BlacklistSweepInterval, func(removed int) {
			if n, err := blacklist.Len(sweepCtx); err == nil {
				metrics.SetBlacklistSize(n)
			}
			if removed > 0 {
				logger.Debug("swept expired blacklist entries", slog.Int("removed", removed))
			}
		})
	}()
	return blacklist, func() {
		cancel()
		<-done
	}
}

// swaggerURL points the generated docs at SWAGGER_HOST and returns the UI address.
func swaggerURL(cfg *config.Config) string {
	if cfg.SwaggerHost == "" {
		docs.SwaggerInfo.Host = "localhost:" + cfg.ServerPort
		return "http://" + docs.SwaggerInfo.Host + "/api-docs/index.html"
	}
	base := cfg.SwaggerHost
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}
	docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(base, "http://"), "https://")
	return base + "/api-docs/index.html"
}

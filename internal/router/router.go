package router

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "starwars/docs" // swagger docs

	apperrors "starwars/internal/errors"
	"starwars/internal/gql"
	"starwars/internal/handler"
	"starwars/internal/logging"
	"starwars/internal/metrics"
	"starwars/internal/service"
	"starwars/internal/validation"
)

// authErrorKey carries the verification failure from ParseTokenFunc to the ErrorHandler.
const authErrorKey = "auth_error"

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	logger *slog.Logger,
	authService service.AuthService,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	characterHandler *handler.CharacterHandler,
	graphqlHandler *gql.Handler,
) {
	started := time.Now()

	e.HTTPErrorHandler = errorHandler(e, logger)
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger(logger))
	e.Use(middleware.Recover())
	e.Use(metrics.Middleware())

	e.Validator = &CustomValidator{validator: validation.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"status": "ok",
			"uptime": time.Since(started).Round(time.Second).String(),
		})
	})
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"name":    "Star Wars API",
			"version": "1.0",
			"rest":    "/api",
			"graphql": "/graphql",
			"docs":    "/api-docs/index.html",
		})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/api-docs/*", echoSwagger.WrapHandler)

	e.POST("/graphql", graphqlHandler.Serve)
	e.GET("/graphql", graphqlHandler.Serve)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/token", authHandler.Login)
	api.POST("/users/register", userHandler.Register)

	// Secured routes (require a verified, non-revoked bearer token)
	secured := api.Group("", Authenticate(authService))
	requireMaster := handler.RequireTier(authService, service.TierMaster)

	secured.POST("/auth/logout", authHandler.Logout)
	secured.GET("/users/me", userHandler.Me)
	secured.GET("/users", userHandler.ListUsers, requireMaster)

	secured.GET("/characters", characterHandler.ListCharacters)
	secured.GET("/characters/:id", characterHandler.GetCharacter)
	secured.POST("/characters", characterHandler.CreateCharacter)
	secured.PUT("/characters/:id", characterHandler.UpdateCharacter)
}

// Authenticate extracts the bearer token and verifies it through authService,
// so revoked tokens are rejected before their signature is considered.
func Authenticate(authService service.AuthService) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey: handler.ContextKeyClaims,
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			claims, err := authService.Verify(c.Request().Context(), token)
			if err != nil {
				c.Set(authErrorKey, err)
				return nil, err
			}
			c.Set(handler.ContextKeyToken, token)
			return claims, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			if authErr, ok := c.Get(authErrorKey).(error); ok {
				return handler.ToHTTPError(authErr)
			}
			return handler.ToHTTPError(apperrors.ErrTokenMissing)
		},
	})
}

// errorHandler logs server-side failures before echo renders them.
func errorHandler(e *echo.Echo, logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		cause := err
		var he *echo.HTTPError
		if errors.As(err, &he) {
			cause = he.Internal
			if he.Code < http.StatusInternalServerError {
				cause = nil
			}
		}
		if cause != nil {
			logging.LogError(logger, "request failed", cause,
				slog.String("method", c.Request().Method),
				slog.String("path", c.Path()),
			)
		}
		e.DefaultHTTPErrorHandler(err, c)
	}
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.LogAttrs(c.Request().Context(), slog.LevelInfo, "request",
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("request_id", v.RequestID),
			)
			return nil
		},
	})
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return validation.Struct(cv.validator, i)
}

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"starwars/internal/errors"
	"starwars/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// LoginRequest represents a login request. Username and email are accepted
// as aliases of identifier. Fields may come from a JSON or form body or from
// query parameters.
type LoginRequest struct {
	Identifier string `json:"identifier" form:"identifier" query:"identifier"`
	Username   string `json:"username" form:"username" query:"username"`
	Email      string `json:"email" form:"email" query:"email"`
	Password   string `json:"password" form:"password" query:"password"`
}

func (r LoginRequest) identifier() string {
	for _, v := range []string{r.Identifier, r.Username, r.Email} {
		if v != "" {
			return v
		}
	}
	return ""
}

// TokenResponse represents a login response.
type TokenResponse struct {
	Token string `json:"token"`
}

// LogoutResponse represents a logout confirmation.
type LogoutResponse struct {
	Message string `json:"message"`
	User    string `json:"user"`
}

// Login godoc
// @Summary Issue a bearer token
// @Description Tries the master identity first, then registered users.
// @Tags auth
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param request body LoginRequest false "Login credentials"
// @Success 200 {object} TokenResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/token [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid query parameters",
			Code:  "INVALID_REQUEST",
		})
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
	}

	identifier := req.identifier()
	if identifier == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "identifier and password are required",
			Code:  "VALIDATION_ERROR",
		})
	}

	token, err := h.authService.Login(c.Request().Context(), identifier, req.Password)
	if err != nil {
		return ToHTTPError(err)
	}

	return c.JSON(http.StatusOK, TokenResponse{Token: token})
}

// Logout godoc
// @Summary Revoke the presented bearer token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} LogoutResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	claims := ClaimsFrom(c)
	if claims == nil {
		return ToHTTPError(errors.ErrTokenMissing)
	}

	if err := h.authService.Revoke(c.Request().Context(), TokenFrom(c)); err != nil {
		return ToHTTPError(err)
	}

	return c.JSON(http.StatusOK, LogoutResponse{
		Message: "logged out successfully",
		User:    claims.Username,
	})
}

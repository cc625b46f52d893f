package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"starwars/internal/errors"
	"starwars/internal/service"
)

// UserHandler bundles user HTTP handlers.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// Register godoc
// @Summary Register a new user
// @Tags users
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param request body service.RegisterInput true "Registration data"
// @Success 201 {object} model.UserView
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users/register [post]
func (h *UserHandler) Register(c echo.Context) error {
	var req service.RegisterInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
	}

	user, err := h.svc.Register(c.Request().Context(), req)
	if err != nil {
		return ToHTTPError(err)
	}
	return c.JSON(http.StatusCreated, user)
}

// Me godoc
// @Summary Current user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.UserView
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	user, err := h.svc.Me(c.Request().Context(), ClaimsFrom(c))
	if err != nil {
		return ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, user)
}

// ListUsers godoc
// @Summary List registered users
// @Description Master only. Passwords are never returned.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.UserView
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /users [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.svc.List(c.Request().Context())
	if err != nil {
		return ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, users)
}

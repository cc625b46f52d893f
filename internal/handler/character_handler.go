package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"starwars/internal/errors"
	"starwars/internal/model"
	"starwars/internal/service"
)

// CharacterHandler handles character catalog endpoints.
type CharacterHandler struct {
	svc service.CharacterService
}

// NewCharacterHandler creates a new character handler.
func NewCharacterHandler(svc service.CharacterService) *CharacterHandler {
	return &CharacterHandler{svc: svc}
}

func parseID(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid id",
			Code:  "INVALID_ID",
		})
	}
	return id, nil
}

// ListCharacters godoc
// @Summary List characters
// @Tags characters
// @Produce json
// @Security BearerAuth
// @Param name query string false "Name contains (case-insensitive)"
// @Param status query string false "Exact status" Enums(Vivo, Falecido, Falecida, Desconhecido)
// @Param location query string false "Location contains (case-insensitive)"
// @Success 200 {array} model.Character
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /characters [get]
func (h *CharacterHandler) ListCharacters(c echo.Context) error {
	var filter model.CharacterFilter
	if err := c.Bind(&filter); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid query parameters",
			Code:  "INVALID_REQUEST",
		})
	}
	if err := c.Validate(&filter); err != nil {
		return ToHTTPError(err)
	}

	characters, err := h.svc.List(c.Request().Context(), filter)
	if err != nil {
		return ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, characters)
}

// GetCharacter godoc
// @Summary Get character by id
// @Tags characters
// @Produce json
// @Security BearerAuth
// @Param id path int true "Character ID"
// @Success 200 {object} model.Character
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /characters/{id} [get]
func (h *CharacterHandler) GetCharacter(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	character, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, character)
}

// CreateCharacter godoc
// @Summary Create character
// @Tags characters
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param character body model.CharacterInput true "Character payload"
// @Success 201 {object} model.Character
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /characters [post]
func (h *CharacterHandler) CreateCharacter(c echo.Context) error {
	var input model.CharacterInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
	}

	character, err := h.svc.Create(c.Request().Context(), input)
	if err != nil {
		return ToHTTPError(err)
	}
	return c.JSON(http.StatusCreated, character)
}

// UpdateCharacter godoc
// @Summary Update character
// @Description Merges the provided fields into the character.
// @Tags characters
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Character ID"
// @Param character body model.CharacterPatch true "Fields to change"
// @Success 200 {object} model.Character
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /characters/{id} [put]
func (h *CharacterHandler) UpdateCharacter(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var patch model.CharacterPatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
	}

	character, err := h.svc.Update(c.Request().Context(), id, patch)
	if err != nil {
		return ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, character)
}

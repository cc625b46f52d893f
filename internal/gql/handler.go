package gql

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/graphql-go/graphql"
	"github.com/labstack/echo/v4"

	"starwars/internal/errors"
	"starwars/internal/service"
)

// Request is a GraphQL request as sent over HTTP.
type Request struct {
	Query         string                 `json:"query"`
	Variables     map[string]interface{} `json:"variables"`
	OperationName string                 `json:"operationName"`
}

// Handler serves the schema over HTTP.
type Handler struct {
	schema      graphql.Schema
	authService service.AuthService
}

// NewHandler creates a GraphQL HTTP handler.
func NewHandler(schema graphql.Schema, authService service.AuthService) *Handler {
	return &Handler{schema: schema, authService: authService}
}

// Serve godoc
// @Summary GraphQL endpoint
// @Description Accepts {query, variables, operationName} as JSON, or query parameters on GET.
// @Tags graphql
// @Accept json
// @Produce json
// @Param request body Request false "GraphQL request"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Router /graphql [post]
func (h *Handler) Serve(c echo.Context) error {
	req, err := readRequest(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: err.Error(),
			Code:  "INVALID_REQUEST",
		})
	}
	if req.Query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "query is required",
			Code:  "INVALID_REQUEST",
		})
	}

	ctx := c.Request().Context()
	if token := bearerToken(c.Request()); token != "" {
		claims, verifyErr := h.authService.Verify(ctx, token)
		ctx = WithIdentity(ctx, claims, token, verifyErr)
	}

	result := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        ctx,
	})
	return c.JSON(http.StatusOK, result)
}

func readRequest(c echo.Context) (Request, error) {
	var req Request
	if c.Request().Method == http.MethodGet {
		req.Query = c.QueryParam("query")
		req.OperationName = c.QueryParam("operationName")
		if vars := c.QueryParam("variables"); vars != "" {
			if err := json.Unmarshal([]byte(vars), &req.Variables); err != nil {
				return req, errInvalidVariables
			}
		}
		return req, nil
	}
	if err := c.Bind(&req); err != nil {
		return req, errInvalidBody
	}
	return req, nil
}

type requestError string

func (e requestError) Error() string { return string(e) }

const (
	errInvalidVariables requestError = "variables must be a JSON object"
	errInvalidBody      requestError = "invalid request body"
)

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(r *http.Request) string {
	header := r.Header.Get(echo.HeaderAuthorization)
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

package router

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"starwars/internal/auth"
	"starwars/internal/errors"
	"starwars/internal/gql"
	"starwars/internal/handler"
	"starwars/internal/model"
	"starwars/internal/repository"
	"starwars/internal/service"
)

func newServer(t *testing.T) *echo.Echo {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	master := auth.MasterIdentity{Username: "Rogerio", Password: "123456", TTL: 2 * time.Hour}
	userRepo := repository.NewUserRepository()

	authService := service.NewAuthService(userRepo, auth.NewJWTService("test-secret"), auth.NewMemoryBlacklist(), master, time.Hour)
	userService := service.NewUserService(userRepo, master)
	characterService := service.NewCharacterService(repository.NewCharacterRepository(model.DefaultCharacters()))

	schema, err := gql.NewSchema(gql.NewResolver(authService, userService, characterService, logger))
	require.NoError(t, err)

	e := echo.New()
	Register(
		e,
		logger,
		authService,
		handler.NewAuthHandler(authService),
		handler.NewUserHandler(userService),
		handler.NewCharacterHandler(characterService),
		gql.NewHandler(schema, authService),
	)
	return e
}

func call(e *echo.Echo, method, path, token, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, e *echo.Echo, identifier, password string) string {
	t.Helper()
	rec := call(e, http.MethodPost, "/api/auth/token", "", `{"identifier":"`+identifier+`","password":"`+password+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp handler.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Token
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp errors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp.Code
}

func TestNormalUserCannotListUsers(t *testing.T) {
	e := newServer(t)

	rec := call(e, http.MethodPost, "/api/users/register", "", `{"username":"usuarionormal","password":"senha123"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	token := login(t, e, "usuarionormal", "senha123")

	rec = call(e, http.MethodGet, "/api/users/me", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"usuarionormal"`)

	rec = call(e, http.MethodGet, "/api/users", token, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", errorCode(t, rec))
}

func TestMasterToken(t *testing.T) {
	e := newServer(t)
	token := login(t, e, "Rogerio", "123456")

	claims := &auth.Claims{}
	_, _, err := jwt.NewParser().ParseUnverified(token, claims)
	require.NoError(t, err)
	assert.True(t, claims.Master)
	assert.Equal(t, auth.MasterID, claims.UserID)
	assert.WithinDuration(t, time.Now().Add(2*time.Hour), claims.ExpiresAt.Time, time.Minute)

	rec := call(e, http.MethodGet, "/api/users", token, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLogoutRevokesToken(t *testing.T) {
	e := newServer(t)
	token := login(t, e, "Rogerio", "123456")

	rec := call(e, http.MethodPost, "/api/auth/logout", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"user":"Rogerio"`)

	rec = call(e, http.MethodGet, "/api/users/me", token, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "TOKEN_REVOKED", errorCode(t, rec))

	// A fresh login still works.
	fresh := login(t, e, "Rogerio", "123456")
	rec = call(e, http.MethodGet, "/api/users/me", fresh, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthenticationFailures(t *testing.T) {
	e := newServer(t)

	rec := call(e, http.MethodGet, "/api/characters", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "TOKEN_MISSING", errorCode(t, rec))

	rec = call(e, http.MethodGet, "/api/characters", "garbage", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_TOKEN", errorCode(t, rec))

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, &auth.Claims{
		Username:         "Rogerio",
		Master:           true,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	signed, err := forged.SignedString([]byte("other-secret"))
	require.NoError(t, err)
	rec = call(e, http.MethodGet, "/api/users", signed, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_TOKEN", errorCode(t, rec))
}

func TestCharacterLifecycle(t *testing.T) {
	e := newServer(t)
	token := login(t, e, "Rogerio", "123456")

	rec := call(e, http.MethodGet, "/api/characters", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []model.Character
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 15)

	rec = call(e, http.MethodPost, "/api/characters", token, `{"name":"Din Djarin","status":"Vivo","location":"Mandalore","lastSeen":"The Mandalorian"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = call(e, http.MethodPut, "/api/characters/16", token, `{"location":"Nevarro"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"location":"Nevarro"`)
	assert.Contains(t, rec.Body.String(), `"name":"Din Djarin"`)

	rec = call(e, http.MethodGet, "/api/characters/404", token, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "CHARACTER_NOT_FOUND", errorCode(t, rec))

	rec = call(e, http.MethodPost, "/api/characters", token, `{"name":"Sem Status"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, rec))
}

func TestGraphQLEndpoint(t *testing.T) {
	e := newServer(t)
	token := login(t, e, "Rogerio", "123456")

	rec := call(e, http.MethodPost, "/graphql", token, `{"query":"{ me { username master } }"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"me":{"username":"Rogerio","master":true}}}`, rec.Body.String())

	rec = call(e, http.MethodGet, "/graphql?query="+"%7B%20me%20%7B%20id%20%7D%20%7D", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"UNAUTHENTICATED"`)

	rec = call(e, http.MethodPost, "/graphql", "", `{"variables":{}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPublicEndpoints(t *testing.T) {
	e := newServer(t)

	rec := call(e, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = call(e, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	rec = call(e, http.MethodGet, "/", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"graphql":"/graphql"`)

	rec = call(e, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "starwars_http_requests_total")

	rec = call(e, http.MethodGet, "/api-docs/doc.json", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/characters/{id}")
}

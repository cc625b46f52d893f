package gql

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"starwars/internal/auth"
	"starwars/internal/model"
	"starwars/internal/repository"
	"starwars/internal/service"
)

type fixture struct {
	schema graphql.Schema
	auth   service.AuthService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	master := auth.MasterIdentity{Username: "Rogerio", Password: "123456", TTL: 2 * time.Hour}
	users := repository.NewUserRepository()
	authService := service.NewAuthService(users, auth.NewJWTService("test-secret"), auth.NewMemoryBlacklist(), master, time.Hour)
	userService := service.NewUserService(users, master)
	characterService := service.NewCharacterService(repository.NewCharacterRepository(model.DefaultCharacters()))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	schema, err := NewSchema(NewResolver(authService, userService, characterService, logger))
	require.NoError(t, err)

	return &fixture{schema: schema, auth: authService}
}

// do runs query as the holder of token. An empty token runs anonymously.
func (f *fixture) do(t *testing.T, token, query string, vars map[string]interface{}) *graphql.Result {
	t.Helper()
	ctx := context.Background()
	if token != "" {
		claims, err := f.auth.Verify(ctx, token)
		ctx = WithIdentity(ctx, claims, token, err)
	}
	return graphql.Do(graphql.Params{
		Schema:         f.schema,
		RequestString:  query,
		VariableValues: vars,
		Context:        ctx,
	})
}

func (f *fixture) login(t *testing.T, identifier, password string) string {
	t.Helper()
	res := f.do(t, "", `mutation($u: String!, $p: String!) { login(identifier: $u, password: $p) { token } }`,
		map[string]interface{}{"u": identifier, "p": password})
	require.Empty(t, res.Errors)
	return res.Data.(map[string]interface{})["login"].(map[string]interface{})["token"].(string)
}

func errorCode(t *testing.T, res *graphql.Result) (string, string) {
	t.Helper()
	require.NotEmpty(t, res.Errors)
	ext := res.Errors[0].Extensions
	require.NotNil(t, ext)
	return ext["code"].(string), ext["reason"].(string)
}

func TestMe(t *testing.T) {
	f := newFixture(t)

	t.Run("anonymous", func(t *testing.T) {
		res := f.do(t, "", `{ me { id username } }`, nil)
		code, reason := errorCode(t, res)
		assert.Equal(t, CodeUnauthenticated, code)
		assert.Equal(t, "TOKEN_MISSING", reason)
	})

	t.Run("master", func(t *testing.T) {
		token := f.login(t, "rogerio", "123456")
		res := f.do(t, token, `{ me { id username master } }`, nil)
		require.Empty(t, res.Errors)
		me := res.Data.(map[string]interface{})["me"].(map[string]interface{})
		assert.Equal(t, "0", me["id"])
		assert.Equal(t, "Rogerio", me["username"])
		assert.Equal(t, true, me["master"])
	})

	t.Run("garbage token", func(t *testing.T) {
		res := f.do(t, "not-a-jwt", `{ me { id } }`, nil)
		code, reason := errorCode(t, res)
		assert.Equal(t, CodeUnauthenticated, code)
		assert.Equal(t, "INVALID_TOKEN", reason)
	})
}

func TestRegisterLoginAndUsers(t *testing.T) {
	f := newFixture(t)

	res := f.do(t, "", `mutation { register(username: "usuarionormal", password: "senha123", email: "n@x.com") { id username email master } }`, nil)
	require.Empty(t, res.Errors)
	user := res.Data.(map[string]interface{})["register"].(map[string]interface{})
	assert.Equal(t, "1", user["id"])
	assert.Equal(t, "n@x.com", user["email"])
	assert.Equal(t, false, user["master"])

	res = f.do(t, "", `mutation { register(username: "usuarionormal", password: "x") { id } }`, nil)
	code, reason := errorCode(t, res)
	assert.Equal(t, CodeConflict, code)
	assert.Equal(t, "DUPLICATE_USERNAME", reason)

	res = f.do(t, "", `mutation { login(identifier: "usuarionormal", password: "wrong") { token } }`, nil)
	code, _ = errorCode(t, res)
	assert.Equal(t, CodeUnauthenticated, code)

	userToken := f.login(t, "n@x.com", "senha123")
	res = f.do(t, userToken, `{ users { id } }`, nil)
	code, reason = errorCode(t, res)
	assert.Equal(t, CodeForbidden, code)
	assert.Equal(t, "FORBIDDEN", reason)

	masterToken := f.login(t, "Rogerio", "123456")
	res = f.do(t, masterToken, `{ users { id username } }`, nil)
	require.Empty(t, res.Errors)
	list := res.Data.(map[string]interface{})["users"].([]interface{})
	require.Len(t, list, 1)
	assert.Equal(t, "usuarionormal", list[0].(map[string]interface{})["username"])
}

func TestLogoutRevokesToken(t *testing.T) {
	f := newFixture(t)
	token := f.login(t, "Rogerio", "123456")

	res := f.do(t, token, `mutation { logout { message user } }`, nil)
	require.Empty(t, res.Errors)
	payload := res.Data.(map[string]interface{})["logout"].(map[string]interface{})
	assert.Equal(t, "Rogerio", payload["user"])

	res = f.do(t, token, `{ me { id } }`, nil)
	code, reason := errorCode(t, res)
	assert.Equal(t, CodeUnauthenticated, code)
	assert.Equal(t, "TOKEN_REVOKED", reason)
}

func TestCharacters(t *testing.T) {
	f := newFixture(t)
	token := f.login(t, "Rogerio", "123456")

	t.Run("requires authentication", func(t *testing.T) {
		res := f.do(t, "", `{ characters { id } }`, nil)
		code, _ := errorCode(t, res)
		assert.Equal(t, CodeUnauthenticated, code)
	})

	t.Run("filter by status", func(t *testing.T) {
		res := f.do(t, token, `{ characters(filter: {status: Falecido}) { name status } }`, nil)
		require.Empty(t, res.Errors)
		list := res.Data.(map[string]interface{})["characters"].([]interface{})
		require.NotEmpty(t, list)
		for _, c := range list {
			assert.Equal(t, "Falecido", c.(map[string]interface{})["status"])
		}
	})

	t.Run("by id and missing id", func(t *testing.T) {
		res := f.do(t, token, `{ character(id: "1") { id name } missing: character(id: "9999") { id } }`, nil)
		require.Empty(t, res.Errors)
		data := res.Data.(map[string]interface{})
		assert.Equal(t, "1", data["character"].(map[string]interface{})["id"])
		assert.Nil(t, data["missing"])
	})

	t.Run("by ids keeps order and skips missing", func(t *testing.T) {
		res := f.do(t, token, `{ charactersByIds(ids: ["3", "9999", "1"]) { id } }`, nil)
		require.Empty(t, res.Errors)
		list := res.Data.(map[string]interface{})["charactersByIds"].([]interface{})
		require.Len(t, list, 2)
		assert.Equal(t, "3", list[0].(map[string]interface{})["id"])
		assert.Equal(t, "1", list[1].(map[string]interface{})["id"])
	})

	t.Run("create and update", func(t *testing.T) {
		res := f.do(t, token, `mutation {
			createCharacter(input: {name: "Grogu", status: Vivo, location: "Tython", lastSeen: "The Book of Boba Fett"}) { id name status createdAt }
		}`, nil)
		require.Empty(t, res.Errors)
		created := res.Data.(map[string]interface{})["createCharacter"].(map[string]interface{})
		assert.Equal(t, "16", created["id"])
		_, err := time.Parse(time.RFC3339, created["createdAt"].(string))
		assert.NoError(t, err)

		res = f.do(t, token, `mutation { updateCharacter(id: "16", input: {location: "Nevarro"}) { name location } }`, nil)
		require.Empty(t, res.Errors)
		updated := res.Data.(map[string]interface{})["updateCharacter"].(map[string]interface{})
		assert.Equal(t, "Grogu", updated["name"])
		assert.Equal(t, "Nevarro", updated["location"])

		res = f.do(t, token, `mutation { updateCharacter(id: "9999", input: {name: "x"}) { id } }`, nil)
		require.Empty(t, res.Errors)
		assert.Nil(t, res.Data.(map[string]interface{})["updateCharacter"])
	})

	t.Run("empty name is bad input", func(t *testing.T) {
		res := f.do(t, token, `mutation {
			createCharacter(input: {name: "", status: Vivo, location: "x", lastSeen: "y"}) { id }
		}`, nil)
		code, reason := errorCode(t, res)
		assert.Equal(t, CodeBadUserInput, code)
		assert.Equal(t, "VALIDATION_ERROR", reason)
	})
}

func TestErrorExtensionsSerialize(t *testing.T) {
	f := newFixture(t)
	res := f.do(t, "", `{ me { id } }`, nil)

	raw, err := json.Marshal(res)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"code":"UNAUTHENTICATED"`)
}

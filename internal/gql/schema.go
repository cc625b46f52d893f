// Package gql exposes the catalog and auth operations over GraphQL.
package gql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/graphql-go/graphql"

	apperrors "starwars/internal/errors"
	"starwars/internal/logging"
	"starwars/internal/model"
	"starwars/internal/service"
)

var characterStatusEnum = graphql.NewEnum(graphql.EnumConfig{
	Name: "CharacterStatus",
	Values: graphql.EnumValueConfigMap{
		string(model.StatusAlive):       &graphql.EnumValueConfig{Value: model.StatusAlive},
		string(model.StatusDeceased):    &graphql.EnumValueConfig{Value: model.StatusDeceased},
		string(model.StatusDeceasedFem): &graphql.EnumValueConfig{Value: model.StatusDeceasedFem},
		string(model.StatusUnknown):     &graphql.EnumValueConfig{Value: model.StatusUnknown},
	},
})

var userType = graphql.NewObject(graphql.ObjectConfig{
	Name: "User",
	Fields: graphql.Fields{
		"id":       &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"username": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"email":    &graphql.Field{Type: graphql.String},
		"master":   &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
	},
})

var characterType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Character",
	Fields: graphql.Fields{
		"id":        &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"name":      &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"status":    &graphql.Field{Type: graphql.NewNonNull(characterStatusEnum)},
		"location":  &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"lastSeen":  &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"createdAt": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"updatedAt": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
	},
})

var authPayloadType = graphql.NewObject(graphql.ObjectConfig{
	Name: "AuthPayload",
	Fields: graphql.Fields{
		"token": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
	},
})

var logoutPayloadType = graphql.NewObject(graphql.ObjectConfig{
	Name: "LogoutPayload",
	Fields: graphql.Fields{
		"message": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"user":    &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
	},
})

var characterFilterInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "CharacterFilter",
	Fields: graphql.InputObjectConfigFieldMap{
		"name":     &graphql.InputObjectFieldConfig{Type: graphql.String},
		"status":   &graphql.InputObjectFieldConfig{Type: characterStatusEnum},
		"location": &graphql.InputObjectFieldConfig{Type: graphql.String},
	},
})

var characterInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "CharacterInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"name":     &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"status":   &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(characterStatusEnum)},
		"location": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"lastSeen": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
	},
})

var characterUpdateInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "CharacterUpdateInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"name":     &graphql.InputObjectFieldConfig{Type: graphql.String},
		"status":   &graphql.InputObjectFieldConfig{Type: characterStatusEnum},
		"location": &graphql.InputObjectFieldConfig{Type: graphql.String},
		"lastSeen": &graphql.InputObjectFieldConfig{Type: graphql.String},
	},
})

// Resolver holds the services the schema resolves against.
type Resolver struct {
	auth       service.AuthService
	users      service.UserService
	characters service.CharacterService
	logger     *slog.Logger
}

// NewResolver creates a resolver over the given services.
func NewResolver(
	authService service.AuthService,
	userService service.UserService,
	characterService service.CharacterService,
	logger *slog.Logger,
) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		auth:       authService,
		users:      userService,
		characters: characterService,
		logger:     logger,
	}
}

// NewSchema builds the executable schema.
func NewSchema(r *Resolver) (graphql.Schema, error) {
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"me": &graphql.Field{
				Type:    userType,
				Resolve: r.me,
			},
			"users": &graphql.Field{
				Type:    graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(userType))),
				Resolve: r.listUsers,
			},
			"character": &graphql.Field{
				Type: characterType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: r.character,
			},
			"characters": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(characterType))),
				Args: graphql.FieldConfigArgument{
					"filter": &graphql.ArgumentConfig{Type: characterFilterInput},
				},
				Resolve: r.listCharacters,
			},
			"charactersByIds": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(characterType))),
				Args: graphql.FieldConfigArgument{
					"ids": &graphql.ArgumentConfig{
						Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.ID))),
					},
				},
				Resolve: r.charactersByIDs,
			},
		},
	})

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"login": &graphql.Field{
				Type: graphql.NewNonNull(authPayloadType),
				Args: graphql.FieldConfigArgument{
					"identifier": &graphql.ArgumentConfig{Type: graphql.String},
					"username":   &graphql.ArgumentConfig{Type: graphql.String},
					"password":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: r.login,
			},
			"register": &graphql.Field{
				Type: graphql.NewNonNull(userType),
				Args: graphql.FieldConfigArgument{
					"username": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"password": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"email":    &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: r.register,
			},
			"logout": &graphql.Field{
				Type:    graphql.NewNonNull(logoutPayloadType),
				Resolve: r.logout,
			},
			"createCharacter": &graphql.Field{
				Type: graphql.NewNonNull(characterType),
				Args: graphql.FieldConfigArgument{
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(characterInput)},
				},
				Resolve: r.createCharacter,
			},
			"updateCharacter": &graphql.Field{
				Type: characterType,
				Args: graphql.FieldConfigArgument{
					"id":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(characterUpdateInput)},
				},
				Resolve: r.updateCharacter,
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    query,
		Mutation: mutation,
	})
}

// fail converts err for the response and logs failures the client cannot fix.
func (r *Resolver) fail(ctx context.Context, op string, err error) error {
	gqlErr := fromDomain(err)
	if gqlErr.Code == CodeInternal {
		logging.LogError(r.logger, "graphql resolver failed", err, slog.String("operation", op))
	}
	return gqlErr
}

func (r *Resolver) me(p graphql.ResolveParams) (interface{}, error) {
	claims, _, err := requireAuth(p.Context)
	if err != nil {
		return nil, r.fail(p.Context, "me", err)
	}
	user, err := r.users.Me(p.Context, claims)
	if err != nil {
		return nil, r.fail(p.Context, "me", err)
	}
	return userToMap(*user), nil
}

func (r *Resolver) listUsers(p graphql.ResolveParams) (interface{}, error) {
	claims, _, err := requireAuth(p.Context)
	if err == nil {
		err = r.auth.Authorize(claims, service.TierMaster)
	}
	if err != nil {
		return nil, r.fail(p.Context, "users", err)
	}
	users, err := r.users.List(p.Context)
	if err != nil {
		return nil, r.fail(p.Context, "users", err)
	}
	out := make([]interface{}, len(users))
	for i, u := range users {
		out[i] = userToMap(u)
	}
	return out, nil
}

func (r *Resolver) character(p graphql.ResolveParams) (interface{}, error) {
	if _, _, err := requireAuth(p.Context); err != nil {
		return nil, r.fail(p.Context, "character", err)
	}
	id, err := parseID(p.Args["id"])
	if err != nil {
		return nil, r.fail(p.Context, "character", err)
	}
	character, err := r.characters.Get(p.Context, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrCharacterNotFound) {
			return nil, nil
		}
		return nil, r.fail(p.Context, "character", err)
	}
	return characterToMap(*character), nil
}

func (r *Resolver) listCharacters(p graphql.ResolveParams) (interface{}, error) {
	if _, _, err := requireAuth(p.Context); err != nil {
		return nil, r.fail(p.Context, "characters", err)
	}
	var filter model.CharacterFilter
	if raw, ok := p.Args["filter"].(map[string]interface{}); ok {
		filter.Name, _ = stringField(raw, "name")
		status, _ := stringField(raw, "status")
		filter.Status = model.CharacterStatus(status)
		filter.Location, _ = stringField(raw, "location")
	}
	characters, err := r.characters.List(p.Context, filter)
	if err != nil {
		return nil, r.fail(p.Context, "characters", err)
	}
	return charactersToList(characters), nil
}

func (r *Resolver) charactersByIDs(p graphql.ResolveParams) (interface{}, error) {
	if _, _, err := requireAuth(p.Context); err != nil {
		return nil, r.fail(p.Context, "charactersByIds", err)
	}
	rawIDs, _ := p.Args["ids"].([]interface{})
	ids := make([]int, 0, len(rawIDs))
	for _, raw := range rawIDs {
		id, err := parseID(raw)
		if err != nil {
			return nil, r.fail(p.Context, "charactersByIds", err)
		}
		ids = append(ids, id)
	}
	characters, err := r.characters.GetMany(p.Context, ids)
	if err != nil {
		return nil, r.fail(p.Context, "charactersByIds", err)
	}
	return charactersToList(characters), nil
}

func (r *Resolver) login(p graphql.ResolveParams) (interface{}, error) {
	identifier, _ := stringField(p.Args, "identifier")
	if identifier == "" {
		identifier, _ = stringField(p.Args, "username")
	}
	password, _ := stringField(p.Args, "password")

	token, err := r.auth.Login(p.Context, identifier, password)
	if err != nil {
		return nil, r.fail(p.Context, "login", err)
	}
	return map[string]interface{}{"token": token}, nil
}

func (r *Resolver) register(p graphql.ResolveParams) (interface{}, error) {
	var input service.RegisterInput
	input.Username, _ = stringField(p.Args, "username")
	input.Password, _ = stringField(p.Args, "password")
	input.Email, _ = stringField(p.Args, "email")

	user, err := r.users.Register(p.Context, input)
	if err != nil {
		return nil, r.fail(p.Context, "register", err)
	}
	return userToMap(*user), nil
}

func (r *Resolver) logout(p graphql.ResolveParams) (interface{}, error) {
	claims, token, err := requireAuth(p.Context)
	if err != nil {
		return nil, r.fail(p.Context, "logout", err)
	}
	if err := r.auth.Revoke(p.Context, token); err != nil {
		return nil, r.fail(p.Context, "logout", err)
	}
	return map[string]interface{}{
		"message": "logged out successfully",
		"user":    claims.Username,
	}, nil
}

func (r *Resolver) createCharacter(p graphql.ResolveParams) (interface{}, error) {
	if _, _, err := requireAuth(p.Context); err != nil {
		return nil, r.fail(p.Context, "createCharacter", err)
	}
	raw, _ := p.Args["input"].(map[string]interface{})
	var input model.CharacterInput
	input.Name, _ = stringField(raw, "name")
	status, _ := stringField(raw, "status")
	input.Status = model.CharacterStatus(status)
	input.Location, _ = stringField(raw, "location")
	input.LastSeen, _ = stringField(raw, "lastSeen")

	character, err := r.characters.Create(p.Context, input)
	if err != nil {
		return nil, r.fail(p.Context, "createCharacter", err)
	}
	return characterToMap(*character), nil
}

func (r *Resolver) updateCharacter(p graphql.ResolveParams) (interface{}, error) {
	if _, _, err := requireAuth(p.Context); err != nil {
		return nil, r.fail(p.Context, "updateCharacter", err)
	}
	id, err := parseID(p.Args["id"])
	if err != nil {
		return nil, r.fail(p.Context, "updateCharacter", err)
	}
	raw, _ := p.Args["input"].(map[string]interface{})
	var patch model.CharacterPatch
	if v, ok := stringField(raw, "name"); ok {
		patch.Name = &v
	}
	if v, ok := stringField(raw, "status"); ok {
		status := model.CharacterStatus(v)
		patch.Status = &status
	}
	if v, ok := stringField(raw, "location"); ok {
		patch.Location = &v
	}
	if v, ok := stringField(raw, "lastSeen"); ok {
		patch.LastSeen = &v
	}

	character, err := r.characters.Update(p.Context, id, patch)
	if err != nil {
		if errors.Is(err, apperrors.ErrCharacterNotFound) {
			return nil, nil
		}
		return nil, r.fail(p.Context, "updateCharacter", err)
	}
	return characterToMap(*character), nil
}

// stringField reads a string argument. Enum values arrive as model.CharacterStatus.
func stringField(m map[string]interface{}, key string) (string, bool) {
	switch v := m[key].(type) {
	case string:
		return v, true
	case model.CharacterStatus:
		return string(v), true
	default:
		return "", false
	}
}

func parseID(raw interface{}) (int, error) {
	var id int
	switch v := raw.(type) {
	case int:
		id = v
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("%w: invalid id %q", apperrors.ErrValidation, v)
		}
		id = n
	default:
		return 0, fmt.Errorf("%w: invalid id", apperrors.ErrValidation)
	}
	if id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %d", apperrors.ErrValidation, id)
	}
	return id, nil
}

func userToMap(u model.UserView) map[string]interface{} {
	var email interface{}
	if u.Email != "" {
		email = u.Email
	}
	return map[string]interface{}{
		"id":       u.ID,
		"username": u.Username,
		"email":    email,
		"master":   u.Master,
	}
}

func characterToMap(c model.Character) map[string]interface{} {
	return map[string]interface{}{
		"id":        c.ID,
		"name":      c.Name,
		"status":    c.Status,
		"location":  c.Location,
		"lastSeen":  c.LastSeen,
		"createdAt": c.CreatedAt.UTC().Format(time.RFC3339),
		"updatedAt": c.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func charactersToList(characters []model.Character) []interface{} {
	out := make([]interface{}, len(characters))
	for i, c := range characters {
		out[i] = characterToMap(c)
	}
	return out
}

package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/oops"
	"golang.org/x/crypto/bcrypt"

	"starwars/internal/auth"
	apperrors "starwars/internal/errors"
	"starwars/internal/model"
	"starwars/internal/repository"
	"starwars/internal/validation"
)

const bcryptCost = 10

// RegisterInput carries the fields accepted at registration.
type RegisterInput struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
	Email    string `json:"email" form:"email" validate:"omitempty,email"`
}

// UserService exposes credential store operations to the API surface.
type UserService interface {
	Register(ctx context.Context, input RegisterInput) (*model.UserView, error)
	Me(ctx context.Context, claims *auth.Claims) (*model.UserView, error)
	List(ctx context.Context) ([]model.UserView, error)
}

type userService struct {
	repo      repository.UserRepository
	master    auth.MasterIdentity
	validator *validator.Validate
}

// NewUserService builds a UserService on top of the credential store.
func NewUserService(repo repository.UserRepository, master auth.MasterIdentity) UserService {
	return &userService{repo: repo, master: master, validator: validation.New()}
}

// Register hashes the password and stores a new user.
// The master username is reserved so no stored user can shadow it.
func (s *userService) Register(ctx context.Context, input RegisterInput) (*model.UserView, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)
	if err := validation.Struct(s.validator, input); err != nil {
		return nil, err
	}
	if s.master.Reserves(input.Username) {
		return nil, apperrors.ErrDuplicateUsername
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, oops.Code("PASSWORD_HASH_FAILED").Wrap(err)
	}

	user := &model.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	view := user.View()
	return &view, nil
}

func (s *userService) Me(ctx context.Context, claims *auth.Claims) (*model.UserView, error) {
	if claims == nil {
		return nil, apperrors.ErrTokenMissing
	}
	if claims.Master {
		view := s.master.View()
		return &view, nil
	}
	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("find user %d: %w", claims.UserID, err)
	}
	view := user.View()
	return &view, nil
}

func (s *userService) List(ctx context.Context) ([]model.UserView, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]model.UserView, 0, len(users))
	for i := range users {
		views = append(views, users[i].View())
	}
	return views, nil
}

package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "starwars/internal/errors"
	"starwars/internal/model"
	"starwars/internal/repository"
	"starwars/internal/validation"
)

// CharacterService exposes the character catalog.
type CharacterService interface {
	List(ctx context.Context, filter model.CharacterFilter) ([]model.Character, error)
	Get(ctx context.Context, id int) (*model.Character, error)
	// GetMany returns the characters found for ids in request order, skipping misses.
	GetMany(ctx context.Context, ids []int) ([]model.Character, error)
	Create(ctx context.Context, input model.CharacterInput) (*model.Character, error)
	Update(ctx context.Context, id int, patch model.CharacterPatch) (*model.Character, error)
}

type characterService struct {
	repo      repository.CharacterRepository
	validator *validator.Validate
}

// NewCharacterService builds a CharacterService.
func NewCharacterService(repo repository.CharacterRepository) CharacterService {
	return &characterService{repo: repo, validator: validation.New()}
}

func (s *characterService) List(ctx context.Context, filter model.CharacterFilter) ([]model.Character, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	name := strings.ToLower(filter.Name)
	location := strings.ToLower(filter.Location)

	out := make([]model.Character, 0, len(all))
	for _, c := range all {
		if name != "" && !strings.Contains(strings.ToLower(c.Name), name) {
			continue
		}
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		if location != "" && !strings.Contains(strings.ToLower(c.Location), location) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *characterService) Get(ctx context.Context, id int) (*model.Character, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *characterService) GetMany(ctx context.Context, ids []int) ([]model.Character, error) {
	out := make([]model.Character, 0, len(ids))
	for _, id := range ids {
		c, err := s.repo.FindByID(ctx, id)
		if errors.Is(err, apperrors.ErrCharacterNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, nil
}

func (s *characterService) Create(ctx context.Context, input model.CharacterInput) (*model.Character, error) {
	if err := validation.Struct(s.validator, input); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, input)
}

func (s *characterService) Update(ctx context.Context, id int, patch model.CharacterPatch) (*model.Character, error) {
	if err := validation.Struct(s.validator, patch); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, patch)
}

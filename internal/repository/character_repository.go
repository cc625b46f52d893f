package repository

import (
	"context"
	"sync"
	"time"

	apperrors "starwars/internal/errors"
	"starwars/internal/model"
)

// CharacterRepository defines character store operations.
type CharacterRepository interface {
	List(ctx context.Context) ([]model.Character, error)
	FindByID(ctx context.Context, id int) (*model.Character, error)
	Create(ctx context.Context, input model.CharacterInput) (*model.Character, error)
	Update(ctx context.Context, id int, patch model.CharacterPatch) (*model.Character, error)
}

type characterRepository struct {
	mu         sync.RWMutex
	characters []model.Character
	nextID     int
	now        func() time.Time
}

// NewCharacterRepository builds an in-memory store holding seed, in id order.
func NewCharacterRepository(seed []model.Character) CharacterRepository {
	r := &characterRepository{
		characters: make([]model.Character, 0, len(seed)),
		nextID:     1,
		now:        time.Now,
	}
	started := r.now()
	for _, c := range seed {
		if c.CreatedAt.IsZero() {
			c.CreatedAt = started
		}
		if c.UpdatedAt.IsZero() {
			c.UpdatedAt = c.CreatedAt
		}
		r.characters = append(r.characters, c)
		if c.ID >= r.nextID {
			r.nextID = c.ID + 1
		}
	}
	return r
}

func (r *characterRepository) List(_ context.Context) ([]model.Character, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Character, len(r.characters))
	copy(out, r.characters)
	return out, nil
}

func (r *characterRepository) FindByID(_ context.Context, id int) (*model.Character, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx := r.indexOf(id)
	if idx < 0 {
		return nil, apperrors.ErrCharacterNotFound
	}
	c := r.characters[idx]
	return &c, nil
}

func (r *characterRepository) Create(_ context.Context, input model.CharacterInput) (*model.Character, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	c := model.Character{
		ID:        r.nextID,
		Name:      input.Name,
		Status:    input.Status,
		Location:  input.Location,
		LastSeen:  input.LastSeen,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.nextID++
	r.characters = append(r.characters, c)
	return &c, nil
}

// Update merges the non-nil patch fields into the character. The id never changes.
func (r *characterRepository) Update(_ context.Context, id int, patch model.CharacterPatch) (*model.Character, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return nil, apperrors.ErrCharacterNotFound
	}

	c := r.characters[idx]
	if patch.Name != nil {
		c.Name = *patch.Name
	}
	if patch.Status != nil {
		c.Status = *patch.Status
	}
	if patch.Location != nil {
		c.Location = *patch.Location
	}
	if patch.LastSeen != nil {
		c.LastSeen = *patch.LastSeen
	}
	c.UpdatedAt = r.now()
	r.characters[idx] = c
	return &c, nil
}

func (r *characterRepository) indexOf(id int) int {
	for i := range r.characters {
		if r.characters[i].ID == id {
			return i
		}
	}
	return -1
}

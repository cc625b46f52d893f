package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	apperrors "starwars/internal/errors"
	"starwars/internal/model"
)

// UserRepository defines credential store operations.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id int) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
}

type userRepository struct {
	mu     sync.RWMutex
	users  map[int]model.User
	nextID int
	now    func() time.Time
}

// NewUserRepository builds an empty in-memory credential store. Ids start at 1.
func NewUserRepository() UserRepository {
	return &userRepository{
		users:  make(map[int]model.User),
		nextID: 1,
		now:    time.Now,
	}
}

// Create assigns the next id and stores the user. Uniqueness is checked under the
// same lock as the insert so two concurrent registrations cannot both win.
func (r *userRepository) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Username == user.Username {
			return apperrors.ErrDuplicateUsername
		}
		if user.Email != "" && existing.Email == user.Email {
			return apperrors.ErrDuplicateEmail
		}
	}

	user.ID = r.nextID
	r.nextID++
	if user.CreatedAt.IsZero() {
		user.CreatedAt = r.now()
	}
	r.users[user.ID] = *user
	return nil
}

func (r *userRepository) FindByID(_ context.Context, id int) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return &user, nil
}

func (r *userRepository) FindByUsername(_ context.Context, username string) (*model.User, error) {
	return r.findBy(func(u model.User) bool { return u.Username == username })
}

func (r *userRepository) FindByEmail(_ context.Context, email string) (*model.User, error) {
	if email == "" {
		return nil, apperrors.ErrUserNotFound
	}
	return r.findBy(func(u model.User) bool { return u.Email == email })
}

func (r *userRepository) findBy(match func(model.User) bool) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.users {
		if match(user) {
			return &user, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

// List returns copies of every stored user ordered by id.
func (r *userRepository) List(_ context.Context) ([]model.User, error) {
	r.mu.RLock()
	users := make([]model.User, 0, len(r.users))
	for _, user := range r.users {
		users = append(users, user)
	}
	r.mu.RUnlock()

	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

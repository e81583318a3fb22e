package test

import (
	"context"
	"sync"

	"github.com/mfarouk/go-account-service/internal/interfaces"
	"github.com/mfarouk/go-account-service/internal/model"
	"github.com/mfarouk/go-account-service/internal/repository"
)

// MockUserRepository is an in-memory UserRepository for tests. Records are
// stored and returned as deep copies so callers observe persistence
// semantics, not shared pointers.
type MockUserRepository struct {
	mu     sync.Mutex
	users  map[string]*model.User
	tokens map[string]*model.IssuedToken
}

// Verify that MockUserRepository implements UserRepository interface
var _ interfaces.UserRepository = (*MockUserRepository)(nil)

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users:  make(map[string]*model.User),
		tokens: make(map[string]*model.IssuedToken),
	}
}

// CreateUser stores a new user record
func (r *MockUserRepository) CreateUser(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.Username]; exists {
		return repository.ErrDuplicateUsername
	}
	r.users[user.Username] = user.Clone()
	return nil
}

// GetUser retrieves a copy of the stored record
func (r *MockUserRepository) GetUser(ctx context.Context, username string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, exists := r.users[username]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	return user.Clone(), nil
}

// UpdateUser overwrites the stored record
func (r *MockUserRepository) UpdateUser(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.Username]; !exists {
		return repository.ErrUserNotFound
	}
	r.users[user.Username] = user.Clone()
	return nil
}

// SaveToken stores the issued token, overwriting any prior one
func (r *MockUserRepository) SaveToken(ctx context.Context, username string, token *model.IssuedToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t := *token
	r.tokens[username] = &t
	return nil
}

// GetToken retrieves the stored token
func (r *MockUserRepository) GetToken(ctx context.Context, username string) (*model.IssuedToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	token, exists := r.tokens[username]
	if !exists {
		return nil, repository.ErrTokenNotFound
	}
	t := *token
	return &t, nil
}

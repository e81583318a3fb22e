package interfaces

import (
	"context"

	"github.com/mfarouk/go-account-service/internal/model"
)

// UserRepository defines the keyed record store for user accounts and their
// issued bearer tokens. Implementations must make each single-record write
// atomic and must distinguish an absent record from a zeroed one (absence is
// reported as repository.ErrUserNotFound / repository.ErrTokenNotFound).
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, username string) (*model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error
	SaveToken(ctx context.Context, username string, token *model.IssuedToken) error
	GetToken(ctx context.Context, username string) (*model.IssuedToken, error)
}

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/mfarouk/go-account-service/internal/database"
	"github.com/mfarouk/go-account-service/internal/interfaces"
	"github.com/mfarouk/go-account-service/internal/model"
)

// Common errors that can be returned by the repository
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrTokenNotFound     = errors.New("token not found")
)

// UserRepositoryImpl implements the UserRepository interface on PostgreSQL.
type UserRepositoryImpl struct {
	db *database.DB
}

// Verify that UserRepositoryImpl implements UserRepository interface
var _ interfaces.UserRepository = (*UserRepositoryImpl)(nil)

// NewUserRepository creates a new UserRepository instance
func NewUserRepository(db *database.DB) interfaces.UserRepository {
	return &UserRepositoryImpl{db: db}
}

// CreateUser inserts a new user record. Returns ErrDuplicateUsername if a
// record for the username already exists; the existing record is untouched.
func (r *UserRepositoryImpl) CreateUser(ctx context.Context, user *model.User) error {
	features, err := json.Marshal(user.Features)
	if err != nil {
		return fmt.Errorf("marshaling features: %w", err)
	}

	_, err = r.db.Pool.Exec(ctx,
		`INSERT INTO users (username, password_hash, is_active, email, custom_otp,
		                    fake_email, fake_otp, user_token, created_at, last_login,
		                    session_id, features)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		user.Username, user.PasswordHash, user.IsActive, user.Email, user.CustomOTP,
		user.FakeEmail, user.FakeOTP, user.UserToken, user.CreatedAt, user.LastLogin,
		user.SessionID, features)

	if err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == "23505" {
			return ErrDuplicateUsername
		}
		return err
	}
	return nil
}

// GetUser retrieves a user record by username.
func (r *UserRepositoryImpl) GetUser(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	var features []byte

	err := r.db.Pool.QueryRow(ctx,
		`SELECT username, password_hash, is_active, email, custom_otp, fake_email,
		        fake_otp, user_token, created_at, last_login, session_id, features
		 FROM users
		 WHERE username = $1`,
		username).Scan(&user.Username, &user.PasswordHash, &user.IsActive, &user.Email,
		&user.CustomOTP, &user.FakeEmail, &user.FakeOTP, &user.UserToken,
		&user.CreatedAt, &user.LastLogin, &user.SessionID, &features)

	if err == pgx.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(features, &user.Features); err != nil {
		return nil, fmt.Errorf("unmarshaling features: %w", err)
	}
	return &user, nil
}

// UpdateUser overwrites the stored record for user.Username in a single
// statement, which keeps the per-key read-modify-write atomic.
func (r *UserRepositoryImpl) UpdateUser(ctx context.Context, user *model.User) error {
	features, err := json.Marshal(user.Features)
	if err != nil {
		return fmt.Errorf("marshaling features: %w", err)
	}

	result, err := r.db.Pool.Exec(ctx,
		`UPDATE users
		 SET password_hash = $2, is_active = $3, email = $4, custom_otp = $5,
		     fake_email = $6, fake_otp = $7, user_token = $8, last_login = $9,
		     session_id = $10, features = $11
		 WHERE username = $1`,
		user.Username, user.PasswordHash, user.IsActive, user.Email, user.CustomOTP,
		user.FakeEmail, user.FakeOTP, user.UserToken, user.LastLogin,
		user.SessionID, features)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SaveToken stores the issued token for a user, overwriting any prior one.
func (r *UserRepositoryImpl) SaveToken(ctx context.Context, username string, token *model.IssuedToken) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO tokens (username, token, created_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (username)
		 DO UPDATE SET token = EXCLUDED.token, created_at = EXCLUDED.created_at`,
		username, token.Token, token.CreatedAt)
	return err
}

// GetToken retrieves the most recently issued token for a user.
func (r *UserRepositoryImpl) GetToken(ctx context.Context, username string) (*model.IssuedToken, error) {
	var token model.IssuedToken
	err := r.db.Pool.QueryRow(ctx,
		`SELECT token, created_at FROM tokens WHERE username = $1`,
		username).Scan(&token.Token, &token.CreatedAt)

	if err == pgx.ErrNoRows {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, err
	}
	return &token, nil
}

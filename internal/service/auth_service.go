package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/mfarouk/go-account-service/internal/interfaces"
	"github.com/mfarouk/go-account-service/internal/model"
	"github.com/mfarouk/go-account-service/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles registration, credential verification, and the session
// lifecycle. Login attempts pass through the throttle before credentials are
// checked.
type AuthService struct {
	userRepo interfaces.UserRepository
	issuer   *TokenIssuer
	throttle *LoginThrottle
}

// NewAuthService creates a new authentication service
func NewAuthService(userRepo interfaces.UserRepository, issuer *TokenIssuer, throttle *LoginThrottle) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		issuer:   issuer,
		throttle: throttle,
	}
}

// Register creates a new user account with a hashed password. Every feature
// flag starts disabled and the account starts inactive. A bearer token is
// issued and stored immediately so the first login can return it.
func (s *AuthService) Register(ctx context.Context, username, password string) (*model.User, error) {
	// Hash the password with a cost factor of 12 (recommended minimum)
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     username,
		PasswordHash: string(hashedPassword),
		IsActive:     false,
		CreatedAt:    time.Now(),
		Features:     model.DefaultFeatures(),
	}

	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	if _, err := s.issuer.Issue(ctx, user); err != nil {
		return nil, fmt.Errorf("issuing token: %w", err)
	}

	return user, nil
}

// Login authenticates the user and starts a fresh session. An unknown
// username and a wrong password both fail with ErrInvalidCredentials so the
// caller cannot probe for registered usernames. A successful login overwrites
// any session id already on the record, invalidating the prior session.
// Returns the new session id and the user's stored bearer token.
func (s *AuthService) Login(ctx context.Context, username, password, origin string) (string, string, *model.User, error) {
	if !s.throttle.Attempt(username, origin) {
		return "", "", nil, ErrRateLimited
	}

	user, err := s.userRepo.GetUser(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", "", nil, ErrInvalidCredentials
		}
		return "", "", nil, fmt.Errorf("loading user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", "", nil, ErrInvalidCredentials
	}

	sessionID, err := newSessionID()
	if err != nil {
		return "", "", nil, fmt.Errorf("generating session id: %w", err)
	}

	now := time.Now()
	user.SessionID = &sessionID
	user.LastLogin = &now
	if err := s.userRepo.UpdateUser(ctx, user); err != nil {
		return "", "", nil, fmt.Errorf("saving session: %w", err)
	}

	stored, err := s.userRepo.GetToken(ctx, username)
	if err != nil {
		if !errors.Is(err, repository.ErrTokenNotFound) {
			return "", "", nil, fmt.Errorf("loading token: %w", err)
		}
		// No stored token (pre-existing account); issue one now.
		token, err := s.issuer.Issue(ctx, user)
		if err != nil {
			return "", "", nil, fmt.Errorf("issuing token: %w", err)
		}
		return sessionID, token, user, nil
	}

	return sessionID, stored.Token, user, nil
}

// ValidateSession reports whether the presented session id is the live one
// for the user. It fails closed: a missing record, a logged-out record, or
// any mismatch all return false.
func (s *AuthService) ValidateSession(ctx context.Context, username, sessionID string) bool {
	if username == "" || sessionID == "" {
		return false
	}
	user, err := s.userRepo.GetUser(ctx, username)
	if err != nil {
		return false
	}
	return user.SessionID != nil && *user.SessionID == sessionID
}

// Logout clears the user's session id. It is idempotent: logging out a user
// with no live session, or an unknown user, is not an error.
func (s *AuthService) Logout(ctx context.Context, username string) error {
	user, err := s.userRepo.GetUser(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil
		}
		return fmt.Errorf("loading user: %w", err)
	}

	user.SessionID = nil
	if err := s.userRepo.UpdateUser(ctx, user); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

// AccountInfo returns the full record for a password-authenticated lookup.
// Unknown username and wrong password fail identically with ErrNotFound.
func (s *AuthService) AccountInfo(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.userRepo.GetUser(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("loading user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// GetUser loads a record by username for session-guarded read paths.
func (s *AuthService) GetUser(ctx context.Context, username string) (*model.User, error) {
	user, err := s.userRepo.GetUser(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("loading user: %w", err)
	}
	return user, nil
}

// Reissue signs a fresh bearer token from the user's current record,
// replacing the stored one. This is the only way an existing token's
// activation/feature snapshot catches up with record changes.
func (s *AuthService) Reissue(ctx context.Context, username string) (string, error) {
	user, err := s.userRepo.GetUser(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("loading user: %w", err)
	}
	return s.issuer.Issue(ctx, user)
}

// newSessionID returns 32 bytes from crypto/rand, hex encoded. Session ids
// must not be guessable, so nothing derived from the username or clock goes
// into them.
func newSessionID() (string, error) {
	var b [32]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}

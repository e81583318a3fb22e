package service

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/mfarouk/go-account-service/internal/interfaces"
	"github.com/mfarouk/go-account-service/internal/model"
	"github.com/mfarouk/go-account-service/internal/repository"
)

// AdminService performs privileged record mutations gated by a per-user
// derived capability key. It bypasses sessions entirely: the key is the only
// credential.
//
// The key is a deterministic digest of a configured prefix and the username.
// Anyone who knows both can compute it offline, so the prefix must be treated
// as a deployment secret and supplied via configuration.
type AdminService struct {
	userRepo interfaces.UserRepository
	prefix   string
}

// NewAdminService creates an admin authorizer using the given derivation prefix.
func NewAdminService(userRepo interfaces.UserRepository, keyPrefix string) *AdminService {
	return &AdminService{
		userRepo: userRepo,
		prefix:   keyPrefix,
	}
}

// DeriveKey computes the admin capability key for a username.
func (s *AdminService) DeriveKey(username string) string {
	sum := sha256.Sum256([]byte(s.prefix + username))
	return hex.EncodeToString(sum[:])
}

// authorize enforces the mandated check order: a missing key fails before the
// record is looked up, an unknown user fails before the key is compared, and
// only then is the key checked. The order determines which error a caller
// observes and must not change.
func (s *AdminService) authorize(ctx context.Context, username, presentedKey string) (*model.User, error) {
	if presentedKey == "" {
		return nil, ErrUnauthorized
	}

	user, err := s.userRepo.GetUser(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("loading user: %w", err)
	}

	expected := s.DeriveKey(username)
	if subtle.ConstantTimeCompare([]byte(presentedKey), []byte(expected)) != 1 {
		return nil, ErrForbidden
	}
	return user, nil
}

// UpdateUserFields shallow-merges the patch into the user's record: each
// recognized top-level key overwrites the corresponding field, and "features"
// replaces the whole flag map rather than merging into it. Unrecognized keys
// are ignored.
func (s *AdminService) UpdateUserFields(ctx context.Context, username, presentedKey string, patch map[string]any) (*model.User, error) {
	user, err := s.authorize(ctx, username, presentedKey)
	if err != nil {
		return nil, err
	}

	applyPatch(user, patch)

	if err := s.userRepo.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("updating user: %w", err)
	}
	return user, nil
}

// ActivateAccount marks the account active and enables every feature flag.
func (s *AdminService) ActivateAccount(ctx context.Context, username, presentedKey string) (*model.User, error) {
	user, err := s.authorize(ctx, username, presentedKey)
	if err != nil {
		return nil, err
	}

	user.IsActive = true
	user.Features = model.AllFeatures()

	if err := s.userRepo.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("activating account: %w", err)
	}
	return user, nil
}

func applyPatch(user *model.User, patch map[string]any) {
	for key, value := range patch {
		switch key {
		case "is_active":
			if v, ok := value.(bool); ok {
				user.IsActive = v
			}
		case "email":
			if v, ok := value.(string); ok {
				user.Email = v
			}
		case "custom_otp":
			if v, ok := value.(string); ok {
				user.CustomOTP = v
			}
		case "fake_email":
			if v, ok := value.(string); ok {
				user.FakeEmail = v
			}
		case "fake_otp":
			if v, ok := value.(string); ok {
				user.FakeOTP = v
			}
		case "user_token":
			if v, ok := value.(string); ok {
				user.UserToken = v
			}
		case "password_hash":
			if v, ok := value.(string); ok {
				user.PasswordHash = v
			}
		case "session_id":
			if value == nil {
				user.SessionID = nil
			} else if v, ok := value.(string); ok {
				user.SessionID = &v
			}
		case "features":
			if v, ok := value.(map[string]any); ok {
				features := make(model.Features, len(v))
				for name, raw := range v {
					if b, ok := raw.(bool); ok {
						features[name] = b
					}
				}
				user.Features = features
			}
		}
	}
}

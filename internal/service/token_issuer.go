package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/mfarouk/go-account-service/internal/interfaces"
	"github.com/mfarouk/go-account-service/internal/model"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token has expired")
)

// TokenIssuer creates long-lived signed bearer tokens carrying a snapshot of
// a user's activation and feature state. The snapshot is taken at issuance:
// later changes to the record do not propagate into already-issued tokens, so
// a token only reflects current flags after an explicit reissue.
type TokenIssuer struct {
	userRepo    interfaces.UserRepository
	jwtSecret   []byte
	tokenExpiry time.Duration
}

// NewTokenIssuer creates a token issuer signing with the given secret.
func NewTokenIssuer(userRepo interfaces.UserRepository, jwtSecret string) *TokenIssuer {
	return &TokenIssuer{
		userRepo:    userRepo,
		jwtSecret:   []byte(jwtSecret),
		tokenExpiry: 30 * 24 * time.Hour,
	}
}

// Issue signs a bearer token for the user and stores it, overwriting any
// previously issued token for that username.
func (i *TokenIssuer) Issue(ctx context.Context, user *model.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username":  user.Username,
		"is_active": user.IsActive,
		"features":  user.Features,
		"exp":       now.Add(i.tokenExpiry).Unix(),
		"iat":       now.Unix(),
		"jti":       uuid.NewString(),
	})

	tokenString, err := token.SignedString(i.jwtSecret)
	if err != nil {
		return "", err
	}

	err = i.userRepo.SaveToken(ctx, user.Username, &model.IssuedToken{
		Token:     tokenString,
		CreatedAt: now,
	})
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// Parse verifies a bearer token's signature and expiry and returns its claims.
// The stored copy is not consulted: any correctly signed, unexpired token is
// accepted.
func (i *TokenIssuer) Parse(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return i.jwtSecret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

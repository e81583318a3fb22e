package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/mfarouk/go-account-service/internal/handler"
	"github.com/mfarouk/go-account-service/internal/middleware"
	"github.com/mfarouk/go-account-service/internal/service"
	"github.com/mfarouk/go-account-service/internal/test"
)

const (
	testJwtSecret = "test-secret"
	testKeyPrefix = "admin_key_"
)

// setupTestRouter wires the full route table the way cmd/server does, backed
// by the in-memory repository.
func setupTestRouter() (*chi.Mux, *service.AdminService) {
	userRepo := test.NewMockUserRepository()
	issuer := service.NewTokenIssuer(userRepo, testJwtSecret)
	throttle := service.NewLoginThrottle(5, 300*time.Second)
	authService := service.NewAuthService(userRepo, issuer, throttle)
	adminService := service.NewAdminService(userRepo, testKeyPrefix)
	authHandler := handler.NewAuthHandler(authService)
	adminHandler := handler.NewAdminHandler(adminService)

	r := chi.NewRouter()
	r.Post("/auth/register", authHandler.Register)
	r.Post("/auth/login", authHandler.Login)
	r.Post("/auth/account_info", authHandler.AccountInfo)
	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionGuard(authService))
		r.Get("/account", authHandler.Account)
		r.Post("/auth/logout", authHandler.Logout)
		r.Post("/auth/reissue", authHandler.Reissue)
	})
	r.Post("/admin/update_user", adminHandler.UpdateUser)
	r.Post("/admin/activate_account", adminHandler.ActivateAccount)

	return r, adminService
}

func doJSON(router *chi.Mux, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// TestAccountLifecycle runs the full flow: register, login, admin activation,
// and verifies that the token issued before activation still carries its
// original inactive snapshot.
func TestAccountLifecycle(t *testing.T) {
	router, adminService := setupTestRouter()

	creds := map[string]string{"username": "alice", "password": "secret1"}

	var sessionID, token string

	t.Run("register", func(t *testing.T) {
		w := doJSON(router, "POST", "/auth/register", creds, nil)
		if w.Code != http.StatusCreated {
			t.Fatalf("expected status %d, got %d", http.StatusCreated, w.Code)
		}

		var response struct {
			IsActive bool `json:"is_active"`
		}
		json.NewDecoder(w.Body).Decode(&response)
		if response.IsActive {
			t.Error("new account should be inactive")
		}
	})

	t.Run("login", func(t *testing.T) {
		w := doJSON(router, "POST", "/auth/login", creds, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
		}

		var response struct {
			SessionID string `json:"session_id"`
			Token     string `json:"token"`
		}
		if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		sessionID = response.SessionID
		token = response.Token
		if sessionID == "" || token == "" {
			t.Fatal("expected session id and token in response")
		}
	})

	t.Run("second login invalidates first session", func(t *testing.T) {
		w := doJSON(router, "POST", "/auth/login", creds, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
		}

		var response struct {
			SessionID string `json:"session_id"`
		}
		json.NewDecoder(w.Body).Decode(&response)

		// The old session id no longer opens guarded routes.
		w = doJSON(router, "GET", "/account", nil, map[string]string{
			middleware.HeaderUsername:  "alice",
			middleware.HeaderSessionID: sessionID,
		})
		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected status %d for stale session, got %d", http.StatusUnauthorized, w.Code)
		}

		sessionID = response.SessionID
	})

	t.Run("guarded account read", func(t *testing.T) {
		w := doJSON(router, "GET", "/account", nil, map[string]string{
			middleware.HeaderUsername:  "alice",
			middleware.HeaderSessionID: sessionID,
		})
		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
		}
	})

	t.Run("admin activation", func(t *testing.T) {
		w := doJSON(router, "POST", "/admin/activate_account",
			map[string]string{"username": "alice"},
			map[string]string{handler.AdminKeyHeader: adminService.DeriveKey("alice")})
		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
		}

		// The record now reflects the activation via a read path.
		w = doJSON(router, "POST", "/auth/account_info", creds, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
		}
		var response struct {
			AccountInfo struct {
				IsActive bool            `json:"is_active"`
				Features map[string]bool `json:"features"`
			} `json:"account_info"`
		}
		json.NewDecoder(w.Body).Decode(&response)
		if !response.AccountInfo.IsActive {
			t.Error("record should be active after admin activation")
		}
		for name, enabled := range response.AccountInfo.Features {
			if !enabled {
				t.Errorf("feature %q should be enabled", name)
			}
		}
	})

	t.Run("issued token keeps its pre-activation snapshot", func(t *testing.T) {
		parsed, err := jwt.Parse(token, func(*jwt.Token) (any, error) {
			return []byte(testJwtSecret), nil
		})
		if err != nil {
			t.Fatalf("failed to parse token: %v", err)
		}
		claims := parsed.Claims.(jwt.MapClaims)
		if claims["is_active"] != false {
			t.Errorf("got is_active %v, want the stale false snapshot", claims["is_active"])
		}
	})

	t.Run("reissue refreshes the snapshot", func(t *testing.T) {
		w := doJSON(router, "POST", "/auth/reissue", nil, map[string]string{
			middleware.HeaderUsername:  "alice",
			middleware.HeaderSessionID: sessionID,
		})
		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
		}

		var response struct {
			Token string `json:"token"`
		}
		json.NewDecoder(w.Body).Decode(&response)

		parsed, err := jwt.Parse(response.Token, func(*jwt.Token) (any, error) {
			return []byte(testJwtSecret), nil
		})
		if err != nil {
			t.Fatalf("failed to parse token: %v", err)
		}
		claims := parsed.Claims.(jwt.MapClaims)
		if claims["is_active"] != true {
			t.Errorf("got is_active %v, want true after reissue", claims["is_active"])
		}
	})

	t.Run("logout closes the session", func(t *testing.T) {
		w := doJSON(router, "POST", "/auth/logout", nil, map[string]string{
			middleware.HeaderUsername:  "alice",
			middleware.HeaderSessionID: sessionID,
		})
		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
		}

		w = doJSON(router, "GET", "/account", nil, map[string]string{
			middleware.HeaderUsername:  "alice",
			middleware.HeaderSessionID: sessionID,
		})
		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected status %d after logout, got %d", http.StatusUnauthorized, w.Code)
		}
	})
}

// TestAdminErrorOrdering exercises the admin error ordering over HTTP:
// missing key, then unknown user, then wrong key.
func TestAdminErrorOrdering(t *testing.T) {
	router, adminService := setupTestRouter()

	w := doJSON(router, "POST", "/auth/register",
		map[string]string{"username": "alice", "password": "secret1"}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("registration failed with status %d", w.Code)
	}

	tests := []struct {
		name           string
		username       string
		adminKey       string
		wantStatusCode int
	}{
		{"no key, unknown user", "ghost", "", http.StatusUnauthorized},
		{"key present, unknown user", "ghost", "anything", http.StatusNotFound},
		{"wrong key, known user", "alice", "anything", http.StatusForbidden},
		{"correct key", "alice", adminService.DeriveKey("alice"), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.adminKey != "" {
				headers[handler.AdminKeyHeader] = tt.adminKey
			}
			w := doJSON(router, "POST", "/admin/activate_account",
				map[string]string{"username": tt.username}, headers)
			if w.Code != tt.wantStatusCode {
				t.Errorf("expected status %d, got %d", tt.wantStatusCode, w.Code)
			}
		})
	}
}

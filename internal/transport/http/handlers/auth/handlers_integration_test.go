package authhandler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"epms/internal/app/server"
	"epms/internal/domain/auth"
	"epms/internal/platform/config"
)

type responseEnvelope struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data"`
	Error   *responseError `json:"error"`
}

type responseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func newAuthTestApp(t *testing.T) (*server.App, *httptest.Server) {
	t.Helper()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if strings.TrimSpace(dbURL) == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := config.Config{
		DatabaseURL:              dbURL,
		JWTSecret:                "test-secret",
		Environment:              "test",
		SeedAdminEmail:           "admin@test.local",
		SeedAdminPassword:        "ChangeMe123!",
		SeedAdminName:            "Test Admin",
		EmailFrom:                "no-reply@test.local",
		RunMigrations:            true,
		RunSeed:                  true,
		MigrationsDir:            "../../../../../migrations",
		MaxBodyBytes:             1048576,
		RateLimitPerMinute:       1000,
		DeadlineReminderInterval: time.Hour,
		CycleSweepInterval:       time.Hour,
	}

	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	ts := httptest.NewServer(app.Router)
	t.Cleanup(func() {
		ts.Close()
		app.Close()
	})
	return app, ts
}

func postJSON(t *testing.T, ts *httptest.Server, path, token string, body any) (int, responseEnvelope) {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request body: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, ts.URL+path, bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("request %s failed: %v", path, err)
	}
	defer resp.Body.Close()

	var env responseEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp.StatusCode, env
}

func TestLoginIssuesTokenAndRefreshRotates(t *testing.T) {
	_, ts := newAuthTestApp(t)

	status, env := postJSON(t, ts, "/api/v1/auth/login", "", map[string]string{
		"email":    "admin@test.local",
		"password": "ChangeMe123!",
	})
	if status != http.StatusOK {
		t.Fatalf("expected 200 login, got %d: %+v", status, env.Error)
	}
	token, _ := env.Data["token"].(string)
	if token == "" {
		t.Fatal("expected a token in the login response")
	}

	status, env = postJSON(t, ts, "/api/v1/auth/refresh", token, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 refresh, got %d: %+v", status, env.Error)
	}
	refreshed, _ := env.Data["token"].(string)
	if refreshed == "" || refreshed == token {
		t.Fatal("expected refresh to issue a different token")
	}

	// The old session was rotated out; refreshing with it again must fail.
	status, env = postJSON(t, ts, "/api/v1/auth/refresh", token, nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401 refreshing a rotated session, got %d", status)
	}
	if env.Error == nil || env.Error.Code != "unauthorized" {
		t.Fatalf("expected unauthorized, got %+v", env.Error)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	_, ts := newAuthTestApp(t)

	status, env := postJSON(t, ts, "/api/v1/auth/login", "", map[string]string{
		"email":    "admin@test.local",
		"password": "WrongPassword1",
	})
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", status)
	}
	if env.Error == nil || env.Error.Code != "invalid_credentials" {
		t.Fatalf("expected invalid_credentials, got %+v", env.Error)
	}

	status, env = postJSON(t, ts, "/api/v1/auth/login", "", map[string]string{
		"email":    fmt.Sprintf("missing-%d@example.com", time.Now().UnixNano()),
		"password": "Whatever123",
	})
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown email, got %d", status)
	}
}

func TestPasswordResetFlow(t *testing.T) {
	app, ts := newAuthTestApp(t)
	ctx := context.Background()

	service := auth.NewService(auth.NewStore(app.DB))
	email := fmt.Sprintf("reset-%d@example.com", time.Now().UnixNano())
	initialHash, err := auth.HashPassword("InitialReset123")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	var userID string
	if err := app.DB.QueryRow(ctx,
		"INSERT INTO users (email, password_hash, role) VALUES ($1, $2, $3) RETURNING id",
		email, initialHash, auth.RoleEmployee).Scan(&userID); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	// Request-reset always answers the same, whether or not the email exists.
	status, env := postJSON(t, ts, "/api/v1/auth/request-reset", "", map[string]string{"email": email})
	if status != http.StatusOK || env.Data["status"] != "reset_requested" {
		t.Fatalf("expected generic reset_requested, got %d %+v", status, env.Data)
	}
	status, env = postJSON(t, ts, "/api/v1/auth/request-reset", "", map[string]string{"email": "nobody@example.com"})
	if status != http.StatusOK || env.Data["status"] != "reset_requested" {
		t.Fatalf("expected generic reset_requested for unknown email, got %d %+v", status, env.Data)
	}

	// Only the hash of a reset token is stored, so mint one directly.
	token := fmt.Sprintf("reset-token-%d", time.Now().UnixNano())
	if err := service.CreatePasswordReset(ctx, userID, auth.HashToken(token), time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("failed to create reset token: %v", err)
	}

	status, env = postJSON(t, ts, "/api/v1/auth/reset", "", map[string]string{
		"token":       token,
		"newPassword": "ResetStrong123",
	})
	if status != http.StatusOK {
		t.Fatalf("expected 200 reset, got %d: %+v", status, env.Error)
	}

	status, _ = postJSON(t, ts, "/api/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": "ResetStrong123",
	})
	if status != http.StatusOK {
		t.Fatalf("expected login with new password, got %d", status)
	}
	status, _ = postJSON(t, ts, "/api/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": "InitialReset123",
	})
	if status != http.StatusUnauthorized {
		t.Fatalf("expected old password rejected, got %d", status)
	}

	// The token is single use.
	status, env = postJSON(t, ts, "/api/v1/auth/reset", "", map[string]string{
		"token":       token,
		"newPassword": "AnotherStrong123",
	})
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for reused token, got %d", status)
	}
	if env.Error == nil || env.Error.Code != "invalid_token" {
		t.Fatalf("expected invalid_token, got %+v", env.Error)
	}

	expired := fmt.Sprintf("expired-%d", time.Now().UnixNano())
	if err := service.CreatePasswordReset(ctx, userID, auth.HashToken(expired), time.Now().Add(-time.Hour)); err != nil {
		t.Fatalf("failed to create expired token: %v", err)
	}
	status, env = postJSON(t, ts, "/api/v1/auth/reset", "", map[string]string{
		"token":       expired,
		"newPassword": "ExpiredReset123",
	})
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for expired token, got %d", status)
	}
	if env.Error == nil || env.Error.Code != "invalid_token" {
		t.Fatalf("expected invalid_token for expired token, got %+v", env.Error)
	}
}

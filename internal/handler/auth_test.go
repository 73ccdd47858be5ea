package handler_test

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/lunchorder/api/internal/auth"
)

// --- Login tests ---

func TestLogin_ValidCredentials(t *testing.T) {
	app := newTestApp(t)

	rr := doRequest(t, app.router, "POST", "/auth/login", map[string]string{
		"name":     "alice",
		"password": "secret",
	})
	expectStatus(t, rr, http.StatusOK)

	resp := decodeResponse(t, rr)
	if resp["access_token"] == nil || resp["access_token"] == "" {
		t.Error("expected non-empty access_token")
	}
	if resp["refresh_token"] == nil || resp["refresh_token"] == "" {
		t.Error("expected non-empty refresh_token")
	}
	userResp, ok := resp["user"].(map[string]interface{})
	if !ok {
		t.Fatal("expected user object in response")
	}
	if userResp["name"] != "Alice" {
		t.Errorf("user name: got %v, want Alice", userResp["name"])
	}
	if userResp["role"] != "user" {
		t.Errorf("user role: got %v, want user", userResp["role"])
	}
	if _, leaked := userResp["hashed_password"]; leaked {
		t.Error("response must not include the password hash")
	}
}

func TestLogin_ReturnsValidAccessToken(t *testing.T) {
	app := newTestApp(t)

	rr := doRequest(t, app.router, "POST", "/auth/login", map[string]string{"name": "Cara", "password": "secret"})
	expectStatus(t, rr, http.StatusOK)

	token, _ := decodeResponse(t, rr)["access_token"].(string)
	claims, err := auth.ValidateToken(testSecret, token)
	if err != nil {
		t.Fatalf("validate access token: %v", err)
	}
	if claims.UserID != coll.UserID {
		t.Errorf("user id: got %s, want %s", claims.UserID, coll.UserID)
	}
	if claims.Role != coll.Role {
		t.Errorf("role: got %s, want %s", claims.Role, coll.Role)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	app := newTestApp(t)

	rr := doRequest(t, app.router, "POST", "/auth/login", map[string]string{"name": "Alice", "password": "nope"})
	expectStatus(t, rr, http.StatusUnauthorized)
}

func TestLogin_UserNotFound(t *testing.T) {
	app := newTestApp(t)

	rr := doRequest(t, app.router, "POST", "/auth/login", map[string]string{"name": "Zed", "password": "secret"})
	expectStatus(t, rr, http.StatusUnauthorized)
}

func TestLogin_MissingFields(t *testing.T) {
	app := newTestApp(t)

	rr := doRequest(t, app.router, "POST", "/auth/login", map[string]string{"name": "Alice"})
	expectStatus(t, rr, http.StatusBadRequest)

	if got := decodeResponse(t, rr)["error"]; got != "password is required" {
		t.Errorf("error: got %v, want %q", got, "password is required")
	}
}

// --- Refresh tests ---

func TestRefresh_ValidToken(t *testing.T) {
	app := newTestApp(t)
	refreshToken, err := auth.GenerateRefreshToken(testSecret, bob.UserID)
	if err != nil {
		t.Fatalf("generate refresh token: %v", err)
	}

	rr := doRequest(t, app.router, "POST", "/auth/refresh", map[string]string{"refresh_token": refreshToken})
	expectStatus(t, rr, http.StatusOK)

	resp := decodeResponse(t, rr)
	if resp["access_token"] == nil || resp["access_token"] == "" {
		t.Error("expected non-empty access_token")
	}
}

func TestRefresh_InvalidToken(t *testing.T) {
	app := newTestApp(t)

	rr := doRequest(t, app.router, "POST", "/auth/refresh", map[string]string{"refresh_token": "not-a-valid-token"})
	expectStatus(t, rr, http.StatusUnauthorized)
}

func TestRefresh_AccessTokenRejected(t *testing.T) {
	app := newTestApp(t)
	access, err := auth.GenerateToken(testSecret, bob.UserID, bob.Name, bob.Role)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	rr := doRequest(t, app.router, "POST", "/auth/refresh", map[string]string{"refresh_token": access})
	expectStatus(t, rr, http.StatusUnauthorized)
}

func TestRefresh_UserDeleted(t *testing.T) {
	app := newTestApp(t)
	refreshToken, err := auth.GenerateRefreshToken(testSecret, uuid.New())
	if err != nil {
		t.Fatalf("generate refresh token: %v", err)
	}

	rr := doRequest(t, app.router, "POST", "/auth/refresh", map[string]string{"refresh_token": refreshToken})
	expectStatus(t, rr, http.StatusUnauthorized)
}

// --- Session tests ---

func TestMe_ReturnsSignedInUser(t *testing.T) {
	app := newTestApp(t)

	rr := doAuthRequest(t, app.router, bob, "GET", "/auth/me", nil)
	expectStatus(t, rr, http.StatusOK)

	if got := decodeResponse(t, rr)["name"]; got != "Bob" {
		t.Errorf("name: got %v, want Bob", got)
	}
}

func TestMe_RequiresToken(t *testing.T) {
	app := newTestApp(t)

	rr := doRequest(t, app.router, "GET", "/auth/me", nil)
	expectStatus(t, rr, http.StatusUnauthorized)
}

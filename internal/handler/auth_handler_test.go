package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/wikiswipe/internal/auth"
	"github.com/hitoshi/wikiswipe/internal/model"
)

// --- モック定義 ---

type mockAccountService struct {
	registerFn func(ctx context.Context, username, password string) (*model.User, error)
}

func (m *mockAccountService) Register(ctx context.Context, username, password string) (*model.User, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, username, password)
	}
	return nil, nil
}

type mockAuthService struct {
	loginFn         func(ctx context.Context, username, password string) (*model.User, *model.Session, error)
	createSessionFn func(ctx context.Context, userID string) (*model.Session, error)
	logoutFn        func(ctx context.Context, sessionID string) error
}

func (m *mockAuthService) Login(ctx context.Context, username, password string) (*model.User, *model.Session, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, username, password)
	}
	return nil, nil, auth.ErrInvalidCredentials
}

func (m *mockAuthService) CreateSession(ctx context.Context, userID string) (*model.Session, error) {
	if m.createSessionFn != nil {
		return m.createSessionFn(ctx, userID)
	}
	return &model.Session{ID: "test-session", UserID: userID}, nil
}

func (m *mockAuthService) Logout(ctx context.Context, sessionID string) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx, sessionID)
	}
	return nil
}

func testUser() *model.User {
	return &model.User{
		ID:           "user-1",
		Username:     "alice",
		PasswordHash: "$2a$10$secret",
		Languages:    []string{"en", "ja"},
		CreatedAt:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func findCookie(t *testing.T, resp *http.Response, name string) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// --- テスト ---

func TestAuthHandler_Register_Success(t *testing.T) {
	account := &mockAccountService{
		registerFn: func(ctx context.Context, username, password string) (*model.User, error) {
			if username != "alice" || password != "pass1234" {
				t.Errorf("unexpected credentials: %q / %q", username, password)
			}
			return testUser(), nil
		},
	}
	authSvc := &mockAuthService{
		createSessionFn: func(ctx context.Context, userID string) (*model.Session, error) {
			return &model.Session{ID: "new-session-id", UserID: userID}, nil
		},
	}
	h := NewAuthHandler(account, authSvc, AuthHandlerConfig{SessionMaxAge: 86400})

	req := httptest.NewRequest(http.MethodPost, "/api/register",
		strings.NewReader(`{"username":"alice","password":"pass1234"}`))
	w := httptest.NewRecorder()

	h.Register(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}

	// 自動ログインのセッションCookieが設定される
	cookie := findCookie(t, resp, "session_id")
	if cookie == nil {
		t.Fatal("session cookie not set")
	}
	if cookie.Value != "new-session-id" {
		t.Errorf("cookie value = %q, want %q", cookie.Value, "new-session-id")
	}
	if !cookie.HttpOnly {
		t.Error("session cookie should be HttpOnly")
	}

	var body map[string]any
	json.NewDecoder(resp.Body).Decode(&body)
	if body["username"] != "alice" {
		t.Errorf("username = %v, want alice", body["username"])
	}
	if _, exists := body["password_hash"]; exists {
		t.Error("response must not contain password hash")
	}
}

func TestAuthHandler_Register_UsernameTaken(t *testing.T) {
	account := &mockAccountService{
		registerFn: func(ctx context.Context, username, password string) (*model.User, error) {
			return nil, model.NewUsernameTakenError(username)
		},
	}
	h := NewAuthHandler(account, &mockAuthService{}, AuthHandlerConfig{})

	req := httptest.NewRequest(http.MethodPost, "/api/register",
		strings.NewReader(`{"username":"alice","password":"pass1234"}`))
	w := httptest.NewRecorder()

	h.Register(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}

	var body apiErrorResponse
	json.NewDecoder(resp.Body).Decode(&body)
	if body.Code != "USERNAME_TAKEN" {
		t.Errorf("code = %q, want USERNAME_TAKEN", body.Code)
	}
}

func TestAuthHandler_Register_InvalidJSON(t *testing.T) {
	h := NewAuthHandler(&mockAccountService{}, &mockAuthService{}, AuthHandlerConfig{})

	req := httptest.NewRequest(http.MethodPost, "/api/register", strings.NewReader(`{invalid`))
	w := httptest.NewRecorder()

	h.Register(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}

	var body apiErrorResponse
	json.NewDecoder(resp.Body).Decode(&body)
	if body.Code != "INVALID_REQUEST" {
		t.Errorf("code = %q, want INVALID_REQUEST", body.Code)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	authSvc := &mockAuthService{
		loginFn: func(ctx context.Context, username, password string) (*model.User, *model.Session, error) {
			return testUser(), &model.Session{ID: "login-session-id", UserID: "user-1"}, nil
		},
	}
	h := NewAuthHandler(&mockAccountService{}, authSvc, AuthHandlerConfig{SessionMaxAge: 86400})

	req := httptest.NewRequest(http.MethodPost, "/api/login",
		strings.NewReader(`{"username":"alice","password":"pass1234"}`))
	w := httptest.NewRecorder()

	h.Login(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	cookie := findCookie(t, resp, "session_id")
	if cookie == nil {
		t.Fatal("session cookie not set")
	}
	if cookie.Value != "login-session-id" {
		t.Errorf("cookie value = %q, want %q", cookie.Value, "login-session-id")
	}

	var body userResponse
	json.NewDecoder(resp.Body).Decode(&body)
	if body.ID != "user-1" {
		t.Errorf("id = %q, want user-1", body.ID)
	}
}

func TestAuthHandler_Login_InvalidCredentials_Returns401EmptyBody(t *testing.T) {
	authSvc := &mockAuthService{
		loginFn: func(ctx context.Context, username, password string) (*model.User, *model.Session, error) {
			return nil, nil, auth.ErrInvalidCredentials
		},
	}
	h := NewAuthHandler(&mockAccountService{}, authSvc, AuthHandlerConfig{})

	req := httptest.NewRequest(http.MethodPost, "/api/login",
		strings.NewReader(`{"username":"alice","password":"wrong"}`))
	w := httptest.NewRecorder()

	h.Login(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}
	if w.Body.Len() != 0 {
		t.Errorf("401 response body = %q, want empty", w.Body.String())
	}
}

func TestAuthHandler_Logout_DeletesSessionAndClearsCookie(t *testing.T) {
	var deletedSessionID string
	authSvc := &mockAuthService{
		logoutFn: func(ctx context.Context, sessionID string) error {
			deletedSessionID = sessionID
			return nil
		},
	}
	h := NewAuthHandler(&mockAccountService{}, authSvc, AuthHandlerConfig{})

	req := httptest.NewRequest(http.MethodPost, "/api/logout", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "active-session"})
	w := httptest.NewRecorder()

	h.Logout(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if deletedSessionID != "active-session" {
		t.Errorf("deleted session = %q, want active-session", deletedSessionID)
	}

	cookie := findCookie(t, resp, "session_id")
	if cookie == nil {
		t.Fatal("clearing cookie not set")
	}
	if cookie.MaxAge != -1 {
		t.Errorf("cookie MaxAge = %d, want -1", cookie.MaxAge)
	}
}

func TestAuthHandler_Logout_WithoutCookie_StillSucceeds(t *testing.T) {
	h := NewAuthHandler(&mockAccountService{}, &mockAuthService{}, AuthHandlerConfig{})

	req := httptest.NewRequest(http.MethodPost, "/api/logout", nil)
	w := httptest.NewRecorder()

	h.Logout(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}
}

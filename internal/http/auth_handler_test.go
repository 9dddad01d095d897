package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"doc-chat/internal/domain"
	"doc-chat/internal/service"
)

type stubUserRepo struct {
	users map[string]domain.User
}

func (s *stubUserRepo) Create(_ context.Context, user domain.User) error {
	s.users[user.AuthProvider+"|"+user.AuthSubject] = user
	return nil
}

func (s *stubUserRepo) GetByID(_ context.Context, _ string) (domain.User, error) {
	return domain.User{}, pgx.ErrNoRows
}

func (s *stubUserRepo) GetByAuth(_ context.Context, provider, subject string) (domain.User, error) {
	if user, ok := s.users[provider+"|"+subject]; ok {
		return user, nil
	}
	return domain.User{}, pgx.ErrNoRows
}

func newAuthRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := service.NewUserService(zap.NewNop(), &stubUserRepo{users: make(map[string]domain.User)})
	jwtSvc := service.NewJWTService("secret", 15*time.Minute, time.Hour)
	handler := NewAuthHandler(zap.NewNop(), users, jwtSvc)

	r := gin.New()
	r.POST("/auth/oauth", handler.OAuthLogin)
	r.POST("/auth/refresh", handler.Refresh)
	r.POST("/auth/logout", handler.Logout)
	return r
}

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestOAuthLoginIssuesTokens(t *testing.T) {
	r := newAuthRouter(t)

	w := postJSON(r, "/auth/oauth", `{"provider":"google","subject":"sub-1","email":"ana@example.com","display_name":"Ana"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		User   domain.User       `json:"user"`
		Tokens service.TokenPair `json:"tokens"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.User.ID == "" || resp.User.Email != "ana@example.com" {
		t.Fatalf("unexpected user %+v", resp.User)
	}
	if resp.Tokens.AccessToken == "" || resp.Tokens.RefreshToken == "" {
		t.Fatalf("expected token pair, got %+v", resp.Tokens)
	}
}

func TestOAuthLoginInvalidRequest(t *testing.T) {
	r := newAuthRouter(t)

	if w := postJSON(r, "/auth/oauth", `{"provider":"google"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestRefreshRotatesPair(t *testing.T) {
	r := newAuthRouter(t)

	login := postJSON(r, "/auth/oauth", `{"provider":"google","subject":"sub-1"}`)
	var loginResp struct {
		Tokens service.TokenPair `json:"tokens"`
	}
	if err := json.Unmarshal(login.Body.Bytes(), &loginResp); err != nil {
		t.Fatalf("unmarshal login: %v", err)
	}

	w := postJSON(r, "/auth/refresh", `{"refresh_token":"`+loginResp.Tokens.RefreshToken+`"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// El refresh usado quedó rotado.
	if w := postJSON(r, "/auth/refresh", `{"refresh_token":"`+loginResp.Tokens.RefreshToken+`"}`); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for reused refresh, got %d", w.Code)
	}
}

func TestLogoutRevokesRefresh(t *testing.T) {
	r := newAuthRouter(t)

	login := postJSON(r, "/auth/oauth", `{"provider":"google","subject":"sub-1"}`)
	var loginResp struct {
		Tokens service.TokenPair `json:"tokens"`
	}
	if err := json.Unmarshal(login.Body.Bytes(), &loginResp); err != nil {
		t.Fatalf("unmarshal login: %v", err)
	}

	if w := postJSON(r, "/auth/logout", `{"refresh_token":"`+loginResp.Tokens.RefreshToken+`"}`); w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if w := postJSON(r, "/auth/refresh", `{"refresh_token":"`+loginResp.Tokens.RefreshToken+`"}`); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", w.Code)
	}
}

func TestRefreshRejectsGarbageToken(t *testing.T) {
	r := newAuthRouter(t)

	if w := postJSON(r, "/auth/refresh", `{"refresh_token":"not-a-jwt"}`); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/saarthi/loan-assistant-go/internal/agents"
	"github.com/saarthi/loan-assistant-go/internal/domain"
	"github.com/saarthi/loan-assistant-go/internal/extract"
	"github.com/saarthi/loan-assistant-go/internal/handler"
	"github.com/saarthi/loan-assistant-go/internal/infra/cache"
	"github.com/saarthi/loan-assistant-go/internal/infra/observability"
	"github.com/saarthi/loan-assistant-go/internal/service"
	"github.com/saarthi/loan-assistant-go/internal/session"

	"go.uber.org/zap"
)

type stubReplier struct{ reply string }

func (s *stubReplier) Reply(_ context.Context, _ []domain.Message, _ string) (string, error) {
	return s.reply, nil
}

type memUserStore struct {
	users  map[string]*domain.User
	nextID int64
}

func (m *memUserStore) CreateUser(_ context.Context, name, email, hash string) (*domain.User, error) {
	if _, ok := m.users[email]; ok {
		return nil, &domain.ErrConflict{Message: "email already registered"}
	}
	m.nextID++
	u := &domain.User{ID: m.nextID, Name: name, Email: email, PasswordHash: hash, CreatedAt: time.Now()}
	m.users[email] = u
	return u, nil
}

func (m *memUserStore) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	if u, ok := m.users[email]; ok {
		return u, nil
	}
	return nil, &domain.ErrNotFound{Resource: "user", ID: email}
}

func (m *memUserStore) GetUserByID(_ context.Context, id int64) (*domain.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "user", ID: fmt.Sprintf("%d", id)}
}

func (m *memUserStore) Ping(_ context.Context) error { return nil }
func (m *memUserStore) Close() error                 { return nil }

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	sanctionDir := t.TempDir()

	sessions := session.NewStore(30*time.Minute, 0, logger)
	t.Cleanup(sessions.Close)

	scoreCache := cache.New[int](time.Minute)
	t.Cleanup(scoreCache.Close)

	issuer, err := agents.NewLetterIssuer(sanctionDir, logger)
	if err != nil {
		t.Fatal(err)
	}
	pipeline := service.NewPipelineRunner(
		agents.NewCRMVerifier(logger),
		agents.NewRuleUnderwriter(agents.NewStubCreditBureau(), scoreCache, metrics, logger),
		issuer,
		metrics,
		logger,
	)

	chatSvc := service.NewChatService(
		sessions,
		extract.NewPatternExtractor(),
		&stubReplier{reply: "How can I help with your loan today?"},
		pipeline,
		metrics,
		logger,
	)

	users := &memUserStore{users: make(map[string]*domain.User)}
	authSvc := service.NewAuthService(users, "test-secret", time.Hour, logger)

	docSvc, err := service.NewDocumentService(t.TempDir(), logger)
	if err != nil {
		t.Fatal(err)
	}

	return handler.NewRouter(chatSvc, authSvc, docSvc, users, metrics, sanctionDir,
		[]string{"http://localhost:3000"}, logger)
}

func TestOperationalEndpoints(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/healthz", "/readyz", "/ping", "/metrics", "/v1/metrics/assistant"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("%s returned %d", path, rec.Code)
		}
	}
}

func TestChatEndpoint(t *testing.T) {
	router := newTestRouter(t)

	body, _ := json.Marshal(map[string]string{"message": "hi, I need a loan"})
	req := httptest.NewRequest(http.MethodPost, "/v1/chat", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result domain.ChatTurnResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatal(err)
	}
	if result.SessionID == "" {
		t.Error("expected a session id")
	}
	if result.Response != "How can I help with your loan today?" {
		t.Errorf("unexpected response %q", result.Response)
	}
}

func TestChatRequiresMessage(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/chat", strings.NewReader(`{"message":"  "}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestSessionLifecycle(t *testing.T) {
	router := newTestRouter(t)

	body, _ := json.Marshal(map[string]string{"message": "hello"})
	req := httptest.NewRequest(http.MethodPost, "/v1/chat", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var turn domain.ChatTurnResult
	if err := json.Unmarshal(rec.Body.Bytes(), &turn); err != nil {
		t.Fatal(err)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/sessions/"+turn.SessionID, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("get session returned %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, "/v1/sessions/"+turn.SessionID, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete session returned %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/sessions/"+turn.SessionID, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestUnknownSanctionLetter(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/sanctions/nope.txt", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestAuthFlow(t *testing.T) {
	router := newTestRouter(t)

	signup, _ := json.Marshal(map[string]string{
		"name": "Priya Sharma", "email": "priya@example.com", "password": "password123",
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/signup", bytes.NewReader(signup))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup returned %d: %s", rec.Code, rec.Body.String())
	}

	login, _ := json.Marshal(map[string]string{
		"email": "priya@example.com", "password": "password123",
	})
	req = httptest.NewRequest(http.MethodPost, "/v1/auth/login", bytes.NewReader(login))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("login returned %d: %s", rec.Code, rec.Body.String())
	}

	var loginResp domain.LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &loginResp); err != nil {
		t.Fatal(err)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/auth/profile", nil)
	req.Header.Set("Authorization", "Bearer "+loginResp.AccessToken)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("profile returned %d: %s", rec.Code, rec.Body.String())
	}

	// No token.
	req = httptest.NewRequest(http.MethodGet, "/v1/auth/profile", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rec.Code)
	}
}

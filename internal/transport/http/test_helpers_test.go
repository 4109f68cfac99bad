package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/hirehub/hirehub-server/internal/auth"
	"github.com/hirehub/hirehub-server/internal/chat"
	"github.com/hirehub/hirehub-server/internal/store"
	"github.com/hirehub/hirehub-server/internal/store/sqlite"
)

// stubVerifier answers gateway verifications without the network.
type stubVerifier struct {
	transactionID string
	err           error
}

func (v *stubVerifier) Verify(context.Context, string, int64) (string, error) {
	if v.err != nil {
		return "", v.err
	}
	return v.transactionID, nil
}

type testEnv struct {
	router   *gin.Engine
	server   *httptest.Server
	store    store.Store
	auth     *auth.Service
	verifier *stubVerifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	logger := zerolog.Nop()
	jwtConfig := &auth.JWTConfig{
		Secret:   []byte("test-secret-change-me"),
		Issuer:   "test",
		Audience: "test",
		TTL:      24 * time.Hour,
	}
	authService := auth.NewService(st, st, jwtConfig, auth.NewLogMailer(&logger), time.Hour, "http://localhost/reset")

	verifier := &stubVerifier{transactionID: "txn-test"}
	router := NewRouter(Deps{
		Store:    st,
		Auth:     authService,
		Registry: chat.NewInProcessRegistry(),
		Verifier: verifier,
		Logger:   &logger,
	})

	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)

	return &testEnv{
		router:   router,
		server:   ts,
		store:    st,
		auth:     authService,
		verifier: verifier,
	}
}

// registerFreelancer creates a freelancer account and returns its token.
func (e *testEnv) registerFreelancer(t *testing.T, username string) string {
	t.Helper()
	return e.register(t, "/api/register/freelancer", username)
}

// registerClient creates a client account and returns its token.
func (e *testEnv) registerClient(t *testing.T, username string) string {
	t.Helper()
	return e.register(t, "/api/register/client", username)
}

func (e *testEnv) register(t *testing.T, path, username string) string {
	t.Helper()

	w := e.request(t, http.MethodPost, path, "", map[string]any{
		"username": username,
		"email":    username + "@example.com",
		"phone":    "9800000000",
		"password": "password123",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d body %s", username, w.Code, w.Body.String())
	}

	var resp AuthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	return resp.Token
}

// request performs an in-process request against the router.
func (e *testEnv) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeJSON[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return v
}

// Package api tests exercise the HTTP surface end to end against a real
// auth service backed by an in-process Redis.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"authbench.evalgo.org/auth"
	"authbench.evalgo.org/kv"
)

const testJWTSecret = "test-secret-key"

type testServer struct {
	echo *echo.Echo
	mr   *miniredis.Miniredis
}

func newTestServer(t *testing.T, strategyName string) *testServer {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	store, err := kv.NewRedisStore(context.Background(), kv.Config{
		RedisURL: "redis://" + mr.Addr(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	cfg := &auth.Config{
		Strategy:   strategyName,
		JWTSecret:  testJWTSecret,
		SessionTTL: time.Hour,
		TokenTTL:   time.Hour,
		BcryptCost: bcrypt.MinCost,
	}

	creds := auth.NewCredentialStore(store)
	strategy, err := auth.NewStrategy(cfg, creds)
	require.NoError(t, err)
	svc := auth.NewService(cfg, creds, strategy, nil)

	e := echo.New()
	SetupRoutes(e, &Handlers{Auth: svc}, testJWTSecret)

	return &testServer{echo: e, mr: mr}
}

func (ts *testServer) request(method, path, body, credential string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if credential != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+credential)
	}

	rec := httptest.NewRecorder()
	ts.echo.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) login(t *testing.T, username, password string) LoginResponse {
	t.Helper()

	rec := ts.request(http.MethodPost, "/login", `{"username":"`+username+`","password":"`+password+`"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var response LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	return response
}

func TestRegister(t *testing.T) {
	ts := newTestServer(t, auth.StrategySession)

	t.Run("success", func(t *testing.T) {
		rec := ts.request(http.MethodPost, "/register", `{"username":"alice","password":"secret123"}`, "")
		assert.Equal(t, http.StatusCreated, rec.Code)

		var response RegisterResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
		assert.Equal(t, int64(1), response.UserID)
		assert.Contains(t, response.Message, "alice")
	})

	t.Run("duplicate username", func(t *testing.T) {
		rec := ts.request(http.MethodPost, "/register", `{"username":"alice","password":"other"}`, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "already exists")
	})

	t.Run("missing fields", func(t *testing.T) {
		rec := ts.request(http.MethodPost, "/register", `{"username":"","password":"secret123"}`, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "required")
	})
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t, auth.StrategySession)

	rec := ts.request(http.MethodPost, "/register", `{"username":"alice","password":"secret123"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	t.Run("success", func(t *testing.T) {
		response := ts.login(t, "alice", "secret123")
		assert.Equal(t, int64(1), response.UserID)
		assert.NotEmpty(t, response.Credential)
	})

	t.Run("wrong password and unknown user are indistinguishable", func(t *testing.T) {
		wrongPass := ts.request(http.MethodPost, "/login", `{"username":"alice","password":"wrong"}`, "")
		unknownUser := ts.request(http.MethodPost, "/login", `{"username":"mallory","password":"wrong"}`, "")

		assert.Equal(t, http.StatusUnauthorized, wrongPass.Code)
		assert.Equal(t, wrongPass.Code, unknownUser.Code)
		assert.Equal(t, wrongPass.Body.String(), unknownUser.Body.String())
	})

	t.Run("missing fields", func(t *testing.T) {
		rec := ts.request(http.MethodPost, "/login", `{"username":"alice","password":""}`, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestSessionLogoutFlow(t *testing.T) {
	ts := newTestServer(t, auth.StrategySession)

	ts.request(http.MethodPost, "/register", `{"username":"alice","password":"secret123"}`, "")
	login := ts.login(t, "alice", "secret123")

	// Logged in: the identity probe resolves
	rec := ts.request(http.MethodGet, "/api/whoami", "", login.Credential)
	require.Equal(t, http.StatusOK, rec.Code)

	var identity auth.Identity
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &identity))
	assert.Equal(t, "alice", identity.Username)
	assert.Equal(t, login.UserID, identity.UserID)

	// First logout succeeds
	rec = ts.request(http.MethodPost, "/logout", "", login.Credential)
	assert.Equal(t, http.StatusOK, rec.Code)

	// The session is dead: probe fails, repeated logout has nothing left
	rec = ts.request(http.MethodGet, "/api/whoami", "", login.Credential)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.request(http.MethodPost, "/logout", "", login.Credential)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Not logged in")
}

func TestTokenLogoutFlow(t *testing.T) {
	ts := newTestServer(t, auth.StrategyToken)

	ts.request(http.MethodPost, "/register", `{"username":"bob","password":"secret123"}`, "")
	login := ts.login(t, "bob", "secret123")

	// Token logout is a no-op: it succeeds every time
	for i := 0; i < 2; i++ {
		rec := ts.request(http.MethodPost, "/logout", "", login.Credential)
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	// The token is still accepted until it expires
	rec := ts.request(http.MethodGet, "/api/whoami", "", login.Credential)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWhoAmIToken(t *testing.T) {
	ts := newTestServer(t, auth.StrategyToken)

	ts.request(http.MethodPost, "/register", `{"username":"carol","password":"secret123"}`, "")
	login := ts.login(t, "carol", "secret123")

	t.Run("valid token", func(t *testing.T) {
		rec := ts.request(http.MethodGet, "/api/whoami", "", login.Credential)
		require.Equal(t, http.StatusOK, rec.Code)

		var identity auth.Identity
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &identity))
		assert.Equal(t, "carol", identity.Username)
	})

	t.Run("tampered token", func(t *testing.T) {
		tampered := login.Credential[:len(login.Credential)-2] + "xx"
		rec := ts.request(http.MethodGet, "/api/whoami", "", tampered)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("no token", func(t *testing.T) {
		rec := ts.request(http.MethodGet, "/api/whoami", "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestStoreUnavailable(t *testing.T) {
	ts := newTestServer(t, auth.StrategySession)
	ts.mr.Close()

	rec := ts.request(http.MethodPost, "/register", `{"username":"alice","password":"secret123"}`, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Registration failed")

	rec = ts.request(http.MethodPost, "/login", `{"username":"alice","password":"secret123"}`, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Login failed")
}

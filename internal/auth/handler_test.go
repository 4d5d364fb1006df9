package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gerefleet/console/internal/session"
	"github.com/gerefleet/console/internal/upstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type authStub struct {
	result *upstream.LoginResult
	err    error
}

func (a *authStub) Login(context.Context, string, string) (*upstream.LoginResult, error) {
	if a.err != nil {
		return nil, a.err
	}
	return a.result, nil
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func issueToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("unit-test"))
	require.NoError(t, err)
	return token
}

func newHandler(t *testing.T, stub *authStub) (AuthenticationHandler, session.Store) {
	t.Helper()
	store := session.NewMemoryStore()
	sessions := session.NewService(store, stub, zaptest.NewLogger(t))
	h := NewAuthenticationHandler(sessions, RateLimit{Requests: 100, Window: time.Minute}, zaptest.NewLogger(t))
	return h, store
}

func postLogin(h AuthenticationHandler, body, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)
	return rec
}

func TestLoginSuccess(t *testing.T) {
	token := issueToken(t, jwt.MapClaims{"roles": "ADMIN,USER"})
	h, store := newHandler(t, &authStub{result: &upstream.LoginResult{Token: token, Name: "Ana"}})

	rec := postLogin(h, `{"rpe":"E12345","password":"secret"}`, "application/json")

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	require.Nil(t, env.Error)

	var data struct {
		Name  string   `json:"name"`
		RPE   string   `json:"rpe"`
		Roles []string `json:"roles"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "Ana", data.Name)
	assert.Equal(t, "E12345", data.RPE)
	assert.Equal(t, []string{"ADMIN", "USER"}, data.Roles)

	stored, err := store.Get(context.Background(), session.KeyToken)
	require.NoError(t, err)
	assert.Equal(t, token, stored)
}

func TestLoginRejectsWrongContentType(t *testing.T) {
	h, _ := newHandler(t, &authStub{})

	rec := postLogin(h, `rpe=E12345`, "application/x-www-form-urlencoded")

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "unsupported_media_type", env.Error.Code)
}

func TestLoginRejectsUnknownFields(t *testing.T) {
	h, _ := newHandler(t, &authStub{})

	rec := postLogin(h, `{"rpe":"E12345","password":"secret","admin":true}`, "application/json")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "invalid_json", env.Error.Code)
}

func TestLoginValidation(t *testing.T) {
	h, _ := newHandler(t, &authStub{})

	rec := postLogin(h, `{"rpe":"E1"}`, "application/json")

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "validation_failed", env.Error.Code)

	var details []struct {
		Field string `json:"field"`
		Rule  string `json:"rule"`
	}
	require.NoError(t, json.Unmarshal(env.Error.Details, &details))
	require.Len(t, details, 2)
	assert.Equal(t, "RPE", details[0].Field)
	assert.Equal(t, "min", details[0].Rule)
	assert.Equal(t, "Password", details[1].Field)
	assert.Equal(t, "required", details[1].Rule)
}

func TestLoginInvalidCredentials(t *testing.T) {
	h, store := newHandler(t, &authStub{err: upstream.ErrUnauthorized})

	rec := postLogin(h, `{"rpe":"E12345","password":"wrong"}`, "application/json")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "unauthorized", env.Error.Code)

	stored, _ := store.Get(context.Background(), session.KeyToken)
	assert.Empty(t, stored)
}

func TestLoginUnreachableBackend(t *testing.T) {
	h, _ := newHandler(t, &authStub{err: upstream.ErrUnreachable})

	rec := postLogin(h, `{"rpe":"E12345","password":"secret"}`, "application/json")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "upstream_unreachable", env.Error.Code)
}

func TestLoginRateLimited(t *testing.T) {
	store := session.NewMemoryStore()
	sessions := session.NewService(store, &authStub{err: upstream.ErrUnauthorized}, zaptest.NewLogger(t))
	h := NewAuthenticationHandler(sessions, RateLimit{Requests: 2, Window: time.Minute}, zaptest.NewLogger(t))
	router := h.Routes()

	var last int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"rpe":"E12345","password":"wrong"}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		last = rec.Code
	}

	assert.Equal(t, http.StatusTooManyRequests, last)
}

func TestLogout(t *testing.T) {
	token := issueToken(t, jwt.MapClaims{"roles": "USER"})
	h, store := newHandler(t, &authStub{})
	require.NoError(t, store.Set(context.Background(), session.KeyToken, token))

	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/logout", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	stored, _ := store.Get(context.Background(), session.KeyToken)
	assert.Empty(t, stored)
}

// Me answers 200 for anonymous callers too: the shell uses it to decide what
// to render, it is not a protected resource.
func TestMeAnonymous(t *testing.T) {
	h, _ := newHandler(t, &authStub{})

	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	var data struct {
		Authenticated bool     `json:"authenticated"`
		Roles         []string `json:"roles"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.False(t, data.Authenticated)
}

func TestMeAuthenticated(t *testing.T) {
	token := issueToken(t, jwt.MapClaims{"roles": "ADMIN"})
	h, store := newHandler(t, &authStub{})
	require.NoError(t, store.Set(context.Background(), session.KeyToken, token))

	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	var data struct {
		Authenticated bool     `json:"authenticated"`
		Roles         []string `json:"roles"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.True(t, data.Authenticated)
	assert.Equal(t, []string{"ADMIN"}, data.Roles)
}

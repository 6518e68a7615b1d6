package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/simal-lang/simal/internal/compiler/lowering"
	"github.com/simal-lang/simal/internal/watch"
)

func jsonBody(s string) io.Reader {
	return strings.NewReader(s)
}

func TestHandleSystemReturnsSimpleByDefault(t *testing.T) {
	store := NewStore()
	store.Put("users", watch.FileResult{
		OK:     true,
		Simple: lowering.NewOrderedMap().Set("type", "microservices"),
		Full:   map[string]interface{}{"__type__": "System"},
	})

	srv := New(store, nil, zap.NewNop())
	req := httptest.NewRequest(http.MethodGet, "/systems/users", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "microservices", body["type"])
}

func TestHandleSystemFullVariant(t *testing.T) {
	store := NewStore()
	store.Put("users", watch.FileResult{
		OK:     true,
		Simple: lowering.NewOrderedMap().Set("type", "microservices"),
		Full:   map[string]interface{}{"__type__": "System"},
	})

	srv := New(store, nil, zap.NewNop())
	req := httptest.NewRequest(http.MethodGet, "/systems/users/full", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "System", body["__type__"])
}

func TestHandleSystemUnknownNameReturns404(t *testing.T) {
	srv := New(NewStore(), nil, zap.NewNop())
	req := httptest.NewRequest(http.MethodGet, "/systems/missing", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProtectedRouteRejectsMissingToken(t *testing.T) {
	authr, err := NewAuthenticator("secret", []byte("jwt-secret"), time.Hour)
	require.NoError(t, err)

	srv := New(NewStore(), authr, zap.NewNop())
	req := httptest.NewRequest(http.MethodGet, "/systems/users", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthFlowIssuesUsableSessionToken(t *testing.T) {
	authr, err := NewAuthenticator("secret", []byte("jwt-secret"), time.Hour)
	require.NoError(t, err)

	store := NewStore()
	store.Put("users", watch.FileResult{OK: true, Simple: lowering.NewOrderedMap().Set("type", "microservices")})
	srv := New(store, authr, zap.NewNop())

	authReq := httptest.NewRequest(http.MethodPost, "/auth", jsonBody(`{"token":"secret"}`))
	authRec := httptest.NewRecorder()
	srv.ServeHTTP(authRec, authReq)
	require.Equal(t, http.StatusOK, authRec.Code)

	var resp struct {
		SessionToken string `json:"session_token"`
	}
	require.NoError(t, json.Unmarshal(authRec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.SessionToken)

	req := httptest.NewRequest(http.MethodGet, "/systems/users", nil)
	req.Header.Set("Authorization", "Bearer "+resp.SessionToken)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthFlowRejectsWrongBootstrapToken(t *testing.T) {
	authr, err := NewAuthenticator("secret", []byte("jwt-secret"), time.Hour)
	require.NoError(t, err)

	srv := New(NewStore(), authr, zap.NewNop())
	req := httptest.NewRequest(http.MethodPost, "/auth", jsonBody(`{"token":"wrong"}`))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestNotifyUpdatesStoreAndBroadcasts(t *testing.T) {
	store := NewStore()
	srv := New(store, nil, zap.NewNop())
	srv.Notify("users", watch.FileResult{OK: false, Errors: []string{"boom"}})

	got, ok := store.Get("users")
	require.True(t, ok)
	assert.False(t, got.OK)
	assert.Equal(t, []string{"boom"}, got.Errors)
}

package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ratheeshkm/tailorhub/pkg/auth"
	"github.com/ratheeshkm/tailorhub/pkg/contextkeys"
	"github.com/ratheeshkm/tailorhub/pkg/observability"
)

func newTestGate(t *testing.T) (*SessionGate, *auth.Codec) {
	t.Helper()
	codec, err := auth.NewCodec([]byte("test-secret"))
	require.NoError(t, err)
	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)
	return NewSessionGate(codec, nil, nil, logger), codec
}

func echoAccountHandler(t *testing.T, sawAccount *int64) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := contextkeys.AccountID(r.Context()); ok {
			*sawAccount = id
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestSessionGate_PublicPathsPassThrough(t *testing.T) {
	gate, _ := newTestGate(t)

	var sawAccount int64
	handler := gate.Handler(echoAccountHandler(t, &sawAccount))

	for _, path := range []string{"/", "/login", "/signup", "/api/auth/login", "/api/auth/signup", "/static/app.css"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, "path %s", path)
	}
	assert.Zero(t, sawAccount)
}

func TestSessionGate_RootIsExactMatch(t *testing.T) {
	gate, _ := newTestGate(t)
	handler := gate.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestSessionGate_ProtectedAPIWithoutToken(t *testing.T) {
	gate, _ := newTestGate(t)
	handler := gate.Handler(http.NotFoundHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/customers", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Header().Get("Location"))
}

func TestSessionGate_ProtectedPageRedirects(t *testing.T) {
	gate, _ := newTestGate(t)
	handler := gate.Handler(http.NotFoundHandler())

	req := httptest.NewRequest(http.MethodGet, "/customers", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestSessionGate_ValidTokenAnnotatesContext(t *testing.T) {
	gate, codec := newTestGate(t)

	var sawAccount int64
	handler := gate.Handler(echoAccountHandler(t, &sawAccount))

	token, err := codec.Issue(42, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/customers", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(42), sawAccount)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestSessionGate_TamperedTokenDenied(t *testing.T) {
	gate, codec := newTestGate(t)
	handler := gate.Handler(http.NotFoundHandler())

	token, err := codec.Issue(42, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/customers", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: token + "x"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionGate_ExpiredTokenDenied(t *testing.T) {
	gate, codec := newTestGate(t)
	handler := gate.Handler(http.NotFoundHandler())

	token, err := codec.Issue(42, -time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

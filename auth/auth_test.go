package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionCookie(t *testing.T, uid string) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	CreateSession(rec, uid)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func TestSessionRoundTrip(t *testing.T) {
	SetSecret("test-secret")
	t.Cleanup(func() { SetSecret("") })

	uid := "3f1c2a9e-7d5b-4c1e-9a0f-2b6d8e4c1a77"
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(sessionCookie(t, uid))

	got, ok := ParseSession(req)
	require.True(t, ok)
	assert.Equal(t, uid, got)
}

func TestParseSession_RejectsTampering(t *testing.T) {
	SetSecret("test-secret")
	t.Cleanup(func() { SetSecret("") })

	c := sessionCookie(t, "user-a")
	c.Value = "user-b" + c.Value[len("user-a"):]

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	_, ok := ParseSession(req)
	assert.False(t, ok)

	for _, v := range []string{"", "nosig", ".sig"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: v})
		_, ok := ParseSession(req)
		assert.False(t, ok, v)
	}
}

func TestParseSession_SecretRotationInvalidates(t *testing.T) {
	SetSecret("old")
	c := sessionCookie(t, "user-a")
	SetSecret("new")
	t.Cleanup(func() { SetSecret("") })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	_, ok := ParseSession(req)
	assert.False(t, ok)
}

func TestRequireAuth(t *testing.T) {
	SetSecret("test-secret")
	t.Cleanup(func() {
		SetSecret("")
		SetUserVerifier(nil)
	})

	h := Middleware(RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, _ := UserIDFromContext(r.Context())
		_, _ = w.Write([]byte(uid))
	})))

	// no cookie
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"unauthenticated"`)

	// valid cookie
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(sessionCookie(t, "user-a"))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-a", rec.Body.String())

	// verifier rejects deleted user
	SetUserVerifier(func(_ context.Context, uid string) bool { return uid != "user-a" })
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(sessionCookie(t, "user-a"))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

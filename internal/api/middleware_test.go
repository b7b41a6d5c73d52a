package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, key []byte, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		t.Fatalf("token signing failed: %v", err)
	}
	return token
}

func TestAuthMiddleware(t *testing.T) {
	signingKey := []byte("test-signing-key")

	var gotSessionID string
	var nextCalled bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
		gotSessionID, _ = GetSessionID(r.Context())
	})
	handler := AuthMiddleware(signingKey)(next)

	run := func(authHeader string) *httptest.ResponseRecorder {
		nextCalled = false
		gotSessionID = ""
		req := httptest.NewRequest(http.MethodGet, "/projects", nil)
		if authHeader != "" {
			req.Header.Set("Authorization", authHeader)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	t.Run("rejects a missing authorization header", func(t *testing.T) {
		rec := run("")
		if rec.Code != http.StatusUnauthorized || nextCalled {
			t.Fatalf("expected 401 without reaching the handler, got %d", rec.Code)
		}
	})

	t.Run("rejects a header without the bearer prefix", func(t *testing.T) {
		rec := run("Token abc")
		if rec.Code != http.StatusUnauthorized || nextCalled {
			t.Fatalf("expected 401 for malformed header, got %d", rec.Code)
		}
	})

	t.Run("rejects a token signed with a different key", func(t *testing.T) {
		token := signedToken(t, []byte("other-key"), jwt.MapClaims{
			"sid": "session-1",
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		rec := run("Bearer " + token)
		if rec.Code != http.StatusUnauthorized || nextCalled {
			t.Fatalf("expected 401 for wrong signing key, got %d", rec.Code)
		}
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		token := signedToken(t, signingKey, jwt.MapClaims{
			"sid": "session-1",
			"exp": time.Now().Add(-time.Minute).Unix(),
		})
		rec := run("Bearer " + token)
		if rec.Code != http.StatusUnauthorized || nextCalled {
			t.Fatalf("expected 401 for expired token, got %d", rec.Code)
		}
	})

	t.Run("rejects a valid token without a session claim", func(t *testing.T) {
		token := signedToken(t, signingKey, jwt.MapClaims{
			"sub": "someone",
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		rec := run("Bearer " + token)
		if rec.Code != http.StatusUnauthorized || nextCalled {
			t.Fatalf("expected 401 without sid claim, got %d", rec.Code)
		}
	})

	t.Run("passes the session id through the context", func(t *testing.T) {
		token := signedToken(t, signingKey, jwt.MapClaims{
			"sid": "session-42",
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		rec := run("Bearer " + token)
		if rec.Code != http.StatusOK || !nextCalled {
			t.Fatalf("expected request to reach the handler, got %d", rec.Code)
		}
		if gotSessionID != "session-42" {
			t.Fatalf("expected session id in context, got %q", gotSessionID)
		}
	})
}

package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

type stubVerifier struct {
	userID string
	err    error
	tokens []string
}

func (v *stubVerifier) Verify(token string) (string, error) {
	v.tokens = append(v.tokens, token)
	return v.userID, v.err
}

func runAuth(t *testing.T, verifier TokenVerifier, authHeader string) (*httptest.ResponseRecorder, string) {
	t.Helper()
	e := echo.New()
	var gotUserID string
	e.GET("/protected", func(c echo.Context) error {
		gotUserID, _ = c.Get(UserIDKey).(string)
		return c.NoContent(http.StatusOK)
	}, BearerAuth(verifier))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec, gotUserID
}

func TestBearerAuth_MissingToken(t *testing.T) {
	v := &stubVerifier{}
	rec, _ := runAuth(t, v, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if len(v.tokens) != 0 {
		t.Fatalf("verifier called without a token")
	}
}

func TestBearerAuth_InvalidToken(t *testing.T) {
	v := &stubVerifier{err: errors.New("rejected")}
	rec, _ := runAuth(t, v, "Bearer bad-token")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "invalid token") {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestBearerAuth_ValidTokenSetsUserID(t *testing.T) {
	v := &stubVerifier{userID: "user-42"}
	rec, userID := runAuth(t, v, "Bearer good-token")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if userID != "user-42" {
		t.Fatalf("user id not set on context: %q", userID)
	}
	if len(v.tokens) != 1 || v.tokens[0] != "good-token" {
		t.Fatalf("unexpected verified tokens %v", v.tokens)
	}
}

func TestBearerAuth_SchemeIsCaseInsensitive(t *testing.T) {
	v := &stubVerifier{userID: "user-42"}
	rec, _ := runAuth(t, v, "bearer good-token")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestSupabaseVerifier_ResolvesUserID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/user" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("apikey") != "anon-key" {
			t.Errorf("missing apikey header")
		}
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("unexpected auth header %q", r.Header.Get("Authorization"))
		}
		w.Write([]byte(`{"id":"user-7","email":"a@b.c"}`))
	}))
	defer srv.Close()

	v := NewSupabaseVerifier(srv.URL, "anon-key")
	userID, err := v.Verify("tok")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if userID != "user-7" {
		t.Fatalf("unexpected user id %q", userID)
	}
}

func TestSupabaseVerifier_RejectedToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid JWT"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	if _, err := NewSupabaseVerifier(srv.URL, "anon-key").Verify("expired"); err == nil {
		t.Fatalf("expected error on rejected token")
	}
}

func TestSupabaseVerifier_MissingConfig(t *testing.T) {
	if _, err := NewSupabaseVerifier("", "").Verify("tok"); err == nil {
		t.Fatalf("expected error without configuration")
	}
}

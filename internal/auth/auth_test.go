package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func TestIssueAndVerify(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	token, err := m.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	userID, err := m.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if userID != "user-1" {
		t.Fatalf("expected user-1, got %q", userID)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	for _, token := range []string{"", "not.a.jwt", "aaaa.bbbb.cccc"} {
		if _, err := m.Verify(token); err != ErrInvalidToken {
			t.Fatalf("token %q: expected ErrInvalidToken, got %v", token, err)
		}
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer := NewManager("secret-one", time.Hour)
	verifier := NewManager("secret-two", time.Hour)

	token, err := issuer.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, err := verifier.Verify(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	m := NewManager("test-secret", -time.Minute)

	token, err := m.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, err := m.Verify(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("supersecret")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "supersecret" {
		t.Fatalf("hash must not equal plaintext")
	}
	if !CheckPassword(hash, "supersecret") {
		t.Fatalf("expected match for correct password")
	}
	if CheckPassword(hash, "wrong") {
		t.Fatalf("expected mismatch for wrong password")
	}
}

func TestMiddleware(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	token, err := m.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	e := echo.New()
	handler := Middleware(m)(func(c echo.Context) error {
		return c.String(http.StatusOK, UserID(c))
	})

	run := func(authorization, query string) (*httptest.ResponseRecorder, error) {
		target := "/v1/me"
		if query != "" {
			target += "?" + query
		}
		req := httptest.NewRequest(http.MethodGet, target, nil)
		if authorization != "" {
			req.Header.Set("Authorization", authorization)
		}
		rec := httptest.NewRecorder()
		return rec, handler(e.NewContext(req, rec))
	}

	rec, err := run("Bearer "+token, "")
	if err != nil {
		t.Fatalf("expected success with bearer header, got %v", err)
	}
	if rec.Body.String() != "user-1" {
		t.Fatalf("expected user-1 in context, got %q", rec.Body.String())
	}

	if rec, err = run("", "token="+token); err != nil {
		t.Fatalf("expected success with token query param, got %v", err)
	}
	if rec.Body.String() != "user-1" {
		t.Fatalf("expected user-1 in context, got %q", rec.Body.String())
	}

	for name, header := range map[string]string{
		"missing":   "",
		"malformed": "Bearer nope",
		"bare":      token,
	} {
		if _, err := run(header, ""); err == nil {
			t.Fatalf("%s credentials: expected 401 error", name)
		} else if he, ok := err.(*echo.HTTPError); !ok || he.Code != http.StatusUnauthorized {
			t.Fatalf("%s credentials: expected 401, got %v", name, err)
		}
	}
}

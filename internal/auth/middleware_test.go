package auth

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestAuthenticateFindsToken(t *testing.T) {
	tokens := NewTokenService("test", time.Hour)
	tok, _ := tokens.Issue("testy", false)

	cases := []struct {
		name string
		req  func() *http.Request
	}{
		{"header", func() *http.Request {
			r := httptest.NewRequest(http.MethodGet, "/users", nil)
			r.Header.Set("Authorization", "Bearer "+tok)
			return r
		}},
		{"query", func() *http.Request {
			return httptest.NewRequest(http.MethodGet, "/users?_token="+tok, nil)
		}},
		{"body", func() *http.Request {
			r := httptest.NewRequest(http.MethodPatch, "/users/testy", strings.NewReader(`{"first_name":"T","_token":"`+tok+`"}`))
			r.Header.Set("Content-Type", "application/json")
			return r
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var (
				got  *Claims
				body string
			)
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got, _ = ClaimsFrom(r.Context())
				b, _ := io.ReadAll(r.Body)
				body = string(b)
			})
			req := tc.req()
			Authenticate(tokens, zap.NewNop().Sugar())(next).ServeHTTP(httptest.NewRecorder(), req)
			if got == nil || got.Username != "testy" {
				t.Fatalf("claims = %+v", got)
			}
			if tc.name == "body" && !strings.Contains(body, `"first_name":"T"`) {
				t.Errorf("body not restored: %q", body)
			}
		})
	}
}

func TestAuthenticateIgnoresBadToken(t *testing.T) {
	tokens := NewTokenService("test", time.Hour)
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if _, ok := ClaimsFrom(r.Context()); ok {
			t.Error("claims set for a bad token")
		}
	})
	req := httptest.NewRequest(http.MethodGet, "/companies?_token=junk", nil)
	Authenticate(tokens, zap.NewNop().Sugar())(next).ServeHTTP(httptest.NewRecorder(), req)
	if !called {
		t.Error("request did not pass through")
	}
}

func TestRequireUser(t *testing.T) {
	tokens := NewTokenService("test", time.Hour)
	tok, _ := tokens.Issue("user2", false)
	logger := zap.NewNop().Sugar()

	mux := http.NewServeMux()
	mux.Handle("PATCH /users/{username}", RequireUser("username", logger, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))
	h := Authenticate(tokens, logger)(mux)

	cases := []struct {
		path   string
		auth   string
		status int
	}{
		{"/users/user2", "Bearer " + tok, http.StatusOK},
		{"/users/andrew", "Bearer " + tok, http.StatusUnauthorized},
		{"/users/user2", "", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPatch, tc.path, strings.NewReader(`{}`))
		if tc.auth != "" {
			req.Header.Set("Authorization", tc.auth)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != tc.status {
			t.Errorf("%s %q: status = %d, want %d", tc.path, tc.auth, rec.Code, tc.status)
		}
		if tc.status == http.StatusUnauthorized {
			if got := strings.TrimSpace(rec.Body.String()); got != `{"status":401,"message":"Unauthorized"}` {
				t.Errorf("body = %s", got)
			}
		}
	}
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func sessionCookie(t *testing.T, g *SessionGate, name string) *http.Cookie {
	t.Helper()

	w := httptest.NewRecorder()
	g.SetSessionCookie(w, name)
	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatalf("no cookies set by SetSessionCookie")
	}
	return cookies[0]
}

func TestSessionGate_WithValidCookie(t *testing.T) {
	g := NewSessionGate("test-secret", func() bool { return true })

	nextCalled := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
		name, ok := ShopperFromContext(r.Context())
		if !ok {
			t.Fatalf("shopper not in context")
		}
		if name != "Ada L." {
			t.Fatalf("shopper from context = %q, want %q", name, "Ada L.")
		}
	})

	r := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.AddCookie(sessionCookie(t, g, "Ada L."))

	g.Middleware(next).ServeHTTP(httptest.NewRecorder(), r)

	if !nextCalled {
		t.Fatalf("next handler was not called")
	}
}

func TestSessionGate_Rejects(t *testing.T) {
	signed := NewSessionGate("test-secret", func() bool { return true })
	other := NewSessionGate("other-secret", func() bool { return true })
	deleted := NewSessionGate("test-secret", func() bool { return false })

	tests := []struct {
		name   string
		gate   *SessionGate
		cookie *http.Cookie
	}{
		{name: "no cookie", gate: signed},
		{name: "garbage cookie", gate: signed, cookie: &http.Cookie{Name: sessionCookieName, Value: "garbage"}},
		{name: "foreign signature", gate: signed, cookie: sessionCookie(t, other, "Ada")},
		{name: "account deleted", gate: deleted, cookie: sessionCookie(t, signed, "Ada")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatalf("next handler should not be called")
			})

			r := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.cookie != nil {
				r.AddCookie(tt.cookie)
			}
			w := httptest.NewRecorder()

			tt.gate.Middleware(next).ServeHTTP(w, r)

			if w.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want %d", w.Code, http.StatusUnauthorized)
			}
		})
	}
}

func TestSessionGate_ClearCookie(t *testing.T) {
	g := NewSessionGate("", nil)

	w := httptest.NewRecorder()
	g.ClearSessionCookie(w)

	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge >= 0 {
		t.Fatalf("expected expiring session cookie, got %+v", cookies)
	}
}

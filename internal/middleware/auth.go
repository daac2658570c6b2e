// Package middleware содержит HTTP middleware симулятора SimuShop.
package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"net/http"
	"strings"
	"time"
)

type contextKey string

const shopperKey contextKey = "shopper"

const (
	sessionCookieName = "simushop_session"
	sessionCookieTTL  = 365 * 24 * time.Hour
)

// SessionGate пропускает к магазину только зарегистрированного покупателя.
// Покупатель подтверждается подписанным cookie с его именем.
type SessionGate struct {
	secretKey []byte
	signedUp  func() bool
}

// NewSessionGate создаёт проверку сессии. signedUp сообщает, зарегистрирован ли покупатель сейчас;
// после удаления аккаунта ранее выданный cookie перестаёт действовать.
func NewSessionGate(secret string, signedUp func() bool) *SessionGate {
	key := []byte(secret)
	if len(key) == 0 {
		randomKey := make([]byte, 32)
		if _, err := rand.Read(randomKey); err == nil {
			key = randomKey
		} else {
			key = []byte("simushop-session-key")
		}
	}

	return &SessionGate{
		secretKey: key,
		signedUp:  signedUp,
	}
}

// Middleware проверяет cookie сессии и добавляет имя покупателя в контекст запроса.
func (g *SessionGate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		name, ok := g.parseCookie(cookie.Value)
		if !ok || (g.signedUp != nil && !g.signedUp()) {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), shopperKey, name)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SetSessionCookie выдаёт cookie сессии для покупателя.
func (g *SessionGate) SetSessionCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    g.sign(name),
		Path:     "/",
		Expires:  time.Now().Add(sessionCookieTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie удаляет cookie сессии.
func (g *SessionGate) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (g *SessionGate) sign(name string) string {
	encoded := base64.RawURLEncoding.EncodeToString([]byte(name))
	return encoded + "." + g.signature(encoded)
}

func (g *SessionGate) signature(encoded string) string {
	mac := hmac.New(sha256.New, g.secretKey)
	mac.Write([]byte(encoded))
	return hex.EncodeToString(mac.Sum(nil))
}

func (g *SessionGate) parseCookie(value string) (string, bool) {
	encoded, signature, found := strings.Cut(value, ".")
	if !found {
		return "", false
	}

	if !hmac.Equal([]byte(signature), []byte(g.signature(encoded))) {
		return "", false
	}

	name, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil || len(name) == 0 {
		return "", false
	}

	return string(name), true
}

// ShopperFromContext извлекает имя покупателя из контекста запроса.
func ShopperFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(shopperKey).(string)
	return name, ok
}

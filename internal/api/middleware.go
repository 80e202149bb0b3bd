// Файл: internal/api/middleware.go
package api

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"net/http"
	"strings"
)

// DriverUIDContextKey - ключ для сохранения UID водителя в контексте запроса.
var DriverUIDContextKey = &contextKey{"DriverUID"}

type contextKey struct {
	name string
}

// AuthMiddleware проверяет заголовок X-Driver-Auth вида "uid:подпись",
// где подпись - hex(HMAC-SHA256(uid, secret)).
func AuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("X-Driver-Auth")
			if authHeader == "" {
				http.Error(w, "Unauthorized: Missing X-Driver-Auth header", http.StatusUnauthorized)
				return
			}

			uid, sig, ok := strings.Cut(authHeader, ":")
			if !ok || uid == "" {
				http.Error(w, "Unauthorized: Malformed X-Driver-Auth header", http.StatusUnauthorized)
				return
			}

			if !validateSignature(uid, sig, secret) {
				log.Printf("AuthMiddleware: неверная подпись для UID %s.", uid)
				http.Error(w, "Unauthorized: Invalid signature", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), DriverUIDContextKey, uid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// DriverUID достает UID водителя, положенный AuthMiddleware.
func DriverUID(r *http.Request) string {
	uid, _ := r.Context().Value(DriverUIDContextKey).(string)
	return uid
}

func validateSignature(uid, sig, secret string) bool {
	if secret == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(uid))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(sig)))
}

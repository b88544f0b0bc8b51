package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"fieldops/internal/auth"
	"fieldops/internal/logger"

	"go.uber.org/zap"
)

const identityKey contextKey = "identity"

// Authenticate читает подписанный токен из cookie и кладёт
// username/role в контекст запроса. Без валидного токена - 401.
func Authenticate(tokens *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(auth.CookieName)
			if err != nil {
				logger.Warn("HTTP: Запрос без токена",
					zap.String("path", r.URL.Path),
					zap.String("client_ip", r.RemoteAddr))
				unauthorized(w, r, "требуется вход")
				return
			}

			identity, err := tokens.Parse(cookie.Value)
			if err != nil {
				logger.Warn("HTTP: Неверный или истёкший токен",
					zap.String("path", r.URL.Path),
					zap.String("client_ip", r.RemoteAddr))
				unauthorized(w, r, "неверный или истёкший токен")
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole пропускает только перечисленные роли, иначе 403
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := GetIdentity(r.Context())
			if identity == nil {
				unauthorized(w, r, "требуется вход")
				return
			}

			for _, role := range roles {
				if identity.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			logger.Warn("HTTP: Доступ запрещён",
				zap.String("username", identity.Username),
				zap.String("role", identity.Role),
				zap.String("path", r.URL.Path))

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			json.NewEncoder(w).Encode(map[string]any{
				"error":      "FORBIDDEN",
				"message":    "роль не даёт доступа к ресурсу",
				"request_id": GetRequestID(r.Context()),
			})
		})
	}
}

func GetIdentity(ctx context.Context) *auth.Identity {
	if identity, ok := ctx.Value(identityKey).(*auth.Identity); ok {
		return identity
	}
	return nil
}

// WithIdentity - для тестов хендлеров
func WithIdentity(ctx context.Context, identity *auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

func unauthorized(w http.ResponseWriter, r *http.Request, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]any{
		"error":      "UNAUTHORIZED",
		"message":    message,
		"request_id": GetRequestID(r.Context()),
	})
}

package middlewarectx

import (
	"context"
	"net/http"
	"strings"

	"github.com/examprep/entitlement-service/internal/lib/jwt"
)

// OptionalJWTMiddleware пытается разобрать JWT из заголовка Authorization
// и добавить данные пользователя в контекст, но пропускает запрос дальше
// и без токена. Используется маршрутами, отвечающими и анонимам,
// например статусом биллинга.
func OptionalJWTMiddleware(maker jwt.Maker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := maker.ParseToken(strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), User, claims.Username)
			ctx = context.WithValue(ctx, Role, claims.Role)
			ctx = context.WithValue(ctx, UserUID, claims.UserUID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

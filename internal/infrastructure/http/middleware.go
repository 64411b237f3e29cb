package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const merchantIDKey contextKey = "merchant-id"

// Authenticator accepts HS256 bearer tokens whose userId claim names the
// merchant the request acts for.
type Authenticator struct {
	Secret []byte
}

func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			WriteError(w, http.StatusUnauthorized, "unauthorized", "Authorization header required")
			return
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
			return a.Secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			WriteError(w, http.StatusUnauthorized, "unauthorized", "Invalid token")
			return
		}

		merchantID, _ := claims["userId"].(string)
		if merchantID == "" {
			WriteError(w, http.StatusUnauthorized, "unauthorized", "Invalid token")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithMerchantID(r.Context(), merchantID)))
	})
}

func WithMerchantID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, merchantIDKey, id)
}

func MerchantID(ctx context.Context) string {
	id, _ := ctx.Value(merchantIDKey).(string)
	return id
}

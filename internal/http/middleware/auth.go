package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/detroitcommons/commons/internal/http/respond"
)

type contextKey string

const identityKey contextKey = "admin-identity"

// AdminAuth guards administrative routes with an HS256 bearer token. The
// token subject (an email) becomes the approver/rejector identity recorded on
// lifecycle transitions.
func AdminAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")

			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || token == "" {
				respond.Error(w, http.StatusUnauthorized, respond.CodeUnauthorized, "missing bearer token")
				return
			}

			subject, err := verify(token, secret)
			if err != nil {
				respond.Error(w, http.StatusUnauthorized, respond.CodeUnauthorized, "invalid bearer token")
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func verify(tokenStr, secret string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}

		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}

	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", fmt.Errorf("token has no subject")
	}

	return subject, nil
}

// Identity returns the admin identity attached by AdminAuth, or "" when the
// request did not pass through it.
func Identity(ctx context.Context) string {
	if v, ok := ctx.Value(identityKey).(string); ok {
		return v
	}

	return ""
}

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/omliv423/money-tracker-sub001/internal/auth"
)

type contextKey string

const (
	userIDKey      contextKey = "user_id"
	householdIDKey contextKey = "household_id"
)

func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok
}

func HouseholdIDFromContext(ctx context.Context) (string, bool) {
	householdID, ok := ctx.Value(householdIDKey).(string)
	return householdID, ok
}

func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				http.Error(w, "invalid authorization header", http.StatusUnauthorized)
				return
			}
			claims, err := auth.ParseToken(secret, parts[1])
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
			ctx = context.WithValue(ctx, householdIDKey, claims.HouseholdID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

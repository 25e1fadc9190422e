package middleware

import (
	"context"
	"net/http"

	"innkeep/pkg/logger"
)

const (
	UserIDKey     contextKey = "user_id"
	AuthHeaderKey contextKey = "auth_header"
)

// Identity extracts the caller established by the upstream auth layer.
// Token verification happens outside this system; by the time a request
// arrives, the gateway has already verified the credential and stamped the
// subject into X-User-ID. The raw Authorization header is kept so
// inter-service calls can forward it unchanged.
func Identity(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			userID := r.Header.Get("X-User-ID")

			if authHeader == "" || userID == "" {
				log.Warn("Unauthenticated request rejected",
					"request_id", requestIDFromContext(r.Context()),
					"path", r.URL.Path,
					"has_authorization", authHeader != "",
					"has_user_id", userID != "",
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"Authentication required"}`))
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			ctx = context.WithValue(ctx, AuthHeaderKey, authHeader)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func UserIDFromContext(ctx context.Context) string {
	if v := ctx.Value(UserIDKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

func AuthHeaderFromContext(ctx context.Context) string {
	if v := ctx.Value(AuthHeaderKey); v != nil {
		if h, ok := v.(string); ok {
			return h
		}
	}
	return ""
}

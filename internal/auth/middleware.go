package auth

import (
	"context"
	"net/http"
	"strings"

	"argip-api/internal/apperr"
	"argip-api/internal/middleware"
	"argip-api/internal/models"
)

type contextKey string

const userKey = contextKey("user")

// UserFinder resolves a token subject to a stored user.
type UserFinder interface {
	UserByUsername(ctx context.Context, username string) (*models.User, error)
}

// JWTMiddleware admits requests carrying a valid bearer token for an existing
// user and stores that user in the request context. Every rejection is the
// same 401 so callers cannot tell a bad token from a deleted user.
func JWTMiddleware(users UserFinder, tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := middleware.LoggerFromContext(r.Context())

			tokenStr, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				middleware.ErrorResponse(w, r, apperr.ErrUnauthenticated)
				return
			}

			subject, err := tokens.Verify(tokenStr)
			if err != nil {
				log.WithField("reason", apperr.KindOf(err).String()).Debug("token rejected")
				middleware.ErrorResponse(w, r, apperr.ErrUnauthenticated)
				return
			}

			user, err := users.UserByUsername(r.Context(), subject)
			if err != nil {
				if apperr.KindOf(err) == apperr.KindNotFound {
					log.WithField("username", subject).Debug("token subject no longer exists")
					err = apperr.ErrUnauthenticated
				}
				middleware.ErrorResponse(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// UserFromContext returns the user JWTMiddleware authenticated.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userKey).(*models.User)
	return user, ok && user != nil
}

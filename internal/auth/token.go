package auth

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/inkpress/inkpress/internal/model"
)

// TokenProvider authenticates admin requests with a single static bearer
// token. It is the default for self-hosted deployments where a full
// identity provider is overkill.
type TokenProvider struct {
	token  string
	userID model.UserID
}

func NewTokenProvider(token string, userID model.UserID) *TokenProvider {
	return &TokenProvider{token: token, userID: userID}
}

func (t *TokenProvider) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if t.token == "" {
				authLogger.Warn().Msg("Admin token not configured, rejecting request")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			presented := bearerToken(r)
			if subtle.ConstantTimeCompare([]byte(presented), []byte(t.token)) != 1 {
				authLogger.Debug().Str("path", r.URL.Path).Msg("Rejected request with bad token")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithUserID(r.Context(), t.userID)))
		})
	}
}

func (t *TokenProvider) UserID(r *http.Request) (model.UserID, error) {
	id, ok := UserIDFromContext(r.Context())
	if !ok {
		return "", errors.New("no user id in request context")
	}
	return id, nil
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

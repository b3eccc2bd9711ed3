package auth

import (
	"errors"
	"net/http"

	"github.com/clerk/clerk-sdk-go/v2"
	clerkhttp "github.com/clerk/clerk-sdk-go/v2/http"

	"github.com/inkpress/inkpress/internal/model"
)

// ClerkProvider authenticates admin requests against Clerk sessions,
// accepting either an Authorization header or the __session cookie that
// Clerk's front-end SDK sets.
type ClerkProvider struct {
	cookieExtractor clerkhttp.AuthorizationOption
}

func NewClerkProvider(clerkKey string) *ClerkProvider {
	clerk.SetKey(clerkKey)

	return &ClerkProvider{
		cookieExtractor: clerkhttp.AuthorizationJWTExtractor(func(r *http.Request) string {
			cookie, err := r.Cookie("__session")
			if err != nil || cookie == nil {
				return ""
			}
			return cookie.Value
		}),
	}
}

func (c *ClerkProvider) Middleware() func(http.Handler) http.Handler {
	verify := clerkhttp.WithHeaderAuthorization(c.cookieExtractor)
	return func(next http.Handler) http.Handler {
		return verify(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := clerk.SessionClaimsFromContext(r.Context()); !ok {
				authLogger.Debug().Str("path", r.URL.Path).Msg("Rejected request without session claims")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}

func (c *ClerkProvider) UserID(r *http.Request) (model.UserID, error) {
	claims, ok := clerk.SessionClaimsFromContext(r.Context())
	if !ok {
		return "", errors.New("no session claims in request context")
	}
	return model.UserID(claims.Subject), nil
}

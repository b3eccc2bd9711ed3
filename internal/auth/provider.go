// Package auth guards the admin API. Two providers are available: Clerk
// sessions for hosted deployments and a static bearer token for
// self-hosted ones.
package auth

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/inkpress/inkpress/internal/model"
)

var authLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	authLogger = l
}

// Provider authenticates admin requests. Middleware rejects
// unauthenticated requests before they reach a handler; UserID resolves
// the caller of an already-authenticated request.
type Provider interface {
	Middleware() func(http.Handler) http.Handler

	UserID(r *http.Request) (model.UserID, error)
}

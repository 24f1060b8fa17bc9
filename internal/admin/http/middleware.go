package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/wardenhq/warden/internal/admin/service"
	"github.com/wardenhq/warden/pkg/httpx"
	"github.com/wardenhq/warden/pkg/slogx"
)

type actorContextKey struct{}

// ActorFromContext returns the authenticated actor placed by
// AuthnMiddleware. The second return is false on unauthenticated
// requests, which only happens on routes missing the middleware.
func ActorFromContext(ctx context.Context) (service.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(service.Actor)
	return actor, ok
}

// AuthnMiddleware resolves the Bearer token against the identity
// provider and attaches the local actor to the request context.
// Requests without a resolvable, non-deleted local account are
// rejected here.
func AuthnMiddleware(sessions *service.SessionService) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				httpx.WriteError(w, http.StatusUnauthorized,
					"unauthenticated", "Missing Bearer token")
				return
			}

			actor, err := sessions.ResolveIdentity(r.Context(), raw)
			if err != nil {
				writeServiceError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), actorContextKey{}, actor)
			ctx = slogx.WithContext(ctx, slogx.FromContext(ctx).With("actor_id", actor.User.ID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) <= len(prefix) || !strings.EqualFold(auth[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(auth[len(prefix):])
}

package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	modelauth "github.com/symptomsync/healthai/backend/internal/model/auth"
	"github.com/symptomsync/healthai/backend/internal/service/auth"
	"github.com/symptomsync/healthai/backend/pkg/utils"
)

// SessionCookie carries the access token for browser clients.
const SessionCookie = "sb-access-token"

// AccessToken extracts the bearer token from the Authorization header, the
// session cookie or the access_token query parameter, in that order. The
// query parameter exists for websocket and EventSource clients.
func AccessToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := r.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return strings.TrimSpace(r.URL.Query().Get("access_token"))
}

// RequireSession resolves the caller and stores the principal in the request
// context. Requests without a valid session get 401 with a redirect to the
// login page.
func RequireSession(resolver auth.Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := AccessToken(r)
			if token == "" {
				utils.RespondRedirect(w, http.StatusUnauthorized, "unauthenticated", auth.LoginRoute)
				return
			}

			user, err := resolver.CurrentUser(r.Context(), token)
			if err != nil || user.ID == "" {
				slog.Debug("session rejected",
					"component", "session",
					"request_id", middleware.GetReqID(r.Context()),
					"error", err,
				)
				utils.RespondRedirect(w, http.StatusUnauthorized, "unauthenticated", auth.LoginRoute)
				return
			}

			ctx := modelauth.WithPrincipal(r.Context(), modelauth.Principal{User: user, AccessToken: token})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

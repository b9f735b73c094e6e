package web

import (
	"net/http"

	"github.com/JonMunkholm/LinkSort/internal/core"
	"github.com/JonMunkholm/LinkSort/internal/logging"
	"github.com/google/uuid"
)

const (
	// SessionCookie holds the browser's session id.
	SessionCookie = "linksort_session"

	// SessionHeader lets API clients without cookies pin a session.
	SessionHeader = "X-Session-ID"
)

// sessions attaches a session id to every request. Browser sessions get their
// cookie re-issued on each request so it expires after TTL of inactivity, like
// the server-side session. Sessions pinned by header get no cookie.
func (s *Server) sessions(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, fromHeader := sessionID(r)
		if id == "" {
			id = uuid.NewString()
		}
		if !fromHeader {
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    id,
				Path:     "/",
				MaxAge:   int(s.cfg.Session.TTL.Seconds()),
				HttpOnly: true,
				Secure:   s.cfg.Session.CookieSecure,
				SameSite: http.SameSiteLaxMode,
			})
		}
		w.Header().Set(SessionHeader, id)

		ctx := core.ContextWithSessionID(r.Context(), id)
		ctx = logging.NewContext(ctx, logging.FromContext(ctx).With("session", id[:8]))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// sessionID returns the canonical id from the session header or cookie, or ""
// when neither holds a valid uuid. fromHeader reports which one supplied it.
func sessionID(r *http.Request) (id string, fromHeader bool) {
	if id, ok := parseSessionID(r.Header.Get(SessionHeader)); ok {
		return id, true
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		if id, ok := parseSessionID(c.Value); ok {
			return id, false
		}
	}
	return "", false
}

func parseSessionID(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", false
	}
	return id.String(), true
}

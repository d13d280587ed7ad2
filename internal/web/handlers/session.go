package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/blockedby/npb-dashboard/internal/dashboard"
	"github.com/blockedby/npb-dashboard/internal/web"
)

type sessionCtxKey struct{}

// SessionMiddleware attaches the dashboard session named by the session
// cookie, creating one when it is missing or expired. The cookie is re-issued
// on every request so its expiry tracks the idle TTL.
func SessionMiddleware(store SessionStore, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id string
			if c, err := r.Cookie(web.SessionCookie); err == nil {
				id = c.Value
			}

			sess, _ := store.GetOrCreate(id)
			http.SetCookie(w, &http.Cookie{
				Name:     web.SessionCookie,
				Value:    sess.ID,
				Path:     "/",
				MaxAge:   int(ttl.Seconds()),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})

			ctx := context.WithValue(r.Context(), sessionCtxKey{}, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFrom returns the session attached by SessionMiddleware.
func SessionFrom(ctx context.Context) *dashboard.Session {
	s, _ := ctx.Value(sessionCtxKey{}).(*dashboard.Session)
	return s
}

// requireSession writes an error when the request carries no session
func requireSession(w http.ResponseWriter, r *http.Request) (*dashboard.Session, bool) {
	sess := SessionFrom(r.Context())
	if sess == nil {
		http.Error(w, "no session", http.StatusInternalServerError)
		return nil, false
	}
	return sess, true
}

package middleware

import (
	"context"
	"net/http"
	"time"

	"sokoni-be/internal/logger"
	"sokoni-be/internal/utils"

	"github.com/google/uuid"
)

const (
	SessionCookieName = "session_id"
	sessionMaxAge     = 30 * 24 * time.Hour
)

// Session makes sure every request carries a session id, issuing a cookie
// when the client has none or sent one that is not a uuid.
func Session(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sid := ""
			if c, err := r.Cookie(SessionCookieName); err == nil {
				if _, perr := uuid.Parse(c.Value); perr == nil {
					sid = c.Value
				}
			}

			if sid == "" {
				sid = uuid.New().String()
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookieName,
					Value:    sid,
					Path:     "/",
					MaxAge:   int(sessionMaxAge.Seconds()),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := logger.WithSessionID(r.Context(), sid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func SessionID(ctx context.Context) string {
	return logger.SessionIDFrom(ctx)
}

// CustomerRef identifies who an order belongs to: the signed-in user, or the
// browsing session for guests.
func CustomerRef(ctx context.Context) string {
	if uid, ok := utils.GetUserIDFromContext(ctx); ok {
		return uid
	}
	return "guest:" + SessionID(ctx)
}

// CanViewOrder reports whether the caller owns an order placed under
// customerRef or is an admin.
func CanViewOrder(ctx context.Context, customerRef string) bool {
	return customerRef == CustomerRef(ctx) || utils.IsAdmin(ctx)
}

package api

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

const metricUnreadLookupFailures = "UnreadLookupFailures"

// unreadCountTimeout bounds the per-request notification lookup so
// a slow store can't stall the request path.
const unreadCountTimeout = 3 * time.Second

const unreadCountKey contextKey = "unread-count"

func WithUnreadCount(ctx context.Context, count int) context.Context {
	return context.WithValue(ctx, unreadCountKey, count)
}

// UnreadCount returns the unread notification count resolved for
// this request, defaulting to zero for anonymous requests and for
// failed lookups.
func UnreadCount(ctx context.Context) int {
	count, ok := ctx.Value(unreadCountKey).(int)
	if !ok {
		return 0
	}

	return count
}

// unreadCountMiddleware resolves the session user's unread
// notification count once per request and stores it on the request
// context. Anonymous requests get zero without a query; a failing
// store is logged and degrades to zero, the request still proceeds.
func (s *App) unreadCountMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count := 0
		if userId, err := s.extractUserIdFromToken(r); err == nil {
			ctx, cancel := context.WithTimeout(r.Context(), unreadCountTimeout)
			n, err := s.db.UnreadNotificationCount(ctx, userId)
			cancel()

			if err != nil {
				s.stats.Incr(metricUnreadLookupFailures)
				s.log.Printf("unread count for account %d: %v", userId, err)
			} else {
				count = n
			}
		}

		next.ServeHTTP(w, r.WithContext(WithUnreadCount(r.Context(), count)))
	})
}

func (s *App) errorHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				var panicError error
				switch e := err.(type) {
				case error:
					panicError = e
				default:
					panicError = fmt.Errorf("%v", e)
				}
				s.log.Printf("panic: %v", panicError)
				errResp := NewInternalServerError(panicError)
				w.Header().Set("Connection", "close")
				s.writeJson(w, errResp.StatusCode, errResp)
				return
			}
		}()

		next.ServeHTTP(w, r)
	})
}

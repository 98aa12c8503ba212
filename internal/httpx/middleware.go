package httpx

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/ariefcatur/go-timestore/internal/timestore"
)

const HeaderSessionID = "X-Session-Id"

type ctxKey int

const sessionKey ctxKey = iota

func sessionFrom(ctx context.Context) *timestore.Session {
	s, _ := ctx.Value(sessionKey).(*timestore.Session)
	return s
}

// withSession resolves the shopper session from X-Session-Id, issuing a new
// id when the header is missing.
func (h *Handler) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid := r.Header.Get(HeaderSessionID)
		if sid == "" {
			sid = uuid.NewString()
		}
		w.Header().Set(HeaderSessionID, sid)
		sess, err := h.Store.Session(r.Context(), sid)
		if err != nil {
			h.Log.WithError(err).WithField("session", sid).Error("resolve session")
			writeError(w, http.StatusInternalServerError, "session unavailable")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey, sess)))
	})
}

func requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFrom(r.Context())
		if sess == nil || sess.User() == nil {
			writeError(w, http.StatusUnauthorized, "login required")
			return
		}
		if !sess.IsAdmin() {
			writeError(w, http.StatusForbidden, "admin only")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// rateLimit keeps per-IP counters in memory. formatted is a limiter rate
// such as "10-M".
func rateLimit(formatted string) (func(http.Handler) http.Handler, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, err
	}
	mw := stdlib.NewMiddleware(limiter.New(memory.NewStore(), rate))
	return mw.Handler, nil
}

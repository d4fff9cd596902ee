package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/lazypower/cony/internal/auth"
	"github.com/lazypower/cony/internal/domain"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// requestID reuses the caller's X-Request-ID or mints one, and echoes it back.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// sessionHolder lets the auth middleware report the user back to the access
// log, which runs outside it.
type sessionHolder struct {
	userID string
}

type holderKey struct{}

// accessLog logs every request once it completes and feeds the request
// metrics, labelled by chi route pattern so ids don't explode cardinality.
func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		holder := &sessionHolder{}
		r = r.WithContext(context.WithValue(r.Context(), holderKey{}, holder))

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		s.metrics.ObserveRequest(route, r.Method, status, elapsed)

		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Duration("duration", elapsed),
			zap.String("request_id", requestIDFrom(r.Context())),
		}
		if holder.userID != "" {
			fields = append(fields, zap.String("user_id", holder.userID))
		}
		if status >= http.StatusInternalServerError {
			s.log.Error("request", fields...)
		} else {
			s.log.Info("request", fields...)
		}
	})
}

// authenticate requires a valid bearer token and puts its session on the
// request context.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			writeError(w, r, domain.ErrUnauthorized)
			return
		}

		sess, err := s.accounts.Authenticate(r.Context(), strings.TrimSpace(token))
		if err != nil {
			s.fail(w, r, err)
			return
		}

		if holder, ok := r.Context().Value(holderKey{}).(*sessionHolder); ok {
			holder.userID = sess.UserID.String()
		}
		next.ServeHTTP(w, r.WithContext(auth.WithSession(r.Context(), sess)))
	})
}

// requireView rejects sessions whose role may not open v.
func requireView(v domain.View) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := auth.FromContext(r.Context())
			if !ok {
				writeError(w, r, domain.ErrUnauthorized)
				return
			}
			if !sess.CanView(v) {
				writeError(w, r, domain.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// sessionFrom returns the authenticated session. Only valid behind
// authenticate.
func sessionFrom(r *http.Request) auth.Session {
	sess, _ := auth.FromContext(r.Context())
	return sess
}

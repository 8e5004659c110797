package httpserver

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"unihaven/internal/adapters/observability"
	"unihaven/internal/app"
)

func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, `{"type":"about:blank","title":"Service Unavailable","status":503,"detail":"request timed out"}`)
	}
}

// ---- status-recording ResponseWriter ----

type srw struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *srw) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *srw) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

func (w *srw) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

// routePattern is the matched chi pattern, so ids do not explode label
// cardinality. Unmatched requests are grouped.
func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// ---- request observation: metrics + one structured log line ----

func Observe(l zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &srw{ResponseWriter: w}
			next.ServeHTTP(sw, r)

			route, dur, status := routePattern(r), time.Since(start), sw.Status()
			observability.ObserveHTTP(route, r.Method, status, dur)

			ev := l.Info()
			if status >= http.StatusInternalServerError {
				ev = l.Error()
			}
			ev.Str("route", route).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", status).
				Int("bytes", sw.bytes).
				Dur("duration", dur).
				Str("remote", remoteIP(r)).
				Str("request_id", chimw.GetReqID(r.Context())).
				Str("ua", r.UserAgent()).
				Msg("http_request")
		})
	}
}

// ClientIP records the caller address for audit entries.
func ClientIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(app.WithClientIP(r.Context(), remoteIP(r))))
	})
}

// Picks first X-Forwarded-For IP, else X-Real-IP, else RemoteAddr host.
func remoteIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xrip := r.Header.Get("X-Real-IP"); xrip != "" {
		return xrip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

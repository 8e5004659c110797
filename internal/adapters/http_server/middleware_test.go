package httpserver

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

func TestRemoteIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.1:5555"
	if got := remoteIP(r); got != "192.0.2.1" {
		t.Fatalf("RemoteAddr host: got %q", got)
	}
	r.Header.Set("X-Real-IP", "198.51.100.2")
	if got := remoteIP(r); got != "198.51.100.2" {
		t.Fatalf("X-Real-IP: got %q", got)
	}
	r.Header.Set("X-Forwarded-For", " 203.0.113.9 , 10.0.0.1")
	if got := remoteIP(r); got != "203.0.113.9" {
		t.Fatalf("X-Forwarded-For: got %q", got)
	}
}

func TestObserve_LogsRoutePattern(t *testing.T) {
	var buf bytes.Buffer
	m := chi.NewRouter()
	m.Use(Observe(zerolog.New(&buf)))
	m.Get("/api/reservations/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rr := httptest.NewRecorder()
	m.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/reservations/42", nil))

	line := buf.String()
	if !strings.Contains(line, `"route":"/api/reservations/{id}"`) || !strings.Contains(line, `"status":418`) {
		t.Fatalf("unexpected log line: %s", line)
	}
}

func TestTimeout_WritesProblem(t *testing.T) {
	h := Timeout(10 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusServiceUnavailable || !strings.Contains(rr.Body.String(), "request timed out") {
		t.Fatalf("got %d %s", rr.Code, rr.Body.String())
	}
}

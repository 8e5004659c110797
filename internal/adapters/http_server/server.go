package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

type Server struct{ mux *chi.Mux }

func New(timeout time.Duration) *Server {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	m := chi.NewRouter()

	// Middlewares must be registered before any route.
	m.Use(chimw.RealIP)
	m.Use(chimw.RequestID)
	m.Use(chimw.Recoverer)
	m.Use(chimw.StripSlashes)
	m.Use(Timeout(timeout))
	m.Use(Observe(log.Logger))
	m.Use(ClientIP)

	return &Server{mux: m}
}

func (s *Server) Mux() http.Handler { return s.mux }

// Mount attaches an extra handler (e.g. /metrics) to the router.
func (s *Server) Mount(path string, h http.Handler) {
	s.mux.Handle(path, h)
}

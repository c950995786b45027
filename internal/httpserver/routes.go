package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/rx3lixir/prodhack/internal/auth"
)

func (s *Server) setupRoutes() *chi.Mux {
	r := chi.NewRouter()

	// Middleware block
	// r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Compress(5))

	allowedOrigins := s.allowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Public auth routes (no auth required)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", s.HandleSignup)
			r.Post("/signin", s.HandleSignin)
			r.Post("/refresh", s.HandleRefreshToken)
		})

		// Document analysis is open: the prototype frontend uploads
		// before the user is necessarily signed in
		s.materialHandler.RegisterRoutes(r)

		// Room diagnostics (no quiz content is ever exposed here)
		r.Get("/rooms", s.handleListRooms)

		// Protected storefront routes
		r.Route("/store", func(r chi.Router) {
			r.Use(auth.Middleware(s.jwtService))
			s.storeHandler.RegisterRoutes(r)
		})
	})

	// WebSocket entry point for battle rooms
	r.Route("/ws", func(r chi.Router) {
		s.gatewayHandler.RegisterRoutes(r)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// handleListRooms reports active rooms for ops visibility
func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	rooms := s.gw.ListRooms()

	s.respondJSON(w, http.StatusOK, map[string]any{
		"rooms": rooms,
		"count": len(rooms),
	})
}

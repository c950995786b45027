package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rx3lixir/prodhack/internal/gateway"
	"github.com/rx3lixir/prodhack/internal/material"
	maindb "github.com/rx3lixir/prodhack/internal/storage/maindb"
	"github.com/rx3lixir/prodhack/internal/store"
	"github.com/rx3lixir/prodhack/pkg/jwt"
	"github.com/rx3lixir/prodhack/pkg/logger"
)

// Deps bundles everything the HTTP surface serves
type Deps struct {
	UserStore       maindb.UserStore
	JWTService      *jwt.Service
	Gateway         *gateway.Gateway
	GatewayHandler  *gateway.Handler
	MaterialHandler *material.Handler
	StoreHandler    *store.Handler
	AllowedOrigins  []string
}

type Server struct {
	userStore  maindb.UserStore
	jwtService *jwt.Service
	log        *logger.Logger
	httpServer *http.Server

	gw              *gateway.Gateway
	gatewayHandler  *gateway.Handler
	materialHandler *material.Handler
	storeHandler    *store.Handler
	allowedOrigins  []string
}

func New(addr string, deps Deps, logger *logger.Logger) *Server {
	s := &Server{
		userStore:       deps.UserStore,
		jwtService:      deps.JWTService,
		log:             logger,
		gw:              deps.Gateway,
		gatewayHandler:  deps.GatewayHandler,
		materialHandler: deps.MaterialHandler,
		storeHandler:    deps.StoreHandler,
		allowedOrigins:  deps.AllowedOrigins,
	}

	router := s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start begins listening fot HTTP requests
func (s *Server) Start() error {
	s.log.Info(
		"Starting HTTP server",
		"addr", s.httpServer.Addr,
	)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info(
		"Server shutting down gracefully...",
		"addr", s.httpServer.Addr,
	)
	return s.httpServer.Shutdown(ctx)
}

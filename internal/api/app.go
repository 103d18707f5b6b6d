package api

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/handlers"

	"github.com/sdegypt/diychach/internal/config"
	"github.com/sdegypt/diychach/internal/database"
	"github.com/sdegypt/diychach/internal/server"
	"github.com/sdegypt/diychach/internal/stats"
)

type App struct {
	log            *log.Logger
	db             database.Repository
	mux            *http.Server
	cs             *server.ChatServer
	stats          stats.StatsProvider
	signingKey     []byte
	allowedOrigins []string
}

func NewApp(mux *http.ServeMux, logger *log.Logger, cs *server.ChatServer, db database.Repository, su stats.StatsProvider, cfg *config.Config) *App {
	s := &App{
		log:            logger,
		db:             db,
		cs:             cs,
		stats:          su,
		signingKey:     cfg.SigningKey,
		allowedOrigins: cfg.AllowedOrigins,
	}

	su.RegisterMetric(metricUnreadLookupFailures)

	mux.HandleFunc("POST /api/auth/register", s.createAccount)
	mux.HandleFunc("POST /api/auth/login", s.login)
	mux.HandleFunc("GET /api/auth/session", s.authMiddleware(s.session))
	mux.Handle("GET /api/auth/logout", s.authMiddleware(s.logout))
	mux.Handle("POST /api/messages", s.authMiddleware(s.createMessage))
	mux.Handle("GET /api/messages", s.authMiddleware(s.getConversation))
	mux.Handle("GET /api/notifications", s.authMiddleware(s.listNotifications))
	mux.Handle("POST /api/notifications/read", s.authMiddleware(s.markNotificationsRead))
	mux.Handle("GET /ws", s.authMiddleware(s.serveWs))

	h := handlers.CORS(
		handlers.MaxAge(3600),
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Origin", "Content-Type", "Accept"}),
		handlers.AllowCredentials(),
	)(mux)

	h = s.unreadCountMiddleware(h)
	h = s.errorHandler(h)

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: h,
	}

	s.mux = srv
	return s
}

func (s *App) Start() error {
	s.log.Printf("starting server on %s\n", s.mux.Addr)
	return s.mux.ListenAndServe()
}

func (s *App) Shutdown(ctx context.Context) error {
	s.log.Println("shutting down HTTP server...")
	if err := s.mux.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}

package api

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/handlers"

	"github.com/pdolan/connectra/internal/config"
	"github.com/pdolan/connectra/internal/server"
	"github.com/pdolan/connectra/internal/store"
)

type ConnectraApp struct {
	log            *log.Logger
	db             store.Repository
	mux            *http.Server
	cs             *server.ChatServer
	signingKey     []byte
	allowedOrigins []string
	uploadDir      string
	clipDir        string
	photoDir       string
}

func NewConnectraApp(mux *http.ServeMux, logger *log.Logger, cs *server.ChatServer, db store.Repository, cfg *config.Config) *ConnectraApp {
	s := &ConnectraApp{
		log:            logger,
		db:             db,
		cs:             cs,
		signingKey:     cfg.SigningKey,
		allowedOrigins: cfg.AllowedOrigins,
		uploadDir:      cfg.UploadDir,
		clipDir:        cfg.ClipDir,
		photoDir:       cfg.PhotoDir,
	}

	mux.HandleFunc("GET /api/health", s.healthCheck)
	mux.HandleFunc("POST /api/auth/register", s.createAccount)
	mux.HandleFunc("POST /api/auth/login", s.login)
	mux.HandleFunc("GET /api/auth/session", s.authMiddleware(s.session))
	mux.HandleFunc("GET /api/auth/logout", s.authMiddleware(s.logout))

	mux.HandleFunc("GET /api/users", s.authMiddleware(s.listUsers))
	mux.HandleFunc("GET /api/users/{username}", s.authMiddleware(s.userProfile))
	mux.HandleFunc("POST /api/users/{username}/follow", s.authMiddleware(s.followUser))
	mux.HandleFunc("PUT /api/profile", s.authMiddleware(s.updateProfile))

	mux.HandleFunc("GET /api/chats", s.authMiddleware(s.listChats))
	mux.HandleFunc("POST /api/chats/dm", s.authMiddleware(s.createDirectChat))
	mux.HandleFunc("GET /api/chats/{id}", s.authMiddleware(s.getChat))
	mux.HandleFunc("POST /api/messages", s.authMiddleware(s.sendMessage))

	mux.HandleFunc("GET /api/clips", s.listClips)
	mux.HandleFunc("POST /api/clips", s.authMiddleware(s.uploadClip))
	mux.HandleFunc("GET /api/clips/{id}", s.getClip)
	mux.HandleFunc("POST /api/clips/{id}/like", s.authMiddleware(s.likeClip))
	mux.HandleFunc("POST /api/clips/{id}/comment", s.authMiddleware(s.commentClip))
	mux.HandleFunc("POST /api/clips/{id}/share", s.authMiddleware(s.shareClip))
	mux.HandleFunc("POST /api/comments/{id}/like", s.authMiddleware(s.likeComment))

	mux.HandleFunc("GET /api/blogs", s.listBlogs)
	mux.HandleFunc("POST /api/blogs", s.authMiddleware(s.createBlog))
	mux.HandleFunc("GET /api/blogs/{id}", s.getBlog)

	mux.HandleFunc("GET /ws", s.authMiddleware(s.serveWs))

	mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))
	mux.Handle("GET /clips/", http.StripPrefix("/clips/", http.FileServer(http.Dir(cfg.ClipDir))))
	mux.Handle("GET /photos/", http.StripPrefix("/photos/", http.FileServer(http.Dir(cfg.PhotoDir))))

	h := handlers.CORS(
		handlers.MaxAge(3600),
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Origin", "Content-Type", "Accept"}),
		handlers.AllowCredentials(),
	)(mux)

	h = s.errorHandler(h)

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: h,
	}

	s.mux = srv
	return s
}

func (s *ConnectraApp) Start() error {
	s.log.Printf("starting server on %s\n", s.mux.Addr)
	return s.mux.ListenAndServe()
}

func (s *ConnectraApp) Shutdown(ctx context.Context) error {
	s.log.Println("shutting down HTTP server...")
	if err := s.mux.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}

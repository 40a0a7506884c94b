package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/micromarket/apiserver/config"
	"github.com/micromarket/apiserver/internal/db"
	"github.com/micromarket/apiserver/internal/events"
	"github.com/micromarket/apiserver/internal/handlers"
	"github.com/micromarket/apiserver/internal/services"
	"github.com/micromarket/apiserver/internal/storage"
	"github.com/micromarket/apiserver/internal/store"
	"github.com/micromarket/apiserver/internal/token"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	publisher  *events.Publisher
}

// New constructs a Server with basic middleware and defaults.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	if cfg.Auth.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	imageStorage, err := newImageStorage(ctx, cfg)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	publisher, err := newEventPublisher(ctx, cfg)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)
	productRepo := store.NewProductRepository(dbConn)

	userService := services.NewUserService(userRepo)
	productService := services.NewProductService(productRepo, imageStorage, publisher, cfg.Events.Topic)
	favoritesService := services.NewFavoritesService(userRepo, productRepo)
	searchService := services.NewSearchHistoryService(userRepo)

	tokenService := token.NewService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authMiddleware := handlers.RequireAuth(tokenService, userService)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Route not found"}`))
	})

	router.Get("/health", handlers.Health)
	router.Route("/auth", func(r chi.Router) {
		handlers.AuthRouter(r, userService, tokenService)
	})
	router.Route("/products", func(r chi.Router) {
		handlers.ProductRouter(r, productService, favoritesService, authMiddleware)
	})
	router.Route("/users", func(r chi.Router) {
		handlers.UserRouter(r, authMiddleware)
	})
	router.Route("/search", func(r chi.Router) {
		handlers.SearchRouter(r, searchService, authMiddleware)
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		publisher:  publisher,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.publisher != nil {
		_ = s.publisher.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}

func newImageStorage(ctx context.Context, cfg config.Config) (*storage.Storage, error) {
	switch cfg.Storage.Backend {
	case "":
		return nil, nil
	case "minio":
		backend, err := storage.NewMinioClient(cfg.Storage.Minio)
		if err != nil {
			return nil, err
		}
		st := storage.NewStorage(backend, cfg.Storage.PublicBaseURL)
		if err := st.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return st, nil
	case "gcs":
		backend, err := storage.NewGCSClient(ctx, cfg.Storage.GCS)
		if err != nil {
			return nil, err
		}
		st := storage.NewStorage(backend, cfg.Storage.PublicBaseURL)
		if err := st.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func newEventPublisher(ctx context.Context, cfg config.Config) (*events.Publisher, error) {
	switch cfg.Events.Backend {
	case "":
		return nil, nil
	case "rabbitmq":
		backend, err := events.NewRabbitMQClient(cfg.Events.RabbitMQ)
		if err != nil {
			return nil, err
		}
		return events.NewPublisher(backend), nil
	case "pubsub":
		backend, err := events.NewPubSubClient(ctx, cfg.Events.PubSub)
		if err != nil {
			return nil, err
		}
		return events.NewPublisher(backend), nil
	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.Events.Backend)
	}
}

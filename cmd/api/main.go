package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"

	"postfeed/cmd/app"
	"postfeed/internal/config"
	handlers "postfeed/internal/handler"
	"postfeed/internal/logging"
	"postfeed/internal/middleware"
)

func main() {
	// setting up config
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger := logging.NewJSON(os.Stdout, logging.ParseLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "startup failed", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	go application.Watch(ctx)

	handler := handlers.NewHandlers(application.Services, application.Feed, cfg, logger)

	router := newRouter(handler)

	handlerChain := middleware.Chain(
		router,
		middleware.LoggingMiddleware(logger),
		middleware.CORSMiddleware(cfg.CORSOrigins),
		middleware.AuthMiddleware(application.Services.Auth),
	)

	// Starting the server
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: handlerChain,
	}

	go func() {
		logger.Info(ctx, "server started", "addr", server.Addr, "store", cfg.Store.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	logger.Info(shutdownCtx, "shutting down")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(shutdownCtx, "graceful shutdown failed", "error", err)
	}
}

func newRouter(h *handlers.Handlers) *mux.Router {
	r := mux.NewRouter()
	protected := func(fn http.HandlerFunc) http.Handler {
		return middleware.RequireAuth(fn)
	}

	// setting up routes
	r.HandleFunc("/", h.Root).Methods(http.MethodGet)
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	r.HandleFunc("/api/auth/register", h.Register).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/login", h.Login).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/refresh-token", h.RefreshToken).Methods(http.MethodPost)
	r.Handle("/api/auth/logout", protected(h.Logout)).Methods(http.MethodPost)

	r.Handle("/api/me", protected(h.Me)).Methods(http.MethodGet)
	r.Handle("/api/users/{id}", protected(h.GetUser)).Methods(http.MethodGet)
	r.Handle("/api/users/{id}", protected(h.UpdateUser)).Methods(http.MethodPut)
	r.Handle("/api/users/{id}/avatar", protected(h.UploadAvatar)).Methods(http.MethodPost)

	r.HandleFunc("/api/posts", h.GetPosts).Methods(http.MethodGet)
	r.Handle("/api/posts", protected(h.CreatePost)).Methods(http.MethodPost)
	r.HandleFunc("/api/posts/stream", h.StreamPosts).Methods(http.MethodGet)
	r.HandleFunc("/api/posts/{id}", h.GetPost).Methods(http.MethodGet)
	r.Handle("/api/posts/{id}", protected(h.UpdatePost)).Methods(http.MethodPut)
	r.Handle("/api/posts/{id}", protected(h.DeletePost)).Methods(http.MethodDelete)
	r.Handle("/api/posts/{id}/images", protected(h.AddImage)).Methods(http.MethodPost)
	r.Handle("/api/posts/{id}/images/{index}", protected(h.DeleteImage)).Methods(http.MethodDelete)

	// callables answer unauthenticated themselves
	r.HandleFunc("/api/functions/{name}", h.CallFunction).Methods(http.MethodPost)

	return r
}

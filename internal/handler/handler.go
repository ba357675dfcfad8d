package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"postfeed/internal/auth"
	"postfeed/internal/config"
	"postfeed/internal/feed"
	"postfeed/internal/logging"
	"postfeed/internal/service"
)

const defaultMaxUploadSize = 10 << 20

type Handlers struct {
	UserService   service.UserService
	AuthService   service.AuthService
	PostService   service.PostService
	HealthService service.HealthService
	// Feed backs the realtime stream: the shared change hub joined with the
	// post store.
	Feed     feed.Source
	Logger   logging.Logger
	Cfg      *config.Config
	Validate *validator.Validate
}

func NewHandlers(service *service.Service, source feed.Source, config *config.Config, logger logging.Logger) *Handlers {
	return &Handlers{
		UserService:   service.User,
		AuthService:   service.Auth,
		PostService:   service.Post,
		HealthService: service.Health,
		Feed:          source,
		Logger:        logger,
		Cfg:           config,
		Validate:      validator.New(),
	}
}

func caller(r *http.Request) auth.User {
	user, _ := auth.UserFromContext(r.Context())
	return user
}

func pathVar(r *http.Request, name string) string {
	return mux.Vars(r)[name]
}

func (h *Handlers) maxUploadSize() int64 {
	if h.Cfg == nil || h.Cfg.MaxUploadSize <= 0 {
		return defaultMaxUploadSize
	}
	return h.Cfg.MaxUploadSize
}

func (h *Handlers) logger() logging.Logger {
	if h.Logger == nil {
		return logging.Discard()
	}
	return h.Logger
}

package service

import (
	"postfeed/internal/config"
	"postfeed/internal/logging"
	"postfeed/internal/repository"
	"postfeed/internal/storage"
)

type Service struct {
	User   UserService
	Post   PostService
	Auth   AuthService
	Health HealthService
}

func NewService(rep *repository.Repository, cfg *config.Config, storage storage.Storage, logger logging.Logger) *Service {
	return &Service{
		User:   NewUserService(rep.User, storage, logger),
		Post:   NewPostService(rep.Post, rep.User, storage, logger),
		Auth:   NewAuthService(rep.Credential, rep.User, cfg),
		Health: NewHealthService(rep.Pinger, rep.Schema),
	}
}

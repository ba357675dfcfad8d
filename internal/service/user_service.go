package service

import (
	"context"
	"errors"
	"fmt"

	"postfeed/internal/auth"
	"postfeed/internal/common"
	"postfeed/internal/logging"
	"postfeed/internal/models"
	"postfeed/internal/repository"
	"postfeed/internal/storage"
)

type UserService interface {
	GetIdentity(ctx context.Context, userID string) (*models.Identity, error)
	// SaveIdentity replaces users/{userID} in full. Only the user may do it.
	SaveIdentity(ctx context.Context, caller auth.User, userID string, identity models.Identity) (*models.Identity, error)
	SetAvatar(ctx context.Context, caller auth.User, userID, fileName string, data []byte) (*models.Identity, error)
}

type userService struct {
	userRepo repository.UserRepository
	storage  storage.Storage
	logger   logging.Logger
}

func NewUserService(userRepo repository.UserRepository, storage storage.Storage, logger logging.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		storage:  storage,
		logger:   logger.With("module", "user_service"),
	}
}

func checkSelf(caller auth.User, userID string) error {
	if caller.ID == "" {
		return common.ErrUnauthenticated
	}
	if caller.ID != userID {
		return fmt.Errorf("user %s: %w", userID, common.ErrForbidden)
	}
	return nil
}

func (s *userService) GetIdentity(ctx context.Context, userID string) (*models.Identity, error) {
	return s.userRepo.GetByID(ctx, userID)
}

func (s *userService) SaveIdentity(ctx context.Context, caller auth.User, userID string, identity models.Identity) (*models.Identity, error) {
	if err := checkSelf(caller, userID); err != nil {
		return nil, err
	}

	identity.ID = userID

	if err := s.userRepo.Save(ctx, &identity); err != nil {
		return nil, err
	}

	return &identity, nil
}

func (s *userService) SetAvatar(ctx context.Context, caller auth.User, userID, fileName string, data []byte) (*models.Identity, error) {
	if err := checkSelf(caller, userID); err != nil {
		return nil, err
	}

	identity, err := s.userRepo.GetByID(ctx, userID)
	if errors.Is(err, common.ErrNotFound) {
		identity = &models.Identity{ID: caller.ID, Name: caller.Name, Email: caller.Email}
	} else if err != nil {
		return nil, err
	}

	objectName, imageURL, err := s.storage.UploadImage(ctx, storage.PrefixAvatars, userID, fileName, data)
	if err != nil {
		return nil, err
	}

	previous := identity.Avatar
	identity.Avatar = imageURL

	if err := s.userRepo.Save(ctx, identity); err != nil {
		if delErr := s.storage.DeleteImage(ctx, objectName); delErr != nil {
			s.logger.Warn(ctx, "orphaned avatar object", "object", objectName, "error", delErr)
		}
		return nil, err
	}

	if name, ok := s.storage.ObjectName(previous); ok {
		if err := s.storage.DeleteImage(ctx, name); err != nil {
			s.logger.Warn(ctx, "failed to delete previous avatar", "object", name, "error", err)
		}
	}

	return identity, nil
}

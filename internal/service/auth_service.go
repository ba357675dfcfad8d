package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"postfeed/internal/auth"
	"postfeed/internal/common"
	"postfeed/internal/config"
	"postfeed/internal/models"
	"postfeed/internal/repository"
)

type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

// Session is what a successful sign-in hands back to the client.
type Session struct {
	User         models.Identity `json:"user"`
	AccessToken  string          `json:"accessToken"`
	RefreshToken string          `json:"refreshToken"`
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*Session, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	RefreshTokens(ctx context.Context, refreshToken string) (*Session, error)
	Logout(ctx context.Context, userID string) error
	ValidateToken(tokenString string) (auth.User, error)
}

type authService struct {
	credRepo repository.CredentialRepository
	userRepo repository.UserRepository
	cfg      *config.Config
}

func NewAuthService(credRepo repository.CredentialRepository, userRepo repository.UserRepository, cfg *config.Config) AuthService {
	return &authService{
		credRepo: credRepo,
		userRepo: userRepo,
		cfg:      cfg,
	}
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	cred := &models.Credential{
		Email:       in.Email,
		DisplayName: in.Name,
	}

	if err := s.credRepo.Create(ctx, cred, in.Password); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	identity := models.Identity{
		ID:    cred.UserID,
		Name:  in.Name,
		Email: in.Email,
	}
	if err := s.userRepo.Save(ctx, &identity); err != nil {
		return nil, fmt.Errorf("create user document: %w", err)
	}

	return s.issue(ctx, cred, &identity)
}

func (s *authService) Login(ctx context.Context, email, password string) (*Session, error) {
	cred, err := s.credRepo.VerifyPassword(ctx, email, password)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("login: unknown email: %w", common.ErrUnauthenticated)
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	return s.issue(ctx, cred, nil)
}

func (s *authService) RefreshTokens(ctx context.Context, refreshToken string) (*Session, error) {
	cred, err := s.credRepo.GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}

	return s.issue(ctx, cred, nil)
}

func (s *authService) Logout(ctx context.Context, userID string) error {
	if err := s.credRepo.ClearRefreshToken(ctx, userID); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func (s *authService) ValidateToken(tokenString string) (auth.User, error) {
	return auth.ParseToken(tokenString, s.cfg.JWTSecretKey)
}

// issue signs a new access token and rotates the refresh token.
func (s *authService) issue(ctx context.Context, cred *models.Credential, identity *models.Identity) (*Session, error) {
	if identity == nil {
		identity = s.identityOf(ctx, cred)
	}

	accessToken, err := auth.GenerateToken(auth.User{
		ID:    cred.UserID,
		Email: cred.Email,
		Name:  identity.Name,
	}, s.cfg.JWTSecretKey, s.cfg.AccessTokenDuration)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	refreshToken := uuid.New().String()
	expiry := time.Now().Add(s.cfg.RefreshTokenDuration)

	if err := s.credRepo.UpdateRefreshToken(ctx, cred.UserID, refreshToken, expiry); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &Session{
		User:         *identity,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// identityOf falls back to the provider fields when users/{id} is missing.
func (s *authService) identityOf(ctx context.Context, cred *models.Credential) *models.Identity {
	identity, err := s.userRepo.GetByID(ctx, cred.UserID)
	if err == nil {
		return identity
	}

	return &models.Identity{
		ID:    cred.UserID,
		Name:  cred.DisplayName,
		Email: cred.Email,
	}
}
